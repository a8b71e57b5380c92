// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// INCREMENTAL PRINTING
// =============================================================================

// deltaPrinter streams accumulated turn content to a writer as it arrives.
// Content normally only grows, so each delta prints the new suffix. A stream
// error replaces the accumulated content wholesale, so a delta that is not
// an extension of what was already printed restarts on a fresh line with the
// full new content.
type deltaPrinter struct {
	out     io.Writer
	printed string
}

func (p *deltaPrinter) print(content string) {
	if strings.HasPrefix(content, p.printed) {
		io.WriteString(p.out, content[len(p.printed):])
	} else {
		if p.printed != "" {
			io.WriteString(p.out, "\n")
		}
		io.WriteString(p.out, content)
	}
	p.printed = content
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// renderMarkdown renders Markdown for terminal display. Falls back to the
// raw text when rendering is unavailable (piped output, renderer failure).
func renderMarkdown(text string, wordWrap int) string {
	if !ColorsEnabled() {
		return text
	}
	if wordWrap <= 0 {
		wordWrap = GetTerminalWidth()
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// formatSideData renders sources, tool calls and suggested questions of an
// assistant message as plain indented text.
func formatSideData(msg *model.Message) string {
	var out string

	if len(msg.Tools) > 0 {
		out += "Tools:\n"
		for _, tool := range msg.Tools {
			out += "  - " + model.ToolTitle(tool) + "\n"
		}
	}

	if len(msg.Sources) > 0 {
		out += "Sources:\n"
		for _, src := range msg.Sources {
			line := "  - " + src.FileName()
			if score := src.Score(); score > 0 {
				line += " (" + util.FormatScore(score) + ")"
			}
			out += line + "\n"
		}
	}

	if len(msg.SuggestedQuestions) > 0 {
		out += "Follow-ups:\n"
		for i, q := range msg.SuggestedQuestions {
			out += fmt.Sprintf("  %d. %s\n", i+1, q)
		}
	}

	return out
}
