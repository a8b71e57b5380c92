// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// View renders the full chat screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderQuestions())
	b.WriteString(m.theme.InputBox.Width(m.width-2).Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

// renderQuestions shows the starter or suggested questions with their
// alt+N shortcuts.
func (m *Model) renderQuestions() string {
	questions := m.offeredQuestions()
	if len(questions) == 0 || m.streaming {
		return ""
	}

	var b strings.Builder
	for i, q := range questions {
		if i >= 9 {
			break
		}
		key := m.theme.SuggestionKey.Render(fmt.Sprintf("alt+%d", i+1))
		b.WriteString("  " + key + " " + m.theme.Suggestion.Render(util.TruncateWidth(q, m.width-12)) + "\n")
	}
	return b.String()
}

func (m *Model) renderStatus() string {
	m.statusBar.Streaming = m.streaming
	m.statusBar.Queued = m.queuedLabel != ""
	m.statusBar.Spinner = m.spinner.View()
	m.statusBar.Notice = m.status

	files := m.store.Files()
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name()
	}
	m.statusBar.Files = names

	return m.statusBar.View()
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript(m.viewport.Width))
}

func (m *Model) renderTranscript(width int) string {
	history := m.store.History()
	if len(history) == 0 && !m.streaming {
		return m.theme.Hint.Render("\n  " + m.cfg.UI.Description + "\n")
	}

	var b strings.Builder
	for _, msg := range history {
		b.WriteString(m.renderMessage(msg, width))
		b.WriteString("\n")
	}

	if m.streaming {
		b.WriteString(m.theme.AssistantLabel.Render("Assistant") + "\n")
		text := m.partial
		if text == "" {
			text = "..."
		}
		b.WriteString(m.theme.AssistantText.Width(width-2).Render(text) + "\n")
	}

	return b.String()
}

// renderMessage renders one message with its side data.
func (m *Model) renderMessage(msg *model.Message, width int) string {
	var b strings.Builder

	ts := m.theme.Hint.Render(msg.Timestamp.Format("15:04"))

	switch {
	case msg.Role == model.RoleUser:
		b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()) + " " + ts + "\n")
		b.WriteString(m.theme.UserText.Width(width-2).Render(msg.Content) + "\n")

	case msg.Errored:
		b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()) + " " + ts + "\n")
		b.WriteString(m.theme.ErrorText.Width(width-2).Render(msg.Content) + "\n")

	default:
		b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()) + " " + ts + "\n")
		b.WriteString(m.theme.AssistantText.Width(width-2).Render(msg.Content) + "\n")
	}

	for _, tool := range msg.Tools {
		b.WriteString(m.theme.ToolItem.Render("  [tool] "+model.ToolTitle(tool)) + "\n")
	}

	if len(msg.Sources) > 0 {
		b.WriteString(m.theme.SourceItem.Render("  "+m.theme.SourceHeading+":") + "\n")
		for _, src := range msg.Sources {
			line := "    - " + src.FileName()
			if score := src.Score(); score > 0 {
				line += " " + m.theme.SourceScore.Render("("+util.FormatScore(score)+")")
			}
			b.WriteString(m.theme.SourceItem.Render(line) + "\n")
		}
	}

	return b.String()
}
