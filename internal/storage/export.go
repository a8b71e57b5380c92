// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// ExportMarkdown renders an archived session as a Markdown transcript.
func ExportMarkdown(meta SessionMeta, msgs []*model.Message) string {
	var sb strings.Builder

	sb.WriteString("# " + meta.Title + "\n\n")
	sb.WriteString("Created: " + meta.CreatedAt.Format("2006-01-02 15:04") + "\n\n")

	for _, msg := range msgs {
		sb.WriteString("## " + msg.Role.DisplayName() + "\n\n")
		sb.WriteString(msg.Content + "\n\n")

		if len(msg.Sources) > 0 {
			sb.WriteString("**Sources:**\n\n")
			for _, src := range msg.Sources {
				sb.WriteString("- " + src.FileName())
				if score := src.Score(); score > 0 {
					sb.WriteString(" (score " + util.FormatScore(score) + ")")
				}
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}

		if len(msg.Tools) > 0 {
			sb.WriteString("**Tool calls:**\n\n")
			for _, tool := range msg.Tools {
				sb.WriteString("- " + model.ToolTitle(tool) + "\n")
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// ExportJSON renders an archived session as indented JSON.
func ExportJSON(meta SessionMeta, msgs []*model.Message) ([]byte, error) {
	payload := struct {
		SessionMeta
		Messages []*model.Message `json:"messages"`
	}{meta, msgs}
	return json.MarshalIndent(payload, "", "  ")
}
