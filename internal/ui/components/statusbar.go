// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom line of the chat screen. While a response is
// streaming it shows the spinner; otherwise it shows attached files,
// any transient notice, and a key hint.
type StatusBar struct {
	Width     int
	Streaming bool
	Queued    bool     // a question is waiting for the current turn
	Spinner   string   // current spinner frame, set per render
	Files     []string // attached file names
	Notice    string   // transient status message

	theme *styles.Theme
}

// NewStatusBar creates an empty status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the available width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status line.
func (s *StatusBar) View() string {
	if s.Streaming {
		label := "thinking..."
		if s.Queued {
			label = "thinking... (1 question queued)"
		}
		return s.theme.StatusBusy.Render(s.Spinner + " " + label + "  esc to cancel")
	}

	parts := []string{}
	if len(s.Files) > 0 {
		parts = append(parts, s.theme.FileTag.Render("attached: "+strings.Join(s.Files, ", ")))
	}
	if s.Notice != "" {
		parts = append(parts, s.theme.StatusBar.Render(s.Notice))
	}
	if len(parts) == 0 {
		parts = append(parts, s.theme.Hint.Render("enter to send  /help for commands"))
	}
	return strings.Join(parts, "  ")
}
