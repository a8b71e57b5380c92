// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the chat interface.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Header
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// Messages
	UserLabel      lipgloss.Style
	UserText       lipgloss.Style
	AssistantLabel lipgloss.Style
	AssistantText  lipgloss.Style
	ErrorText      lipgloss.Style

	// Side data
	SourceHeading string
	SourceItem    lipgloss.Style
	SourceScore   lipgloss.Style
	ToolItem      lipgloss.Style
	Suggestion    lipgloss.Style
	SuggestionKey lipgloss.Style

	// Chrome
	InputBox   lipgloss.Style
	StatusBar  lipgloss.Style
	StatusBusy lipgloss.Style
	FileTag    lipgloss.Style
	Hint       lipgloss.Style
}

// NewTheme builds a theme for the current terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}

	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.HeaderSubtitle = lipgloss.NewStyle().Foreground(TextMuted)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(UserFg)
	t.UserText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(AssistantFg)
	t.AssistantText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ErrorText = lipgloss.NewStyle().Foreground(ErrorFg)

	t.SourceHeading = "Sources"
	t.SourceItem = lipgloss.NewStyle().Foreground(TextSecondary)
	t.SourceScore = lipgloss.NewStyle().Foreground(TextMuted)
	t.ToolItem = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.Suggestion = lipgloss.NewStyle().Foreground(Violet)
	t.SuggestionKey = lipgloss.NewStyle().Bold(true).Foreground(Amber)

	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.StatusBar = lipgloss.NewStyle().Foreground(TextMuted)
	t.StatusBusy = lipgloss.NewStyle().Foreground(Amber)
	t.FileTag = lipgloss.NewStyle().Foreground(Emerald)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted)

	return t
}
