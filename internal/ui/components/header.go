// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: application title, a short description, and
// the backend the client is talking to.
type Header struct {
	Title    string
	Subtitle string
	Backend  string // backend base URL, shown right-aligned
	Width    int

	theme *styles.Theme
}

// NewHeader creates a header with the given title and subtitle.
func NewHeader(theme *styles.Theme, title, subtitle string) *Header {
	return &Header{
		Title:    title,
		Subtitle: subtitle,
		Width:    80,
		theme:    theme,
	}
}

// SetWidth updates the available width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetBackend updates the backend URL shown in the header.
func (h *Header) SetBackend(url string) {
	h.Backend = url
}

// View renders the header as a single bordered line.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}

	left := h.theme.HeaderTitle.Render(h.Title)
	if h.Subtitle != "" {
		left += "  " + h.theme.HeaderSubtitle.Render(h.Subtitle)
	}

	// Backend URL goes on the right when there is room for it.
	right := ""
	if h.Backend != "" {
		right = h.theme.HeaderSubtitle.Render(h.Backend)
	}

	inner := width - 2 // border padding
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		right = ""
		gap = inner - lipgloss.Width(left)
	}
	if gap < 0 {
		left = h.theme.HeaderTitle.Render(util.TruncateWidth(h.Title, inner))
		gap = 0
	}

	line := left + util.PadWidth("", gap) + right
	return h.theme.Header.Width(width).Render(line)
}
