// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

func TestHeaderShowsTitleAndBackend(t *testing.T) {
	h := NewHeader(styles.NewTheme(), "RAG Chat", "ask your documents")
	h.SetWidth(80)
	h.SetBackend("http://localhost:8000")

	out := h.View()
	if !strings.Contains(out, "RAG Chat") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "ask your documents") {
		t.Error("missing subtitle")
	}
	if !strings.Contains(out, "localhost:8000") {
		t.Error("missing backend URL")
	}
}

func TestHeaderDropsBackendWhenNarrow(t *testing.T) {
	h := NewHeader(styles.NewTheme(), "RAG Chat", "a fairly long description line")
	h.SetWidth(44)
	h.SetBackend("http://very-long-backend-hostname.example:8000")

	out := h.View()
	if strings.Contains(out, "very-long-backend-hostname") {
		t.Error("backend URL should be dropped when it does not fit")
	}
	if !strings.Contains(out, "RAG Chat") {
		t.Error("title must survive narrow widths")
	}
}

func TestStatusBarStreaming(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.Streaming = true
	s.Spinner = "|"

	out := s.View()
	if !strings.Contains(out, "thinking...") {
		t.Errorf("expected busy label, got %q", out)
	}
	if strings.Contains(out, "queued") {
		t.Error("queued suffix without a queued question")
	}

	s.Queued = true
	if !strings.Contains(s.View(), "1 question queued") {
		t.Error("missing queued suffix")
	}
}

func TestStatusBarIdle(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())

	if !strings.Contains(s.View(), "/help") {
		t.Error("idle bar should show the hint")
	}

	s.Files = []string{"report.pdf", "notes.txt"}
	s.Notice = "uploaded report.pdf"
	out := s.View()
	if !strings.Contains(out, "report.pdf, notes.txt") {
		t.Errorf("missing file list: %q", out)
	}
	if !strings.Contains(out, "uploaded report.pdf") {
		t.Errorf("missing notice: %q", out)
	}
	if strings.Contains(out, "/help") {
		t.Error("hint should yield to real content")
	}
}
