// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/ui/chat"
)

// HandleTUI launches the full-screen chat interface. Returns the process
// exit code.
func HandleTUI(args Args) int {
	if !IsTTY() {
		fmt.Fprintln(os.Stderr, "error: the TUI needs an interactive terminal (try \"ragchat chat\" or \"ragchat ask\")")
		return 2
	}

	// The TUI owns the terminal; logs must go to a file.
	app, err := NewApp(args, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer app.Close()
	app.WatchConfig()

	model := chat.New(app.Cfg, app.Store, app.Controller, app.Client, app.Archive, app.Logger)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.Timeout())
	defer cancel()
	if err := model.Finish(ctx); err != nil {
		app.Logger.Warn("failed to archive session", "error", err)
	}
	return 0
}
