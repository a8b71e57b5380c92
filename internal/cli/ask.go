// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question handler.
//
// Examples:
//
//	ragchat ask "What does the handbook say about leave?"
//	ragchat ask --file report.pdf "Summarize this document"
//	ragchat ask --json "question" | jq .content
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
)

// HandleAsk runs a single turn and prints the answer. Returns the process
// exit code.
func HandleAsk(args Args) int {
	if strings.TrimSpace(args.Query) == "" {
		fmt.Fprintln(os.Stderr, "usage: ragchat ask \"question\" [--file PATH]")
		return 2
	}

	app, err := NewApp(args, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, path := range args.Files {
		if err := attachFile(ctx, app, path); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
	}

	// Piped output streams plain text as it arrives; a terminal waits for
	// the full answer and renders it as Markdown.
	plain := !IsStdoutTTY() && !args.JSON
	printer := &deltaPrinter{out: os.Stdout}
	onDelta := func(content string) {
		if plain {
			printer.print(content)
		}
	}

	if err := app.Controller.Run(ctx, args.Query, onDelta); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	msg := app.Store.LastMessage()
	if msg == nil {
		fmt.Fprintln(os.Stderr, "error: no response")
		return 1
	}

	switch {
	case args.JSON:
		out, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		fmt.Println(string(out))

	case plain:
		fmt.Println()
		if side := formatSideData(msg); side != "" && !args.Quiet {
			fmt.Print(side)
		}

	default:
		fmt.Print(renderMarkdown(msg.Content, app.Cfg.UI.WordWrap))
		if side := formatSideData(msg); side != "" && !args.Quiet {
			fmt.Println()
			fmt.Print(side)
		}
	}

	if app.Archive != nil {
		if err := app.Archive.Save(ctx, app.Store.ID(), app.Store.Title(),
			app.Store.CreatedAt(), app.Store.History()); err != nil {
			app.Logger.Warn("failed to archive session", "error", err)
		}
	}

	if msg.Errored {
		return 1
	}
	return 0
}

// attachFile uploads a local file and registers it for the next turn.
func attachFile(ctx context.Context, app *App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ref, err := app.Client.Upload(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}
	app.Store.AddFile(ref)
	return nil
}
