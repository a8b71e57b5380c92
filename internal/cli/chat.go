// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-based REPL handler.
//
// USABILITY: Markdown-free streaming REPL for terminals where the
// full-screen TUI is unavailable (ssh without alt-screen, screen readers,
// dumb terminals).
//
// Interactive commands:
//
//	/attach <path>   Upload a document for the next question
//	/clear           Archive the session and start fresh
//	/help            Show commands
//	/quit            Exit (also Ctrl+D)
//	1..9             Pick a starter or suggested question
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/turn"
)

// =============================================================================
// INPUT READER
// =============================================================================

// InputReader provides line editing and persistent input history.
type InputReader struct {
	line        *liner.State
	historyFile string
}

// NewInputReader creates a reader with history loaded from the config dir.
func NewInputReader() *InputReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	r := &InputReader{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

// ReadInput reads one line, recording non-empty input in history.
func (r *InputReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close persists history and restores the terminal.
func (r *InputReader) Close() {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// =============================================================================
// CHAT REPL
// =============================================================================

// HandleChat runs the interactive REPL. Returns the process exit code.
func HandleChat(args Args) int {
	app, err := NewApp(args, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer app.Close()
	app.WatchConfig()

	reader := NewInputReader()
	defer reader.Close()

	ctx := context.Background()

	// Starter questions come from the backend; a failure just means none.
	if cc, err := app.Client.ChatConfig(ctx); err == nil {
		app.Store.SetChatConfig(cc)
	} else {
		app.Logger.Warn("chat config fetch failed", "error", err)
	}

	if !args.Quiet {
		fmt.Printf("%s - %s\n", app.Cfg.UI.Title, app.Cfg.UI.Description)
		fmt.Println("Type /help for commands, Ctrl+D to exit.")
		fmt.Println()
	}

	offered := app.Store.StarterQuestions()
	printOffered(offered)

	for {
		input, err := reader.ReadInput("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintln(os.Stderr, "error:", err)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// A bare digit picks one of the offered questions.
		if len(input) == 1 && input[0] >= '1' && input[0] <= '9' {
			idx := int(input[0] - '1')
			if idx < len(offered) {
				input = offered[idx]
				fmt.Println("> " + input)
			}
		}

		if strings.HasPrefix(input, "/") {
			quit, next := handleChatCommand(ctx, app, input)
			if quit {
				break
			}
			offered = next
			continue
		}

		offered = runReplTurn(app, input)
	}

	archiveSession(ctx, app)
	return 0
}

// runReplTurn executes one question, streaming the answer to stdout.
// Returns the follow-up questions to offer next.
func runReplTurn(app *App, question string) []string {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printer := &deltaPrinter{out: os.Stdout}
	err := app.Controller.Run(ctx, question, printer.print)
	fmt.Println()

	if errors.Is(err, turn.ErrBusy) {
		fmt.Println("a turn is already in progress")
		return nil
	}

	msg := app.Store.LastMessage()
	if msg == nil {
		return nil
	}
	if side := formatSideData(msg); side != "" {
		fmt.Println()
		fmt.Print(side)
	}
	return msg.SuggestedQuestions
}

// handleChatCommand dispatches a slash command. Returns whether to quit and
// the questions to offer next.
func handleChatCommand(ctx context.Context, app *App, input string) (bool, []string) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h":
		fmt.Println("  /attach <path>   Upload a document for the next question")
		fmt.Println("  /clear           Archive the session and start fresh")
		fmt.Println("  /quit            Exit")
		fmt.Println("  1..9             Pick an offered question")
		return false, nil

	case "/attach":
		if arg == "" {
			fmt.Println("usage: /attach <path>")
			return false, nil
		}
		if err := attachFile(ctx, app, arg); err != nil {
			fmt.Println("attach failed:", err)
		} else {
			fmt.Println("attached", filepath.Base(arg), "for the next question")
		}
		return false, nil

	case "/clear", "/c":
		archiveSession(ctx, app)
		chatCfg, hasCfg := app.Store.ChatConfig()
		app.Store = session.NewStore()
		if hasCfg {
			app.Store.SetChatConfig(chatCfg)
		}
		app.Controller = turn.NewController(app.Store, app.Client, app.Logger)
		fmt.Println("started a new session")
		starters := app.Store.StarterQuestions()
		printOffered(starters)
		return false, starters

	default:
		fmt.Println("unknown command", cmd, "(try /help)")
		return false, nil
	}
}

func printOffered(questions []string) {
	for i, q := range questions {
		if i >= 9 {
			break
		}
		fmt.Printf("  %d. %s\n", i+1, q)
	}
	if len(questions) > 0 {
		fmt.Println()
	}
}

func archiveSession(ctx context.Context, app *App) {
	if app.Archive == nil || app.Store.Len() == 0 {
		return
	}
	if err := app.Archive.Save(ctx, app.Store.ID(), app.Store.Title(),
		app.Store.CreatedAt(), app.Store.History()); err != nil {
		app.Logger.Warn("failed to archive session", "error", err)
	}
}
