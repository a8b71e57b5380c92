// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/storage"
	"github.com/jeranaias/ragchat-tui/internal/turn"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleCommand dispatches a slash command typed into the input.
func (m *Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/attach":
		if arg == "" {
			m.status = "usage: /attach <path>"
			return m, nil
		}
		return m, m.attachFile(arg)

	case "/save":
		return m, m.saveTranscript()

	case "/clear":
		m.clearSession()
		return m, nil

	case "/help":
		m.status = "/attach <path>  /save  /clear  /quit  (alt+1..9 picks a question, esc cancels)"
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	default:
		m.status = "unknown command " + cmd + " (try /help)"
		return m, nil
	}
}

// attachFile uploads a local file and registers it for the next turn.
func (m *Model) attachFile(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return fileUploadedMsg{name: path, err: err}
		}

		name := filepath.Base(path)

		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout())
		defer cancel()

		ref, err := m.client.Upload(ctx, name, data)
		if err != nil {
			return fileUploadedMsg{name: name, err: err}
		}

		m.store.AddFile(ref)
		return fileUploadedMsg{name: name}
	}
}

// saveTranscript exports the session as Markdown under the config directory.
func (m *Model) saveTranscript() tea.Cmd {
	return func() tea.Msg {
		if m.store.Len() == 0 {
			return sessionSavedMsg{err: fmt.Errorf("nothing to save")}
		}

		dir, err := config.ConfigDir()
		if err != nil {
			return sessionSavedMsg{err: err}
		}
		path := filepath.Join(dir, "exports", m.store.ID()+".md")

		meta := storage.SessionMeta{
			ID:        m.store.ID(),
			Title:     m.store.Title(),
			CreatedAt: m.store.CreatedAt(),
			UpdatedAt: m.store.UpdatedAt(),
		}
		out := storage.ExportMarkdown(meta, m.store.History())

		if err := util.AtomicWriteFile(path, []byte(out), 0600); err != nil {
			return sessionSavedMsg{err: err}
		}
		return sessionSavedMsg{path: path}
	}
}

// clearSession archives the current conversation and starts a fresh one.
func (m *Model) clearSession() {
	if m.streaming {
		m.status = "cannot clear while a response is streaming"
		return
	}

	if m.archive != nil && m.store.Len() > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout())
		defer cancel()
		if err := m.archive.Save(ctx, m.store.ID(), m.store.Title(), m.store.CreatedAt(), m.store.History()); err != nil {
			m.logger.Warn("failed to archive session", "error", err)
		}
	}

	// Carry the cached starter questions into the fresh session.
	chatCfg, hasCfg := m.store.ChatConfig()
	m.store = session.NewStore()
	if hasCfg {
		m.store.SetChatConfig(chatCfg)
	}
	m.controller = turn.NewController(m.store, m.client, m.logger)

	m.status = "started a new session"
	m.refreshTranscript()
}
