// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/turn"
)

// Update routes Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshTranscript()

	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		if handled {
			return model, cmd
		}

	case chatConfigMsg:
		m.store.SetChatConfig(msg.cfg)
		m.refreshTranscript()

	case streamDeltaMsg:
		m.partial = string(msg)
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, m.waitForDelta()

	case turnDoneMsg:
		return m.finishTurn(msg)

	case fileUploadedMsg:
		if msg.err != nil {
			m.status = "attach failed: " + msg.err.Error()
		} else {
			m.status = "attached " + msg.name + " for the next question"
		}

	case sessionSavedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "saved to " + msg.path
		}

	case spinner.TickMsg:
		if m.streaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes key presses that should not reach the textarea.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {

	case "ctrl+c":
		if m.cancelTurn != nil {
			m.cancelTurn()
		}
		m.quitting = true
		return m, tea.Quit, true

	case "esc":
		if m.streaming && m.cancelTurn != nil {
			m.cancelTurn()
			m.status = "cancelling..."
			return m, nil, true
		}
		return m, nil, false

	case "enter":
		return m.submit()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}

	// Alt+digit picks a starter or suggested question.
	if q, ok := m.questionForKey(msg); ok {
		return m.askQuestion(q)
	}

	return m, nil, false
}

// questionForKey maps alt+1..alt+9 to the currently offered questions.
func (m *Model) questionForKey(msg tea.KeyMsg) (string, bool) {
	s := msg.String()
	if !strings.HasPrefix(s, "alt+") || len(s) != 5 || s[4] < '1' || s[4] > '9' {
		return "", false
	}
	idx := int(s[4] - '1')

	questions := m.offeredQuestions()
	if idx >= len(questions) {
		return "", false
	}
	return questions[idx], true
}

// offeredQuestions returns what the footer currently offers: starter
// questions on an empty session, otherwise the last assistant message's
// suggested follow-ups.
func (m *Model) offeredQuestions() []string {
	if m.store.Len() == 0 {
		return m.store.StarterQuestions()
	}
	if last := m.store.LastMessage(); last != nil {
		return last.SuggestedQuestions
	}
	return nil
}

// submit sends the textarea content as a question or slash command.
func (m *Model) submit() (tea.Model, tea.Cmd, bool) {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		return m, nil, true
	}

	if strings.HasPrefix(text, "/") {
		m.textarea.Reset()
		model, cmd := m.handleCommand(text)
		return model, cmd, true
	}

	return m.askQuestion(text)
}

// askQuestion starts a turn, or queues the question when one is running.
func (m *Model) askQuestion(q string) (tea.Model, tea.Cmd, bool) {
	m.textarea.Reset()
	m.status = ""

	if m.streaming {
		m.store.QueueQuestion(q)
		m.queuedLabel = q
		m.status = "queued until the current response finishes"
		return m, nil, true
	}

	m.refreshTranscript()
	return m, m.startTurn(q), true
}

// finishTurn settles streaming state and drains any queued question.
func (m *Model) finishTurn(msg turnDoneMsg) (tea.Model, tea.Cmd) {
	m.streaming = false
	m.partial = ""
	m.cancelTurn = nil
	m.queuedLabel = ""

	if msg.err != nil && !errors.Is(msg.err, turn.ErrBusy) {
		m.status = msg.err.Error()
	}

	m.refreshTranscript()
	m.viewport.GotoBottom()

	if m.store.HasQueuedQuestion() {
		return m, m.startQueuedTurn()
	}
	return m, nil
}

// layout sizes the viewport and textarea to the terminal.
func (m *Model) layout() {
	headerHeight := 2
	inputHeight := 5
	statusHeight := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(m.width - 4)
	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
}
