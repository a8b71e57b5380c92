// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/stream"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// chatConfigMsg delivers the backend chat configuration (starter questions).
type chatConfigMsg struct {
	cfg session.ChatConfig
}

// streamDeltaMsg carries the accumulated assistant text of the in-flight turn.
type streamDeltaMsg string

// turnDoneMsg signals that the in-flight turn finished. err is non-nil only
// for ErrBusy; transport and stream failures surface as error messages in
// the history instead.
type turnDoneMsg struct {
	err error
}

// fileUploadedMsg reports the outcome of an /attach upload.
type fileUploadedMsg struct {
	name string
	err  error
}

// sessionSavedMsg reports the outcome of a /save export.
type sessionSavedMsg struct {
	path string
	err  error
}

// =============================================================================
// TURN EXECUTION
// =============================================================================

// startTurn launches a turn for the given question.
func (m *Model) startTurn(question string) tea.Cmd {
	return m.launch(func(ctx context.Context, onDelta stream.DeltaFunc) error {
		return m.controller.Run(ctx, question, onDelta)
	})
}

// startQueuedTurn drains the queued question through the controller.
func (m *Model) startQueuedTurn() tea.Cmd {
	return m.launch(func(ctx context.Context, onDelta stream.DeltaFunc) error {
		_, err := m.controller.RunQueued(ctx, onDelta)
		return err
	})
}

// launch runs a turn on a background goroutine and returns the command that
// waits for its first delta. Deltas are funneled through deltaCh; doneCh
// resolves once the turn has fully settled.
func (m *Model) launch(run func(ctx context.Context, onDelta stream.DeltaFunc) error) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelTurn = cancel
	m.deltaCh = make(chan string, 64)
	m.doneCh = make(chan error, 1)
	m.streaming = true
	m.partial = ""

	deltas := m.deltaCh
	done := m.doneCh

	go func() {
		err := run(ctx, func(content string) {
			select {
			case deltas <- content:
			case <-ctx.Done():
			}
		})
		close(deltas)
		done <- err
	}()

	return tea.Batch(m.waitForDelta(), m.spinner.Tick)
}

// waitForDelta blocks for the next streamed delta, or for turn completion
// once the delta channel closes.
func (m *Model) waitForDelta() tea.Cmd {
	deltas := m.deltaCh
	done := m.doneCh
	return func() tea.Msg {
		if content, ok := <-deltas; ok {
			return streamDeltaMsg(content)
		}
		return turnDoneMsg{err: <-done}
	}
}
