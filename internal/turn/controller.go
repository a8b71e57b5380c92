// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn orchestrates one request/response cycle against the backend.
package turn

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/stream"
)

// ErrBusy is returned when a turn is requested while one is in flight. The
// UI disables input during processing, but the controller refuses
// defensively regardless.
var ErrBusy = errors.New("a turn is already in progress")

// Backend is the transport surface the controller consumes. The concrete
// implementation is backend.Client; tests inject fakes.
type Backend interface {
	ChatStream(ctx context.Context, req backend.ChatRequest) (io.ReadCloser, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives chat turns for one session.
type Controller struct {
	store   *session.Store
	backend Backend
	logger  *slog.Logger
}

// NewController creates a turn controller bound to a session store and a
// backend transport.
func NewController(store *session.Store, b Backend, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:   store,
		backend: b,
		logger:  logger.With("component", "turn"),
	}
}

// Run executes one full turn for userText.
//
// The turn appends the user message, streams the assistant response through
// onDelta, and commits exactly one assistant message — a synthesized error
// message when the transport fails. The processing flag is released on every
// path. Cancelling ctx closes the underlying stream; the turn then finishes
// through the error path with the flag released all the same.
func (c *Controller) Run(ctx context.Context, userText string, onDelta stream.DeltaFunc) error {
	if !c.store.BeginProcessing() {
		return ErrBusy
	}
	defer c.store.SetProcessing(false)

	c.store.Append(model.NewUserMessage(userText))

	// Capture and clear pending files in one step; they attach to the
	// just-appended message only.
	files := c.store.TakeFiles()
	req := backend.BuildChatRequest(c.store.History(), files)

	c.logger.Debug("turn started", "session", c.store.ID(), "history", len(req.Messages), "files", len(files))

	body, err := c.backend.ChatStream(ctx, req)
	if err != nil {
		c.failTurn(err, onDelta)
		return nil
	}
	defer body.Close()

	pending := stream.NewPending()
	if err := stream.NewReader(body).Process(ctx, pending, onDelta); err != nil {
		// The stream dropped mid-turn. Partial content is discarded in
		// favor of a visible error, like any other transport failure.
		c.failTurn(err, onDelta)
		return nil
	}

	msg := pending.Finalize()
	c.store.Append(msg)
	c.logger.Debug("turn complete", "session", c.store.ID(),
		"content_len", len(msg.Content), "tools", len(msg.Tools),
		"sources", len(msg.Sources), "errored", msg.Errored)
	return nil
}

// RunQueued executes the queued follow-up question, if any. It is called by
// the driving loop between render passes; selecting a suggested question
// only queues, so a turn never starts inside a render callback.
func (c *Controller) RunQueued(ctx context.Context, onDelta stream.DeltaFunc) (bool, error) {
	q, ok := c.store.TakeQueuedQuestion()
	if !ok {
		return false, nil
	}
	return true, c.Run(ctx, q, onDelta)
}

// failTurn converts a transport failure into the turn's single assistant
// message. This is the sole recovery path: the error surfaces in-band in
// the conversation and is never propagated further up.
func (c *Controller) failTurn(cause error, onDelta stream.DeltaFunc) {
	c.logger.Warn("turn failed", "session", c.store.ID(), "error", cause)

	msg := model.NewErrorMessage(cause.Error())
	if onDelta != nil {
		onDelta(msg.Content)
	}
	c.store.Append(msg)
}
