// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the line-delimited streaming protocol spoken by
// the RAG chat backend.
package stream

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/model"
)

// =============================================================================
// PENDING MESSAGE
// =============================================================================

// DeltaFunc receives the full accumulated content after each text delta or
// stream error, so callers can render incrementally. It runs synchronously
// between stream reads and must not block.
type DeltaFunc func(content string)

// Pending accumulates the events of one assistant turn. It is created at
// turn start, mutated only through Consume, finalized exactly once, then
// discarded. Not safe for concurrent use; the turn controller guarantees a
// single writer.
//
// Accumulation semantics differ by side-data kind: tool records append in
// arrival order, while sources and suggested questions are last-write-wins
// because the backend resends the complete set each time.
type Pending struct {
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	content            strings.Builder
	tools              []json.RawMessage
	sources            []model.SourceNode
	suggestedQuestions []string
	errored            bool
	finalized          bool
}

// NewPending creates an empty accumulator for one turn.
func NewPending() *Pending {
	return &Pending{}
}

// Consume folds one decoded event into the accumulator. Events must be fed
// in arrival order; arrival order is the total order. onDelta may be nil.
func (p *Pending) Consume(ev Event, onDelta DeltaFunc) {
	switch ev.Kind {
	case EventText:
		p.content.WriteString(ev.Text)
		p.notify(onDelta)

	case EventData:
		p.consumeData(ev)

	case EventError:
		// An error replaces the content but does not end the turn: the
		// backend may still deliver side-data after it.
		p.content.Reset()
		p.content.WriteString("Error: " + ev.Err)
		p.errored = true
		p.notify(onDelta)

	case EventUnrecognized:
		// Skipped.
	}
}

// consumeData applies one side-data payload. Nil payloads (empty or
// malformed 8: arrays) are ignored silently.
func (p *Pending) consumeData(ev Event) {
	if ev.Data == nil {
		return
	}

	switch ev.DataKind {
	case DataEvents, DataTools:
		// Both kinds are tool-call records; ordering among them is arrival order.
		p.tools = append(p.tools, ev.Data)

	case DataSources:
		p.sources = model.SourceNodesFromJSON(ev.Data)

	case DataSuggestedQuestions:
		var questions []string
		if err := json.Unmarshal(ev.Data, &questions); err == nil {
			p.suggestedQuestions = questions
		}
	}
}

// Content returns the accumulated content so far.
func (p *Pending) Content() string {
	return p.content.String()
}

// Errored reports whether a stream error was consumed.
func (p *Pending) Errored() bool {
	return p.errored
}

// Finalize copies the accumulated fields into an immutable assistant
// message. Must be called exactly once, after the event source is exhausted.
func (p *Pending) Finalize() *model.Message {
	if p.finalized {
		return nil
	}
	p.finalized = true

	msg := model.NewMessage(model.RoleAssistant, p.content.String())
	msg.Tools = p.tools
	msg.Sources = p.sources
	msg.SuggestedQuestions = p.suggestedQuestions
	msg.Errored = p.errored
	return msg
}

func (p *Pending) notify(onDelta DeltaFunc) {
	if onDelta != nil {
		onDelta(p.content.String())
	}
}
