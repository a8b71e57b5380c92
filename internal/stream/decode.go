// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the line-delimited streaming protocol spoken by
// the RAG chat backend.
package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventKind tags the variant of a decoded stream event.
type EventKind int

const (
	// EventUnrecognized is a line matching no known prefix; skipped, not fatal.
	EventUnrecognized EventKind = iota
	// EventText is an incremental content fragment to append.
	EventText
	// EventData is an out-of-band structured payload.
	EventData
	// EventError is a protocol- or decode-level error for this turn.
	EventError
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventData:
		return "data"
	case EventError:
		return "error"
	default:
		return "unrecognized"
	}
}

// DataKind identifies the side-data variants the backend sends.
type DataKind string

const (
	DataEvents             DataKind = "events"
	DataSources            DataKind = "sources"
	DataTools              DataKind = "tools"
	DataSuggestedQuestions DataKind = "suggested_questions"
)

// Event is one decoded line of the streaming protocol. Exactly one variant
// is populated per event, selected by Kind.
type Event struct {
	Kind EventKind

	// Text is the content fragment (EventText).
	Text string

	// DataKind and Data carry the side-data payload (EventData). Data is nil
	// for a structurally valid but empty payload; consumers ignore those.
	DataKind DataKind
	Data     json.RawMessage

	// Err is the error description (EventError).
	Err string
}

// Line prefixes of the streaming protocol.
const (
	prefixText  = "0:"
	prefixData  = "8:"
	prefixError = "3:"
)

// =============================================================================
// DECODER
// =============================================================================

// Decode parses one raw line of the streaming protocol into an Event.
//
// Decode is deterministic and total: every input maps to exactly one Event
// and no input panics. Unknown prefixes (including blank lines) decode to
// EventUnrecognized; a known prefix whose JSON payload fails to parse decodes
// to an EventError so the failure is visible rather than silently dropped.
func Decode(line string) Event {
	switch {
	case strings.HasPrefix(line, prefixText):
		var text string
		if err := json.Unmarshal([]byte(line[len(prefixText):]), &text); err != nil {
			return Event{Kind: EventError, Err: "failed to parse text chunk"}
		}
		return Event{Kind: EventText, Text: text}

	case strings.HasPrefix(line, prefixData):
		return decodeData(line[len(prefixData):])

	case strings.HasPrefix(line, prefixError):
		payload := line[len(prefixError):]
		if !gjson.Valid(payload) {
			return Event{Kind: EventError, Err: "failed to parse error chunk"}
		}
		return Event{Kind: EventError, Err: errorString(payload)}

	default:
		return Event{Kind: EventUnrecognized}
	}
}

// decodeData parses an 8: payload: a JSON array whose first element is an
// object carrying "type" and "data". An empty array or a malformed element
// yields an EventData with nil payload, which aggregation ignores.
func decodeData(payload string) Event {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return Event{Kind: EventError, Err: "failed to parse data chunk"}
	}
	if len(items) == 0 {
		return Event{Kind: EventData}
	}

	first := gjson.ParseBytes(items[0])
	if !first.IsObject() {
		return Event{Kind: EventData}
	}

	kind := DataKind(first.Get("type").String())
	switch kind {
	case DataEvents, DataSources, DataTools, DataSuggestedQuestions:
	default:
		return Event{Kind: EventData}
	}

	data := first.Get("data")
	if !data.Exists() {
		return Event{Kind: EventData, DataKind: kind}
	}
	return Event{Kind: EventData, DataKind: kind, Data: json.RawMessage(data.Raw)}
}

// errorString renders a JSON error payload as display text. A JSON string
// is unquoted; any other valid value is carried in its literal form.
func errorString(payload string) string {
	var s string
	if err := json.Unmarshal([]byte(payload), &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal([]byte(payload), &v); err == nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSpace(payload)
}
