// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and files.
package model

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Side-data payloads are schemaless JSON produced by the backend. Rather than
// forcing them into structs (and silently dropping fields the backend adds
// later), they are kept as raw bytes with gjson accessors for the handful of
// fields the client actually inspects.

// =============================================================================
// SOURCE NODE
// =============================================================================

// SourceNode is one retrieved document chunk from the backend's source set.
type SourceNode struct {
	Raw json.RawMessage
}

// MarshalJSON emits the backend JSON verbatim.
func (n SourceNode) MarshalJSON() ([]byte, error) {
	if len(n.Raw) == 0 {
		return []byte("null"), nil
	}
	return n.Raw, nil
}

// UnmarshalJSON keeps the backend JSON verbatim.
func (n *SourceNode) UnmarshalJSON(data []byte) error {
	n.Raw = append(n.Raw[:0], data...)
	return nil
}

// FileName returns metadata.file_name, or an empty string when absent.
func (n SourceNode) FileName() string {
	return gjson.GetBytes(n.Raw, "metadata.file_name").String()
}

// Score returns the retrieval relevance score, or 0 when absent.
func (n SourceNode) Score() float64 {
	return gjson.GetBytes(n.Raw, "score").Float()
}

// Text returns the chunk text, or an empty string when absent.
func (n SourceNode) Text() string {
	return gjson.GetBytes(n.Raw, "text").String()
}

// URL returns the source URL, or an empty string when absent.
func (n SourceNode) URL() string {
	return gjson.GetBytes(n.Raw, "url").String()
}

// SourceNodesFromJSON extracts the "nodes" array from a sources payload.
// Returns an empty slice when the field is absent or not an array; the
// backend resends the complete source set each time so callers replace,
// never append.
func SourceNodesFromJSON(data json.RawMessage) []SourceNode {
	nodes := gjson.GetBytes(data, "nodes")
	if !nodes.IsArray() {
		return []SourceNode{}
	}
	out := make([]SourceNode, 0, len(nodes.Array()))
	for _, n := range nodes.Array() {
		out = append(out, SourceNode{Raw: json.RawMessage(n.Raw)})
	}
	return out
}

// =============================================================================
// FILE REFERENCE
// =============================================================================

// FileRef is an opaque backend-assigned reference to an uploaded document.
// It is carried verbatim in outbound message annotations; only the display
// name is ever read client-side.
type FileRef struct {
	Raw json.RawMessage
}

// NewFileRef wraps raw backend JSON as a FileRef.
func NewFileRef(raw json.RawMessage) FileRef {
	return FileRef{Raw: raw}
}

// Name returns the display name of the uploaded file.
func (f FileRef) Name() string {
	return gjson.GetBytes(f.Raw, "name").String()
}

// MarshalJSON emits the backend JSON verbatim.
func (f FileRef) MarshalJSON() ([]byte, error) {
	if len(f.Raw) == 0 {
		return []byte("null"), nil
	}
	return f.Raw, nil
}

// UnmarshalJSON keeps the backend JSON verbatim.
func (f *FileRef) UnmarshalJSON(data []byte) error {
	f.Raw = append(f.Raw[:0], data...)
	return nil
}

// =============================================================================
// TOOL RECORD ACCESS
// =============================================================================

// ToolTitle extracts a human-readable title from a tool-call record.
// Tool records are free-form; this probes the common fields in order and
// falls back to "tool call" so render layers always have something to show.
func ToolTitle(raw json.RawMessage) string {
	for _, path := range []string{"title", "toolCall.name", "name", "type"} {
		if v := gjson.GetBytes(raw, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return "tool call"
}
