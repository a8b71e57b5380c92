// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the line-delimited streaming protocol spoken by
// the RAG chat backend.
package stream

import (
	"strings"
	"testing"
)

// =============================================================================
// DECODER TESTS
// =============================================================================

func TestDecodeTextDelta(t *testing.T) {
	ev := Decode(`0:"hello"`)

	if ev.Kind != EventText {
		t.Fatalf("Kind = %v, want text", ev.Kind)
	}
	if ev.Text != "hello" {
		t.Errorf("Text = %q, want %q", ev.Text, "hello")
	}
}

func TestDecodeTextDeltaPreservesWhitespace(t *testing.T) {
	ev := Decode(`0:" there\n"`)

	if ev.Kind != EventText {
		t.Fatalf("Kind = %v, want text", ev.Kind)
	}
	if ev.Text != " there\n" {
		t.Errorf("Text = %q, want %q", ev.Text, " there\n")
	}
}

func TestDecodeSources(t *testing.T) {
	ev := Decode(`8:[{"type":"sources","data":{"nodes":[{"metadata":{"file_name":"a.pdf"},"score":0.9}]}}]`)

	if ev.Kind != EventData {
		t.Fatalf("Kind = %v, want data", ev.Kind)
	}
	if ev.DataKind != DataSources {
		t.Errorf("DataKind = %q, want sources", ev.DataKind)
	}
	if !strings.Contains(string(ev.Data), `"a.pdf"`) {
		t.Errorf("Data = %s, want nodes payload", ev.Data)
	}
}

func TestDecodeStreamError(t *testing.T) {
	ev := Decode(`3:"boom"`)

	if ev.Kind != EventError {
		t.Fatalf("Kind = %v, want error", ev.Kind)
	}
	if ev.Err != "boom" {
		t.Errorf("Err = %q, want %q", ev.Err, "boom")
	}
}

func TestDecodeUnknownPrefix(t *testing.T) {
	ev := Decode(`9:xyz`)

	if ev.Kind != EventUnrecognized {
		t.Errorf("Kind = %v, want unrecognized", ev.Kind)
	}
}

func TestDecodeMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"text not json", `0:{not json`, "failed to parse text chunk"},
		{"text bare word", `0:hello`, "failed to parse text chunk"},
		{"data not json", `8:{not json`, "failed to parse data chunk"},
		{"data not array", `8:{"type":"tools"}`, "failed to parse data chunk"},
		{"error not json", `3:{not json`, "failed to parse error chunk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Decode(tt.line)
			if ev.Kind != EventError {
				t.Fatalf("Kind = %v, want error", ev.Kind)
			}
			if ev.Err != tt.want {
				t.Errorf("Err = %q, want %q", ev.Err, tt.want)
			}
		})
	}
}

func TestDecodeEmptyDataArray(t *testing.T) {
	ev := Decode(`8:[]`)

	if ev.Kind != EventData {
		t.Fatalf("Kind = %v, want data", ev.Kind)
	}
	if ev.Data != nil {
		t.Errorf("Data = %s, want nil payload", ev.Data)
	}
}

func TestDecodeDataMalformedElement(t *testing.T) {
	// A first element that is not an object decodes to a nil payload, not an error.
	ev := Decode(`8:["just a string"]`)

	if ev.Kind != EventData {
		t.Fatalf("Kind = %v, want data", ev.Kind)
	}
	if ev.Data != nil {
		t.Errorf("Data = %s, want nil payload", ev.Data)
	}
}

func TestDecodeDataUnknownType(t *testing.T) {
	ev := Decode(`8:[{"type":"telemetry","data":{}}]`)

	if ev.Kind != EventData {
		t.Fatalf("Kind = %v, want data", ev.Kind)
	}
	if ev.Data != nil {
		t.Errorf("unknown side-data type should carry no payload, got %s", ev.Data)
	}
}

func TestDecodeErrorObjectPayload(t *testing.T) {
	// Non-string error values are still surfaced as text.
	ev := Decode(`3:42`)

	if ev.Kind != EventError {
		t.Fatalf("Kind = %v, want error", ev.Kind)
	}
	if ev.Err != "42" {
		t.Errorf("Err = %q, want %q", ev.Err, "42")
	}
}

// TestDecodeTotality is the decoder's safety net: any input yields exactly
// one event and never panics.
func TestDecodeTotality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"0:",
		"8:",
		"3:",
		"0",
		":",
		`0:"unterminated`,
		"8:[{]",
		"\x00\xff",
		strings.Repeat("0:", 1000),
		`0:"` + strings.Repeat("a", 100000) + `"`,
	}

	for _, in := range inputs {
		ev := Decode(in)
		switch ev.Kind {
		case EventText, EventData, EventError, EventUnrecognized:
		default:
			t.Errorf("Decode(%q) produced invalid kind %v", in, ev.Kind)
		}
	}
}
