// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{RoleSystem, "System"},
		{Role("tool"), "tool"},
	}
	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestNewMessageIDs(t *testing.T) {
	a := NewUserMessage("hello")
	b := NewUserMessage("hello")

	if !strings.HasPrefix(a.ID, "msg_") {
		t.Errorf("unexpected ID format: %q", a.ID)
	}
	if a.ID == b.ID {
		t.Error("two messages got the same ID")
	}
	if a.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("connection refused")

	if msg.Content != "Error: connection refused" {
		t.Errorf("content = %q", msg.Content)
	}
	if !msg.Errored || msg.Role != RoleAssistant {
		t.Errorf("errored=%v role=%q", msg.Errored, msg.Role)
	}
}

func TestPreviewTruncation(t *testing.T) {
	msg := NewUserMessage("こんにちは世界、これはテストです")

	if got := msg.Preview(100); got != msg.Content {
		t.Errorf("short content should pass through, got %q", got)
	}
	got := msg.Preview(8)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if len([]rune(got)) != 8 {
		t.Errorf("preview rune length = %d, want 8", len([]rune(got)))
	}
}

func TestSourceNodeAccessors(t *testing.T) {
	raw := `{"text":"Employees accrue 20 days.","score":0.8765,"metadata":{"file_name":"policy.pdf"},"url":"https://docs.example/policy"}`
	var node SourceNode
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if node.FileName() != "policy.pdf" {
		t.Errorf("FileName() = %q", node.FileName())
	}
	if node.Score() != 0.8765 {
		t.Errorf("Score() = %v", node.Score())
	}
	if node.URL() != "https://docs.example/policy" {
		t.Errorf("URL() = %q", node.URL())
	}

	// Marshal must preserve the backend payload byte for byte, including
	// fields the client never reads.
	out, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != raw {
		t.Errorf("round-trip changed payload:\n%s\n%s", raw, out)
	}
}

func TestSourceNodesFromJSON(t *testing.T) {
	data := json.RawMessage(`{"nodes":[{"score":0.9},{"score":0.5}]}`)
	nodes := SourceNodesFromJSON(data)
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	if nodes[0].Score() != 0.9 {
		t.Errorf("first score = %v", nodes[0].Score())
	}

	if got := SourceNodesFromJSON(json.RawMessage(`{"nodes":"oops"}`)); len(got) != 0 {
		t.Errorf("non-array nodes should yield empty slice, got %d", len(got))
	}
	if got := SourceNodesFromJSON(json.RawMessage(`{}`)); len(got) != 0 {
		t.Errorf("missing nodes should yield empty slice, got %d", len(got))
	}
}

func TestFileRefName(t *testing.T) {
	ref := NewFileRef(json.RawMessage(`{"id":"f1","name":"report.pdf","size":1024}`))
	if ref.Name() != "report.pdf" {
		t.Errorf("Name() = %q", ref.Name())
	}
}

func TestToolTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"title":"Searching documents"}`, "Searching documents"},
		{`{"toolCall":{"name":"query_engine"}}`, "query_engine"},
		{`{"name":"retriever"}`, "retriever"},
		{`{"type":"function"}`, "function"},
		{`{"other":"x"}`, "tool call"},
		{`{"title":"","name":"fallback"}`, "fallback"},
	}
	for _, tt := range tests {
		if got := ToolTitle(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("ToolTitle(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestHasSideData(t *testing.T) {
	msg := NewMessage(RoleAssistant, "answer")
	if msg.HasSideData() {
		t.Error("plain message should have no side data")
	}
	msg.SuggestedQuestions = []string{"What about 2024?"}
	if !msg.HasSideData() {
		t.Error("suggested questions count as side data")
	}
}
