// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and files.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in the conversation history.
//
// A Message is immutable once appended to the session store: corrections are
// expressed by appending a new message, never by editing one in place.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Side-data collected while streaming (assistant messages only).
	// Tools holds tool-call records in arrival order; Sources holds the
	// retrieved document chunks the backend used; SuggestedQuestions holds
	// follow-up prompts proposed by the backend.
	Tools              []json.RawMessage `json:"tools,omitempty"`
	Sources            []SourceNode      `json:"sources,omitempty"`
	SuggestedQuestions []string          `json:"suggested_questions,omitempty"`

	// Errored is set when this message was produced by a failed turn and
	// Content carries an "Error: ..." description.
	Errored bool `json:"errored,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewErrorMessage creates an assistant message carrying an error description.
// Every failed turn terminates with exactly one of these in the history.
func NewErrorMessage(description string) *Message {
	msg := NewMessage(RoleAssistant, "Error: "+description)
	msg.Errored = true
	return msg
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// HasSideData returns true if the message carries tools, sources or
// suggested questions in addition to plain content.
func (m *Message) HasSideData() bool {
	return len(m.Tools) > 0 || len(m.Sources) > 0 || len(m.SuggestedQuestions) > 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
