// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the per-session conversation state.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/ragchat-tui/internal/model"
)

// MaxMessages caps the retained history. When exceeded, the oldest messages
// are pruned to prevent unbounded memory growth in long-lived sessions.
const MaxMessages = 1000

// =============================================================================
// CHAT CONFIG
// =============================================================================

// ChatConfig is the backend-provided chat configuration, fetched once per
// session and cached.
type ChatConfig struct {
	StarterQuestions []string `json:"starterQuestions"`
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Store is the ordered log of one session's messages plus ancillary state.
// All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	// Identity
	id        string
	createdAt time.Time
	updatedAt time.Time

	// Conversation state
	messages       []*model.Message
	files          []model.FileRef
	processing     bool
	queuedQuestion string
	hasQueued      bool

	// Cached backend configuration
	chatConfig    ChatConfig
	hasChatConfig bool
}

// NewStore creates an empty session store with a generated session ID.
func NewStore() *Store {
	now := time.Now()
	return &Store{
		id:        "sess_" + uuid.NewString(),
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Store) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// CreatedAt returns when the session started.
func (s *Store) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}

// UpdatedAt returns the time of the last mutation.
func (s *Store) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// =============================================================================
// HISTORY
// =============================================================================

// Append adds a message to the history. Insertion order is conversation
// order. Only the turn controller appends; messages are immutable once in.
func (s *Store) Append(msg *model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	if len(s.messages) > MaxMessages {
		s.messages = s.messages[len(s.messages)-MaxMessages:]
	}
	s.updatedAt = time.Now()
}

// History returns a defensive copy of the message log so callers cannot
// mutate internal state. The pointed-to messages are immutable by contract.
func (s *Store) History() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the history.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// LastMessage returns the most recent message, or nil when the history is
// empty.
func (s *Store) LastMessage() *model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return nil
	}
	return s.messages[len(s.messages)-1]
}

// Title derives a session title from the first user message.
func (s *Store) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range s.messages {
		if msg.Role == model.RoleUser {
			return msg.Preview(50)
		}
	}
	return "New Conversation"
}

// =============================================================================
// PENDING FILES
// =============================================================================

// AddFile records an uploaded file to attach to the next outbound message.
func (s *Store) AddFile(ref model.FileRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, ref)
	s.updatedAt = time.Now()
}

// Files returns a defensive copy of the pending file list.
func (s *Store) Files() []model.FileRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FileRef, len(s.files))
	copy(out, s.files)
	return out
}

// TakeFiles returns the pending files and empties the list in one step, so
// a payload builder cannot lose files added concurrently between a read and
// a clear.
func (s *Store) TakeFiles() []model.FileRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.files
	s.files = nil
	return out
}

// =============================================================================
// PROCESSING FLAG
// =============================================================================

// SetProcessing marks the start or end of a turn. At most one turn is in
// flight at a time; the turn controller refuses to start another while the
// flag is set.
func (s *Store) SetProcessing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = v
}

// IsProcessing reports whether a turn is in flight.
func (s *Store) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// BeginProcessing atomically sets the processing flag, reporting false when
// a turn is already in flight. This is the check-and-set the busy rejection
// rests on; a separate IsProcessing check then SetProcessing would race.
func (s *Store) BeginProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return false
	}
	s.processing = true
	return true
}

// =============================================================================
// QUEUED QUESTION
// =============================================================================

// QueueQuestion records a follow-up question selected by the user. At most
// one question is queued; a second selection before consumption overwrites
// the first.
func (s *Store) QueueQuestion(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queuedQuestion = q
	s.hasQueued = true
}

// TakeQueuedQuestion reads and clears the queued question atomically.
func (s *Store) TakeQueuedQuestion() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasQueued {
		return "", false
	}
	q := s.queuedQuestion
	s.queuedQuestion = ""
	s.hasQueued = false
	return q, true
}

// HasQueuedQuestion reports whether a follow-up question is waiting.
func (s *Store) HasQueuedQuestion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasQueued
}

// =============================================================================
// CHAT CONFIG CACHE
// =============================================================================

// SetChatConfig caches the backend chat configuration.
func (s *Store) SetChatConfig(cfg ChatConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatConfig = cfg
	s.hasChatConfig = true
}

// ChatConfig returns the cached configuration and whether one was set.
func (s *Store) ChatConfig() (ChatConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatConfig, s.hasChatConfig
}

// StarterQuestions returns the cached starter questions, or nil when the
// configuration was never fetched.
func (s *Store) StarterQuestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatConfig.StarterQuestions
}
