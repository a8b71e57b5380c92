// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the per-session conversation state.
package session

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/ragchat-tui/internal/model"
)

// =============================================================================
// STORE CREATION TESTS
// =============================================================================

func TestNewStore(t *testing.T) {
	s := NewStore()

	if !strings.HasPrefix(s.ID(), "sess_") {
		t.Errorf("ID should start with 'sess_', got %q", s.ID())
	}
	if s.CreatedAt().IsZero() {
		t.Error("CreatedAt should not be zero")
	}
	if s.Len() != 0 {
		t.Errorf("new store Len = %d, want 0", s.Len())
	}
	if s.IsProcessing() {
		t.Error("new store should not be processing")
	}
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestAppendAndHistory(t *testing.T) {
	s := NewStore()

	s.Append(model.NewUserMessage("hi"))
	s.Append(model.NewMessage(model.RoleAssistant, "hello"))

	hist := s.History()
	if len(hist) != 2 {
		t.Fatalf("History len = %d, want 2", len(hist))
	}
	if hist[0].Role != model.RoleUser || hist[1].Role != model.RoleAssistant {
		t.Error("history order should be insertion order")
	}
}

func TestHistoryIsDefensiveCopy(t *testing.T) {
	s := NewStore()
	s.Append(model.NewUserMessage("hi"))

	hist := s.History()
	hist[0] = nil

	if s.History()[0] == nil {
		t.Error("mutating the returned slice must not affect the store")
	}
}

func TestHistoryPruning(t *testing.T) {
	s := NewStore()
	for i := 0; i < MaxMessages+10; i++ {
		s.Append(model.NewUserMessage("m"))
	}
	if s.Len() != MaxMessages {
		t.Errorf("Len = %d, want %d after pruning", s.Len(), MaxMessages)
	}
}

func TestTitle(t *testing.T) {
	s := NewStore()
	if s.Title() != "New Conversation" {
		t.Errorf("empty session Title = %q", s.Title())
	}

	s.Append(model.NewUserMessage("What is retrieval-augmented generation and why does it matter?"))
	title := s.Title()
	if !strings.HasPrefix(title, "What is retrieval") {
		t.Errorf("Title = %q, want prefix of first user message", title)
	}
	if len([]rune(title)) > 50 {
		t.Errorf("Title should be truncated to 50 runes, got %d", len([]rune(title)))
	}
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestTakeFilesIsAtomic(t *testing.T) {
	s := NewStore()
	s.AddFile(model.NewFileRef(json.RawMessage(`{"name":"a.pdf"}`)))

	files := s.TakeFiles()
	if len(files) != 1 || files[0].Name() != "a.pdf" {
		t.Fatalf("TakeFiles = %v, want one a.pdf", files)
	}
	if len(s.Files()) != 0 {
		t.Error("TakeFiles must empty the pending list")
	}
	if files = s.TakeFiles(); len(files) != 0 {
		t.Error("second TakeFiles should return nothing")
	}
}

// =============================================================================
// PROCESSING FLAG TESTS
// =============================================================================

func TestBeginProcessing(t *testing.T) {
	s := NewStore()

	if !s.BeginProcessing() {
		t.Fatal("first BeginProcessing should succeed")
	}
	if s.BeginProcessing() {
		t.Error("second BeginProcessing should fail while in flight")
	}

	s.SetProcessing(false)
	if !s.BeginProcessing() {
		t.Error("BeginProcessing should succeed after release")
	}
}

func TestBeginProcessingConcurrent(t *testing.T) {
	s := NewStore()

	const workers = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.BeginProcessing() {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("%d goroutines won BeginProcessing, want exactly 1", count)
	}
}

// =============================================================================
// QUEUED QUESTION TESTS
// =============================================================================

func TestQueuedQuestionOverwrites(t *testing.T) {
	s := NewStore()

	if _, ok := s.TakeQueuedQuestion(); ok {
		t.Error("empty store should have no queued question")
	}

	s.QueueQuestion("first?")
	s.QueueQuestion("second?")

	q, ok := s.TakeQueuedQuestion()
	if !ok || q != "second?" {
		t.Errorf("TakeQueuedQuestion = %q, %v; want second?, true", q, ok)
	}
	if _, ok := s.TakeQueuedQuestion(); ok {
		t.Error("queued question must be cleared after take")
	}
}

// =============================================================================
// CHAT CONFIG TESTS
// =============================================================================

func TestChatConfigCache(t *testing.T) {
	s := NewStore()

	if _, ok := s.ChatConfig(); ok {
		t.Error("chat config should be unset initially")
	}
	if s.StarterQuestions() != nil {
		t.Error("StarterQuestions should be nil before fetch")
	}

	s.SetChatConfig(ChatConfig{StarterQuestions: []string{"What is in my documents?"}})

	cfg, ok := s.ChatConfig()
	if !ok || len(cfg.StarterQuestions) != 1 {
		t.Errorf("ChatConfig = %+v, %v", cfg, ok)
	}
}
