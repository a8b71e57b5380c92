// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/logging"
	"github.com/jeranaias/ragchat-tui/internal/model"
)

func openTestArchive(t *testing.T, maxSessions int) *Archive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := Open(path, maxSessions, logging.Discard())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleMessages() []*model.Message {
	user := model.NewUserMessage("What is in the handbook?")
	assistant := model.NewMessage(model.RoleAssistant, "The handbook covers onboarding.")
	assistant.Tools = []json.RawMessage{json.RawMessage(`{"title":"query_engine"}`)}
	assistant.Sources = model.SourceNodesFromJSON(json.RawMessage(
		`{"nodes":[{"text":"Onboarding...","score":0.91,"metadata":{"file_name":"handbook.pdf"}}]}`))
	assistant.SuggestedQuestions = []string{"What about benefits?"}
	return []*model.Message{user, assistant}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	a := openTestArchive(t, 0)
	ctx := context.Background()

	msgs := sampleMessages()
	if err := a.Save(ctx, "sess_1", "Handbook chat", time.Now(), msgs); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := a.Load(ctx, "sess_1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded))
	}

	if loaded[0].Role != model.RoleUser || loaded[0].Content != "What is in the handbook?" {
		t.Errorf("user message mismatch: %+v", loaded[0])
	}

	assistant := loaded[1]
	if assistant.Role != model.RoleAssistant {
		t.Errorf("role = %q", assistant.Role)
	}
	if len(assistant.Tools) != 1 || model.ToolTitle(assistant.Tools[0]) != "query_engine" {
		t.Errorf("tools not preserved: %v", assistant.Tools)
	}
	if len(assistant.Sources) != 1 || assistant.Sources[0].FileName() != "handbook.pdf" {
		t.Errorf("sources not preserved: %v", assistant.Sources)
	}
	if len(assistant.SuggestedQuestions) != 1 || assistant.SuggestedQuestions[0] != "What about benefits?" {
		t.Errorf("suggested questions not preserved: %v", assistant.SuggestedQuestions)
	}
}

func TestSaveEmptySessionIsSkipped(t *testing.T) {
	a := openTestArchive(t, 0)
	ctx := context.Background()

	if err := a.Save(ctx, "sess_empty", "Empty", time.Now(), nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	metas, err := a.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("expected empty archive, got %d sessions", len(metas))
	}
}

func TestSaveReplacesExistingSession(t *testing.T) {
	a := openTestArchive(t, 0)
	ctx := context.Background()

	if err := a.Save(ctx, "sess_1", "First", time.Now(), sampleMessages()); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	longer := append(sampleMessages(), model.NewUserMessage("Follow up"))
	if err := a.Save(ctx, "sess_1", "First", time.Now(), longer); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := a.Load(ctx, "sess_1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Errorf("expected 3 messages after resave, got %d", len(loaded))
	}

	metas, _ := a.List(ctx)
	if len(metas) != 1 {
		t.Errorf("expected 1 session, got %d", len(metas))
	}
}

func TestListOrdersByRecency(t *testing.T) {
	a := openTestArchive(t, 0)
	ctx := context.Background()

	a.Save(ctx, "sess_old", "Old", time.Now().Add(-time.Hour), sampleMessages())
	time.Sleep(1100 * time.Millisecond) // updated_at has second resolution
	a.Save(ctx, "sess_new", "New", time.Now(), sampleMessages())

	metas, err := a.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(metas))
	}
	if metas[0].ID != "sess_new" {
		t.Errorf("expected sess_new first, got %q", metas[0].ID)
	}
	if metas[0].MessageCount != 2 {
		t.Errorf("message count = %d, want 2", metas[0].MessageCount)
	}
}

func TestMaxSessionsPrunesOldest(t *testing.T) {
	a := openTestArchive(t, 2)
	ctx := context.Background()

	for i, id := range []string{"sess_a", "sess_b", "sess_c"} {
		if err := a.Save(ctx, id, "Session", time.Now(), sampleMessages()); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
		time.Sleep(1100 * time.Millisecond)
	}

	metas, err := a.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 sessions after pruning, got %d", len(metas))
	}
	for _, m := range metas {
		if m.ID == "sess_a" {
			t.Error("oldest session should have been pruned")
		}
	}
}

func TestLoadMissingSession(t *testing.T) {
	a := openTestArchive(t, 0)

	_, err := a.Load(context.Background(), "sess_missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	a := openTestArchive(t, 0)
	ctx := context.Background()

	a.Save(ctx, "sess_1", "Doomed", time.Now(), sampleMessages())

	if err := a.Delete(ctx, "sess_1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := a.Load(ctx, "sess_1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := a.Delete(ctx, "sess_1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double delete should report ErrSessionNotFound, got %v", err)
	}
}

func TestSearchMatchesTitleAndContent(t *testing.T) {
	a := openTestArchive(t, 0)
	ctx := context.Background()

	a.Save(ctx, "sess_1", "Benefits chat", time.Now(), sampleMessages())
	a.Save(ctx, "sess_2", "Other", time.Now(),
		[]*model.Message{model.NewUserMessage("Tell me about vacation policy")})

	byTitle, err := a.Search(ctx, "Benefits")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].ID != "sess_1" {
		t.Errorf("title search: %+v", byTitle)
	}

	byContent, err := a.Search(ctx, "vacation")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byContent) != 1 || byContent[0].ID != "sess_2" {
		t.Errorf("content search: %+v", byContent)
	}

	none, _ := a.Search(ctx, "100% missing")
	if len(none) != 0 {
		t.Errorf("expected no matches for literal percent query, got %d", len(none))
	}
}

func TestExportMarkdown(t *testing.T) {
	meta := SessionMeta{Title: "Handbook chat", CreatedAt: time.Now()}
	out := ExportMarkdown(meta, sampleMessages())

	for _, want := range []string{
		"# Handbook chat",
		"## You",
		"## Assistant",
		"handbook.pdf",
		"score 0.91",
		"query_engine",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown export missing %q:\n%s", want, out)
		}
	}
}

func TestExportJSON(t *testing.T) {
	meta := SessionMeta{ID: "sess_1", Title: "Handbook chat"}
	data, err := ExportJSON(meta, sampleMessages())
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var decoded struct {
		ID       string `json:"id"`
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.ID != "sess_1" || len(decoded.Messages) != 2 {
		t.Errorf("decoded export mismatch: %+v", decoded)
	}
}

func TestFormatSessionList(t *testing.T) {
	if got := FormatSessionList(nil); got != "No sessions found." {
		t.Errorf("empty list: %q", got)
	}

	out := FormatSessionList([]SessionMeta{{
		ID:           "sess_abc",
		Title:        "Handbook chat",
		UpdatedAt:    time.Now(),
		MessageCount: 4,
	}})
	if !strings.Contains(out, "sess_abc") || !strings.Contains(out, "Handbook chat") {
		t.Errorf("list output missing fields:\n%s", out)
	}
}
