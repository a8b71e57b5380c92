// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrSessionNotFound = errors.New("session not found")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    created_at INTEGER NOT NULL,  -- Unix timestamp
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    seq INTEGER NOT NULL,         -- Position within the session
    msg_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    errored INTEGER NOT NULL DEFAULT 0,
    tools TEXT,                   -- JSON array of tool call payloads
    sources TEXT,                 -- JSON array of source nodes
    suggested TEXT,               -- JSON array of suggested questions
    FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);
`

// =============================================================================
// SESSION ARCHIVE
// =============================================================================

// SessionMeta contains metadata for listing archived sessions.
type SessionMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Archive persists chat sessions in a SQLite database.
type Archive struct {
	db          *sql.DB
	maxSessions int
	logger      *slog.Logger
}

// DefaultPath returns the default archive database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat", "archive.db"), nil
}

// Open opens (creating if needed) the archive database at path.
// maxSessions caps stored sessions; 0 means unlimited.
func Open(path string, maxSessions int, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Archive{
		db:          db,
		maxSessions: maxSessions,
		logger:      logger.With("component", "archive"),
	}, nil
}

// Close closes the archive database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// WRITE PATH
// =============================================================================

// Save stores a session and its messages, replacing any existing rows for
// the same session ID. Empty sessions are not archived.
func (a *Archive) Save(ctx context.Context, id, title string, createdAt time.Time, msgs []*model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		id, title, createdAt.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	// Rewrite messages wholesale: the in-memory history is authoritative.
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear old messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (session_id, seq, msg_id, role, content, timestamp, errored, tools, sources, suggested)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range msgs {
		tools, sources, suggested, err := encodeSideData(msg)
		if err != nil {
			return fmt.Errorf("failed to encode side data: %w", err)
		}
		errored := 0
		if msg.Errored {
			errored = 1
		}
		if _, err := stmt.ExecContext(ctx, id, i, msg.ID, string(msg.Role), msg.Content,
			msg.Timestamp.Unix(), errored, tools, sources, suggested); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	a.logger.Debug("session archived", "session_id", id, "messages", len(msgs))

	return a.enforceLimit(ctx)
}

// enforceLimit drops the oldest sessions beyond the configured cap.
func (a *Archive) enforceLimit(ctx context.Context) error {
	if a.maxSessions <= 0 {
		return nil
	}
	res, err := a.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id IN (
			SELECT id FROM sessions ORDER BY updated_at DESC LIMIT -1 OFFSET ?
		)`, a.maxSessions)
	if err != nil {
		return fmt.Errorf("failed to enforce session limit: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		a.logger.Debug("pruned old sessions", "count", n)
	}
	return nil
}

// Delete removes a session and its messages.
func (a *Archive) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Clear removes all archived sessions.
func (a *Archive) Clear(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear archive: %w", err)
	}
	return nil
}

// =============================================================================
// READ PATH
// =============================================================================

// List returns metadata for all archived sessions, most recent first.
func (a *Archive) List(ctx context.Context) ([]SessionMeta, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.created_at, s.updated_at, COUNT(m.id)
		FROM sessions s LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var created, updated int64
		if err := rows.Scan(&meta.ID, &meta.Title, &created, &updated, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		meta.CreatedAt = time.Unix(created, 0)
		meta.UpdatedAt = time.Unix(updated, 0)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Load returns the messages of an archived session in order.
func (a *Archive) Load(ctx context.Context, id string) ([]*model.Message, error) {
	var exists int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return nil, ErrSessionNotFound
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT msg_id, role, content, timestamp, errored, tools, sources, suggested
		FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var (
			msg                       model.Message
			role                      string
			ts                        int64
			errored                   int
			tools, sources, suggested sql.NullString
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts, &errored, &tools, &sources, &suggested); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Timestamp = time.Unix(ts, 0)
		msg.Errored = errored != 0
		if err := decodeSideData(&msg, tools, sources, suggested); err != nil {
			return nil, fmt.Errorf("failed to decode side data: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// Search returns sessions whose title or message content contains the query,
// most recent first.
func (a *Archive) Search(ctx context.Context, query string) ([]SessionMeta, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := a.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.created_at, s.updated_at,
		       (SELECT COUNT(*) FROM messages WHERE session_id = s.id)
		FROM sessions s
		WHERE s.title LIKE ? ESCAPE '\'
		   OR EXISTS (
		       SELECT 1 FROM messages m
		       WHERE m.session_id = s.id AND m.content LIKE ? ESCAPE '\'
		   )
		ORDER BY s.updated_at DESC`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search sessions: %w", err)
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var created, updated int64
		if err := rows.Scan(&meta.ID, &meta.Title, &created, &updated, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		meta.CreatedAt = time.Unix(created, 0)
		meta.UpdatedAt = time.Unix(updated, 0)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// =============================================================================
// SIDE DATA ENCODING
// =============================================================================

func encodeSideData(msg *model.Message) (tools, sources, suggested sql.NullString, err error) {
	if len(msg.Tools) > 0 {
		b, merr := json.Marshal(msg.Tools)
		if merr != nil {
			err = merr
			return
		}
		tools = sql.NullString{String: string(b), Valid: true}
	}
	if len(msg.Sources) > 0 {
		b, merr := json.Marshal(msg.Sources)
		if merr != nil {
			err = merr
			return
		}
		sources = sql.NullString{String: string(b), Valid: true}
	}
	if len(msg.SuggestedQuestions) > 0 {
		b, merr := json.Marshal(msg.SuggestedQuestions)
		if merr != nil {
			err = merr
			return
		}
		suggested = sql.NullString{String: string(b), Valid: true}
	}
	return
}

func decodeSideData(msg *model.Message, tools, sources, suggested sql.NullString) error {
	if tools.Valid {
		if err := json.Unmarshal([]byte(tools.String), &msg.Tools); err != nil {
			return err
		}
	}
	if sources.Valid {
		if err := json.Unmarshal([]byte(sources.String), &msg.Sources); err != nil {
			return err
		}
	}
	if suggested.Valid {
		if err := json.Unmarshal([]byte(suggested.String), &msg.SuggestedQuestions); err != nil {
			return err
		}
	}
	return nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// =============================================================================
// LISTING FORMAT
// =============================================================================

// FormatSessionList renders archived session metadata as an aligned table
// for the sessions CLI command.
func FormatSessionList(metas []SessionMeta) string {
	if len(metas) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString(util.PadWidth("ID", 14) + " " +
		util.PadWidth("Updated", 12) + " " +
		util.PadWidth("Messages", 8) + " Title\n")
	sb.WriteString(strings.Repeat("-", 60) + "\n")

	for _, m := range metas {
		sb.WriteString(util.PadWidth(m.ID, 14) + " " +
			util.PadWidth(util.FormatRelativeTime(m.UpdatedAt), 12) + " " +
			util.PadWidth(fmt.Sprintf("%d", m.MessageCount), 8) + " " +
			util.TruncateWidth(m.Title, 40) + "\n")
	}
	return sb.String()
}
