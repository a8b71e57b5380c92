// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists finished chat sessions in a SQLite archive.
//
// The archive lives at ~/.ragchat/archive.db. Each session row carries the
// conversation metadata; message rows carry text plus the retrieval side
// data (tool calls, source nodes, suggested questions) as JSON so a
// reloaded session renders exactly as it did live.
//
// SQLite allows one writer at a time, so the connection pool is capped at
// a single connection and the database runs in WAL mode.
package storage
