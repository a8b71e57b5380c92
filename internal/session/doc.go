// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the per-session conversation state.
//
// The Store is the single owner of the message history plus the ancillary
// state one chat session carries: pending file uploads, the processing flag
// that serializes turns, the queued follow-up question, and the cached chat
// configuration fetched from the backend.
//
// Writes go through the turn controller; UI-facing code treats the store as
// read-only over history and files. The store is mutex-guarded so the render
// path (reader) and the turn controller (writer) can share it across
// goroutines.
package session
