// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the RAG chat backend.
//
// The backend exposes three endpoints the client consumes:
//
//	POST /api/chat          streaming chat completion (line protocol)
//	GET  /api/chat/config   chat configuration (starter questions)
//	POST /api/chat/upload   document upload, returns an opaque file reference
//
// Transport-level concerns live here: connection pooling, request timeouts,
// retry with backoff for connect failures, client-side rate limiting, and
// the error taxonomy the turn controller recovers from. Stream decoding is
// package stream's job; this package only hands back the response body.
package backend
