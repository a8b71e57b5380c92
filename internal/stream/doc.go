// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the line-delimited streaming protocol spoken by
// the RAG chat backend.
//
// The backend multiplexes an assistant turn over prefixed lines:
//
//	0:"text fragment"        incremental content
//	8:[{"type":...,"data":...}]  out-of-band side-data (tools, sources,
//	                             suggested questions)
//	3:"error value"          a turn-level error
//
// Decode turns one raw line into a typed Event; it is total, so a malformed
// line becomes an error or unrecognized event, never a panic. Pending
// accumulates decoded events for one turn and finalizes them into an
// immutable model.Message. Reader drives the two over an io.Reader until the
// transport closes the stream.
package stream
