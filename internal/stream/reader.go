// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the line-delimited streaming protocol spoken by
// the RAG chat backend.
package stream

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// Reader drives line-by-line decoding of one streaming response body.
type Reader struct {
	scanner *bufio.Scanner
}

// maxLineSize bounds a single protocol line (1MB). Source payloads carry
// whole document chunks, so the default 64KB scanner limit is too small.
const maxLineSize = 1024 * 1024

// NewReader creates a stream reader over a response body.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Process decodes every line into the accumulator until the stream ends or
// the context is cancelled. There is no end-of-stream sentinel; termination
// is the underlying stream closing. Blank keep-alive lines are skipped
// without invoking the decoder.
func (r *Reader) Process(ctx context.Context, pending *Pending, onDelta DeltaFunc) error {
	for r.scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		pending.Consume(Decode(line), onDelta)
	}
	return r.scanner.Err()
}
