// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn orchestrates one request/response cycle against the backend.
//
// A turn is: append the user message, build the outbound payload from the
// full history (attaching pending files to the last message), stream the
// response through the decoder/aggregator, and commit exactly one assistant
// message back to the session store — an error message when anything in the
// transport fails. The processing flag is held for the duration and released
// on every path, so a failed turn never leaves the input surface disabled.
//
// Turns are strictly serial per session: starting a turn while one is in
// flight fails with ErrBusy. Follow-up questions selected mid-render are
// queued on the store and drained by the driving loop, never executed
// re-entrantly.
package turn
