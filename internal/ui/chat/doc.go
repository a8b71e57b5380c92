// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat TUI.
//
// The Model follows the Bubble Tea architecture: a viewport shows the
// conversation transcript, a textarea collects input, and a spinner runs
// while a turn is streaming. Turns execute on a background goroutine;
// text deltas arrive as Bubble Tea messages so the transcript re-renders
// incrementally.
//
// Slash commands handle everything that is not a question: /attach uploads
// a file for the next turn, /save exports the transcript, /clear starts a
// fresh session, /quit exits.
package chat
