// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements command parsing and the non-TUI command handlers
// for ragchat.
//
// Commands:
//
//   - (default)  full-screen chat TUI
//   - ask        one-shot question with rendered Markdown answer
//   - chat       line-based REPL for terminals without TUI support
//   - config     show, set and locate configuration
//   - sessions   list, export, search and delete archived sessions
//   - version    build information
package cli
