// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable chrome for the chat
// interface: the title bar and the status line. The transcript itself
// is rendered by the chat model; these components only own the parts
// that stay on screen across turns.
package components
