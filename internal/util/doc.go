// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the ragchat application.
//
// This package contains common helper functions used throughout the
// application for string truncation, display formatting, and file
// operations.
//
// # Key Functions
//
// String Utilities:
//
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width truncation for terminal columns
//
// Formatting:
//
//   - FormatBytes: human-readable byte counts
//   - FormatRelativeTime: "3m ago" style timestamps
//
// File Operations:
//
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long strings safely for display
//	display := util.TruncateRunes(longText, 50)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
