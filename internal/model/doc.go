// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and files.
//
// This package defines the core domain types used throughout the application
// for representing a conversation with the RAG backend: messages with their
// role and content, the structured side-data attached to assistant replies
// (tool call records, retrieved source nodes, suggested follow-up questions),
// and references to uploaded documents.
//
// # Key Types
//
//   - Message: A single conversation message, immutable once appended
//   - Role: Message role enumeration (user, assistant, system)
//   - SourceNode: A retrieved document chunk, accessed through gjson
//   - FileRef: Opaque backend-assigned reference to an uploaded document
//
// Side-data payloads arrive from the backend as schemaless JSON. They are
// kept as raw bytes and inspected through typed accessors; fields the client
// does not understand pass through untouched for display layers.
package model
