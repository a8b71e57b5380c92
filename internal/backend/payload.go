// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the RAG chat backend.
package backend

import (
	"github.com/jeranaias/ragchat-tui/internal/model"
)

// =============================================================================
// OUTBOUND PAYLOAD
// =============================================================================

// ChatRequest is the outbound payload for POST /api/chat.
type ChatRequest struct {
	Messages []OutboundMessage `json:"messages"`
}

// OutboundMessage is one history entry in the outbound payload. Annotations
// appear only on the final message, and only when files are attached.
type OutboundMessage struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation attaches uploaded documents to a message.
type Annotation struct {
	Type string         `json:"type"`
	Data AnnotationData `json:"data"`
}

// AnnotationData carries the file references of a document_file annotation.
type AnnotationData struct {
	Files []model.FileRef `json:"files"`
}

// BuildChatRequest maps the full history to {role, content} pairs. When
// files is non-empty a document_file annotation is attached to the last
// message only; earlier messages never carry annotations.
func BuildChatRequest(history []*model.Message, files []model.FileRef) ChatRequest {
	messages := make([]OutboundMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, OutboundMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}

	if len(files) > 0 && len(messages) > 0 {
		messages[len(messages)-1].Annotations = []Annotation{{
			Type: "document_file",
			Data: AnnotationData{Files: files},
		}}
	}

	return ChatRequest{Messages: messages}
}
