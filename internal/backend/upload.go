// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the RAG chat backend.
package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/model"
)

// =============================================================================
// FILE UPLOAD
// =============================================================================

// AllowedExtensions are the document types the backend can ingest.
var AllowedExtensions = []string{".pdf", ".txt", ".docx", ".csv", ".json", ".md", ".html"}

// uploadRequest is the POST /api/chat/upload payload: the file content as a
// base64 data URL plus its display name.
type uploadRequest struct {
	Base64 string `json:"base64"`
	Name   string `json:"name"`
}

// Upload sends a document to the backend and returns the opaque file
// reference the backend assigned. The reference is carried verbatim in the
// next chat request's annotations.
func (c *Client) Upload(ctx context.Context, name string, data []byte) (model.FileRef, error) {
	if int64(len(data)) > c.config.MaxFileSize {
		return model.FileRef{}, ErrFileTooLarge
	}
	if !ExtensionAllowed(name) {
		return model.FileRef{}, ErrFileType
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return model.FileRef{}, err
	}

	payload := uploadRequest{
		Base64: encodeDataURL(name, data),
		Name:   name,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return model.FileRef{}, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal upload", Cause: err}
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat/upload", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, c.httpClient)
	if err != nil {
		return model.FileRef{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return model.FileRef{}, statusError(resp.StatusCode, body)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return model.FileRef{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read upload response", Cause: err}
	}
	if !json.Valid(raw) {
		return model.FileRef{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "upload response is not valid JSON"}
	}

	c.logger.Debug("file uploaded", "name", name, "bytes", len(data))
	return model.NewFileRef(raw), nil
}

// ExtensionAllowed reports whether the file's extension is an ingestible
// document type.
func ExtensionAllowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// encodeDataURL encodes file content as a data URL with a sniffed MIME type,
// the format the backend's upload endpoint expects.
func encodeDataURL(name string, data []byte) string {
	mime := sniffMIME(name, data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// sniffMIME picks a MIME type from the extension first, falling back to
// content sniffing. http.DetectContentType alone mislabels most text-based
// document formats as text/plain.
func sniffMIME(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown"
	case ".html":
		return "text/html"
	}
	// Strip the "; charset=..." suffix DetectContentType appends.
	mime := http.DetectContentType(data)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return mime
}
