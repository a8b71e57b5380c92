// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the RAG chat backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/ragchat-tui/internal/session"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeInvalidResponse
	ErrTypeFileRejected
)

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrFileTooLarge = &ClientError{Type: ErrTypeFileRejected, Message: "file exceeds the configured size limit"}
	ErrFileType     = &ClientError{Type: ErrTypeFileRejected, Message: "file type is not allowed"}
)

// statusError builds a ClientError for a non-success HTTP response, carrying
// a snippet of the body for diagnosis.
func statusError(status int, body []byte) *ClientError {
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	msg := fmt.Sprintf("backend returned %d", status)
	if snippet != "" {
		msg += ": " + snippet
	}
	return &ClientError{Type: ErrTypeStatus, Message: msg}
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// MaxRetries for connect failures (default: 3). Retries never apply
	// once a stream has been handed to the caller.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff (default: 500ms)
	RetryDelay time.Duration

	// RequestsPerSecond limits outbound request rate (default: 4)
	RequestsPerSecond float64

	// MaxFileSize limits uploads in bytes (default: 10MB)
	MaxFileSize int64

	// Logger receives request/response debug lines. Defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://localhost:8000",
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryDelay:        500 * time.Millisecond,
		RequestsPerSecond: 4,
		MaxFileSize:       10 * 1024 * 1024,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the RAG chat backend. It is safe for concurrent
// use, though the application serializes chat turns above this layer.
type Client struct {
	config *ClientConfig
	logger *slog.Logger

	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// The streaming client carries no timeout; streams are context-controlled.
	httpClient   *http.Client
	streamClient *http.Client

	limiter *rate.Limiter
}

// NewClient creates a backend client with the given configuration. A nil
// config uses defaults; zero fields are filled in.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 4
	}
	if config.MaxFileSize == 0 {
		config.MaxFileSize = 10 * 1024 * 1024
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		config: config,
		logger: logger.With("component", "backend"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		streamClient: &http.Client{
			Transport: transport,
			// No timeout for streaming; lifetime is bound to the context.
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream posts a chat request and returns the streaming response body.
// The caller owns the returned reader and must close it; cancelling the
// context closes the stream and is the cancellation hook for an in-flight
// turn.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal chat request", Cause: err}
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		return httpReq, nil
	}, c.streamClient)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, statusError(resp.StatusCode, body)
	}

	return resp.Body, nil
}

// =============================================================================
// CHAT CONFIG
// =============================================================================

// ChatConfig fetches the backend chat configuration. Called once per session;
// the session store caches the result.
func (c *Client) ChatConfig(ctx context.Context) (session.ChatConfig, error) {
	var cfg session.ChatConfig

	if err := c.limiter.Wait(ctx); err != nil {
		return cfg, err
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/chat/config", nil)
	}, c.httpClient)
	if err != nil {
		return cfg, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return cfg, statusError(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return cfg, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode chat config", Cause: err}
	}
	return cfg, nil
}

// =============================================================================
// RETRY
// =============================================================================

// doWithRetry issues a request, retrying connect failures with exponential
// backoff. HTTP error statuses are not retried; they are the backend's
// answer, not a transport fault.
func (c *Client) doWithRetry(ctx context.Context, build func() (*http.Request, error), client *http.Client) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := build()
		if err != nil {
			return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build request", Cause: err}
		}

		start := time.Now()
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Debug("request failed", "method", req.Method, "url", req.URL.Path, "attempt", attempt+1, "error", err)
			lastErr = err
			continue
		}

		c.logger.Debug("request complete", "method", req.Method, "url", req.URL.Path,
			"status", resp.StatusCode, "duration", time.Since(start))
		return resp, nil
	}

	return nil, &ClientError{Type: ErrTypeConnection, Message: "connection to backend failed", Cause: lastErr}
}
