// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragchat.
//
// Configuration is read from ~/.ragchat/config.toml, with environment
// variable overrides and built-in defaults. The file is optional; a missing
// file means defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragchat configuration.
type Config struct {
	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// File upload configuration
	Files FilesConfig `toml:"files"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Logging configuration
	Log LogConfig `toml:"log"`

	// Archive (conversation persistence) configuration
	Archive ArchiveConfig `toml:"archive"`
}

// BackendConfig contains the RAG backend connection settings.
type BackendConfig struct {
	// URL is the backend base URL
	URL string `toml:"url"`
	// TimeoutSecs is the timeout for non-streaming requests in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries for connect failures
	MaxRetries int `toml:"max_retries"`
	// RequestsPerSecond limits outbound request rate
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// FilesConfig contains file upload settings.
type FilesConfig struct {
	// MaxSizeMB is the maximum upload size in megabytes
	MaxSizeMB int64 `toml:"max_size_mb"`
}

// UIConfig contains user interface settings.
type UIConfig struct {
	// Title is shown in the TUI header
	Title string `toml:"title"`
	// Description is shown beneath the title on an empty session
	Description string `toml:"description"`
	// WordWrap is the markdown render width for CLI output
	WordWrap int `toml:"word_wrap"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`
	// Format is "text" or "json"
	Format string `toml:"format"`
	// File is the log destination; empty logs to stderr
	File string `toml:"file"`
}

// ArchiveConfig contains conversation archive settings.
type ArchiveConfig struct {
	// Enabled controls whether finished sessions are archived
	Enabled bool `toml:"enabled"`
	// Path overrides the archive database location (default ~/.ragchat/archive.db)
	Path string `toml:"path"`
	// MaxSessions caps stored sessions; oldest are dropped first (0 = unlimited)
	MaxSessions int `toml:"max_sessions"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:               "http://localhost:8000",
			TimeoutSecs:       30,
			MaxRetries:        3,
			RequestsPerSecond: 4,
		},
		Files: FilesConfig{
			MaxSizeMB: 10,
		},
		UI: UIConfig{
			Title:       "RAG Chat",
			Description: "Chat with your documents using retrieval-augmented generation",
			WordWrap:    80,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Archive: ArchiveConfig{
			Enabled:     true,
			MaxSessions: 100,
		},
	}
}

// Timeout returns the backend request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// MaxFileSize returns the upload limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return c.Files.MaxSizeMB * 1024 * 1024
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the ragchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat"), nil
}

// ConfigPath returns the path of the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration: defaults, then the config file if present,
// then environment overrides, then validation.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file. A missing
// file is not an error; defaults and environment still apply.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies RAGCHAT_* environment variables on top of the
// file values. BACKEND_URL is honored too, matching the original frontend's
// environment contract.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RAGCHAT_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	} else if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("RAGCHAT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RAGCHAT_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("RAGCHAT_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Backend.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("RAGCHAT_MAX_FILE_MB"); v != "" {
		if mb, err := strconv.ParseInt(v, 10, 64); err == nil && mb > 0 {
			cfg.Files.MaxSizeMB = mb
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	var errs []string

	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("backend.url %q is not a valid URL", c.Backend.URL))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("backend.url scheme %q must be http or https", u.Scheme))
	}

	if c.Backend.TimeoutSecs <= 0 {
		errs = append(errs, "backend.timeout_secs must be positive")
	}
	if c.Backend.MaxRetries < 1 {
		errs = append(errs, "backend.max_retries must be at least 1")
	}
	if c.Files.MaxSizeMB <= 0 {
		errs = append(errs, "files.max_size_mb must be positive")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.New("invalid configuration: " + strings.Join(errs, "; "))
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default TOML file atomically.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file atomically, so a crash
// mid-write never leaves a truncated config behind.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(buf.String()), 0600)
}
