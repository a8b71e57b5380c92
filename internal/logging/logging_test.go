// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/ragchat-tui/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if tt.ok && err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("ParseLevel(%q) expected error", tt.input)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ragchat.log")

	logger, levelVar, closeFn, err := Setup(config.LogConfig{Level: "info", Format: "json", File: path})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if levelVar.Level() != slog.LevelInfo {
		t.Errorf("level = %v, want info", levelVar.Level())
	}

	logger.Info("hello from test", "key", "value")
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing entry: %s", data)
	}
	if !strings.Contains(string(data), `"key":"value"`) {
		t.Errorf("log file missing structured attr: %s", data)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if _, _, _, err := Setup(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestComponentTagsLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragchat.log")

	logger, _, closeFn, err := Setup(config.LogConfig{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	Component(logger, "backend").Debug("probe")
	closeFn()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"component":"backend"`) {
		t.Errorf("log entry missing component tag: %s", data)
	}
}

func TestLevelVarChangesTakeEffect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragchat.log")

	logger, levelVar, closeFn, err := Setup(config.LogConfig{Level: "info", Format: "json", File: path})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logger.Debug("before")
	levelVar.Set(slog.LevelDebug)
	logger.Debug("after")
	closeFn()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "before") {
		t.Error("debug entry logged while level was info")
	}
	if !strings.Contains(string(data), "after") {
		t.Error("debug entry missing after lowering the level")
	}
}

func TestDiscardDoesNotPanic(t *testing.T) {
	Discard().Info("dropped")
}
