// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/stream"
)

func TestArgParserFlagsAndPositionals(t *testing.T) {
	p := NewArgParser([]string{"export", "sess_1", "--format", "json", "--output=out.json", "--confirm"})

	if p.Subcommand() != "export" {
		t.Errorf("subcommand = %q", p.Subcommand())
	}
	if p.Positional(1) != "sess_1" {
		t.Errorf("positional 1 = %q", p.Positional(1))
	}
	if p.Flag("format") != "json" {
		t.Errorf("format = %q", p.Flag("format"))
	}
	if p.Flag("output") != "out.json" {
		t.Errorf("output = %q", p.Flag("output"))
	}
	if !p.BoolFlag("confirm") {
		t.Error("confirm flag not set")
	}
	if p.Flag("missing") != "" {
		t.Error("missing flag should be empty")
	}
}

func TestArgParserExplicitBool(t *testing.T) {
	p := NewArgParser([]string{"--json=false", "--color=true"})
	if p.BoolFlag("json") {
		t.Error("json=false should be false")
	}
	if !p.BoolFlag("color") {
		t.Error("color=true should be true")
	}
}

func TestArgParserShortFlags(t *testing.T) {
	p := NewArgParser([]string{"-f", "report.pdf"})
	if p.Flag("f") != "report.pdf" {
		t.Errorf("f = %q", p.Flag("f"))
	}
}

func TestParseGlobalFlags(t *testing.T) {
	remaining, args := parseGlobalFlags([]string{"-v", "ask", "--json", "hello"})

	if !args.Verbose || !args.JSON {
		t.Errorf("flags not parsed: %+v", args)
	}
	if len(remaining) != 2 || remaining[0] != "ask" || remaining[1] != "hello" {
		t.Errorf("remaining = %v", remaining)
	}
}

func TestParseAskArgs(t *testing.T) {
	var args Args
	parseAskArgs(&args, []string{"--file", "a.pdf", "what", "is", "this", "--file", "b.txt"})

	if args.Query != "what is this" {
		t.Errorf("query = %q", args.Query)
	}
	if len(args.Files) != 2 || args.Files[0] != "a.pdf" || args.Files[1] != "b.txt" {
		t.Errorf("files = %v", args.Files)
	}
}

func TestParseSessionsArgs(t *testing.T) {
	var args Args
	parseSessionsArgs(&args, []string{"export", "sess_1", "--format", "json", "--output", "o.json"})

	if args.Subcommand != "export" || args.Query != "sess_1" {
		t.Errorf("subcommand=%q query=%q", args.Subcommand, args.Query)
	}
	if args.Format != "json" || args.Output != "o.json" {
		t.Errorf("format=%q output=%q", args.Format, args.Output)
	}

	args = Args{}
	parseSessionsArgs(&args, []string{"clear", "--confirm"})
	if !args.Confirm {
		t.Error("confirm not parsed")
	}

	args = Args{}
	parseSessionsArgs(&args, []string{"search", "vacation", "policy"})
	if args.Query != "vacation policy" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestApplyConfigKey(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		key, value string
		check      func() bool
	}{
		{"backend.url", "https://x.example", func() bool { return cfg.Backend.URL == "https://x.example" }},
		{"backend.timeout_secs", "45", func() bool { return cfg.Backend.TimeoutSecs == 45 }},
		{"files.max_size_mb", "20", func() bool { return cfg.Files.MaxSizeMB == 20 }},
		{"ui.title", "My Chat", func() bool { return cfg.UI.Title == "My Chat" }},
		{"log.level", "debug", func() bool { return cfg.Log.Level == "debug" }},
		{"archive.enabled", "false", func() bool { return !cfg.Archive.Enabled }},
	}

	for _, tt := range tests {
		if err := applyConfigKey(cfg, tt.key, tt.value); err != nil {
			t.Errorf("applyConfigKey(%q, %q) failed: %v", tt.key, tt.value, err)
			continue
		}
		if !tt.check() {
			t.Errorf("applyConfigKey(%q, %q) did not take effect", tt.key, tt.value)
		}
	}

	if err := applyConfigKey(cfg, "nope.nope", "x"); err == nil {
		t.Error("unknown key should fail")
	}
	if err := applyConfigKey(cfg, "backend.timeout_secs", "soon"); err == nil {
		t.Error("non-integer timeout should fail")
	}
}

func TestDeltaPrinterGrowingContent(t *testing.T) {
	var buf bytes.Buffer
	p := &deltaPrinter{out: &buf}

	p.print("Hello")
	p.print("Hello there")

	if got := buf.String(); got != "Hello there" {
		t.Errorf("printed %q, want %q", got, "Hello there")
	}
}

func TestDeltaPrinterRestartsWhenErrorReplacesContent(t *testing.T) {
	var buf bytes.Buffer
	p := &deltaPrinter{out: &buf}

	// A mid-stream error replaces the accumulated content with a shorter
	// string; later deltas then extend the error text, not the original.
	pending := stream.NewPending()
	for _, line := range []string{
		`0:"a fairly long partial answer"`,
		`3:"boom"`,
		`0:" and more text afterwards"`,
	} {
		pending.Consume(stream.Decode(line), p.print)
	}

	got := buf.String()
	if !strings.Contains(got, "Error: boom and more text afterwards") {
		t.Errorf("error content never printed in full:\n%q", got)
	}
	if strings.Contains(got, "answerterwards") {
		t.Errorf("printed a splice of two different strings:\n%q", got)
	}
	if final := pending.Content(); !strings.HasSuffix(got, final) {
		t.Errorf("output %q does not end with the accumulated content %q", got, final)
	}
}

func TestFormatSideDataEmptyMessage(t *testing.T) {
	msg := model.NewMessage(model.RoleAssistant, "just text")
	if got := formatSideData(msg); got != "" {
		t.Errorf("expected empty side data, got %q", got)
	}
}
