// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdConfig
	CmdSessions
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Query      string
	Files      []string // --file attachments for ask
	Subcommand string
	Format     string // sessions export format
	Output     string // sessions export destination
	Confirm    bool   // destructive sessions subcommands
	ConfigKey  string
	ConfigVal  string

	// Raw args after the command name
	Raw []string
}

const usageText = `ragchat - terminal client for a RAG chat backend

Ragchat connects to a retrieval-augmented chat backend and streams answers
with their source documents into your terminal.

Usage:
  ragchat                        Start the chat TUI (default)
  ragchat ask "question"         Ask a single question
    --file PATH                  Attach a document (repeatable)
    --json                       Print the raw message as JSON
  ragchat chat                   Line-based REPL (for dumb terminals)
  ragchat config [show|set|path] Configuration management
  ragchat sessions [subcommand]  Archived session management
  ragchat version                Show version information

Session Commands:
  ragchat sessions list          List archived sessions
  ragchat sessions show <id>     Print a session transcript
  ragchat sessions export <id>   Export a session
    --format md|json             Export format (default: md)
    --output FILE                Write to file (default: stdout)
  ragchat sessions search <text> Search titles and message content
  ragchat sessions delete <id>   Delete a session
  ragchat sessions clear --confirm
                                 Delete all archived sessions

Global Flags:
  -q, --quiet                    Minimal output
  -v, --verbose                  Debug logging
  --json                         JSON output where supported

Environment:
  RAGCHAT_BACKEND_URL            Backend base URL (default http://localhost:8000)
  RAGCHAT_LOG_LEVEL              debug, info, warn, error

Config file: ~/.ragchat/config.toml`

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Println(usageText)
}

// PrintVersion writes version details to stdout.
func PrintVersion() {
	fmt.Printf("ragchat %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse inspects os.Args and returns the command plus its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]
	remaining, args := parseGlobalFlags(raw)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := remaining[0]
	rest := remaining[1:]
	args.Raw = rest

	switch cmd {
	case "ask":
		parseAskArgs(&args, rest)
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "config":
		parseConfigArgs(&args, rest)
		return CmdConfig, args
	case "session", "sessions":
		parseSessionsArgs(&args, rest)
		return CmdSessions, args
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		// Bare question: treat "ragchat how do I ..." as ask.
		args.Query = strings.Join(remaining, " ")
		return CmdAsk, args
	}
}

// parseGlobalFlags strips flags that apply to every command.
func parseGlobalFlags(raw []string) ([]string, Args) {
	var args Args
	var remaining []string

	for _, arg := range raw {
		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}

func parseAskArgs(args *Args, rest []string) {
	var query []string
	i := 0
	for i < len(rest) {
		switch rest[i] {
		case "--file", "-f":
			if i+1 < len(rest) {
				args.Files = append(args.Files, rest[i+1])
				i += 2
				continue
			}
			i++
		default:
			query = append(query, rest[i])
			i++
		}
	}
	args.Query = strings.Join(query, " ")
}

func parseConfigArgs(args *Args, rest []string) {
	p := NewArgParser(rest)
	args.Subcommand = p.Subcommand()
	args.ConfigKey = p.Positional(1)
	args.ConfigVal = p.Positional(2)
}

func parseSessionsArgs(args *Args, rest []string) {
	p := NewArgParser(rest)
	args.Subcommand = p.Subcommand()
	args.Query = strings.Join(p.PositionalFrom(1), " ")
	args.Format = p.FlagOrDefault("format", "md")
	args.Output = p.Flag("output")
	args.Confirm = p.BoolFlag("confirm")
	if p.BoolFlag("json") {
		args.JSON = true
	}
}
