// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/storage"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

// HandleSessions implements "ragchat sessions <subcommand>".
func HandleSessions(args Args) int {
	app, err := NewApp(args, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer app.Close()

	archive, err := app.OpenArchive()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	ctx := context.Background()

	switch args.Subcommand {
	case "", "list":
		return sessionsList(ctx, archive, args.JSON)
	case "show":
		return sessionsShow(ctx, archive, args.Query)
	case "export":
		return sessionsExport(ctx, archive, args)
	case "search":
		return sessionsSearch(ctx, archive, args.Query)
	case "delete":
		return sessionsDelete(ctx, archive, args.Query)
	case "clear":
		return sessionsClear(ctx, archive, args.Confirm)
	default:
		fmt.Fprintln(os.Stderr, "usage: ragchat sessions [list|show|export|search|delete|clear]")
		return 2
	}
}

func sessionsList(ctx context.Context, archive *storage.Archive, asJSON bool) int {
	metas, err := archive.List(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	if asJSON {
		out, _ := json.MarshalIndent(metas, "", "  ")
		fmt.Println(string(out))
		return 0
	}
	fmt.Print(storage.FormatSessionList(metas))
	return 0
}

func sessionsShow(ctx context.Context, archive *storage.Archive, id string) int {
	if id == "" {
		fmt.Fprintln(os.Stderr, "usage: ragchat sessions show <id>")
		return 2
	}

	meta, msgs, err := loadSession(ctx, archive, id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	for _, msg := range msgs {
		fmt.Printf("[%s] %s\n", msg.Timestamp.Format("15:04"), msg.Role.DisplayName())
		fmt.Println(msg.Content)
		if side := formatSideData(msg); side != "" {
			fmt.Print(side)
		}
		fmt.Println()
	}
	fmt.Printf("(%d messages, %s)\n", len(msgs), util.FormatRelativeTime(meta.UpdatedAt))
	return 0
}

func sessionsExport(ctx context.Context, archive *storage.Archive, args Args) int {
	if args.Query == "" {
		fmt.Fprintln(os.Stderr, "usage: ragchat sessions export <id> [--format md|json] [--output FILE]")
		return 2
	}

	meta, msgs, err := loadSession(ctx, archive, args.Query)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	var out []byte
	switch args.Format {
	case "", "md", "markdown":
		out = []byte(storage.ExportMarkdown(meta, msgs))
	case "json":
		out, err = storage.ExportJSON(meta, msgs)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (want md or json)\n", args.Format)
		return 2
	}

	if args.Output == "" {
		fmt.Print(string(out))
		return 0
	}
	if err := util.AtomicWriteFile(args.Output, out, 0600); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	fmt.Println("exported to", args.Output)
	return 0
}

func sessionsSearch(ctx context.Context, archive *storage.Archive, query string) int {
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: ragchat sessions search <text>")
		return 2
	}
	metas, err := archive.Search(ctx, query)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	fmt.Print(storage.FormatSessionList(metas))
	return 0
}

func sessionsDelete(ctx context.Context, archive *storage.Archive, id string) int {
	if id == "" {
		fmt.Fprintln(os.Stderr, "usage: ragchat sessions delete <id>")
		return 2
	}
	if err := archive.Delete(ctx, id); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	fmt.Println("deleted", id)
	return 0
}

func sessionsClear(ctx context.Context, archive *storage.Archive, confirmed bool) int {
	if !confirmed {
		fmt.Fprintln(os.Stderr, "this deletes all archived sessions; re-run with --confirm")
		return 2
	}
	if err := archive.Clear(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	fmt.Println("archive cleared")
	return 0
}

// loadSession resolves the metadata and messages of one archived session.
func loadSession(ctx context.Context, archive *storage.Archive, id string) (storage.SessionMeta, []*model.Message, error) {
	metas, err := archive.List(ctx)
	if err != nil {
		return storage.SessionMeta{}, nil, err
	}
	var meta storage.SessionMeta
	for _, m := range metas {
		if m.ID == id {
			meta = m
			break
		}
	}
	msgs, err := archive.Load(ctx, id)
	if err != nil {
		return storage.SessionMeta{}, nil, err
	}
	if meta.ID == "" {
		meta.ID = id
	}
	return meta, msgs, nil
}
