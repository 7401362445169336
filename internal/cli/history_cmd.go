// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Inspect and prune recorded export runs.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/morganforge/chanmark/internal/history"
)

const historyTimeout = 5 * time.Second

// HandleHistory routes the history subcommands: list (default),
// show <id>, and prune.
func HandleHistory(args Args) error {
	parser := NewArgParser(args.Raw)

	path, err := history.DefaultPath()
	if err != nil {
		return &CommandError{Command: "history", Action: "locate database", Err: err}
	}
	store, err := history.Open(path)
	if err != nil {
		return &CommandError{Command: "history", Action: "open database", Err: err}
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	switch parser.Subcommand() {
	case "", "list":
		return historyList(ctx, store, parser)
	case "show":
		return historyShow(ctx, store, parser)
	case "prune":
		return historyPrune(ctx, store, parser)
	default:
		return NewUsageError("unknown history subcommand: %s", parser.Subcommand())
	}
}

func historyList(ctx context.Context, store *history.Store, parser *ArgParser) error {
	limit := parser.FlagIntOrDefault("limit", 20)
	if limit <= 0 {
		return NewUsageError("--limit must be positive")
	}

	var records []*history.Record
	var err error
	if channel := parser.Flag("channel"); channel != "" {
		records, err = store.ListByChannel(ctx, channel, limit)
	} else {
		records, err = store.List(ctx, limit)
	}
	if err != nil {
		return &CommandError{Command: "history", Action: "list records", Err: err}
	}

	if len(records) == 0 {
		fmt.Println("No exports recorded yet.")
		return nil
	}

	for _, rec := range records {
		printRecordLine(rec)
	}
	return nil
}

func historyShow(ctx context.Context, store *history.Store, parser *ArgParser) error {
	id := parser.Positional(0)
	if id == "" {
		return NewUsageError("history show requires a record id")
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		if err == history.ErrNotFound {
			return fmt.Errorf("no export with id %s", id)
		}
		return &CommandError{Command: "history", Action: "load record", Err: err}
	}

	fmt.Printf("ID:        %s\n", rec.ID)
	fmt.Printf("Channel:   %s (%s)\n", rec.ChannelName, rec.ChannelID)
	fmt.Printf("Status:    %s\n", rec.Status)
	fmt.Printf("Messages:  %d\n", rec.MessageCount)
	if rec.OutputPath != "" {
		fmt.Printf("Output:    %s\n", rec.OutputPath)
	}
	if rec.Error != "" {
		fmt.Printf("Error:     %s\n", rec.Error)
	}
	fmt.Printf("Started:   %s\n", rec.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Finished:  %s\n", rec.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func historyPrune(ctx context.Context, store *history.Store, parser *ArgParser) error {
	days := parser.FlagIntOrDefault("days", 90)
	if days <= 0 {
		return NewUsageError("--days must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed, err := store.Prune(ctx, cutoff)
	if err != nil {
		return &CommandError{Command: "history", Action: "prune records", Err: err}
	}

	fmt.Printf("Removed %d record(s) older than %d days.\n", removed, days)
	return nil
}

func printRecordLine(rec *history.Record) {
	when := rec.StartedAt.Local().Format("2006-01-02 15:04")
	switch rec.Status {
	case history.StatusComplete:
		fmt.Printf("%s  %s  %-9s  %6d msgs  %s\n", rec.ID[:8], when, rec.Status, rec.MessageCount, rec.OutputPath)
	case history.StatusCancelled:
		fmt.Printf("%s  %s  %-9s  %6d msgs  %s\n", rec.ID[:8], when, rec.Status, rec.MessageCount, rec.OutputPath)
	default:
		fmt.Printf("%s  %s  %-9s  %s\n", rec.ID[:8], when, rec.Status, rec.Error)
	}
}
