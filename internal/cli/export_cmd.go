// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - The export command: fetch a channel's history and
// write it out as Markdown.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/morganforge/chanmark/internal/api"
	"github.com/morganforge/chanmark/internal/config"
	"github.com/morganforge/chanmark/internal/debuglog"
	"github.com/morganforge/chanmark/internal/export"
	"github.com/morganforge/chanmark/internal/fetch"
	"github.com/morganforge/chanmark/internal/history"
	"github.com/morganforge/chanmark/internal/model"
	"github.com/morganforge/chanmark/internal/timerange"
	"github.com/morganforge/chanmark/internal/ui/exportview"
	"github.com/morganforge/chanmark/internal/ui/styles"
)

// ExportArgs holds the parsed export command arguments.
type ExportArgs struct {
	ChannelID string
	Window    timerange.Range
	Settings  export.Settings
	OutputDir string
	Delay     time.Duration
	DelaySet  bool
	Plain     bool
	Debug     bool
}

// parseExportArgs resolves flags against the config defaults.
func parseExportArgs(args Args, cfg *config.Config) (ExportArgs, error) {
	parser := NewArgParser(args.Raw)

	channelID := parser.Positional(0)
	if channelID == "" {
		return ExportArgs{}, NewUsageError("export requires a channel id")
	}

	window, err := parseWindow(parser)
	if err != nil {
		return ExportArgs{}, err
	}

	settings := cfg.Export.Settings
	if parser.BoolFlag("no-embeds") {
		settings.IncludeEmbeds = false
	}
	if parser.BoolFlag("no-reactions") {
		settings.IncludeReactions = false
	}
	if parser.BoolFlag("no-attachments") {
		settings.IncludeAttachments = false
	}
	if parser.BoolFlag("no-edit-history") {
		settings.IncludeEditHistory = false
	}
	if parser.BoolFlag("no-pins") {
		settings.IncludePinIndicator = false
	}
	if parser.BoolFlag("no-system") {
		settings.IncludeSystemMessages = false
	}

	delayMs := parser.FlagIntOrDefault("delay", cfg.Export.BatchDelayMs)
	if delayMs < 0 {
		return ExportArgs{}, NewUsageError("--delay must not be negative")
	}

	outputDir := parser.Flag("output")
	if outputDir == "" {
		outputDir = parser.Flag("o")
	}
	if outputDir == "" {
		outputDir = cfg.Export.OutputDir
	}

	return ExportArgs{
		ChannelID: channelID,
		Window:    window,
		Settings:  settings,
		OutputDir: outputDir,
		Delay:     time.Duration(delayMs) * time.Millisecond,
		DelaySet:  parser.HasFlag("delay"),
		Plain:     parser.BoolFlag("plain"),
		Debug:     parser.BoolFlag("debug") || cfg.Debug.Enabled,
	}, nil
}

// parseWindow builds the date window from --preset or --from/--to.
func parseWindow(parser *ArgParser) (timerange.Range, error) {
	presetName := parser.Flag("preset")
	fromVal := parser.Flag("from")
	toVal := parser.Flag("to")

	if presetName != "" && (fromVal != "" || toVal != "") {
		return timerange.Range{}, NewUsageError("--preset cannot be combined with --from/--to")
	}

	if presetName != "" {
		preset, err := timerange.ParsePreset(presetName)
		if err != nil {
			return timerange.Range{}, NewUsageError("%v", err)
		}
		return timerange.ForPreset(preset, time.Now()), nil
	}

	from, err := timerange.ParseDate(fromVal)
	if err != nil {
		return timerange.Range{}, NewUsageError("%v", err)
	}
	to, err := timerange.ParseDate(toVal)
	if err != nil {
		return timerange.Range{}, NewUsageError("%v", err)
	}
	if from != nil && to != nil && to.Before(*from) {
		return timerange.Range{}, NewUsageError("--to date is before --from date")
	}
	return timerange.Range{From: from, To: to}, nil
}

// HandleExport runs an export end to end.
func HandleExport(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	exportArgs, err := parseExportArgs(args, cfg)
	if err != nil {
		return err
	}

	if cfg.API.Token == "" {
		return &CommandError{
			Command: "export",
			Action:  "authenticate",
			Reason:  "no API token configured (set api.token in ~/.chanmark/config.toml or CHANMARK_TOKEN)",
		}
	}

	var log *debuglog.Logger
	if exportArgs.Debug {
		logPath := cfg.Debug.LogPath
		if logPath == "" {
			logPath = debuglog.DefaultPath()
		}
		log = debuglog.New(logPath)
	}

	client := api.NewClient(cfg.API.Token).
		WithHTTPClient(api.NewHTTPClient(cfg.API.Timeout()))
	if cfg.API.BaseURL != "" {
		client = client.WithBaseURL(cfg.API.BaseURL)
	}

	abort := fetch.NewAbort()

	// SIGINT stops the fetch gracefully: the partial export is still
	// written. The TUI additionally maps ctrl+c through the same handle.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		abort.Set()
	}()

	ctx := context.Background()

	channel, err := client.Channel(ctx, exportArgs.ChannelID)
	if err != nil {
		if errors.Is(err, api.ErrForbidden) {
			return errors.New(fetch.ErrPermissionDenied.Error())
		}
		return fmt.Errorf("resolving channel: %w", err)
	}

	var guild *model.Guild
	if channel.GuildID != "" {
		// Non-fatal; the export just omits the server name.
		guild, _ = client.Guild(ctx, channel.GuildID)
	}

	limiter := rate.NewLimiter(pacingRate(exportArgs.Delay), 1)

	// Config edits mid-run retune the pacing between pages. The --delay
	// flag pins the rate for the whole run.
	if !exportArgs.DelaySet {
		if cfgPath, err := config.ConfigPath(); err == nil {
			if watcher, err := config.NewWatcher(cfgPath, pacingReload(limiter)); err == nil {
				if watcher.Watch() == nil {
					defer watcher.Close()
				} else {
					watcher.Close()
				}
			}
		}
	}

	events := make(chan fetch.Progress, 16)
	result := make(chan exportview.Result, 1)

	go runExport(ctx, client, channel, guild, exportArgs, limiter, abort, events, result, log)

	if exportArgs.Plain || !IsStdoutTTY() {
		return runPlain(args, events, result)
	}
	return runTUI(cfg, channel, abort, events, result)
}

// pacingRate converts a between-pages delay into a limiter rate.
func pacingRate(d time.Duration) rate.Limit {
	if d <= 0 {
		d = fetch.DefaultBatchDelay
	}
	return rate.Every(d)
}

// pacingReload retunes the fetch pacing from a freshly reloaded config.
func pacingReload(limiter *rate.Limiter) func(*config.Config) {
	return func(c *config.Config) {
		limiter.SetLimit(pacingRate(c.Export.BatchDelay()))
	}
}

// runExport is the worker: fetch all pages, write the document, record
// the run. It owns the events and result channels.
func runExport(ctx context.Context, client *api.Client, channel *model.Channel, guild *model.Guild,
	exportArgs ExportArgs, limiter *rate.Limiter, abort *fetch.Abort,
	events chan<- fetch.Progress, result chan<- exportview.Result, log *debuglog.Logger) {

	defer close(events)

	beforeID, afterID := exportArgs.Window.Bounds()

	fetcher := fetch.New(client)
	messages, err := fetcher.FetchAll(ctx, channel.ID, fetch.Options{
		BeforeID:   beforeID,
		AfterID:    afterID,
		BatchDelay: exportArgs.Delay,
		Limiter:    limiter,
		Abort:      abort,
		Log:        log,
		OnProgress: func(p fetch.Progress) {
			select {
			case events <- p:
			default:
				// A stalled reader must not block the fetch loop.
			}
		},
	})

	rec := history.NewRecord(channel.ID, channel.ExportName())
	rec.MessageCount = len(messages)

	if err != nil {
		rec.Status = history.StatusFailed
		rec.Error = err.Error()
		recordRun(rec, log)
		result <- exportview.Result{Err: err}
		return
	}

	opts := &export.Options{
		Settings:  exportArgs.Settings,
		OutputDir: exportArgs.OutputDir,
	}
	path, err := export.WriteFile(export.NewMarkdownExporter(opts), channel, guild, messages, exportArgs.Window, opts)
	if err != nil {
		rec.Status = history.StatusFailed
		rec.Error = err.Error()
		recordRun(rec, log)
		result <- exportview.Result{Err: err}
		return
	}

	cancelled := abort.Aborted()
	if cancelled {
		rec.Status = history.StatusCancelled
	} else {
		rec.Status = history.StatusComplete
	}
	rec.OutputPath = path
	recordRun(rec, log)

	result <- exportview.Result{
		OutputPath:   path,
		MessageCount: len(messages),
		Cancelled:    cancelled,
	}
}

// recordRun persists a history record, best effort.
func recordRun(rec *history.Record, log *debuglog.Logger) {
	path, err := history.DefaultPath()
	if err != nil {
		return
	}
	store, err := history.Open(path)
	if err != nil {
		log.Warn("history store unavailable", map[string]any{"error": err.Error()})
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Add(ctx, rec); err != nil {
		log.Warn("failed to record export run", map[string]any{"error": err.Error()})
	}
}

// runTUI drives the Bubble Tea export view.
func runTUI(cfg *config.Config, channel *model.Channel, abort *fetch.Abort,
	events <-chan fetch.Progress, result <-chan exportview.Result) error {

	theme := styles.NewTheme(cfg.UI.Theme)
	view := exportview.New(channel.Label(), theme, abort, events, result)

	program := tea.NewProgram(view)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("running export view: %w", err)
	}

	if m, ok := final.(exportview.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

// runPlain consumes progress on stdout without a TUI.
func runPlain(args Args, events <-chan fetch.Progress, result <-chan exportview.Result) error {
	for p := range events {
		if args.Quiet {
			continue
		}
		if p.Done {
			fmt.Printf("Fetched %d messages\n", p.Fetched)
		} else {
			fmt.Printf("Fetched %d messages...\n", p.Fetched)
		}
	}

	res := <-result
	if res.Err != nil {
		return res.Err
	}
	if res.Cancelled {
		fmt.Printf("Export stopped; %d messages saved to %s\n", res.MessageCount, res.OutputPath)
		return nil
	}
	if !args.Quiet {
		fmt.Printf("Exported %d messages to %s\n", res.MessageCount, res.OutputPath)
	} else {
		fmt.Println(res.OutputPath)
	}
	return nil
}
