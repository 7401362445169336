// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for chanmark.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
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
	CmdExport Command = iota
	CmdPreview
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool

	// Raw args remaining after the command word and global flags
	Raw []string
}

const usageText = `chanmark - export channel message history to Markdown

Chanmark fetches the full message history of a channel through the HTTP
API, page by page and rate-limit aware, and renders it as a readable
Markdown document.

Usage:
  chanmark export <channel-id> [flags]   Export a channel
  chanmark preview <file>                Render an exported file in the terminal
  chanmark history [list|show|prune]     Past export runs
  chanmark config [show|set|path]        Configuration
  chanmark version                       Show version
  chanmark help                          Show this help

Export flags:
  --from YYYY-MM-DD        Only messages on or after this date
  --to YYYY-MM-DD          Only messages on or before this date
  --preset NAME            Date window preset: today, this_week,
                           this_month, this_year, all (default all)
  -o, --output DIR         Output directory (default from config)
  --delay MS               Pause between message pages in milliseconds
  --no-embeds              Skip embeds
  --no-reactions           Skip reactions
  --no-attachments         Skip attachment lists
  --no-edit-history        Skip edit history blocks
  --no-pins                Skip the pinned-message indicator
  --no-system              Skip system messages (joins, boosts, pins)
  --plain                  Plain line-based progress (no TUI)
  --debug                  Write a debug log to ~/.chanmark/export-debug.log

Global flags:
  --quiet                  Suppress non-essential output
  --verbose                Extra diagnostics

Examples:
  chanmark export 1089552938327228498
  chanmark export 1089552938327228498 --preset this_week
  chanmark export 1089552938327228498 --from 2024-01-01 --to 2024-01-31
  chanmark preview general-export-all_2024-06-12.md
  chanmark history list --limit 20

Configuration lives in ~/.chanmark/config.toml. The API token can also
be supplied via the CHANMARK_TOKEN environment variable.
`

// Parse parses os.Args and returns the command plus its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]

	var args Args
	rest := make([]string, 0, len(raw))
	for _, a := range raw {
		switch a {
		case "--quiet", "-q":
			args.Quiet = true
		case "--verbose":
			args.Verbose = true
		default:
			rest = append(rest, a)
		}
	}

	if len(rest) == 0 {
		return CmdHelp, args
	}

	cmd := rest[0]
	args.Raw = rest[1:]

	switch cmd {
	case "export", "e":
		return CmdExport, args
	case "preview", "p":
		return CmdPreview, args
	case "history":
		return CmdHistory, args
	case "config":
		return CmdConfig, args
	case "version", "-v", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// PrintUsage prints the top-level usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// HandleVersion prints version information.
func HandleVersion(args Args) {
	fmt.Printf("chanmark %s\n", Version)
	if args.Verbose {
		fmt.Printf("  commit: %s\n", GitCommit)
		fmt.Printf("  built:  %s\n", BuildDate)
	}
}
