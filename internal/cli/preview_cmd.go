// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// preview_cmd.go - Render an exported Markdown file in the terminal.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer is the glamour renderer for terminal preview.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(defaultTerminalWidth),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or the renderer is
// unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// HandlePreview prints an exported document, styled when stdout is a
// terminal, verbatim when piped.
func HandlePreview(args Args) error {
	parser := NewArgParser(args.Raw)

	path := parser.Positional(0)
	if path == "" {
		return NewUsageError("preview requires a file path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if IsStdoutTTY() && !parser.BoolFlag("plain") {
		fmt.Print(renderMarkdown(string(data)))
	} else {
		fmt.Print(string(data))
	}
	return nil
}
