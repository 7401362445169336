// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders a fetched message history into a Markdown
// document and writes it out under the export filename convention.
package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/morganforge/chanmark/internal/model"
	"github.com/morganforge/chanmark/internal/timerange"
	"github.com/morganforge/chanmark/internal/util"
)

// =============================================================================
// EXPORT SETTINGS
// =============================================================================

// Settings are the toggles controlling which optional message facets are
// rendered. The zero value renders nothing optional; DefaultSettings
// matches the shipped defaults (everything on).
type Settings struct {
	IncludeEmbeds         bool `toml:"include_embeds"`
	IncludeReactions      bool `toml:"include_reactions"`
	IncludeAttachments    bool `toml:"include_attachments"`
	IncludeEditHistory    bool `toml:"include_edit_history"`
	IncludePinIndicator   bool `toml:"include_pin_indicator"`
	IncludeSystemMessages bool `toml:"include_system_messages"`
}

// DefaultSettings returns the default facet toggles (all enabled).
func DefaultSettings() Settings {
	return Settings{
		IncludeEmbeds:         true,
		IncludeReactions:      true,
		IncludeAttachments:    true,
		IncludeEditHistory:    true,
		IncludePinIndicator:   true,
		IncludeSystemMessages: true,
	}
}

// Options configures an export run.
type Options struct {
	// Settings are the facet toggles.
	Settings Settings

	// OutputDir is where exported files are written. Default: ".".
	OutputDir string

	// ExportedAt is the export timestamp rendered in the document
	// header and used for the unbounded filename suffix. Zero means
	// time.Now(). Fixing it makes output reproducible.
	ExportedAt time.Time

	// Location is the timezone for per-message timestamps.
	// Default: time.Local.
	Location *time.Location
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		Settings:  DefaultSettings(),
		OutputDir: ".",
	}
}

func (o *Options) exportedAt() time.Time {
	if o.ExportedAt.IsZero() {
		return time.Now()
	}
	return o.ExportedAt
}

func (o *Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// =============================================================================
// EXPORTER INTERFACE
// =============================================================================

// Exporter renders an ordered message history into a document.
type Exporter interface {
	// Build renders the document. Pure: no I/O, inputs unmodified.
	Build(channel *model.Channel, guild *model.Guild, messages []model.Message) []byte

	// FileExtension returns the output file extension (e.g. ".md").
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// Filename returns the export filename for a channel and date window:
// "<channelName-or-dm-id>-export-<suffix>.md" where the suffix encodes
// the window bounds (or the export date when unbounded).
func Filename(channel *model.Channel, window timerange.Range, exportedAt time.Time, ext string) string {
	return fmt.Sprintf("%s-export-%s%s",
		sanitizeFilename(channel.ExportName()), window.Suffix(exportedAt), ext)
}

// WriteFile builds the document and writes it under opts.OutputDir using
// the export filename convention. Returns the output path.
func WriteFile(exporter Exporter, channel *model.Channel, guild *model.Guild, messages []model.Message, window timerange.Range, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content := exporter.Build(channel, guild, messages)

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}

	outputPath := filepath.Join(dir, Filename(channel, window, opts.exportedAt(), exporter.FileExtension()))
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// sanitizeFilename replaces characters that are invalid in filenames on
// common platforms.
func sanitizeFilename(s string) string {
	const maxLen = 80
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			result = append(result, '-')
		case ' ', '\t', '\n', '\r':
			result = append(result, '_')
		default:
			if r < 32 || r == 127 {
				result = append(result, '-')
			} else {
				result = append(result, r)
			}
		}
	}
	if len(result) == 0 {
		return "channel"
	}
	return string(result)
}
