// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/morganforge/chanmark/internal/model"
	"github.com/morganforge/chanmark/internal/timerange"
)

func dateOf(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFilename(t *testing.T) {
	channel := testChannel()
	dm := &model.Channel{ID: "424242", Type: model.ChannelDM}

	tests := []struct {
		name    string
		channel *model.Channel
		window  timerange.Range
		want    string
	}{
		{
			name:    "bounded window",
			channel: channel,
			window:  timerange.Range{From: dateOf(2024, 1, 1), To: dateOf(2024, 1, 31)},
			want:    "general-export-2024-01-01_to_2024-01-31.md",
		},
		{
			name:    "from only",
			channel: channel,
			window:  timerange.Range{From: dateOf(2024, 1, 1)},
			want:    "general-export-from_2024-01-01.md",
		},
		{
			name:    "to only",
			channel: channel,
			window:  timerange.Range{To: dateOf(2024, 1, 31)},
			want:    "general-export-to_2024-01-31.md",
		},
		{
			name:    "unbounded uses export date",
			channel: channel,
			window:  timerange.Range{},
			want:    "general-export-all_2024-06-12.md",
		},
		{
			name:    "dm channel falls back to id",
			channel: dm,
			window:  timerange.Range{},
			want:    "dm-424242-export-all_2024-06-12.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filename(tt.channel, tt.window, testExportedAt, ".md")
			if got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"general", "general"},
		{"a/b\\c:d", "a-b-c-d"},
		{"two words", "two_words"},
		{"", "channel"},
		{strings.Repeat("x", 100), strings.Repeat("x", 80)},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions()
	opts.OutputDir = filepath.Join(dir, "exports")

	msgs := []model.Message{testMessage("1", "hello")}
	path, err := WriteFile(NewMarkdownExporter(opts), testChannel(), nil, msgs, timerange.Range{}, opts)
	if err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	if filepath.Base(path) != "general-export-all_2024-06-12.md" {
		t.Errorf("unexpected output name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("output missing message content:\n%s", data)
	}
}

func TestWriteFileBadDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := testOptions()
	opts.OutputDir = filepath.Join(blocker, "nested")

	_, err := WriteFile(NewMarkdownExporter(opts), testChannel(), nil, nil, timerange.Range{}, opts)
	if err == nil {
		t.Fatal("expected error for unwritable output dir")
	}
}
