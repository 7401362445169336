// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package timerange models the optional date window of an export:
// preset ranges, day boundaries, and the translation of a window into
// snowflake bounds for the fetch cursor.
package timerange

import (
	"fmt"
	"time"

	"github.com/morganforge/chanmark/internal/snowflake"
)

// =============================================================================
// PRESETS
// =============================================================================

// Preset is a named date range relative to "now".
type Preset string

const (
	PresetToday     Preset = "today"
	PresetThisWeek  Preset = "this_week"
	PresetThisMonth Preset = "this_month"
	PresetThisYear  Preset = "this_year"
	PresetAll       Preset = "all"
)

// Presets lists all presets in display order.
var Presets = []Preset{PresetToday, PresetThisWeek, PresetThisMonth, PresetThisYear, PresetAll}

// Label returns a human-readable name for the preset.
func (p Preset) Label() string {
	switch p {
	case PresetToday:
		return "Today"
	case PresetThisWeek:
		return "This Week"
	case PresetThisMonth:
		return "This Month"
	case PresetThisYear:
		return "This Year"
	case PresetAll:
		return "All"
	default:
		return string(p)
	}
}

// ParsePreset validates a preset name.
func ParsePreset(s string) (Preset, error) {
	p := Preset(s)
	switch p {
	case PresetToday, PresetThisWeek, PresetThisMonth, PresetThisYear, PresetAll:
		return p, nil
	}
	return "", fmt.Errorf("unknown date preset %q", s)
}

// =============================================================================
// RANGE
// =============================================================================

// Range is an optional date window. A nil bound means unbounded on that
// side; From and To are dates (midnight local time), with To extended to
// end-of-day when converted to a fetch bound.
type Range struct {
	From *time.Time
	To   *time.Time
}

// ForPreset resolves a preset against the given current time.
// Weeks start on Monday.
func ForPreset(p Preset, now time.Time) Range {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch p {
	case PresetToday:
		return Range{From: &today, To: &today}
	case PresetThisWeek:
		diff := int(now.Weekday()) - 1
		if now.Weekday() == time.Sunday {
			diff = 6
		}
		from := today.AddDate(0, 0, -diff)
		return Range{From: &from, To: &today}
	case PresetThisMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{From: &from, To: &today}
	case PresetThisYear:
		from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Range{From: &from, To: &today}
	default:
		return Range{}
	}
}

// ParseDate parses a YYYY-MM-DD value in local time. Empty input returns
// a nil bound.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", value, err)
	}
	return &t, nil
}

// EndOfDay returns the last representable millisecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999e6, t.Location())
}

// Bounds converts the range into fetch cursor bounds. The upper bound
// becomes beforeID (exclusive, end of the To day); the lower bound becomes
// afterID (exclusive, midnight of the From day). Empty strings mean
// unbounded.
func (r Range) Bounds() (beforeID, afterID string) {
	if r.To != nil {
		beforeID = snowflake.FromTime(EndOfDay(*r.To))
	}
	if r.From != nil {
		afterID = snowflake.FromTime(*r.From)
	}
	return beforeID, afterID
}

// Suffix returns the filename suffix describing the window:
// "{from}_to_{to}", "from_{from}", "to_{to}", or "all_{date}" where date
// is the export day in ISO form.
func (r Range) Suffix(now time.Time) string {
	const day = "2006-01-02"
	switch {
	case r.From != nil && r.To != nil:
		return r.From.Format(day) + "_to_" + r.To.Format(day)
	case r.From != nil:
		return "from_" + r.From.Format(day)
	case r.To != nil:
		return "to_" + r.To.Format(day)
	default:
		return "all_" + now.UTC().Format(day)
	}
}

// IsBounded reports whether either side of the window is set.
func (r Range) IsBounded() bool {
	return r.From != nil || r.To != nil
}

// String renders the range for logs and the history record.
func (r Range) String() string {
	const day = "2006-01-02"
	from, to := "none", "none"
	if r.From != nil {
		from = r.From.Format(day)
	}
	if r.To != nil {
		to = r.To.Format(day)
	}
	return from + ".." + to
}
