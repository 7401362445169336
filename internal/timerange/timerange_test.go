// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package timerange

import (
	"testing"
	"time"

	"github.com/morganforge/chanmark/internal/snowflake"
)

// TestForPreset verifies preset resolution against a fixed clock.
func TestForPreset(t *testing.T) {
	// Wednesday, 2024-06-12.
	now := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)
	today := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		preset Preset
		from   time.Time
		to     time.Time
	}{
		{PresetToday, today, today},
		{PresetThisWeek, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), today}, // Monday
		{PresetThisMonth, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), today},
		{PresetThisYear, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), today},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			r := ForPreset(tc.preset, now)
			if r.From == nil || !r.From.Equal(tc.from) {
				t.Errorf("From = %v, expected %v", r.From, tc.from)
			}
			if r.To == nil || !r.To.Equal(tc.to) {
				t.Errorf("To = %v, expected %v", r.To, tc.to)
			}
		})
	}

	if r := ForPreset(PresetAll, now); r.IsBounded() {
		t.Error("PresetAll should be unbounded")
	}
}

// TestForPresetSundayWeek verifies that on a Sunday the week still starts
// the previous Monday.
func TestForPresetSundayWeek(t *testing.T) {
	now := time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC) // Sunday
	r := ForPreset(PresetThisWeek, now)
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) // previous Monday
	if r.From == nil || !r.From.Equal(want) {
		t.Errorf("From = %v, expected %v", r.From, want)
	}
}

// TestEndOfDay verifies the day boundary extends to 23:59:59.999.
func TestEndOfDay(t *testing.T) {
	d := time.Date(2024, 3, 5, 10, 11, 12, 0, time.UTC)
	end := EndOfDay(d)
	want := time.Date(2024, 3, 5, 23, 59, 59, 999e6, time.UTC)
	if !end.Equal(want) {
		t.Errorf("EndOfDay = %v, expected %v", end, want)
	}
}

// TestBounds verifies the window converts into exclusive snowflake bounds.
func TestBounds(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	r := Range{From: &from, To: &to}

	beforeID, afterID := r.Bounds()
	if beforeID == "" || afterID == "" {
		t.Fatal("both bounds should be set")
	}

	beforeTime, err := snowflake.Time(beforeID)
	if err != nil {
		t.Fatalf("bad beforeID: %v", err)
	}
	if !beforeTime.Equal(EndOfDay(to)) {
		t.Errorf("beforeID time = %v, expected end of To day", beforeTime)
	}

	afterTime, err := snowflake.Time(afterID)
	if err != nil {
		t.Fatalf("bad afterID: %v", err)
	}
	if !afterTime.Equal(from) {
		t.Errorf("afterID time = %v, expected start of From day", afterTime)
	}

	if b, a := (Range{}).Bounds(); b != "" || a != "" {
		t.Error("unbounded range should produce empty bounds")
	}
}

// TestSuffix verifies the filename suffix for every bound combination.
func TestSuffix(t *testing.T) {
	now := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    Range
		want string
	}{
		{"both", Range{From: &from, To: &to}, "2024-03-01_to_2024-03-05"},
		{"from only", Range{From: &from}, "from_2024-03-01"},
		{"to only", Range{To: &to}, "to_2024-03-05"},
		{"unbounded", Range{}, "all_2024-06-12"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.Suffix(now); got != tc.want {
				t.Errorf("Suffix() = %q, expected %q", got, tc.want)
			}
		})
	}
}

// TestParseDate verifies date parsing and the empty-input nil bound.
func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-05")
	if err != nil || got == nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 5 {
		t.Errorf("ParseDate = %v", got)
	}

	if got, err := ParseDate(""); err != nil || got != nil {
		t.Errorf("empty input should yield nil bound, got %v, %v", got, err)
	}

	if _, err := ParseDate("03/05/2024"); err == nil {
		t.Error("ParseDate should reject non-ISO input")
	}
}
