// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package snowflake

import (
	"testing"
	"time"
)

// TestRoundTrip verifies snowflake<->timestamp conversion recovers the
// original instant to millisecond precision for dates at/after the epoch.
func TestRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.UnixMilli(Epoch).UTC(), // exactly the epoch
		time.Date(2015, 1, 1, 0, 0, 0, 1e6, time.UTC),
		time.Date(2020, 6, 15, 8, 45, 30, 123e6, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 999e6, time.UTC),
		time.Date(2038, 1, 19, 3, 14, 7, 0, time.UTC),
	}

	for _, d := range dates {
		id := FromTime(d)
		got, err := Time(id)
		if err != nil {
			t.Fatalf("Time(%q) failed: %v", id, err)
		}
		if !got.Equal(d.Truncate(time.Millisecond)) {
			t.Errorf("round trip of %v = %v", d, got)
		}
	}
}

// TestFromTimeKnownValue pins the shift math against a hand-computed id.
func TestFromTimeKnownValue(t *testing.T) {
	// One second after the epoch: 1000 << 22.
	d := time.UnixMilli(Epoch + 1000).UTC()
	if got := FromTime(d); got != "4194304000" {
		t.Errorf("FromTime = %q, expected 4194304000", got)
	}
}

// TestFromTimeBeforeEpoch verifies pre-epoch dates clamp to id zero.
func TestFromTimeBeforeEpoch(t *testing.T) {
	d := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := FromTime(d); got != "0" {
		t.Errorf("FromTime before epoch = %q, expected 0", got)
	}
}

// TestCompare verifies creation-order comparison.
func TestCompare(t *testing.T) {
	older := FromTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := FromTime(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))

	if Compare(older, newer) != -1 {
		t.Error("older id should compare before newer id")
	}
	if Compare(newer, older) != 1 {
		t.Error("newer id should compare after older id")
	}
	if Compare(older, older) != 0 {
		t.Error("equal ids should compare equal")
	}
}

// TestParseInvalid verifies malformed ids surface an error.
func TestParseInvalid(t *testing.T) {
	if _, err := Parse("not-a-number"); err == nil {
		t.Error("Parse should fail for a non-numeric id")
	}
	if _, err := Time(""); err == nil {
		t.Error("Time should fail for an empty id")
	}
}
