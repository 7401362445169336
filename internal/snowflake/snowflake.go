// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package snowflake converts between message ids and timestamps.
//
// A snowflake is a 64-bit integer id whose high 42 bits encode the
// creation time as milliseconds since the service epoch, left-shifted by
// 22 bits. Snowflakes therefore sort in creation order, which lets a
// timestamp stand in for an id when bounding an export range.
package snowflake

import (
	"fmt"
	"strconv"
	"time"
)

// Epoch is the service epoch: 2015-01-01T00:00:00Z in Unix milliseconds.
const Epoch int64 = 1420070400000

// timestampShift is the bit offset of the timestamp within a snowflake.
const timestampShift = 22

// FromTime returns the snowflake whose embedded timestamp is t, with all
// low bits zero. The result is the smallest id that could have been
// created at t, which makes it usable as an exclusive range boundary.
func FromTime(t time.Time) string {
	ms := t.UnixMilli() - Epoch
	if ms < 0 {
		ms = 0
	}
	return strconv.FormatUint(uint64(ms)<<timestampShift, 10)
}

// Time extracts the creation time embedded in a snowflake.
func Time(id string) (time.Time, error) {
	n, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	ms := int64(n>>timestampShift) + Epoch
	return time.UnixMilli(ms).UTC(), nil
}

// Parse converts a snowflake string to its numeric value.
func Parse(id string) (uint64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}
	return n, nil
}

// Compare orders two snowflakes by creation order: -1 if a was created
// before b, 0 if equal, 1 if after. Unparseable ids compare as zero.
func Compare(a, b string) int {
	na, _ := strconv.ParseUint(a, 10, 64)
	nb, _ := strconv.ParseUint(b, 10, 64)
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}
