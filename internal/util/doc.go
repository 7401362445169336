// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across chanmark: UTF-8 safe
// string truncation, display-width measurement for terminal output, and
// crash-safe file writing.
//
//	// Truncate long strings safely for display
//	preview := util.TruncateRunes(content, 50)
//
//	// Write files atomically to prevent partial output
//	err := util.AtomicWriteFile(path, data, 0644)
package util
