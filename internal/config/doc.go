// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for chanmark.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, validation, and live reload via a file watcher.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: API endpoint and token
//   - ExportConfig: Export facet toggles, pacing, and output location
//   - Watcher: Reloads the global config when the file changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHANMARK_*)
//   - ~/.chanmark/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	delay := cfg.Export.BatchDelay()
//	dir := cfg.Export.OutputDir
package config
