// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for chanmark.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.chanmark/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/chanmark/internal/export"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chanmark configuration.
type Config struct {
	// API configuration
	API APIConfig `toml:"api"`

	// Export configuration
	Export ExportConfig `toml:"export"`

	// Debug configuration
	Debug DebugConfig `toml:"debug"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// APIConfig contains the API connection configuration.
type APIConfig struct {
	// Token is the user authorization token sent verbatim in the
	// Authorization header.
	Token string `toml:"token"`
	// BaseURL overrides the API base URL. Empty means the production
	// endpoint; useful for proxies and tests.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request HTTP timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ExportConfig contains export defaults.
type ExportConfig struct {
	// Settings are the default facet toggles for new exports.
	Settings export.Settings `toml:"settings"`
	// BatchDelayMs is the pause between message pages in milliseconds.
	BatchDelayMs int `toml:"batch_delay_ms"`
	// OutputDir is where exported documents are written.
	OutputDir string `toml:"output_dir"`
}

// DebugConfig controls the debug log.
type DebugConfig struct {
	// Enabled turns on the per-run debug log file.
	Enabled bool `toml:"enabled"`
	// LogPath overrides the debug log location
	// (default ~/.chanmark/export-debug.log).
	LogPath string `toml:"log_path"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme selects the color theme: "dark", "light", or "auto".
	Theme string `toml:"theme"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// BatchDelay returns the page delay as a duration.
func (c *ExportConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMs) * time.Millisecond
}

// Timeout returns the HTTP timeout as a duration.
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			TimeoutSecs: 30,
		},
		Export: ExportConfig{
			Settings:     export.DefaultSettings(),
			BatchDelayMs: 600,
			OutputDir:    ".",
		},
		Debug: DebugConfig{
			Enabled: false,
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chanmark configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chanmark"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to
// protect the API token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults when none exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}

	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	// SECURITY: Check and fix file permissions if needed
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file: %w", err)
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults. Decoding on
// top of Default() already preserves unset sections; this catches only
// explicit zero values that have no meaning.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.Export.BatchDelayMs < 0 {
		c.Export.BatchDelayMs = defaults.Export.BatchDelayMs
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = defaults.Export.OutputDir
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner
// read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# chanmark configuration file")
	fmt.Fprintln(file, "# Generated by chanmark - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors aggregates all validation failures.
type ValidateErrors []ValidationError

// Error implements the error interface.
func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values. A missing token
// is not a validation error; commands that need it report it at use.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.API.BaseURL != "" {
		if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "api.base_url",
				Message: fmt.Sprintf("not a valid URL: %q", c.API.BaseURL),
			})
		}
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.API.TimeoutSecs),
		})
	}
	if c.Export.BatchDelayMs < 0 || c.Export.BatchDelayMs > 60000 {
		errs = append(errs, ValidationError{
			Field:   "export.batch_delay_ms",
			Message: fmt.Sprintf("must be between 0 and 60000, got %d", c.Export.BatchDelayMs),
		})
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be dark, light, or auto, got %q", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//
//	CHANMARK_TOKEN          - API token
//	CHANMARK_BASE_URL       - API base URL
//	CHANMARK_BATCH_DELAY_MS - delay between message pages
//	CHANMARK_OUTPUT_DIR     - export output directory
//	CHANMARK_DEBUG          - "1"/"true" enables the debug log
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHANMARK_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("CHANMARK_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CHANMARK_BATCH_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			c.Export.BatchDelayMs = ms
		}
	}
	if v := os.Getenv("CHANMARK_OUTPUT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv("CHANMARK_DEBUG"); v != "" {
		c.Debug.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide configuration, loading it on first
// use. Load errors fall back to defaults.
func Global() *Config {
	globalMu.RLock()
	if globalCfg != nil {
		defer globalMu.RUnlock()
		return globalCfg
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalCfg == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalCfg = cfg
	}
	return globalCfg
}

// ReloadGlobal reloads the global configuration from disk.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
	return nil
}

// SetGlobal replaces the global configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
}

// ResetGlobalForTesting clears the global configuration.
func ResetGlobalForTesting() {
	globalMu.Lock()
	globalCfg = nil
	globalMu.Unlock()
}
