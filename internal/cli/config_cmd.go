// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Show and update the chanmark configuration file.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/morganforge/chanmark/internal/config"
)

// HandleConfig routes the config subcommands: show (default),
// set <key> <value>, and path.
func HandleConfig(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return configShow()
	case "set":
		return configSet(parser)
	case "path":
		return configPath()
	default:
		return NewUsageError("unknown config subcommand: %s", parser.Subcommand())
	}
}

func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return &CommandError{Command: "config", Action: "load configuration", Err: err}
	}

	fmt.Printf("api.token            = %s\n", redactToken(cfg.API.Token))
	fmt.Printf("api.base_url         = %s\n", cfg.API.BaseURL)
	fmt.Printf("api.timeout_secs     = %d\n", cfg.API.TimeoutSecs)
	fmt.Printf("export.batch_delay_ms = %d\n", cfg.Export.BatchDelayMs)
	fmt.Printf("export.output_dir    = %s\n", cfg.Export.OutputDir)
	fmt.Printf("export.settings.embeds       = %t\n", cfg.Export.Settings.IncludeEmbeds)
	fmt.Printf("export.settings.attachments  = %t\n", cfg.Export.Settings.IncludeAttachments)
	fmt.Printf("export.settings.reactions    = %t\n", cfg.Export.Settings.IncludeReactions)
	fmt.Printf("export.settings.edit_history = %t\n", cfg.Export.Settings.IncludeEditHistory)
	fmt.Printf("export.settings.pins         = %t\n", cfg.Export.Settings.IncludePinIndicator)
	fmt.Printf("export.settings.system       = %t\n", cfg.Export.Settings.IncludeSystemMessages)
	fmt.Printf("ui.theme             = %s\n", cfg.UI.Theme)
	fmt.Printf("debug.enabled        = %t\n", cfg.Debug.Enabled)
	if cfg.Debug.LogPath != "" {
		fmt.Printf("debug.log_path       = %s\n", cfg.Debug.LogPath)
	}
	return nil
}

func configSet(parser *ArgParser) error {
	key := parser.Positional(0)
	value := parser.Positional(1)
	if key == "" || value == "" {
		return NewUsageError("config set requires a key and a value")
	}

	cfg, err := config.Load()
	if err != nil {
		return &CommandError{Command: "config", Action: "load configuration", Err: err}
	}

	if err := applyConfigKey(cfg, key, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := config.Save(cfg); err != nil {
		return &CommandError{Command: "config", Action: "save configuration", Err: err}
	}

	fmt.Printf("Set %s\n", key)
	return nil
}

func applyConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "api.token":
		cfg.API.Token = value
	case "api.base_url":
		cfg.API.BaseURL = value
	case "api.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return NewUsageError("%s expects an integer", key)
		}
		cfg.API.TimeoutSecs = n
	case "export.batch_delay_ms":
		n, err := strconv.Atoi(value)
		if err != nil {
			return NewUsageError("%s expects an integer", key)
		}
		cfg.Export.BatchDelayMs = n
	case "export.output_dir":
		cfg.Export.OutputDir = value
	case "ui.theme":
		cfg.UI.Theme = value
	case "debug.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return NewUsageError("%s expects true or false", key)
		}
		cfg.Debug.Enabled = b
	default:
		if strings.HasPrefix(key, "export.settings.") {
			return applySettingKey(cfg, strings.TrimPrefix(key, "export.settings."), value)
		}
		return NewUsageError("unknown config key: %s", key)
	}
	return nil
}

func applySettingKey(cfg *config.Config, name, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return NewUsageError("export.settings.%s expects true or false", name)
	}
	switch name {
	case "embeds":
		cfg.Export.Settings.IncludeEmbeds = b
	case "attachments":
		cfg.Export.Settings.IncludeAttachments = b
	case "reactions":
		cfg.Export.Settings.IncludeReactions = b
	case "edit_history":
		cfg.Export.Settings.IncludeEditHistory = b
	case "pins":
		cfg.Export.Settings.IncludePinIndicator = b
	case "system":
		cfg.Export.Settings.IncludeSystemMessages = b
	default:
		return NewUsageError("unknown config key: export.settings.%s", name)
	}
	return nil
}

func configPath() error {
	path, err := config.ConfigPath()
	if err != nil {
		return &CommandError{Command: "config", Action: "resolve path", Err: err}
	}
	fmt.Println(path)
	return nil
}

// redactToken hides all but the last four characters of a token.
func redactToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
