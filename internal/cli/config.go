// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for voxa.
//
// Command: config [subcommand]
// Aliases: cfg
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Set a value and save the file
//   reset               Reset the file to defaults
//   path                Show the configuration file path
//   keys                List the settable keys
//
// Examples:
//   voxa config set ollama.model llama3.2
//   voxa config set ui.theme light
//   voxa config set ollama.request_timeout_secs 0
//   voxa config get ui.max_fps
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/maanis/voxa/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(rt *Runtime, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(rt)
	case "get":
		return handleConfigGet(rt, args.ConfigKey)
	case "set":
		return handleConfigSet(rt, args.ConfigKey, args.ConfigVal)
	case "reset":
		return handleConfigReset(rt)
	case "path":
		return handleConfigPath(rt)
	case "keys":
		for _, key := range config.GetAllKeys() {
			fmt.Fprintln(rt.Stdout, key)
		}
		return nil
	default:
		return NewUsageError("unknown config subcommand: " + args.Subcommand)
	}
}

// handleConfigShow prints every key with its effective value, grouped by
// section. Environment overrides and flags are included.
func handleConfigShow(rt *Runtime) error {
	fmt.Fprintln(rt.Stdout, TitleStyle.Render("Voxa Configuration"))

	section := ""
	for _, key := range config.GetAllKeys() {
		value, err := rt.Config.Get(key)
		if err != nil {
			return err
		}

		name := key
		if sec, field, ok := strings.Cut(key, "."); ok {
			if sec != section {
				section = sec
				fmt.Fprintf(rt.Stdout, "\n%s\n", ValueStyle.Bold(true).Render("["+sec+"]"))
			}
			name = field
		}
		fmt.Fprintf(rt.Stdout, "  %s %s\n", LabelStyle.Width(24).Render(name+":"), ValueStyle.Render(formatValue(value)))
	}

	fmt.Fprintln(rt.Stdout)
	fmt.Fprintf(rt.Stdout, "%s %s\n", DimStyle.Render("Config file:"), rt.ConfigPath)
	return nil
}

func handleConfigGet(rt *Runtime, key string) error {
	value, err := rt.Config.Get(key)
	if err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error(), Example: "voxa config keys"}
	}
	fmt.Fprintln(rt.Stdout, formatValue(value))
	return nil
}

// handleConfigSet edits the file as written, so environment overrides and
// flags in effect are not saved with it.
func handleConfigSet(rt *Runtime, key, value string) error {
	if key == "" || value == "" {
		return ErrMissingArgument("KEY VALUE", "voxa config set KEY VALUE")
	}

	cfg, err := config.ReadFile(rt.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error(), Example: "voxa config keys"}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := config.SaveTo(cfg, rt.ConfigPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	saved, _ := cfg.Get(key)
	fmt.Fprintf(rt.Stdout, "%s %s = %s\n", RenderStatus("ok"), key, formatValue(saved))
	return nil
}

func handleConfigReset(rt *Runtime) error {
	if err := config.SaveTo(config.Default(), rt.ConfigPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(rt.Stdout, "%s Configuration reset to defaults\n", RenderStatus("ok"))
	return nil
}

func handleConfigPath(rt *Runtime) error {
	fmt.Fprintln(rt.Stdout, rt.ConfigPath)
	if _, err := os.Stat(rt.ConfigPath); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(rt.Stderr, "%s file does not exist yet; defaults are in use\n", DimStyle.Render("Note:"))
	}
	return nil
}

// formatValue prints config values; empty strings show as "(default)".
func formatValue(v interface{}) string {
	if s, ok := v.(string); ok && s == "" {
		return "(default)"
	}
	return fmt.Sprint(v)
}
