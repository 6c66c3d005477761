// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for Voxa.
//
// Configuration is a TOML file with sensible defaults, environment variable
// overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - OllamaConfig: model server URL, model name, request timeout
//   - UIConfig: theme, code style, frame rate, wrap width
//   - AppConfig: debug logging and file locations
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (VOXA_*, OLLAMA_HOST), including ones set by a
//     .env file in the working directory
//   - ~/.voxa/config.toml (VOXA_HOME moves the directory)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.Ollama.URL})
//
// Dot-notation access for the config command:
//
//	cfg.Set("ui.max_fps", "60")
//	v, _ := cfg.Get("ollama.model")
//
// Live reload:
//
//	config.Watch(ctx, path, 0, func(cfg *config.Config, err error) { ... })
package config
