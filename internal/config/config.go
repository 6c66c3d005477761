// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/maanis/voxa/internal/util"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// CurrentVersion is written to new config files.
	CurrentVersion = "1"

	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "qwen2.5:0.5b"
	DefaultTheme       = "auto"
	DefaultCodeStyle   = "monokai"
	DefaultMaxFPS      = 30

	// MaxFPSLimit caps the render frame rate.
	MaxFPSLimit = 240
)

// ValidThemes are the accepted values of ui.theme.
var ValidThemes = []string{"auto", "dark", "light"}

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete Voxa configuration.
type Config struct {
	Version string `toml:"version"`

	// Ollama server connection
	Ollama OllamaConfig `toml:"ollama"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Application settings
	App AppConfig `toml:"app"`
}

// OllamaConfig holds model server settings.
type OllamaConfig struct {
	// URL is the server base URL, without the /api path.
	URL string `toml:"url"`

	// Model is the model name sent with chat requests.
	Model string `toml:"model"`

	// RequestTimeoutSecs bounds one chat exchange. 0 disables the limit.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

// RequestTimeout returns the exchange timeout as a duration.
func (o OllamaConfig) RequestTimeout() time.Duration {
	return time.Duration(o.RequestTimeoutSecs) * time.Second
}

// UIConfig holds display settings.
type UIConfig struct {
	Theme          string `toml:"theme"`
	ShowTimestamps bool   `toml:"show_timestamps"`
	ShowStats      bool   `toml:"show_stats"`

	// CodeStyle is a chroma style name for code blocks.
	CodeStyle string `toml:"code_style"`

	// MaxFPS limits how often a streaming reply is re-rendered.
	MaxFPS int `toml:"max_fps"`

	// WrapWidth caps the message width in columns. 0 uses the terminal width.
	WrapWidth int `toml:"wrap_width"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Debug       bool   `toml:"debug"`
	LogFile     string `toml:"log_file"`
	HistoryFile string `toml:"history_file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Ollama: OllamaConfig{
			URL:   DefaultOllamaURL,
			Model: DefaultOllamaModel,
		},
		UI: UIConfig{
			Theme:     DefaultTheme,
			ShowStats: true,
			CodeStyle: DefaultCodeStyle,
			MaxFPS:    DefaultMaxFPS,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the Voxa configuration directory. VOXA_HOME overrides
// the default of ~/.voxa.
func ConfigDir() (string, error) {
	if dir := os.Getenv("VOXA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".voxa"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogFilePath returns the configured log file, or voxa.log in the config
// directory.
func (c *Config) LogFilePath() (string, error) {
	return c.pathOrDefault(c.App.LogFile, "voxa.log")
}

// HistoryFilePath returns the configured REPL history file, or history in
// the config directory.
func (c *Config) HistoryFilePath() (string, error) {
	return c.pathOrDefault(c.App.HistoryFile, "history")
}

func (c *Config) pathOrDefault(configured, name string) (string, error) {
	if configured != "" {
		return expandHome(configured), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads .env from the working directory, then the config file, and
// applies environment overrides. A missing config file yields defaults.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	return LoadFromPath(path)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file with defaults,
// environment overrides and validation applied.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile decodes the file at path with defaults filled in and nothing
// else applied. A missing file yields defaults. Use it to edit and save the
// file without persisting environment overrides.
func ReadFile(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	fillDefaults(cfg)
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = defaults.Ollama.URL
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = defaults.Ollama.Model
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.CodeStyle == "" {
		cfg.UI.CodeStyle = defaults.UI.CodeStyle
	}
	if cfg.UI.MaxFPS == 0 {
		cfg.UI.MaxFPS = defaults.UI.MaxFPS
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to path atomically with 0600 permissions.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# Voxa configuration file\n")
	buf.WriteString("# Generated by voxa - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := validateURL(c.Ollama.URL); err != nil {
		errs = append(errs, ValidationError{Field: "ollama.url", Message: err.Error()})
	}
	if strings.TrimSpace(c.Ollama.Model) == "" {
		errs = append(errs, ValidationError{Field: "ollama.model", Message: "must not be empty"})
	}
	if c.Ollama.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "ollama.request_timeout_secs",
			Message: fmt.Sprintf("must be 0 or positive, got %d", c.Ollama.RequestTimeoutSecs),
		})
	}

	if !isValidTheme(c.UI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: %s", c.UI.Theme, strings.Join(ValidThemes, ", ")),
		})
	}
	if c.UI.MaxFPS < 1 || c.UI.MaxFPS > MaxFPSLimit {
		errs = append(errs, ValidationError{
			Field:   "ui.max_fps",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxFPSLimit, c.UI.MaxFPS),
		})
	}
	if c.UI.WrapWidth < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.wrap_width",
			Message: fmt.Sprintf("must be 0 or positive, got %d", c.UI.WrapWidth),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func isValidTheme(name string) bool {
	for _, t := range ValidThemes {
		if t == name {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variables on top of the file values.
//
//   - VOXA_OLLAMA_URL: overrides ollama.url
//   - OLLAMA_HOST: used for ollama.url when VOXA_OLLAMA_URL is unset
//   - VOXA_MODEL: overrides ollama.model
//   - VOXA_THEME: overrides ui.theme
//   - VOXA_DEBUG: overrides app.debug
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("VOXA_OLLAMA_URL"); u != "" {
		c.Ollama.URL = u
	} else if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.Ollama.URL = hostToURL(host)
	}

	if model := os.Getenv("VOXA_MODEL"); model != "" {
		c.Ollama.Model = model
	}

	if theme := os.Getenv("VOXA_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if debug := os.Getenv("VOXA_DEBUG"); debug != "" {
		c.App.Debug = parseBool(debug)
	}
}

// hostToURL accepts OLLAMA_HOST in the forms the server itself accepts:
// "host:port", "0.0.0.0" or a full URL.
func hostToURL(host string) string {
	if strings.Contains(host, "://") {
		return strings.TrimRight(host, "/")
	}
	if host == "0.0.0.0" || strings.HasPrefix(host, "0.0.0.0:") {
		host = "localhost" + strings.TrimPrefix(host, "0.0.0.0")
	}
	if !strings.Contains(host, ":") {
		host += ":11434"
	}
	return "http://" + host
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration in TOML form.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
