// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"

	"github.com/muesli/termenv"

	"github.com/maanis/voxa/internal/config"
	"github.com/maanis/voxa/internal/ollama"
	"github.com/maanis/voxa/internal/render"
	"github.com/maanis/voxa/internal/session"
	"github.com/maanis/voxa/internal/ui/styles"
)

// Runtime is what the command handlers share: settings, the server client
// and the process streams.
type Runtime struct {
	Config     *config.Config
	ConfigPath string
	Client     *ollama.Client
	Theme      *styles.Theme

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	StdinTTY  bool
	StdoutTTY bool
	Color     bool
	Width     int
}

// ApplyFlags copies the global flags onto cfg.
func ApplyFlags(cfg *config.Config, args Args) {
	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}
	if args.URL != "" {
		cfg.Ollama.URL = args.URL
	}
	if args.Debug {
		cfg.App.Debug = true
	}
}

// NewClient creates the server client for cfg.
func NewClient(cfg *config.Config) *ollama.Client {
	return ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: cfg.Ollama.Model,
	})
}

// NewRuntime builds a Runtime on the process streams. cfg must already
// have the flags applied.
func NewRuntime(cfg *config.Config, args Args) *Runtime {
	color := ColorsEnabled() && !args.NoColor
	ConfigureColor(color)

	path, _ := config.ConfigPath()
	rt := &Runtime{
		Config:     cfg,
		ConfigPath: path,
		Client:     NewClient(cfg),
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		StdinTTY:   IsTTY(),
		StdoutTTY:  IsStdoutTTY(),
		Color:      color,
		Width:      GetTerminalWidth(),
	}
	rt.Theme = newTheme(cfg.UI.Theme, color)
	return rt
}

func newTheme(name string, color bool) *styles.Theme {
	theme, err := styles.NewThemeNamed(name)
	if err != nil {
		theme = styles.NewTheme()
	}
	if !color {
		theme.ColorProfile = termenv.Ascii
	}
	return theme
}

// Renderer returns a segment renderer for stdout: themed and highlighted
// with colors, plain otherwise.
func (rt *Runtime) Renderer() *render.Renderer {
	var r *render.Renderer
	if rt.Color {
		r = render.NewRenderer(render.StylesFromTheme(rt.Theme),
			render.NewChromaHighlighter(rt.Config.UI.CodeStyle, rt.Theme.ColorProfile))
	} else {
		r = render.NewRenderer(render.PlainStyles(), render.PlainHighlighter{})
	}
	r.SetWidth(rt.wrapWidth())
	return r
}

func (rt *Runtime) wrapWidth() int {
	width := rt.Width
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	if w := rt.Config.UI.WrapWidth; w > 0 && w < width {
		width = w
	}
	return width
}

// NewController starts a chat session with the configured model and
// timeout.
func (rt *Runtime) NewController() *session.Controller {
	return session.NewController(rt.Client, session.Config{
		Model:          rt.Config.Ollama.Model,
		RequestTimeout: rt.Config.Ollama.RequestTimeout(),
		Debug:          rt.Config.App.Debug,
	})
}
