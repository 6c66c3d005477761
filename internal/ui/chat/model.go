// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maanis/voxa/internal/config"
	"github.com/maanis/voxa/internal/render"
	"github.com/maanis/voxa/internal/session"
	"github.com/maanis/voxa/internal/ui/components"
	"github.com/maanis/voxa/internal/ui/styles"
)

// Placeholder is shown in the empty input.
const Placeholder = "Ask Voxa AI anything..."

// inputHeight is the number of text rows in the input area.
const inputHeight = 3

// ServerProbe checks whether the model server is reachable. *ollama.Client
// implements it.
type ServerProbe interface {
	CheckRunning(ctx context.Context) (string, error)
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a chat Model.
type Options struct {
	// Controller runs the exchanges. Required.
	Controller *session.Controller

	// Probe, if set, is used to show the server state in the header.
	Probe ServerProbe

	// Config supplies UI settings. Defaults are used when nil.
	Config *config.Config

	// ConfigPath, if set, is watched and reloaded on change.
	ConfigPath string

	// Context bounds every exchange and the config watch. Defaults to
	// context.Background.
	Context context.Context
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg        *config.Config
	configPath string
	reloads    chan ConfigReloadedMsg

	ctrl  *session.Controller
	probe ServerProbe

	// Styling
	theme       *styles.Theme
	renderer    *render.Renderer
	highlighter render.Highlighter

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	header   *components.Header
	status   *components.StatusBar
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	keys     KeyMap

	// Streaming
	streaming bool
	buffer    *StreamingBuffer
	events    chan tea.Msg

	// Finished messages rendered at cacheWidth, by message ID.
	rendered   map[string]string
	cacheWidth int

	showHelp  bool
	noticeSeq int
	quitting  bool

	clipboardWrite func(string) error
}

// New creates a chat model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	theme, err := styles.NewThemeNamed(cfg.UI.Theme)
	if err != nil {
		theme = styles.NewTheme()
	}

	ta := textarea.New()
	ta.Placeholder = Placeholder
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = styles.ThinkingSpinner

	m := Model{
		ctx:            ctx,
		cancel:         cancel,
		cfg:            cfg,
		configPath:     opts.ConfigPath,
		reloads:        make(chan ConfigReloadedMsg, 1),
		ctrl:           opts.Controller,
		probe:          opts.Probe,
		viewport:       viewport.New(80, 20),
		input:          ta,
		spinner:        sp,
		keys:           DefaultKeyMap(),
		buffer:         NewStreamingBuffer(cfg.UI.MaxFPS),
		rendered:       make(map[string]string),
		clipboardWrite: clipboard.WriteAll,
	}
	m.applyTheme(theme)
	m.header.SetModel(m.ctrl.Model())
	return m
}

// applyTheme restyles every component with theme.
func (m *Model) applyTheme(theme *styles.Theme) {
	m.theme = theme
	m.highlighter = render.NewChromaHighlighter(m.cfg.UI.CodeStyle, theme.ColorProfile)
	m.renderer = render.NewRenderer(render.StylesFromTheme(theme), m.highlighter)

	header := components.NewHeader(theme)
	status := components.NewStatusBar(theme)
	if m.header != nil {
		header.ModelName = m.header.ModelName
		header.Connection = m.header.Connection
		status.Status = m.status.Status
		status.MessageCount = m.status.MessageCount
		status.LastStats = m.status.LastStats
		status.Notice = m.status.Notice
	}
	m.header = header
	m.status = status

	m.spinner.Style = theme.Spinner
	m.input.FocusedStyle.Placeholder = theme.InputPlaceholder
	m.input.FocusedStyle.Prompt = theme.InputPrompt
	m.input.BlurredStyle.Placeholder = theme.InputPlaceholder

	m.invalidateCache()
	m.resize()
}

// Init starts the cursor blink, the server check and the config watch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.probe != nil {
		cmds = append(cmds, checkServerCmd(m.ctx, m.probe))
	}
	if m.configPath != "" {
		cmds = append(cmds, watchConfigCmd(m.ctx, m.configPath, m.reloads), waitForReload(m.reloads))
	}
	return tea.Batch(cmds...)
}

// Streaming reports whether a reply is in progress.
func (m Model) Streaming() bool {
	return m.streaming
}

// Controller returns the session controller.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}

// =============================================================================
// LAYOUT
// =============================================================================

// resize lays the components out for the current window size.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.theme.SetSize(m.width, m.height)
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.input.SetWidth(m.width - m.theme.InputContainer.GetHorizontalFrameSize())

	chrome := lipgloss.Height(m.header.View()) +
		inputHeight + m.theme.InputContainer.GetVerticalFrameSize() +
		1
	m.viewport.Width = m.width
	m.viewport.Height = maxInt(m.height-chrome, 1)

	if m.cacheWidth != m.width {
		m.invalidateCache()
		m.cacheWidth = m.width
	}
}

func (m *Model) invalidateCache() {
	m.rendered = make(map[string]string)
}
