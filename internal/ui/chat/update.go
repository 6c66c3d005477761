// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maanis/voxa/internal/config"
	"github.com/maanis/voxa/internal/ollama"
	"github.com/maanis/voxa/internal/session"
	"github.com/maanis/voxa/internal/ui/components"
	"github.com/maanis/voxa/internal/ui/styles"
)

// noticeDuration is how long a status bar notice stays up.
const noticeDuration = 4 * time.Second

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// checkServerCmd asks the server for its version.
func checkServerCmd(ctx context.Context, probe ServerProbe) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		version, err := probe.CheckRunning(ctx)
		return ServerStatusMsg{Version: version, Err: err}
	}
}

// watchConfigCmd starts watching path. Reloads are delivered on reloads.
func watchConfigCmd(ctx context.Context, path string, reloads chan<- ConfigReloadedMsg) tea.Cmd {
	return func() tea.Msg {
		err := config.Watch(ctx, path, 0, func(cfg *config.Config, err error) {
			select {
			case reloads <- ConfigReloadedMsg{Config: cfg, Err: err}:
			case <-ctx.Done():
			}
		})
		if err != nil {
			return noticeMsg{Text: "Config watch unavailable: " + err.Error()}
		}
		return nil
	}
}

// waitForReload delivers the next config reload.
func waitForReload(reloads <-chan ConfigReloadedMsg) tea.Cmd {
	return func() tea.Msg {
		return <-reloads
	}
}

func clearNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{Seq: seq}
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if _, held := m.buffer.Take(); held || m.status.Status == components.StatusThinking {
			m.refreshViewport()
		}
		return m, cmd

	case StreamUpdateMsg:
		if msg.Message.Content != "" {
			m.status.SetStatus(components.StatusStreaming)
		}
		m.refreshViewport()
		return m, waitForStream(m.events)

	case StreamDoneMsg:
		return m.finishStream(msg)

	case StreamErrorMsg:
		return m.failStream(msg)

	case ServerStatusMsg:
		if msg.Err != nil {
			m.header.SetConnection(components.ConnOffline)
		} else {
			m.header.SetConnection(components.ConnOnline)
		}
		return m, nil

	case ConfigReloadedMsg:
		var cmd tea.Cmd
		if msg.Err != nil {
			cmd = m.setNotice("Config not reloaded: " + msg.Err.Error())
		} else {
			m.applyConfig(msg.Config)
			cmd = m.setNotice("Config reloaded")
		}
		return m, tea.Batch(cmd, waitForReload(m.reloads))

	case noticeMsg:
		return m, m.setNotice(msg.Text)

	case clearNoticeMsg:
		if msg.Seq == m.noticeSeq {
			m.status.SetNotice("")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.streaming {
			m.ctrl.Cancel()
			return m, nil
		}
		return m.quit()

	case key.Matches(msg, m.keys.Cancel):
		if m.showHelp {
			m.showHelp = false
			m.refreshViewport()
			return m, nil
		}
		if m.streaming {
			m.ctrl.Cancel()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Clear):
		return m.clearConversation()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.ctrl.Close()
	m.cancel()
	return m, tea.Quit
}

// =============================================================================
// SENDING
// =============================================================================

// submit sends the input, or runs it as a slash command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		m.input.Reset()
		return m.handleCommand(text)
	}
	if m.streaming {
		return m, m.setNotice("Wait for the reply to finish, or press Esc to stop it")
	}

	m.input.Reset()
	m.showHelp = false
	m.streaming = true
	m.buffer.Reset()
	m.status.SetStatus(components.StatusThinking)

	events := make(chan tea.Msg, 8)
	m.events = events
	go runExchange(m.ctx, m.ctrl, text, m.buffer, events)

	return m, tea.Batch(waitForStream(events), m.spinner.Tick)
}

func (m Model) finishStream(msg StreamDoneMsg) (tea.Model, tea.Cmd) {
	m.streaming = false
	m.events = nil
	m.status.SetStatus(components.StatusReady)

	var cmd tea.Cmd
	if msg.Canceled {
		cmd = m.setNotice("Stopped")
	} else {
		m.header.SetConnection(components.ConnOnline)
		if msg.Message.HasStats() {
			m.status.LastStats = components.FormatMessageStats(msg.Message)
		}
	}
	m.refreshViewport()
	return m, cmd
}

func (m Model) failStream(msg StreamErrorMsg) (tea.Model, tea.Cmd) {
	m.streaming = false
	m.events = nil

	switch {
	case errors.Is(msg.Err, session.ErrBusy), errors.Is(msg.Err, session.ErrEmptyInput):
		m.status.SetStatus(components.StatusReady)
		return m, m.setNotice(msg.Err.Error())
	case errors.Is(msg.Err, session.ErrClosed):
		return m, nil
	}

	m.status.SetStatus(components.StatusError)
	if ollama.IsNotRunning(msg.Err) {
		m.header.SetConnection(components.ConnOffline)
	}
	m.refreshViewport()
	return m, m.setNotice(errorNotice(msg.Err))
}

// errorNotice is the short status bar text for a failed exchange.
func errorNotice(err error) string {
	switch {
	case ollama.IsNotRunning(err):
		return "Ollama is not running"
	case errors.Is(err, context.DeadlineExceeded), ollama.IsTimeout(err):
		return "Request timed out"
	case ollama.IsModelNotFound(err):
		return "Model not found"
	default:
		return "Request failed"
	}
}

// clearConversation empties the conversation when no reply is in progress.
func (m Model) clearConversation() (tea.Model, tea.Cmd) {
	if err := m.ctrl.Reset(); err != nil {
		return m, m.setNotice("Cannot clear while a reply is streaming")
	}
	m.invalidateCache()
	m.status.LastStats = ""
	m.status.SetStatus(components.StatusReady)
	m.showHelp = false
	m.refreshViewport()
	return m, nil
}

// =============================================================================
// CONFIG
// =============================================================================

// applyConfig takes over the settings of a reloaded config.
func (m *Model) applyConfig(cfg *config.Config) {
	old := m.cfg
	m.cfg = cfg
	config.SetGlobal(cfg)

	m.ctrl.SetModel(cfg.Ollama.Model)
	m.ctrl.SetRequestTimeout(cfg.Ollama.RequestTimeout())
	m.header.SetModel(m.ctrl.Model())
	m.buffer.SetMaxFPS(cfg.UI.MaxFPS)

	if old == nil || old.UI.Theme != cfg.UI.Theme || old.UI.CodeStyle != cfg.UI.CodeStyle {
		if theme, err := styles.NewThemeNamed(cfg.UI.Theme); err == nil {
			m.applyTheme(theme)
		}
	}
	m.invalidateCache()
	m.refreshViewport()
}

// setNotice shows text in the status bar and schedules its removal.
func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.status.SetNotice(text)
	return clearNoticeCmd(m.noticeSeq)
}
