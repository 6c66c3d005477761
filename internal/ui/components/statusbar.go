// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/maanis/voxa/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status
type Status int

const (
	StatusReady Status = iota
	StatusThinking
	StatusStreaming
	StatusError
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusThinking:
		return "Thinking..."
	case StatusStreaming:
		return "Streaming..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape for the status so it reads without color.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return "*"
	case StatusThinking:
		return "o"
	case StatusStreaming:
		return "~"
	case StatusError:
		return "x"
	default:
		return "?"
	}
}

// Shortcut is one key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the hints shown when idle.
var DefaultShortcuts = []Shortcut{
	{"Enter", "send"},
	{"Ctrl+L", "clear"},
	{"/help", "commands"},
	{"Ctrl+C", "quit"},
}

// BusyShortcuts are the hints shown while a reply is in progress.
var BusyShortcuts = []Shortcut{
	{"Esc", "stop"},
	{"Ctrl+C", "stop"},
}

// StatusBar is the bottom line: status, message count, last reply stats,
// key hints and transient notices.
type StatusBar struct {
	Status        Status
	MessageCount  int
	LastStats     string
	Notice        string
	Width         int
	ShowShortcuts bool
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the current status
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetNotice shows a transient message in place of the stats. An empty
// string clears it.
func (s *StatusBar) SetNotice(notice string) {
	s.Notice = notice
}

// Busy reports whether a reply is in progress.
func (s *StatusBar) Busy() bool {
	return s.Status == StatusThinking || s.Status == StatusStreaming
}

// View renders the status bar
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders only the status and message count.
func (s *StatusBar) viewNarrow() string {
	line := s.renderStatus() + " " + s.theme.Muted.Render(strconv.Itoa(s.MessageCount)+" msgs")
	return s.theme.StatusBar.Width(s.Width).MaxHeight(1).Render(line)
}

func (s *StatusBar) viewMedium() string {
	left := s.renderStatus() + "  " + s.theme.Muted.Render(s.messageCountText())
	right := s.renderDetail()
	return s.layout(left, right)
}

func (s *StatusBar) viewWide() string {
	left := s.renderStatus() + "  " + s.theme.Muted.Render(s.messageCountText())
	if d := s.renderDetail(); d != "" {
		left += s.theme.Muted.Render("  |  ") + d
	}
	right := ""
	if s.ShowShortcuts {
		right = s.renderShortcuts()
	}
	return s.layout(left, right)
}

// layout places left and right with the gap filled, dropping the right
// side when it does not fit.
func (s *StatusBar) layout(left, right string) string {
	inner := s.Width - s.theme.StatusBar.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		right = ""
		gap = maxInt(inner-lipgloss.Width(left), 0)
	}
	line := left + strings.Repeat(" ", gap) + right
	return s.theme.StatusBar.Width(s.Width).MaxHeight(1).Render(line)
}

// ==========================================================================
// HELPER RENDER METHODS
// ==========================================================================

func (s *StatusBar) renderStatus() string {
	text := s.Status.Icon() + " " + s.Status.String()
	switch s.Status {
	case StatusError:
		return s.theme.ErrorStyle.Render(text)
	case StatusReady:
		return s.theme.StatusIdle.Render(text)
	default:
		return s.theme.StatusActive.Render(text)
	}
}

func (s *StatusBar) messageCountText() string {
	if s.MessageCount == 1 {
		return "1 message"
	}
	return fmtNumber(s.MessageCount) + " messages"
}

// renderDetail shows the notice if set, otherwise the last reply stats.
func (s *StatusBar) renderDetail() string {
	if s.Notice != "" {
		return s.theme.InfoStyle.Render(s.Notice)
	}
	if s.LastStats != "" {
		return s.theme.Muted.Render(s.LastStats)
	}
	return ""
}

// renderShortcuts renders keyboard shortcut hints
func (s *StatusBar) renderShortcuts() string {
	list := DefaultShortcuts
	if s.Busy() {
		list = BusyShortcuts
	}
	parts := make([]string, 0, len(list))
	for _, sc := range list {
		parts = append(parts, s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	return strings.Join(parts, "  ")
}
