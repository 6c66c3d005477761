// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/maanis/voxa/internal/model"
	"github.com/maanis/voxa/internal/render"
	"github.com/maanis/voxa/internal/ui/styles"
)

func newBubble(msg model.Message) *MessageBubble {
	theme := styles.NewTheme()
	r := render.NewRenderer(render.StylesFromTheme(theme), render.PlainHighlighter{})
	return NewMessageBubble(msg, theme, r)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestFmtNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := fmtNumber(tt.n); got != tt.want {
			t.Errorf("fmtNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{850 * time.Millisecond, "850ms"},
		{2400 * time.Millisecond, "2.4s"},
		{65 * time.Second, "1m05s"},
	}
	for _, tt := range tests {
		if got := fmtDuration(tt.d); got != tt.want {
			t.Errorf("fmtDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFmtTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	if got := fmtTimestamp(time.Time{}, now); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
	if got := fmtTimestamp(now.Add(-2*time.Hour), now); got != "16:00" {
		t.Errorf("today = %q, want %q", got, "16:00")
	}
	if got := fmtTimestamp(now.AddDate(0, 0, -1), now); got != "Mar 9, 18:00" {
		t.Errorf("yesterday = %q, want %q", got, "Mar 9, 18:00")
	}
}

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

func TestMessageBubble_User(t *testing.T) {
	b := newBubble(model.NewMessage(model.RoleUser, "hello there"))
	b.SetWidth(60)

	view := b.View()
	assert.Contains(t, view, "You")
	assert.Contains(t, view, "hello there")
	for _, line := range strings.Split(view, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 60)
	}
}

func TestMessageBubble_AssistantMarkup(t *testing.T) {
	b := newBubble(model.NewMessage(model.RoleAssistant, "# Title\nsome **bold** text"))

	view := b.View()
	assert.Contains(t, view, "Voxa AI")
	assert.Contains(t, view, "Title")
	assert.Contains(t, view, "bold")
	assert.NotContains(t, view, "**", "markers are consumed by rendering")
	assert.NotContains(t, view, "# Title")
}

func TestMessageBubble_Thinking(t *testing.T) {
	msg := model.NewMessage(model.RoleAssistant, "")
	msg.IsStreaming = true

	b := newBubble(msg)
	b.Thinking = "..."
	assert.Contains(t, b.View(), "... thinking")
}

func TestMessageBubble_StreamingCursor(t *testing.T) {
	msg := model.NewMessage(model.RoleAssistant, "partial")
	msg.IsStreaming = true
	msg.TokenCount = 5

	view := newBubble(msg).View()
	assert.Contains(t, view, "partial_")
	assert.NotContains(t, view, "tokens", "stats wait for the reply to finish")
}

func TestMessageBubble_Stats(t *testing.T) {
	msg := model.NewMessage(model.RoleAssistant, "done")
	msg.TokenCount = 1500
	msg.TokensPerSec = 42
	msg.TTFT = 310 * time.Millisecond
	msg.TotalDuration = 3200 * time.Millisecond

	b := newBubble(msg)
	assert.Contains(t, b.View(), "1,500 tokens | 42.0 tok/s | TTFT 310ms | 3.2s")

	b.ShowStats = false
	assert.NotContains(t, b.View(), "tokens")
}

func TestMessageBubble_Failed(t *testing.T) {
	msg := model.NewMessage(model.RoleAssistant, "Sorry, **no** server")
	msg.Failed = true

	view := newBubble(msg).View()
	assert.Contains(t, view, "Sorry, **no** server", "fallback text is shown verbatim")
}

func TestMessageBubble_Timestamp(t *testing.T) {
	msg := model.NewMessage(model.RoleAssistant, "hi")
	msg.Timestamp = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	b := newBubble(msg)
	b.now = func() time.Time { return msg.Timestamp.Add(time.Minute) }
	assert.NotContains(t, b.View(), "09:30")

	b.ShowTimestamp = true
	assert.Contains(t, b.View(), "09:30")
}

// =============================================================================
// HEADER
// =============================================================================

func TestHeader(t *testing.T) {
	h := NewHeader(styles.NewTheme())
	h.SetModel("qwen2.5:0.5b")
	h.SetWidth(80)

	view := h.View()
	assert.Contains(t, view, "Voxa AI")
	assert.Contains(t, view, "qwen2.5:0.5b")
	assert.Contains(t, view, "connecting")

	h.SetConnection(ConnOffline)
	assert.Contains(t, h.View(), "offline")

	h.SetWidth(40)
	compact := h.View()
	assert.NotContains(t, compact, "\n")
	assert.LessOrEqual(t, lipgloss.Width(compact), 40)
}

// =============================================================================
// STATUS BAR
// =============================================================================

func TestStatusBar_Layouts(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.MessageCount = 3
	s.LastStats = "12 tokens"

	for _, width := range []int{40, 80, 120} {
		s.SetWidth(width)
		view := s.View()
		if strings.Contains(view, "\n") {
			t.Errorf("width %d: status bar spans lines: %q", width, view)
		}
		if w := lipgloss.Width(view); w > width {
			t.Errorf("width %d: rendered width = %d", width, w)
		}
		assert.Contains(t, view, "Ready")
	}
}

func TestStatusBar_Shortcuts(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.SetWidth(140)

	assert.Contains(t, s.View(), "Enter")

	s.SetStatus(StatusStreaming)
	assert.True(t, s.Busy())
	view := s.View()
	assert.Contains(t, view, "Esc")
	assert.NotContains(t, view, "Enter")
}

func TestStatusBar_NoticeOverridesStats(t *testing.T) {
	s := NewStatusBar(styles.NewTheme())
	s.SetWidth(120)
	s.LastStats = "12 tokens"
	s.SetNotice("Copied to clipboard")

	view := s.View()
	assert.Contains(t, view, "Copied to clipboard")
	assert.NotContains(t, view, "12 tokens")

	s.SetNotice("")
	assert.Contains(t, s.View(), "12 tokens")
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusReady, "Ready"},
		{StatusThinking, "Thinking..."},
		{StatusStreaming, "Streaming..."},
		{StatusError, "Error"},
		{Status(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
