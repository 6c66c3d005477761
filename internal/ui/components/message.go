// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/maanis/voxa/internal/model"
	"github.com/maanis/voxa/internal/render"
	"github.com/maanis/voxa/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one conversation message. User messages sit on the
// right, assistant messages on the left under the product name.
type MessageBubble struct {
	Message       model.Message
	Width         int
	ShowTimestamp bool
	ShowStats     bool

	// Thinking is the spinner frame shown while an assistant reply has no
	// text yet.
	Thinking string

	theme    *styles.Theme
	renderer *render.Renderer
	now      func() time.Time
}

// NewMessageBubble creates a bubble for msg. Content is rendered through r.
func NewMessageBubble(msg model.Message, theme *styles.Theme, r *render.Renderer) *MessageBubble {
	return &MessageBubble{
		Message:   msg,
		Width:     80,
		ShowStats: true,
		theme:     theme,
		renderer:  r,
		now:       time.Now,
	}
}

// SetWidth sets the bubble width
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble
func (b *MessageBubble) View() string {
	if b.Message.Role == model.RoleUser {
		return b.renderUserBubble()
	}
	return b.renderAssistantBubble()
}

// contentWidth is the usable text width inside a bubble.
func (b *MessageBubble) contentWidth() int {
	return maxInt(b.Width-12, 20)
}

// ==========================================================================
// USER BUBBLE
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	b.renderer.SetWidth(b.contentWidth())
	content := b.renderer.RenderText(b.Message.Content)

	width := minInt(lipgloss.Width(content), b.contentWidth())
	bubble := b.theme.UserBubble.
		Width(width + b.theme.UserBubble.GetHorizontalPadding()).
		Render(content)

	header := b.theme.UserLabel.Render(b.Message.Role.DisplayName())
	if ts := b.timestamp(); ts != "" {
		header = b.theme.Timestamp.Render(ts) + " " + header
	}

	block := lipgloss.JoinVertical(lipgloss.Right, header, bubble)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

// ==========================================================================
// ASSISTANT BUBBLE
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	msg := b.Message

	var content string
	switch {
	case msg.Failed:
		content = b.theme.FailedText.Render(msg.Content)
	case msg.IsStreaming && msg.Content == "":
		content = b.Thinking + b.theme.ThinkingText.Render(" thinking")
	default:
		b.renderer.SetWidth(b.contentWidth())
		content = b.renderer.RenderText(msg.Content)
		if msg.IsStreaming {
			content += b.theme.Spinner.Render("_")
		}
	}

	width := minInt(maxInt(lipgloss.Width(content), 1), b.contentWidth())
	bubble := b.theme.AssistantBubble.
		Width(width + b.theme.AssistantBubble.GetHorizontalPadding()).
		Render(content)

	header := b.theme.AssistantLabel.Render(msg.Role.DisplayName())
	if ts := b.timestamp(); ts != "" {
		header += " " + b.theme.Timestamp.Render(ts)
	}

	parts := []string{header, bubble}
	if b.ShowStats && !msg.IsStreaming && msg.HasStats() {
		parts = append(parts, b.theme.MessageStats.Render(FormatMessageStats(msg)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

func (b *MessageBubble) timestamp() string {
	if !b.ShowTimestamp {
		return ""
	}
	return fmtTimestamp(b.Message.Timestamp, b.now())
}

// FormatMessageStats summarizes generation metrics, e.g.
// "128 tokens | 42.0 tok/s | TTFT 310ms | 3.2s".
func FormatMessageStats(msg model.Message) string {
	parts := []string{fmtNumber(msg.TokenCount) + " tokens"}
	if msg.TokensPerSec > 0 {
		parts = append(parts, strconv.FormatFloat(msg.TokensPerSec, 'f', 1, 64)+" tok/s")
	}
	if msg.TTFT > 0 {
		parts = append(parts, "TTFT "+fmtDuration(msg.TTFT))
	}
	if msg.TotalDuration > 0 {
		parts = append(parts, fmtDuration(msg.TotalDuration))
	}
	return strings.Join(parts, " | ")
}
