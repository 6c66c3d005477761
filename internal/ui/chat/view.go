// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/maanis/voxa/internal/model"
	"github.com/maanis/voxa/internal/render"
	"github.com/maanis/voxa/internal/ui/components"
)

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Starting Voxa AI..."
	}

	input := m.theme.InputContainer.Width(m.width).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.viewport.View(),
		input,
		m.status.View(),
	)
}

// refreshViewport re-renders the conversation into the viewport. The view
// follows new content unless the user has scrolled up.
func (m *Model) refreshViewport() {
	follow := m.viewport.AtBottom()
	m.status.MessageCount = m.ctrl.Conversation().Len()

	if m.showHelp {
		m.viewport.SetContent(m.helpView())
		return
	}
	m.viewport.SetContent(m.renderConversation())
	if follow || m.streaming {
		m.viewport.GotoBottom()
	}
}

// renderConversation renders every message. Finished messages come from
// the cache.
func (m *Model) renderConversation() string {
	msgs := m.ctrl.Conversation().Messages()
	if len(msgs) == 0 {
		return m.renderEmpty()
	}

	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderMessage(msg model.Message) string {
	if !msg.IsStreaming {
		if cached, ok := m.rendered[msg.ID]; ok {
			return cached
		}
	}

	bubble := components.NewMessageBubble(msg, m.theme, m.renderer)
	bubble.SetWidth(m.viewport.Width)
	bubble.ShowTimestamp = m.cfg.UI.ShowTimestamps
	bubble.ShowStats = m.cfg.UI.ShowStats
	bubble.Thinking = m.spinner.View()
	out := bubble.View()

	if !msg.IsStreaming {
		m.rendered[msg.ID] = out
	}
	return out
}

func (m *Model) renderEmpty() string {
	lines := []string{
		m.theme.HeaderTitle.Render("Voxa AI"),
		"",
		m.theme.Muted.Render("Chatting with " + m.ctrl.Model() + " on your machine."),
		m.theme.Muted.Render("Type a message and press Enter. /help lists commands."),
	}
	block := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, block)
}

// helpView renders the help document for the viewport. The glamour style
// follows the theme so the terminal is not queried while the program runs.
func (m *Model) helpView() string {
	style := render.MarkdownLight
	switch {
	case m.theme.ColorProfile == termenv.Ascii:
		style = render.MarkdownNoTTY
	case m.theme.IsDark:
		style = render.MarkdownDark
	}
	return render.Markdown(HelpMarkdown(m.keys), m.viewport.Width, style)
}
