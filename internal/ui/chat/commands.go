// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maanis/voxa/internal/markup"
	"github.com/maanis/voxa/internal/util"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command.
type CommandHandler func(m *Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names to their handler functions.
var commandHandlers = map[string]CommandHandler{
	"help":  handleHelpCommand,
	"h":     handleHelpCommand,
	"?":     handleHelpCommand,
	"clear": handleClearCommand,
	"copy":  handleCopyCommand,
	"model": handleModelCommand,
	"m":     handleModelCommand,
	"quit":  handleQuitCommand,
	"q":     handleQuitCommand,
	"exit":  handleQuitCommand,
}

// commandHelp lists the commands in help order.
var commandHelp = []struct {
	Usage string
	Desc  string
}{
	{"/help", "Show keys and commands"},
	{"/clear", "Clear the conversation"},
	{"/copy", "Copy the last reply to the clipboard"},
	{"/copy code", "Copy the last code block of the last reply"},
	{"/model [NAME]", "Show or switch the model"},
	{"/quit", "Exit Voxa"},
}

// handleCommand runs a slash command line.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}

	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	handler, ok := commandHandlers[name]
	if !ok {
		return m, m.setNotice("Unknown command " + parts[0] + ", type /help")
	}
	return handler(&m, parts[1:])
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleHelpCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	m.showHelp = true
	m.refreshViewport()
	m.viewport.GotoTop()
	return *m, m.setNotice("Esc closes help")
}

func handleClearCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	return m.clearConversation()
}

func handleQuitCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	return m.quit()
}

func handleModelCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return *m, m.setNotice("Model: " + m.ctrl.Model())
	}
	name := args[0]
	m.ctrl.SetModel(name)
	m.header.SetModel(name)
	return *m, m.setNotice("Switched to " + name)
}

// handleCopyCommand copies the last reply, or with "code" its last code
// block, to the clipboard.
func handleCopyCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	reply, ok := m.ctrl.Conversation().LastAssistant()
	if !ok || reply.IsEmpty() {
		return *m, m.setNotice("Nothing to copy yet")
	}

	text := reply.Content
	what := "reply"
	if len(args) > 0 && strings.EqualFold(args[0], "code") {
		code, ok := lastCodeBlock(reply.Content)
		if !ok {
			return *m, m.setNotice("The last reply has no code block")
		}
		text = code
		what = "code block"
	}

	if err := m.clipboardWrite(text); err != nil {
		return *m, m.setNotice("Clipboard unavailable: " + err.Error())
	}
	return *m, m.setNotice("Copied " + what + " (" + util.TruncateRunes(util.SingleLine(text), 24) + ")")
}

// lastCodeBlock returns the body of the last code block in text. An
// unterminated fence is not a code block.
func lastCodeBlock(text string) (string, bool) {
	blocks := markup.CodeBlocks(markup.Parse(text))
	if len(blocks) == 0 {
		return "", false
	}
	return blocks[len(blocks)-1].Body, true
}
