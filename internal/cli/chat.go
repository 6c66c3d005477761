// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode interactive chat for the voxa CLI.
//
// Command: chat
// Aliases: c
//
// Commands inside chat:
//   /help            Show the chat commands
//   /clear           Start a new conversation
//   /model [NAME]    Show or switch the model
//   /exit, /quit     Leave (also Ctrl+D, or Ctrl+C at the prompt)
//
// Ctrl+C while a reply streams stops the reply and keeps what arrived.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/maanis/voxa/internal/session"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor backed by historyFile. An empty path
// keeps history for this session only.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes the history file, owner-readable only.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// lineReader is the prompt side of the REPL. *ChatCLI implements it.
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// HandleChatCommand handles the "chat" command.
func HandleChatCommand(ctx context.Context, rt *Runtime, args Args) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := rt.Client.CheckRunning(checkCtx)
	cancel()
	if err != nil {
		return err
	}

	ctrl := rt.NewController()
	defer ctrl.Close()

	// Ctrl+C outside the prompt stops the streaming reply.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			ctrl.Cancel()
		}
	}()

	history, _ := rt.Config.HistoryFilePath()
	input := NewChatCLI(history)
	defer input.Close()

	printWelcome(rt, ctrl)
	return runChatLoop(ctx, rt, ctrl, input)
}

// runChatLoop reads lines until exit, sending each to the model.
func runChatLoop(ctx context.Context, rt *Runtime, ctrl *session.Controller, in lineReader) error {
	prompt := "you> "
	if rt.Color {
		prompt = PromptStyle.Render("you>") + " "
	}

	for {
		input, err := in.ReadInput(prompt)
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D, or closed stdin
			fmt.Fprintln(rt.Stdout)
			printExitSummary(rt, ctrl)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if !handleSlashCommand(rt, ctrl, input) {
				printExitSummary(rt, ctrl)
				return nil
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(rt, ctrl)
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintln(rt.Stdout, AssistantStyle.Render("Voxa AI"))
		if _, err := streamReply(ctx, rt, ctrl, input, false); err != nil && !errors.Is(err, context.Canceled) {
			DisplayError(rt.Stderr, err)
		}
		fmt.Fprintln(rt.Stdout)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs one chat command and reports whether the chat
// continues.
func handleSlashCommand(rt *Runtime, ctrl *session.Controller, input string) bool {
	parts := strings.Fields(input)
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	rest := parts[1:]

	switch name {
	case "exit", "quit", "q":
		return false

	case "clear", "new":
		if err := ctrl.Reset(); err != nil {
			DisplayError(rt.Stderr, err)
			return true
		}
		fmt.Fprintln(rt.Stdout, SuccessStyle.Render("Conversation cleared"))

	case "model", "m":
		if len(rest) == 0 {
			fmt.Fprintf(rt.Stdout, "%s %s\n", RenderLabel("Model"), ValueStyle.Render(ctrl.Model()))
			return true
		}
		ctrl.SetModel(rest[0])
		fmt.Fprintf(rt.Stdout, "%s %s\n", SuccessStyle.Render("Switched to"), ValueStyle.Render(rest[0]))

	case "help", "h", "?":
		fmt.Fprintln(rt.Stdout, chatHelp)

	default:
		fmt.Fprintf(rt.Stderr, "%s unknown command %s, type /help\n", WarningStyle.Render("[!]"), parts[0])
	}
	return true
}

const chatHelp = `Commands:
  /help            Show this help
  /clear           Start a new conversation
  /model [NAME]    Show or switch the model
  /exit            Leave the chat

Ctrl+C stops a streaming reply. Ctrl+D leaves.`

// =============================================================================
// BANNERS
// =============================================================================

func printWelcome(rt *Runtime, ctrl *session.Controller) {
	fmt.Fprintln(rt.Stdout, TitleStyle.Render("Voxa AI"))
	fmt.Fprintln(rt.Stdout, DimStyle.Render(fmt.Sprintf("%s at %s, /help for commands", ctrl.Model(), rt.Client.BaseURL())))
	fmt.Fprintln(rt.Stdout)
}

func printExitSummary(rt *Runtime, ctrl *session.Controller) {
	n := ctrl.Conversation().Len()
	if n == 0 {
		return
	}
	elapsed := time.Since(ctrl.StartTime()).Round(time.Second)
	fmt.Fprintln(rt.Stdout, DimStyle.Render(fmt.Sprintf("%d messages in %s", n, elapsed)))
}
