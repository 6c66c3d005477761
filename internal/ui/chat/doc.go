// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive chat screen for Voxa.

The chat package implements a terminal chat interface using the Bubble Tea
framework. Replies stream from a local Ollama server through a
session.Controller and are re-rendered as they grow.

# Key Components

## Model (model.go)

The Model struct is the Bubble Tea model for the screen:
  - Header, viewport for the conversation, textarea input, status bar
  - The session controller that owns the conversation
  - A render cache for finished messages

## Update Loop (update.go)

Handles keys, window resizes, stream events, server checks and config
reloads.

## Streaming (streaming.go)

Each exchange runs on its own goroutine. Updates are offered to a
StreamingBuffer, which passes at most max_fps of them per second to the
program as StreamUpdateMsg over a channel. The exchange ends with a
StreamDoneMsg or StreamErrorMsg and the channel is closed.

## Commands (commands.go)

Slash commands:
  - /help - Show keys and commands
  - /clear - Clear the conversation
  - /copy - Copy the last reply
  - /copy code - Copy the last code block of the last reply
  - /model [NAME] - Show or switch the model
  - /quit - Exit

# Usage

	ctrl := session.NewController(client, session.Config{Model: cfg.Ollama.Model})
	m := chat.New(chat.Options{
		Controller: ctrl,
		Probe:      client,
		Config:     cfg,
		ConfigPath: config.ConfigPath(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
