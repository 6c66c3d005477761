// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the line-mode commands of
// voxa.
//
// # Key Types
//
//   - Command: the command to run
//   - Args: parsed global and command flags
//   - Runtime: settings, server client and process streams shared by handlers
//   - ChatCLI: liner-backed line editor with a history file
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	...
//	rt := cli.NewRuntime(cfg, args)
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAskCommand(ctx, rt, args)
//	case cli.CmdChat:
//	    err = cli.HandleChatCommand(ctx, rt, args)
//	}
//	cli.DisplayError(os.Stderr, err)
//	os.Exit(cli.GetExitCode(err))
//
// # Commands
//
//   - ask: one question, reply streamed to stdout
//   - chat: interactive line-mode chat
//   - models: installed models
//   - status: server check
//   - config: show, get, set, reset, path, keys
//
// The chat UI, the default command, lives in package ui/chat.
package cli
