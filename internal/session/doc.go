// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs a chat session: it owns the conversation, sends one
// exchange at a time to the model server, and applies streamed text to the
// in-progress reply.
//
// # Key Types
//
//   - Controller: conversation owner with Send, Cancel and Reset
//   - Streamer: the transport, implemented by *ollama.Client
//
// # Usage
//
//	ctrl := session.NewController(ollama.NewClient(), session.Config{Model: "qwen2.5:0.5b"})
//	err := ctrl.Send(ctx, "Hello", func(msg model.Message) {
//	    redraw(msg)
//	})
//
// A failed exchange leaves the reply set to FallbackMessage.
package session
