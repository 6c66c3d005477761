// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API
// and the reassembler that turns its streamed chat responses into text.
//
// # Key Types
//
//   - Client: HTTP client for /api/chat, /api/tags and /api/version
//   - Reassembler: newline-delimited JSON stream to growing string
//   - Decoder: chunk-boundary safe UTF-8 decoding
//   - ClientError: error taxonomy for failed exchanges
//
// # Usage
//
//	client := ollama.NewClient()
//	res, err := client.ChatStream(ctx, "qwen2.5:0.5b", []ollama.Message{
//	    ollama.NewUserMessage("Hello"),
//	}, func(total string) {
//	    render(total)
//	})
//	if ollama.IsTransport(err) {
//	    // the request never produced a 2xx response
//	}
//
// # Stream Handling
//
// The body is read in chunks. Only newline-terminated lines are parsed;
// malformed lines are skipped and a trailing line without its newline is
// discarded when the body ends.
package ollama
