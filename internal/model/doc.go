// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: ordered history with at most one in-progress message
//   - Message: role, content, timestamp and generation metrics
//   - Role: user or assistant
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.AddUserMessage("Hello!")
//	conv.BeginAssistant()
//	conv.UpdateActive("Hi")
//	conv.UpdateActive("Hi there")
//	conv.FinalizeActive(nil)
package model
