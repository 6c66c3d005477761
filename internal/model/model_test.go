// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"testing"
	"time"

	"github.com/maanis/voxa/internal/ollama"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "Hello")

	if msg.ID == "" {
		t.Error("NewMessage should generate an ID")
	}
	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hello")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if other := NewMessage(RoleUser, "Hello"); other.ID == msg.ID {
		t.Error("IDs should be unique")
	}
}

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Voxa AI"},
		{Role("system"), "system"},
	}
	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestMessagePreview(t *testing.T) {
	msg := NewMessage(RoleAssistant, "line one\nline two that is long")
	if got := msg.Preview(11); got != "line one..." {
		t.Errorf("Preview(11) = %q, want %q", got, "line one...")
	}
	if got := msg.Preview(100); got != "line one line two that is long" {
		t.Errorf("Preview(100) = %q", got)
	}
}

func TestMessageHasStats(t *testing.T) {
	msg := NewMessage(RoleAssistant, "x")
	if msg.HasStats() {
		t.Error("fresh message should have no stats")
	}
	msg.TokenCount = 4
	if !msg.HasStats() {
		t.Error("assistant message with tokens should have stats")
	}
	user := NewMessage(RoleUser, "x")
	user.TokenCount = 4
	if user.HasStats() {
		t.Error("user messages never report stats")
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_Lifecycle(t *testing.T) {
	conv := NewConversation()
	if !conv.IsEmpty() {
		t.Fatal("new conversation should be empty")
	}
	if conv.ID() == "" {
		t.Error("conversation should have an ID")
	}

	if _, err := conv.AddUserMessage("Hi"); err != nil {
		t.Fatalf("AddUserMessage: %v", err)
	}
	active, err := conv.BeginAssistant()
	if err != nil {
		t.Fatalf("BeginAssistant: %v", err)
	}
	if !active.IsStreaming || active.Content != "" {
		t.Errorf("BeginAssistant = %+v, want empty streaming message", active)
	}
	if !conv.IsStreaming() {
		t.Error("IsStreaming should be true")
	}

	for _, total := range []string{"He", "Hello", "Hello there"} {
		msg, err := conv.UpdateActive(total)
		if err != nil {
			t.Fatalf("UpdateActive(%q): %v", total, err)
		}
		if msg.ID != active.ID {
			t.Error("UpdateActive changed the message identity")
		}
	}

	got, ok := conv.Active()
	if !ok || got.Content != "Hello there" {
		t.Errorf("Active() = %q, %v", got.Content, ok)
	}

	stats := &ollama.Stats{
		StartTime:         time.Unix(0, 0),
		FirstFragmentTime: time.Unix(0, 0).Add(50 * time.Millisecond),
		CompletionTokens:  3,
		EvalDuration:      time.Second,
		TotalDuration:     2 * time.Second,
	}
	final, ok := conv.FinalizeActive(stats)
	if !ok {
		t.Fatal("FinalizeActive reported nothing in progress")
	}
	if final.IsStreaming {
		t.Error("finalized message still streaming")
	}
	if final.TokenCount != 3 || final.TTFT != 50*time.Millisecond || final.TotalDuration != 2*time.Second {
		t.Errorf("stats not recorded: %+v", final)
	}
	if conv.IsStreaming() {
		t.Error("IsStreaming should be false after finalize")
	}
	if conv.Len() != 2 {
		t.Errorf("Len() = %d, want 2", conv.Len())
	}
}

func TestConversation_SingleActiveMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("Hi")
	conv.BeginAssistant()

	if _, err := conv.BeginAssistant(); !errors.Is(err, ErrStreamActive) {
		t.Errorf("second BeginAssistant error = %v, want ErrStreamActive", err)
	}
	if _, err := conv.AddUserMessage("again"); !errors.Is(err, ErrStreamActive) {
		t.Errorf("AddUserMessage while streaming error = %v, want ErrStreamActive", err)
	}
	if err := conv.Clear(); !errors.Is(err, ErrStreamActive) {
		t.Errorf("Clear while streaming error = %v, want ErrStreamActive", err)
	}

	last, _ := conv.Last()
	active, _ := conv.Active()
	if last.ID != active.ID {
		t.Error("active message must be the last message")
	}
}

func TestConversation_UpdateWithoutActive(t *testing.T) {
	conv := NewConversation()
	if _, err := conv.UpdateActive("x"); !errors.Is(err, ErrNoActiveMessage) {
		t.Errorf("UpdateActive error = %v, want ErrNoActiveMessage", err)
	}
	if _, ok := conv.FinalizeActive(nil); ok {
		t.Error("FinalizeActive with nothing in progress should report false")
	}
	if _, ok := conv.FailActive("x"); ok {
		t.Error("FailActive with nothing in progress should report false")
	}
}

func TestConversation_FailActive(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("Hi")
	conv.BeginAssistant()
	conv.UpdateActive("partial")

	msg, ok := conv.FailActive("fallback text")
	if !ok {
		t.Fatal("FailActive reported nothing in progress")
	}
	if msg.Content != "fallback text" {
		t.Errorf("Content = %q, want %q", msg.Content, "fallback text")
	}
	if !msg.Failed || msg.IsStreaming {
		t.Errorf("flags = failed:%v streaming:%v", msg.Failed, msg.IsStreaming)
	}
	if _, err := conv.UpdateActive("late"); !errors.Is(err, ErrNoActiveMessage) {
		t.Error("failed message must not accept further updates")
	}
}

func TestConversation_MessagesAreCopies(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("original")

	msgs := conv.Messages()
	msgs[0].Content = "changed"

	if last, _ := conv.Last(); last.Content != "original" {
		t.Errorf("conversation mutated through copy: %q", last.Content)
	}
}

func TestConversation_Clear(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("Hi")
	if err := conv.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if !conv.IsEmpty() {
		t.Error("Clear left messages behind")
	}
	if _, ok := conv.Last(); ok {
		t.Error("Last() on empty conversation should report false")
	}
}

func TestConversation_LastAssistant(t *testing.T) {
	conv := NewConversation()
	if _, ok := conv.LastAssistant(); ok {
		t.Error("empty conversation has no assistant message")
	}
	conv.AddUserMessage("q1")
	conv.BeginAssistant()
	conv.UpdateActive("a1")
	conv.FinalizeActive(nil)
	conv.AddUserMessage("q2")

	msg, ok := conv.LastAssistant()
	if !ok || msg.Content != "a1" {
		t.Errorf("LastAssistant() = %q, %v; want a1", msg.Content, ok)
	}
}

// =============================================================================
// OLLAMA CONVERSION TESTS
// =============================================================================

func TestToOllamaMessages(t *testing.T) {
	conv := NewConversation()

	conv.AddUserMessage("q1")
	conv.BeginAssistant()
	conv.UpdateActive("a1")
	conv.FinalizeActive(nil)

	conv.AddUserMessage("q2")
	conv.BeginAssistant()
	conv.FailActive("fallback")

	conv.AddUserMessage("q3")
	conv.BeginAssistant()
	conv.FinalizeActive(nil) // empty reply

	conv.AddUserMessage("q4")
	conv.BeginAssistant()
	conv.UpdateActive("in progress")

	got := conv.ToOllamaMessages()
	want := []ollama.Message{
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
		{Role: "user", Content: "q3"},
		{Role: "user", Content: "q4"},
	}

	if len(got) != len(want) {
		t.Fatalf("ToOllamaMessages() len = %d, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPruneOldMessages(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxMessages+10; i++ {
		conv.AddUserMessage("m")
	}
	conv.BeginAssistant()

	if conv.Len() != MaxMessages {
		t.Errorf("Len() = %d, want %d", conv.Len(), MaxMessages)
	}
	if _, ok := conv.Active(); !ok {
		t.Error("pruning lost the in-progress message")
	}
	if _, err := conv.UpdateActive("still here"); err != nil {
		t.Errorf("UpdateActive after prune: %v", err)
	}
}
