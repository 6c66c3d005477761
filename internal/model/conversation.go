// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maanis/voxa/internal/ollama"
)

// MaxMessages is the maximum number of messages to keep in conversation history.
// When exceeded, the oldest messages are pruned.
const MaxMessages = 1000

var (
	// ErrStreamActive is returned when an operation needs the conversation
	// to be idle but a message is still streaming.
	ErrStreamActive = errors.New("a response is still streaming")

	// ErrNoActiveMessage is returned when updating with nothing in progress.
	ErrNoActiveMessage = errors.New("no message in progress")
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered message history of one chat session.
//
// At most one message is in progress at any time and it is always the last
// one. Only the content of that message ever changes; everything before it
// is append-only history.
//
// Reads are safe from any goroutine. Writes are expected from a single
// owner (the session controller).
type Conversation struct {
	mu sync.RWMutex

	id        string
	createdAt time.Time
	messages  []Message
	active    bool
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	return &Conversation{
		id:        uuid.NewString(),
		createdAt: time.Now(),
	}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string {
	return c.id
}

// CreatedAt returns when the conversation started.
func (c *Conversation) CreatedAt() time.Time {
	return c.createdAt
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddUserMessage appends a finalized user message.
func (c *Conversation) AddUserMessage(content string) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return Message{}, ErrStreamActive
	}

	msg := NewMessage(RoleUser, content)
	c.messages = append(c.messages, msg)
	c.pruneOldMessages()
	return msg, nil
}

// BeginAssistant appends an empty assistant message and makes it the
// in-progress message.
func (c *Conversation) BeginAssistant() (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return Message{}, ErrStreamActive
	}

	msg := NewMessage(RoleAssistant, "")
	msg.IsStreaming = true
	c.messages = append(c.messages, msg)
	c.active = true
	c.pruneOldMessages()
	return msg, nil
}

// UpdateActive replaces the content of the in-progress message.
func (c *Conversation) UpdateActive(content string) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return Message{}, ErrNoActiveMessage
	}

	last := &c.messages[len(c.messages)-1]
	last.Content = content
	return *last, nil
}

// FinalizeActive marks the in-progress message complete, recording stats
// when given. It is a no-op when nothing is in progress.
func (c *Conversation) FinalizeActive(stats *ollama.Stats) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return Message{}, false
	}

	last := &c.messages[len(c.messages)-1]
	last.IsStreaming = false
	c.active = false

	if stats != nil {
		last.TokenCount = stats.CompletionTokens
		last.TTFT = stats.TTFT()
		last.TotalDuration = stats.TotalDuration
		last.TokensPerSec = stats.TokensPerSecond()
	}
	return *last, true
}

// FailActive sets the in-progress message content to exactly fallback and
// finalizes it.
func (c *Conversation) FailActive(fallback string) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return Message{}, false
	}

	last := &c.messages[len(c.messages)-1]
	last.Content = fallback
	last.Failed = true
	last.IsStreaming = false
	c.active = false
	return *last, true
}

// Clear removes every message. Refused while a message is streaming.
func (c *Conversation) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return ErrStreamActive
	}
	c.messages = nil
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// IsEmpty reports whether the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return c.Len() == 0
}

// Last returns the last message, if any.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Active returns the in-progress message, if any.
func (c *Conversation) Active() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.active {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// IsStreaming reports whether a message is in progress.
func (c *Conversation) IsStreaming() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// LastAssistant returns the most recent assistant message, if any.
func (c *Conversation) LastAssistant() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// =============================================================================
// OLLAMA CONVERSION
// =============================================================================

// ToOllamaMessages converts the finalized history to the wire format.
// The in-progress message and failed replies are left out, as are empty
// messages.
func (c *Conversation) ToOllamaMessages() []ollama.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	messages := make([]ollama.Message, 0, len(c.messages))
	for _, msg := range c.messages {
		if msg.IsStreaming || msg.Failed || msg.Content == "" {
			continue
		}
		messages = append(messages, ollama.Message{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return messages
}

// =============================================================================
// HELPERS
// =============================================================================

// pruneOldMessages drops the oldest messages beyond MaxMessages. The last
// message is never pruned, so an in-progress message stays in place.
func (c *Conversation) pruneOldMessages() {
	if len(c.messages) <= MaxMessages {
		return
	}
	drop := len(c.messages) - MaxMessages
	kept := make([]Message, MaxMessages)
	copy(kept, c.messages[drop:])
	c.messages = kept
}
