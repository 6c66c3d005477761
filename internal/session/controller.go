// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maanis/voxa/internal/model"
	"github.com/maanis/voxa/internal/ollama"
)

// FallbackMessage replaces the reply when the exchange with the server fails.
const FallbackMessage = "Sorry, I couldn't connect to Ollama. Make sure it's running."

var (
	// ErrBusy is returned by Send while a response is still streaming.
	ErrBusy = errors.New("a response is already streaming")

	// ErrEmptyInput is returned by Send for blank input.
	ErrEmptyInput = errors.New("message is empty")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// Streamer is the transport a Controller sends through. *ollama.Client
// implements it.
type Streamer interface {
	ChatStream(ctx context.Context, model string, messages []ollama.Message, onUpdate ollama.UpdateFunc) (ollama.Result, error)
}

// UpdateFunc receives a copy of the assistant message after each change.
type UpdateFunc func(msg model.Message)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds controller settings.
type Config struct {
	// Model is the model name sent with every request.
	Model string

	// RequestTimeout bounds a whole exchange. Zero means no limit.
	RequestTimeout time.Duration

	// Debug enables per-turn log lines.
	Debug bool
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the conversation of one chat session and runs its
// exchanges with the model server, one at a time.
//
// The conversation is created with the controller and only changes through
// Send and Reset. Send is safe to call from any goroutine; a second call
// while one is streaming fails with ErrBusy.
type Controller struct {
	client Streamer
	conv   *model.Conversation

	id        string
	startTime time.Time

	// notifyMu serializes reply updates with Cancel.
	notifyMu sync.Mutex

	mu      sync.Mutex
	model   string
	timeout time.Duration
	debug   bool
	busy    bool
	closed  bool
	cancel  context.CancelFunc
}

// NewController creates a controller with an empty conversation.
func NewController(client Streamer, cfg Config) *Controller {
	if cfg.Model == "" {
		cfg.Model = ollama.DefaultModel
	}
	return &Controller{
		client:    client,
		conv:      model.NewConversation(),
		id:        uuid.NewString(),
		startTime: time.Now(),
		model:     cfg.Model,
		timeout:   cfg.RequestTimeout,
		debug:     cfg.Debug,
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// StartTime returns when the session started.
func (c *Controller) StartTime() time.Time {
	return c.startTime
}

// Conversation returns the conversation owned by the controller. Callers
// may read it freely; mutation goes through the controller.
func (c *Controller) Conversation() *model.Conversation {
	return c.conv
}

// Model returns the model used for new requests.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// SetModel changes the model for subsequent requests.
func (c *Controller) SetModel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name != "" {
		c.model = name
	}
}

// SetRequestTimeout changes the per-exchange timeout for subsequent requests.
func (c *Controller) SetRequestTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
}

// Busy reports whether a response is streaming.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// =============================================================================
// SEND
// =============================================================================

// Send appends text as a user message, streams the reply into a new
// assistant message, and blocks until the reply is complete.
//
// onUpdate (may be nil) is called with the assistant message after every
// change. Cancel waits for a call in progress, so onUpdate must not call
// Cancel or wait on the goroutine that does.
//
// Outcomes:
//   - success: the reply is finalized with stream statistics; nil
//   - cancelled (Cancel, or ctx done): the reply keeps what arrived, no
//     callback fires after the cancellation; context.Canceled
//   - any other failure: the reply becomes exactly FallbackMessage with a
//     single callback; the error is returned
func (c *Controller) Send(ctx context.Context, text string, onUpdate UpdateFunc) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	streamCtx, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer c.end()

	history := c.conv.ToOllamaMessages()
	if _, err := c.conv.AddUserMessage(text); err != nil {
		return err
	}
	active, err := c.conv.BeginAssistant()
	if err != nil {
		return err
	}
	notify(onUpdate, active)

	messages := append(history, ollama.NewUserMessage(text))
	res, err := c.client.ChatStream(streamCtx, c.Model(), messages, func(total string) {
		c.notifyMu.Lock()
		defer c.notifyMu.Unlock()
		if streamCtx.Err() != nil {
			return
		}
		if msg, uerr := c.conv.UpdateActive(total); uerr == nil {
			notify(onUpdate, msg)
		}
	})

	switch {
	case err == nil:
		msg, _ := c.conv.FinalizeActive(&res.Stats)
		notify(onUpdate, msg)
		c.logTurn(res.Stats)
		return nil

	case isCancellation(err, streamCtx):
		c.conv.FinalizeActive(nil)
		return context.Canceled

	default:
		log.Printf("session %s: exchange failed: %v", c.id, err)
		msg, _ := c.conv.FailActive(FallbackMessage)
		notify(onUpdate, msg)
		return err
	}
}

// begin claims the single in-flight slot.
func (c *Controller) begin(ctx context.Context) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.busy {
		return nil, ErrBusy
	}

	var streamCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		streamCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		streamCtx, cancel = context.WithCancel(ctx)
	}

	c.busy = true
	c.cancel = cancel
	return streamCtx, nil
}

// end releases the in-flight slot and its context.
func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.busy = false
}

// Cancel abandons the in-flight exchange, if any, and reports whether there
// was one. Once it returns, no further update reaches the Send callback.
// Safe to call multiple times.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return false
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	cancel()
	return true
}

// Reset clears the conversation. Refused while a response is streaming.
func (c *Controller) Reset() error {
	c.mu.Lock()
	busy := c.busy
	c.mu.Unlock()

	if busy {
		return ErrBusy
	}
	return c.conv.Clear()
}

// Close cancels any in-flight exchange and ends the session.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.closed = true
}

// =============================================================================
// HELPERS
// =============================================================================

func notify(fn UpdateFunc, msg model.Message) {
	if fn != nil {
		fn(msg)
	}
}

// isCancellation distinguishes a deliberate abort from a failure. A timeout
// is a failure.
func isCancellation(err error, streamCtx context.Context) bool {
	if errors.Is(streamCtx.Err(), context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, context.Canceled) || ollama.IsCanceled(err) || streamCtx.Err() != nil
}

func (c *Controller) logTurn(stats ollama.Stats) {
	if stats.DroppedBytes > 0 {
		log.Printf("session %s: discarded %d bytes of unterminated trailing line", c.id, stats.DroppedBytes)
	}
	c.mu.Lock()
	debug := c.debug
	c.mu.Unlock()
	if debug {
		log.Printf("session %s: %s (%d fragments, %d skipped lines)", c.id, stats.Format(), stats.Fragments, stats.SkippedLines)
	}
}
