// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/maanis/voxa/internal/config"
	"github.com/maanis/voxa/internal/model"
	"github.com/maanis/voxa/internal/session"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer limits how often stream updates reach the screen.
//
// Every update is offered; Offer reports whether it may be drawn now. An
// update that was held back stays pending and is drawn by the next Take,
// so the last state before a pause in the stream is never lost.
//
// Thread-safety: Offer is called from the exchange goroutine, Take from the
// Bubble Tea loop.
type StreamingBuffer struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	maxFPS  int
	latest  model.Message
	pending bool

	offered int
	emitted int
}

// NewStreamingBuffer creates a buffer passing at most maxFPS updates per
// second. Values outside 1..config.MaxFPSLimit fall back to
// config.DefaultMaxFPS.
func NewStreamingBuffer(maxFPS int) *StreamingBuffer {
	sb := &StreamingBuffer{}
	sb.SetMaxFPS(maxFPS)
	return sb
}

// SetMaxFPS changes the frame limit.
func (sb *StreamingBuffer) SetMaxFPS(fps int) {
	if fps <= 0 || fps > config.MaxFPSLimit {
		fps = config.DefaultMaxFPS
	}
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.maxFPS = fps
	sb.limiter = rate.NewLimiter(rate.Limit(fps), 1)
}

// MaxFPS returns the frame limit.
func (sb *StreamingBuffer) MaxFPS() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.maxFPS
}

// Offer records msg as the latest state and reports whether it should be
// drawn now.
func (sb *StreamingBuffer) Offer(msg model.Message) bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.offered++
	sb.latest = msg
	if sb.limiter.Allow() {
		sb.pending = false
		sb.emitted++
		return true
	}
	sb.pending = true
	return false
}

// Take returns the update held back by Offer, if any, and clears it.
func (sb *StreamingBuffer) Take() (model.Message, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.pending {
		return model.Message{}, false
	}
	sb.pending = false
	sb.emitted++
	return sb.latest, true
}

// Hold puts the latest update back as pending when it could not be
// delivered. The next Take draws it.
func (sb *StreamingBuffer) Hold() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if !sb.pending && sb.emitted > 0 {
		sb.emitted--
	}
	sb.pending = true
}

// Reset drops any pending update and the counters.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.latest = model.Message{}
	sb.pending = false
	sb.offered = 0
	sb.emitted = 0
}

// Stats returns how many updates were offered and how many were drawn.
func (sb *StreamingBuffer) Stats() (offered, emitted int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.offered, sb.emitted
}

// =============================================================================
// EXCHANGE PUMP
// =============================================================================

// runExchange sends text through ctrl and forwards the outcome to events,
// which it closes when done. Sends give up once ctx is done so the goroutine
// never outlives the program.
//
// Updates never block: the Bubble Tea loop may be inside ctrl.Cancel, which
// waits for the update callback. A frame that does not fit is held for the
// next spinner tick.
func runExchange(ctx context.Context, ctrl *session.Controller, text string, sb *StreamingBuffer, events chan<- tea.Msg) {
	defer close(events)

	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}

	err := ctrl.Send(ctx, text, func(msg model.Message) {
		if !sb.Offer(msg) {
			return
		}
		select {
		case events <- StreamUpdateMsg{Message: msg}:
		default:
			sb.Hold()
		}
	})

	final, _ := ctrl.Conversation().LastAssistant()
	switch {
	case err == nil:
		send(StreamDoneMsg{Message: final})
	case errors.Is(err, context.Canceled):
		send(StreamDoneMsg{Message: final, Canceled: true})
	default:
		send(StreamErrorMsg{Message: final, Err: err})
	}
}

// waitForStream delivers the next event of an exchange. It returns nil once
// the channel is closed.
func waitForStream(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
