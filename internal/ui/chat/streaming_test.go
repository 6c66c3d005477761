// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maanis/voxa/internal/config"
	"github.com/maanis/voxa/internal/model"
	"github.com/maanis/voxa/internal/ollama"
	"github.com/maanis/voxa/internal/session"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// scriptedStreamer replays totals, or defers to fn when set.
type scriptedStreamer struct {
	totals []string
	err    error
	fn     func(ctx context.Context, onUpdate ollama.UpdateFunc) (ollama.Result, error)
}

func (s *scriptedStreamer) ChatStream(ctx context.Context, _ string, _ []ollama.Message, onUpdate ollama.UpdateFunc) (ollama.Result, error) {
	if s.fn != nil {
		return s.fn(ctx, onUpdate)
	}
	for _, total := range s.totals {
		onUpdate(total)
	}
	if s.err != nil {
		return ollama.Result{}, s.err
	}
	last := ""
	if len(s.totals) > 0 {
		last = s.totals[len(s.totals)-1]
	}
	return ollama.Result{Content: last, Stats: ollama.Stats{CompletionTokens: len(s.totals)}}, nil
}

// drain collects every event of one exchange.
func drain(events <-chan tea.Msg) []tea.Msg {
	var out []tea.Msg
	for msg := range events {
		out = append(out, msg)
	}
	return out
}

// =============================================================================
// STREAMING BUFFER TESTS
// =============================================================================

func TestNewStreamingBuffer(t *testing.T) {
	tests := []struct {
		fps  int
		want int
	}{
		{0, config.DefaultMaxFPS},
		{-5, config.DefaultMaxFPS},
		{config.MaxFPSLimit + 1, config.DefaultMaxFPS},
		{1, 1},
		{60, 60},
		{config.MaxFPSLimit, config.MaxFPSLimit},
	}
	for _, tt := range tests {
		if got := NewStreamingBuffer(tt.fps).MaxFPS(); got != tt.want {
			t.Errorf("NewStreamingBuffer(%d).MaxFPS() = %d, want %d", tt.fps, got, tt.want)
		}
	}
}

func TestStreamingBufferHoldsBackBursts(t *testing.T) {
	sb := NewStreamingBuffer(1)

	first := model.NewMessage(model.RoleAssistant, "a")
	if !sb.Offer(first) {
		t.Fatal("first offer should be drawn immediately")
	}
	if _, ok := sb.Take(); ok {
		t.Error("Take after a drawn offer should have nothing pending")
	}

	sb.Offer(model.NewMessage(model.RoleAssistant, "ab"))
	if sb.Offer(model.NewMessage(model.RoleAssistant, "abc")) {
		t.Fatal("offer within the same frame should be held back")
	}

	got, ok := sb.Take()
	if !ok {
		t.Fatal("Take should return the held update")
	}
	if got.Content != "abc" {
		t.Errorf("Take() content = %q, want %q", got.Content, "abc")
	}
	if _, ok := sb.Take(); ok {
		t.Error("second Take should have nothing pending")
	}

	offered, emitted := sb.Stats()
	if offered != 3 || emitted != 2 {
		t.Errorf("Stats() = (%d, %d), want (3, 2)", offered, emitted)
	}
}

func TestStreamingBufferHold(t *testing.T) {
	sb := NewStreamingBuffer(1)
	if !sb.Offer(model.NewMessage(model.RoleAssistant, "a")) {
		t.Fatal("first offer should be drawn immediately")
	}

	sb.Hold()

	got, ok := sb.Take()
	if !ok || got.Content != "a" {
		t.Errorf("Take() = %q, %v, want %q, true", got.Content, ok, "a")
	}
	offered, emitted := sb.Stats()
	if offered != 1 || emitted != 1 {
		t.Errorf("Stats() = (%d, %d), want (1, 1)", offered, emitted)
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBuffer(1)
	sb.Offer(model.NewMessage(model.RoleAssistant, "a"))
	sb.Offer(model.NewMessage(model.RoleAssistant, "ab"))

	sb.Reset()

	if _, ok := sb.Take(); ok {
		t.Error("Reset should drop the pending update")
	}
	offered, emitted := sb.Stats()
	if offered != 0 || emitted != 0 {
		t.Errorf("Stats() after Reset = (%d, %d), want (0, 0)", offered, emitted)
	}
}

func TestStreamingBufferConcurrency(t *testing.T) {
	sb := NewStreamingBuffer(config.MaxFPSLimit)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sb.Offer(model.NewMessage(model.RoleAssistant, "x"))
				sb.Take()
			}
		}()
	}
	wg.Wait()

	offered, emitted := sb.Stats()
	assert.Equal(t, 400, offered)
	assert.LessOrEqual(t, emitted, offered)
}

// =============================================================================
// EXCHANGE PUMP TESTS
// =============================================================================

func TestRunExchange_Done(t *testing.T) {
	ctrl := session.NewController(&scriptedStreamer{totals: []string{"He", "Hello"}}, session.Config{})
	events := make(chan tea.Msg, 16)

	runExchange(context.Background(), ctrl, "hi", NewStreamingBuffer(config.MaxFPSLimit), events)
	got := drain(events)

	require.NotEmpty(t, got)
	first, ok := got[0].(StreamUpdateMsg)
	require.True(t, ok, "first event = %T, want StreamUpdateMsg", got[0])
	assert.Empty(t, first.Message.Content, "the empty assistant message is announced first")

	done, ok := got[len(got)-1].(StreamDoneMsg)
	require.True(t, ok, "last event = %T, want StreamDoneMsg", got[len(got)-1])
	assert.False(t, done.Canceled)
	assert.Equal(t, "Hello", done.Message.Content)
	assert.False(t, done.Message.IsStreaming)
}

func TestRunExchange_Failure(t *testing.T) {
	boom := ollama.NewStatusError(500)
	ctrl := session.NewController(&scriptedStreamer{err: boom}, session.Config{})
	events := make(chan tea.Msg, 16)

	runExchange(context.Background(), ctrl, "hi", NewStreamingBuffer(config.MaxFPSLimit), events)
	got := drain(events)

	failed, ok := got[len(got)-1].(StreamErrorMsg)
	require.True(t, ok, "last event = %T, want StreamErrorMsg", got[len(got)-1])
	assert.True(t, errors.Is(failed.Err, boom))
	assert.True(t, failed.Message.Failed)
	assert.Equal(t, session.FallbackMessage, failed.Message.Content)
}

func TestRunExchange_Canceled(t *testing.T) {
	started := make(chan struct{})
	streamer := &scriptedStreamer{fn: func(ctx context.Context, onUpdate ollama.UpdateFunc) (ollama.Result, error) {
		onUpdate("partial")
		close(started)
		<-ctx.Done()
		return ollama.Result{}, ctx.Err()
	}}
	ctrl := session.NewController(streamer, session.Config{})
	events := make(chan tea.Msg, 16)

	go func() {
		<-started
		ctrl.Cancel()
	}()
	runExchange(context.Background(), ctrl, "hi", NewStreamingBuffer(config.MaxFPSLimit), events)
	got := drain(events)

	done, ok := got[len(got)-1].(StreamDoneMsg)
	require.True(t, ok, "last event = %T, want StreamDoneMsg", got[len(got)-1])
	assert.True(t, done.Canceled)
	assert.Equal(t, "partial", done.Message.Content)
}

func TestRunExchange_StopsSendingAfterContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := session.NewController(&scriptedStreamer{totals: []string{"a"}}, session.Config{})
	events := make(chan tea.Msg)

	// Unbuffered and never read: must return instead of blocking.
	runExchange(ctx, ctrl, "hi", NewStreamingBuffer(config.MaxFPSLimit), events)

	_, open := <-events
	assert.False(t, open, "events is closed when the pump returns")
}

func TestRunExchange_FullChannelDoesNotBlockCancel(t *testing.T) {
	flooded := make(chan struct{})
	streamer := &scriptedStreamer{fn: func(ctx context.Context, onUpdate ollama.UpdateFunc) (ollama.Result, error) {
		total := ""
		for i := 0; i < 50; i++ {
			total += "x"
			onUpdate(total)
		}
		close(flooded)
		<-ctx.Done()
		return ollama.Result{}, ctx.Err()
	}}
	ctrl := session.NewController(streamer, session.Config{})
	events := make(chan tea.Msg, 1)
	sb := NewStreamingBuffer(config.MaxFPSLimit)

	go runExchange(context.Background(), ctrl, "hi", sb, events)
	<-flooded

	canceled := make(chan bool, 1)
	go func() { canceled <- ctrl.Cancel() }()
	select {
	case ok := <-canceled:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Cancel blocked on a full event channel")
	}

	got := drain(events)
	done, ok := got[len(got)-1].(StreamDoneMsg)
	require.True(t, ok, "last event = %T, want StreamDoneMsg", got[len(got)-1])
	assert.True(t, done.Canceled)
	assert.Equal(t, strings.Repeat("x", 50), done.Message.Content)
}

func TestWaitForStream(t *testing.T) {
	events := make(chan tea.Msg, 1)
	events <- StreamUpdateMsg{}
	close(events)

	if _, ok := waitForStream(events)().(StreamUpdateMsg); !ok {
		t.Error("waitForStream should deliver the queued event")
	}
	if msg := waitForStream(events)(); msg != nil {
		t.Errorf("waitForStream on a closed channel = %T, want nil", msg)
	}
}
