// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// chunkReader returns one predefined chunk per Read call.
type chunkReader struct {
	chunks [][]byte
	closed atomic.Bool
}

func newChunkReader(chunks ...string) *chunkReader {
	cr := &chunkReader{}
	for _, c := range chunks {
		cr.chunks = append(cr.chunks, []byte(c))
	}
	return cr
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func (c *chunkReader) Close() error {
	c.closed.Store(true)
	return nil
}

func frame(content string) string {
	return `{"model":"qwen2.5:0.5b","message":{"role":"assistant","content":"` + content + `"},"done":false}` + "\n"
}

func runAll(t *testing.T, chunks ...string) (string, []string, Stats) {
	t.Helper()
	r := NewReassembler()
	var updates []string
	err := r.Run(context.Background(), newChunkReader(chunks...), func(total string) {
		updates = append(updates, total)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return r.Accumulated(), updates, r.Stats()
}

// =============================================================================
// LINE HANDLING
// =============================================================================

func TestReassembler_AccumulatesFragments(t *testing.T) {
	got, updates, stats := runAll(t, frame("Hel"), frame("lo"), frame(" world"))

	if got != "Hello world" {
		t.Errorf("Accumulated = %q, want 'Hello world'", got)
	}
	want := []string{"Hel", "Hello", "Hello world"}
	if len(updates) != len(want) {
		t.Fatalf("got %d updates, want %d", len(updates), len(want))
	}
	for i := range want {
		if updates[i] != want[i] {
			t.Errorf("update[%d] = %q, want %q", i, updates[i], want[i])
		}
	}
	if stats.Fragments != 3 {
		t.Errorf("Fragments = %d, want 3", stats.Fragments)
	}
}

func TestReassembler_MalformedLineSkipped(t *testing.T) {
	got, updates, stats := runAll(t, "not-json\n", `{"message":{"content":"hi"}}`+"\n")

	if got != "hi" {
		t.Errorf("Accumulated = %q, want 'hi'", got)
	}
	if len(updates) != 1 {
		t.Errorf("got %d updates, want 1", len(updates))
	}
	if stats.SkippedLines != 1 {
		t.Errorf("SkippedLines = %d, want 1", stats.SkippedLines)
	}
}

func TestReassembler_LineSplitAcrossChunks(t *testing.T) {
	line := frame("split")
	got, updates, _ := runAll(t, line[:10], line[10:25], line[25:])

	if got != "split" {
		t.Errorf("Accumulated = %q, want 'split'", got)
	}
	if len(updates) != 1 {
		t.Errorf("got %d updates, want 1", len(updates))
	}
}

func TestReassembler_MultipleLinesInOneChunk(t *testing.T) {
	got, updates, _ := runAll(t, frame("a")+frame("b")+frame("c"))

	if got != "abc" {
		t.Errorf("Accumulated = %q, want 'abc'", got)
	}
	// One callback per chunk that added text.
	if len(updates) != 1 || updates[0] != "abc" {
		t.Errorf("updates = %q, want [abc]", updates)
	}
}

func TestReassembler_SplitMultibyteRune(t *testing.T) {
	line := []byte(frame("こんにちは"))
	// Cut inside the first Japanese character.
	cut := strings.Index(string(line), "こ") + 1

	got, _, _ := runAll(t, string(line[:cut]), string(line[cut:]))
	if got != "こんにちは" {
		t.Errorf("Accumulated = %q, want 'こんにちは'", got)
	}
	if strings.ContainsRune(got, '�') {
		t.Error("Accumulated contains a replacement character")
	}
}

func TestReassembler_TrailingPartialLineDropped(t *testing.T) {
	last := strings.TrimSuffix(frame("lost"), "\n")
	got, _, stats := runAll(t, frame("kept"), last)

	if got != "kept" {
		t.Errorf("Accumulated = %q, want 'kept'", got)
	}
	if stats.DroppedBytes != len(last) {
		t.Errorf("DroppedBytes = %d, want %d", stats.DroppedBytes, len(last))
	}
}

func TestReassembler_BlankAndEmptyContentLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"blank line", "\n"},
		{"whitespace line", "   \t\n"},
		{"crlf blank", "\r\n"},
		{"empty content", `{"message":{"content":""}}` + "\n"},
		{"no message", `{"done":false}` + "\n"},
		{"message not an object", `{"message":"hi"}` + "\n"},
		{"json array", "[1,2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReassembler()
			if r.Feed([]byte(tt.input)) {
				t.Error("Feed reported a change")
			}
			if r.Accumulated() != "" {
				t.Errorf("Accumulated = %q, want empty", r.Accumulated())
			}
		})
	}
}

func TestReassembler_CRLFLines(t *testing.T) {
	r := NewReassembler()
	r.Feed([]byte(`{"message":{"content":"x"}}` + "\r\n"))
	if r.Accumulated() != "x" {
		t.Errorf("Accumulated = %q, want 'x'", r.Accumulated())
	}
}

func TestReassembler_DoneFrameStats(t *testing.T) {
	done := `{"model":"m","message":{"content":""},"done":true,"done_reason":"stop","eval_count":20,"eval_duration":2000000000,"prompt_eval_count":5}` + "\n"
	_, _, stats := runAll(t, frame("x"), done)

	if !stats.Done {
		t.Error("Done = false, want true")
	}
	if stats.DoneReason != "stop" {
		t.Errorf("DoneReason = %q, want 'stop'", stats.DoneReason)
	}
	if stats.CompletionTokens != 20 || stats.PromptTokens != 5 {
		t.Errorf("tokens = %d/%d, want 5/20", stats.PromptTokens, stats.CompletionTokens)
	}
	if tps := stats.TokensPerSecond(); tps != 10 {
		t.Errorf("TokensPerSecond = %v, want 10", tps)
	}
	if stats.Model != "m" {
		t.Errorf("Model = %q, want 'm'", stats.Model)
	}
}

func TestReassembler_OddMetadataKeepsContent(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty created_at", `{"created_at":"","message":{"content":"hi"}}`},
		{"fractional eval_count", `{"eval_count":1.5,"message":{"content":"hi"}}`},
		{"string done", `{"done":"false","message":{"content":"hi"}}`},
		{"numeric role", `{"message":{"role":1,"content":"hi"}}`},
		{"object model", `{"model":{"name":"m"},"message":{"content":"hi"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReassembler()
			if !r.Feed([]byte(tt.line + "\n")) {
				t.Error("Feed() = false, want true")
			}
			if r.Accumulated() != "hi" {
				t.Errorf("Accumulated = %q, want 'hi'", r.Accumulated())
			}
			if n := r.Stats().SkippedLines; n != 0 {
				t.Errorf("SkippedLines = %d, want 0", n)
			}
		})
	}
}

func TestReassembler_DoneFrameWithOddCounter(t *testing.T) {
	done := `{"message":{"content":"!"},"done":true,"done_reason":"stop","eval_count":"20","prompt_eval_count":5}` + "\n"
	got, _, stats := runAll(t, frame("x"), done)

	if got != "x!" {
		t.Errorf("Accumulated = %q, want 'x!'", got)
	}
	if !stats.Done || stats.DoneReason != "stop" {
		t.Errorf("Done/DoneReason = %v/%q, want true/'stop'", stats.Done, stats.DoneReason)
	}
	if stats.PromptTokens != 5 || stats.CompletionTokens != 0 {
		t.Errorf("tokens = %d/%d, want 5/0", stats.PromptTokens, stats.CompletionTokens)
	}
}

func TestReassembler_NonStringContentSkipped(t *testing.T) {
	got, _, stats := runAll(t, `{"message":{"content":7}}`+"\n", frame("ok"))
	if got != "ok" {
		t.Errorf("Accumulated = %q, want 'ok'", got)
	}
	if stats.SkippedLines != 1 {
		t.Errorf("SkippedLines = %d, want 1", stats.SkippedLines)
	}
}

func TestReassembler_ReadsPastDoneFrame(t *testing.T) {
	got, _, _ := runAll(t, `{"done":true}`+"\n", frame("late"))
	if got != "late" {
		t.Errorf("Accumulated = %q, want 'late'", got)
	}
}

// =============================================================================
// CANCELLATION AND ERRORS
// =============================================================================

func TestReassembler_ClosesSource(t *testing.T) {
	src := newChunkReader(frame("a"))
	if err := NewReassembler().Run(context.Background(), src, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !src.closed.Load() {
		t.Error("source was not closed")
	}
}

func TestReassembler_CancelStopsCallbacks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := newChunkReader(frame("one"), frame("two"), frame("three"))

	var updates []string
	err := NewReassembler().Run(ctx, src, func(total string) {
		updates = append(updates, total)
		cancel()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(updates) != 1 {
		t.Errorf("got %d updates after cancel, want 1", len(updates))
	}
	if !src.closed.Load() {
		t.Error("source was not released after cancel")
	}
}

// blockingReader blocks in Read until closed.
type blockingReader struct {
	once   sync.Once
	closed chan struct{}
}

func (b *blockingReader) Read(p []byte) (int, error) {
	<-b.closed
	return 0, errors.New("read on closed body")
}

func (b *blockingReader) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

func TestReassembler_CancelUnblocksRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &blockingReader{closed: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		done <- NewReassembler().Run(ctx, src, func(string) {
			t.Error("callback fired on a cancelled stream")
		})
	}()

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

type failingReader struct{ sent bool }

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return copy(p, frame("partial")), nil
	}
	return 0, errors.New("connection reset")
}

func TestReassembler_ReadErrorWrapped(t *testing.T) {
	r := NewReassembler()
	err := r.Run(context.Background(), &failingReader{}, nil)

	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("Run() error = %v, want *ClientError", err)
	}
	if ce.Type != ErrTypeStream {
		t.Errorf("Type = %v, want %v", ce.Type, ErrTypeStream)
	}
	if IsTransport(err) {
		t.Error("mid-stream failure reported as transport error")
	}
	if r.Accumulated() != "partial" {
		t.Errorf("Accumulated = %q, want 'partial'", r.Accumulated())
	}
}

func TestReassembler_SmallChunkSize(t *testing.T) {
	input := frame("Grüße, ") + "garbage\n" + frame("世界")
	r := NewReassembler()
	r.SetChunkSize(1)

	if err := r.Run(context.Background(), strings.NewReader(input), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.Accumulated() != "Grüße, 世界" {
		t.Errorf("Accumulated = %q, want 'Grüße, 世界'", r.Accumulated())
	}
}
