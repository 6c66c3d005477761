// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultChunkSize is the read buffer used by Reassembler.Run.
const DefaultChunkSize = 4096

// UpdateFunc receives the full accumulated text after each change.
type UpdateFunc func(total string)

// =============================================================================
// REASSEMBLER
// =============================================================================

// Reassembler turns the chunked, newline-delimited JSON body of one chat
// request into a single growing string.
//
// Only complete lines are parsed. Text after the last newline waits for the
// next chunk; whatever is still waiting when the body ends is dropped, since
// every protocol frame ends with a newline. Lines that are not valid JSON
// are skipped without stopping the stream.
//
// A Reassembler is not safe for concurrent use.
type Reassembler struct {
	decoder   *Decoder
	pending   string
	acc       strings.Builder
	chunkSize int
	stats     Stats
}

// NewReassembler creates a reassembler for a single response.
func NewReassembler() *Reassembler {
	return &Reassembler{
		decoder:   NewDecoder(),
		chunkSize: DefaultChunkSize,
		stats:     Stats{StartTime: time.Now()},
	}
}

// SetChunkSize changes the read size used by Run. Values below 1 are ignored.
func (r *Reassembler) SetChunkSize(n int) {
	if n > 0 {
		r.chunkSize = n
	}
}

// Feed consumes one chunk of raw bytes and reports whether the accumulated
// text grew.
func (r *Reassembler) Feed(chunk []byte) bool {
	text := r.pending + r.decoder.Decode(chunk)
	changed := false

	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			break
		}
		if r.processLine(text[:i]) {
			changed = true
		}
		text = text[i+1:]
	}

	r.pending = text
	return changed
}

// Finish marks the end of the byte stream. The pending partial line is
// discarded and counted in Stats.DroppedBytes.
func (r *Reassembler) Finish() {
	rest := r.pending + r.decoder.Flush()
	r.pending = ""
	if strings.TrimSpace(rest) != "" {
		r.stats.DroppedBytes += len(rest)
	}
	if r.stats.EndTime.IsZero() {
		r.stats.EndTime = time.Now()
	}
}

// Run reads src to the end, calling onUpdate with the accumulated text each
// time a chunk adds content. Callbacks run on the calling goroutine in
// arrival order.
//
// When ctx is cancelled src is closed (if it is an io.Closer), no further
// callbacks fire, and ctx.Err() is returned. src is always closed on return.
func (r *Reassembler) Run(ctx context.Context, src io.Reader, onUpdate UpdateFunc) error {
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
		stop := context.AfterFunc(ctx, func() { c.Close() })
		defer stop()
	}

	buf := make([]byte, r.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := src.Read(buf)
		if n > 0 && r.Feed(buf[:n]) {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if onUpdate != nil {
				onUpdate(r.acc.String())
			}
		}

		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if errors.Is(err, io.EOF) {
				r.Finish()
				return nil
			}
			return &ClientError{Type: ErrTypeStream, Message: "stream read failed", Cause: err}
		}
	}
}

// processLine handles one complete line and reports whether it added text.
func (r *Reassembler) processLine(line string) bool {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return false
	}

	data := []byte(line)
	var cf contentFrame
	if err := json.Unmarshal(data, &cf); err != nil {
		r.stats.SkippedLines++
		return false
	}
	r.readMetadata(data)

	if cf.Message == nil || cf.Message.Content == "" {
		return false
	}
	delta := cf.Message.Content

	if r.stats.Fragments == 0 {
		r.stats.FirstFragmentTime = time.Now()
	}
	r.stats.Fragments++
	r.acc.WriteString(delta)
	return true
}

// readMetadata collects model and completion statistics from a line. Fields
// of the wrong type are left at zero.
func (r *Reassembler) readMetadata(data []byte) {
	var frag StreamFragment
	if err := json.Unmarshal(data, &frag); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return
		}
	}

	if frag.Model != "" {
		r.stats.Model = frag.Model
	}
	if frag.Done {
		r.stats.record(frag)
	}
}

// Accumulated returns all text received so far.
func (r *Reassembler) Accumulated() string {
	return r.acc.String()
}

// Pending returns the partial line waiting for its newline.
func (r *Reassembler) Pending() string {
	return r.pending
}

// Stats returns a copy of the collected statistics.
func (r *Reassembler) Stats() Stats {
	return r.stats
}

// =============================================================================
// STREAM STATISTICS
// =============================================================================

// Stats holds what was observed while reassembling one response.
type Stats struct {
	StartTime         time.Time
	FirstFragmentTime time.Time
	EndTime           time.Time

	Model      string
	Done       bool
	DoneReason string

	Fragments    int // lines that contributed text
	SkippedLines int // lines that were not JSON or had no readable text field
	DroppedBytes int // unterminated trailing line discarded at end of stream

	// Reported by the server on the final frame.
	PromptTokens     int
	CompletionTokens int
	TotalDuration    time.Duration
	EvalDuration     time.Duration
}

func (s *Stats) record(f StreamFragment) {
	s.Done = true
	s.DoneReason = f.DoneReason
	s.PromptTokens = f.PromptEvalCount
	s.CompletionTokens = f.EvalCount
	s.TotalDuration = time.Duration(f.TotalDuration)
	s.EvalDuration = time.Duration(f.EvalDuration)
	s.EndTime = time.Now()
}

// TTFT returns the time to the first text fragment.
func (s Stats) TTFT() time.Duration {
	if s.FirstFragmentTime.IsZero() {
		return 0
	}
	return s.FirstFragmentTime.Sub(s.StartTime)
}

// TokensPerSecond returns the server-reported generation speed.
func (s Stats) TokensPerSecond() float64 {
	if s.EvalDuration <= 0 {
		return 0
	}
	return float64(s.CompletionTokens) / s.EvalDuration.Seconds()
}

// Format returns a one-line summary for status bars.
func (s Stats) Format() string {
	total := s.TotalDuration
	if total == 0 && !s.EndTime.IsZero() {
		total = s.EndTime.Sub(s.StartTime)
	}
	return fmt.Sprintf("%s | %d tokens | %.1f tok/s | TTFT %dms",
		total.Round(time.Millisecond), s.CompletionTokens, s.TokensPerSecond(), s.TTFT().Milliseconds())
}
