// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"io"
	"strings"

	"golang.org/x/time/rate"

	"github.com/maanis/voxa/internal/markup"
)

// StableWriter prints a streaming message to a plain terminal, writing each
// segment once it can no longer change.
//
// Only the last segment of a growing message may still change, so every
// other segment is final and safe to print. Re-parsing is rate limited;
// skipped updates are caught up on the next allowed one or on Finish.
type StableWriter struct {
	w        io.Writer
	renderer *Renderer
	limiter  *rate.Limiter

	printed   int
	lineStart bool
	latest    string
}

// NewStableWriter creates a writer re-parsing at most fps times per second.
// fps <= 0 disables the limit.
func NewStableWriter(w io.Writer, r *Renderer, fps int) *StableWriter {
	limit := rate.Inf
	if fps > 0 {
		limit = rate.Limit(fps)
	}
	return &StableWriter{
		w:         w,
		renderer:  r,
		limiter:   rate.NewLimiter(limit, 1),
		lineStart: true,
	}
}

// Update takes the full accumulated text of the message.
func (s *StableWriter) Update(total string) error {
	s.latest = total
	if !s.limiter.Allow() {
		return nil
	}
	return s.write(markup.Stable(markup.Parse(total)))
}

// Finish prints everything not yet printed of the final text.
func (s *StableWriter) Finish(total string) error {
	s.latest = total
	return s.write(markup.Parse(total))
}

// Printed returns the number of segments written so far.
func (s *StableWriter) Printed() int {
	return s.printed
}

// AtLineStart reports whether the output so far ends with a newline.
func (s *StableWriter) AtLineStart() bool {
	return s.lineStart
}

// Latest returns the last text passed to Update or Finish.
func (s *StableWriter) Latest() string {
	return s.latest
}

func (s *StableWriter) write(segs []markup.Segment) error {
	if s.printed >= len(segs) {
		return nil
	}

	var b strings.Builder
	lineStart := s.lineStart
	for _, seg := range segs[s.printed:] {
		out := s.renderer.RenderSegment(seg, lineStart)
		b.WriteString(out)
		if out != "" {
			lineStart = strings.HasSuffix(out, "\n")
		}
	}

	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return err
	}
	s.printed = len(segs)
	s.lineStart = lineStart
	return nil
}
