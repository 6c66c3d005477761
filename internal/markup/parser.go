// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import "unicode/utf8"

// Parse splits text into an ordered, non-overlapping list of segments.
//
// The scan runs left to right. At each position the rules are tried in
// precedence order (fenced code, heading, bold, italic) and the first match
// consumes its span. Everything else accumulates into PlainText, with
// adjacent plain runs merged.
//
// Parse is pure: the same input always yields the same output, and it is
// safe to call from any goroutine. When text only grows between calls, only
// the last segment of the earlier result can differ in the later one.
func Parse(text string) []Segment {
	var segs []Segment
	plainStart := -1

	flush := func(end int) {
		if plainStart >= 0 && end > plainStart {
			segs = append(segs, span(text, KindPlainText, plainStart, end))
		}
		plainStart = -1
	}

	pos := 0
	for pos < len(text) {
		if seg, ok := matchAt(text, pos); ok {
			if seg.Kind == KindPlainText {
				if plainStart < 0 {
					plainStart = pos
				}
			} else {
				flush(pos)
				segs = append(segs, seg)
			}
			pos = seg.End
			continue
		}

		if plainStart < 0 {
			plainStart = pos
		}
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	flush(len(text))

	return segs
}

// matchAt tries every rule at pos in precedence order.
func matchAt(text string, pos int) (Segment, bool) {
	c := text[pos]
	for _, r := range rules {
		if r.lead != c {
			continue
		}
		if seg, ok := r.match(text, pos); ok {
			return seg, true
		}
	}
	return Segment{}, false
}
