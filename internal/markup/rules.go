// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import "strings"

// =============================================================================
// MATCHER RULES
// =============================================================================

// rule recognizes one construct starting at a given position.
//
// match returns the segment covering [pos, end) and true when the rule
// applies. A rule may return a KindPlainText segment to claim a span as
// literal text (an unterminated construct); the parser folds it into the
// surrounding plain text.
type rule struct {
	name  string
	lead  byte
	match func(src string, pos int) (Segment, bool)
}

// rules are evaluated in order at every scan position; the first match wins.
var rules = []rule{
	{name: "fence", lead: '`', match: matchFence},
	{name: "heading", lead: '#', match: matchHeading},
	{name: "bold", lead: '*', match: matchBold},
	{name: "italic", lead: '*', match: matchItalic},
}

const fence = "```"

// matchFence handles ```lang\nbody```.
//
// Without a newline after the info string, or without a closing fence, the
// rest of the text is claimed as plain text: the block may still be
// arriving. Three backticks appearing again on the info line form an inline
// span, which is literal.
func matchFence(src string, pos int) (Segment, bool) {
	if !strings.HasPrefix(src[pos:], fence) {
		return Segment{}, false
	}

	infoStart := pos + len(fence)
	nl := strings.IndexByte(src[infoStart:], '\n')
	info := src[infoStart:]
	if nl >= 0 {
		info = info[:nl]
	}

	if i := strings.Index(info, fence); i >= 0 {
		return span(src, KindPlainText, pos, infoStart+i+len(fence)), true
	}
	if nl < 0 {
		return span(src, KindPlainText, pos, len(src)), true
	}

	bodyStart := infoStart + nl + 1
	closeAt := strings.Index(src[bodyStart:], fence)
	if closeAt < 0 {
		return span(src, KindPlainText, pos, len(src)), true
	}

	seg := span(src, KindCodeBlock, pos, bodyStart+closeAt+len(fence))
	if fields := strings.Fields(info); len(fields) > 0 {
		seg.Language = fields[0]
	}
	seg.Body = src[bodyStart : bodyStart+closeAt]
	return seg, true
}

// matchHeading handles 1-3 '#' at line start followed by a space or tab.
// The heading runs to the end of the line; the newline is not consumed.
func matchHeading(src string, pos int) (Segment, bool) {
	if pos > 0 && src[pos-1] != '\n' {
		return Segment{}, false
	}

	n := 0
	for pos+n < len(src) && src[pos+n] == '#' && n < 4 {
		n++
	}
	if n == 0 || n > 3 || pos+n >= len(src) {
		return Segment{}, false
	}
	if c := src[pos+n]; c != ' ' && c != '\t' {
		return Segment{}, false
	}

	end := lineEnd(src, pos)
	seg := span(src, KindHeading, pos, end)
	seg.Level = n
	seg.Text = strings.TrimSpace(src[pos+n : end])
	return seg, true
}

// matchBold handles **text** on a single line with non-empty text.
//
// An opener on the last, still unterminated line with no closer claims the
// rest of the text as plain: a later "**" on that line would close it.
func matchBold(src string, pos int) (Segment, bool) {
	if !strings.HasPrefix(src[pos:], "**") {
		return Segment{}, false
	}

	end := lineEnd(src, pos)
	contentStart := pos + 2
	if contentStart+1 <= end {
		if i := strings.Index(src[contentStart+1:end], "**"); i >= 0 {
			closeAt := contentStart + 1 + i
			seg := span(src, KindBold, pos, closeAt+2)
			seg.Text = src[contentStart:closeAt]
			return seg, true
		}
	}

	if end == len(src) {
		return span(src, KindPlainText, pos, len(src)), true
	}
	return Segment{}, false
}

// matchItalic handles *text* on a single line; text is non-empty and
// contains no asterisk.
func matchItalic(src string, pos int) (Segment, bool) {
	if src[pos] != '*' {
		return Segment{}, false
	}

	end := lineEnd(src, pos)
	contentStart := pos + 1
	i := strings.IndexByte(src[contentStart:end], '*')
	if i <= 0 {
		return Segment{}, false
	}

	closeAt := contentStart + i
	seg := span(src, KindItalic, pos, closeAt+1)
	seg.Text = src[contentStart:closeAt]
	return seg, true
}

// =============================================================================
// HELPERS
// =============================================================================

// lineEnd returns the index of the newline ending the line containing pos,
// or len(src).
func lineEnd(src string, pos int) int {
	if i := strings.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(src)
}

func span(src string, kind Kind, start, end int) Segment {
	seg := Segment{Kind: kind, Start: start, End: end, Raw: src[start:end]}
	if kind == KindPlainText {
		seg.Text = seg.Raw
	}
	return seg
}
