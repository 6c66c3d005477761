// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strconv"
	"strings"
)

// =============================================================================
// SEGMENT KINDS
// =============================================================================

// Kind identifies the variant of a Segment.
type Kind int

const (
	KindPlainText Kind = iota
	KindHeading
	KindBold
	KindItalic
	KindCodeBlock
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindPlainText:
		return "PlainText"
	case KindHeading:
		return "Heading"
	case KindBold:
		return "Bold"
	case KindItalic:
		return "Italic"
	case KindCodeBlock:
		return "CodeBlock"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// =============================================================================
// SEGMENT
// =============================================================================

// Segment is one classified span of message content.
//
// Which fields are meaningful depends on Kind:
//
//	PlainText  Text (verbatim)
//	Heading    Level (1-3), Text
//	Bold       Text
//	Italic     Text
//	CodeBlock  Language (may be empty), Body
//
// Raw is always the exact source substring [Start, End), markers included.
type Segment struct {
	Kind     Kind
	Level    int
	Text     string
	Language string
	Body     string

	Start int
	End   int
	Raw   string
}

// PlainText returns a plain text segment (no source span).
func PlainText(text string) Segment {
	return Segment{Kind: KindPlainText, Text: text}
}

// Heading returns a heading segment (no source span).
func Heading(level int, text string) Segment {
	return Segment{Kind: KindHeading, Level: level, Text: text}
}

// Bold returns a bold segment (no source span).
func Bold(text string) Segment {
	return Segment{Kind: KindBold, Text: text}
}

// Italic returns an italic segment (no source span).
func Italic(text string) Segment {
	return Segment{Kind: KindItalic, Text: text}
}

// CodeBlock returns a fenced code segment (no source span).
func CodeBlock(language, body string) Segment {
	return Segment{Kind: KindCodeBlock, Language: language, Body: body}
}

// Equal compares the classified content of two segments, ignoring the
// source span.
func (s Segment) Equal(o Segment) bool {
	return s.Kind == o.Kind &&
		s.Level == o.Level &&
		s.Text == o.Text &&
		s.Language == o.Language &&
		s.Body == o.Body
}

// String returns a compact debug form such as Heading(3,"Title").
func (s Segment) String() string {
	switch s.Kind {
	case KindHeading:
		return "Heading(" + strconv.Itoa(s.Level) + "," + strconv.Quote(s.Text) + ")"
	case KindCodeBlock:
		return "CodeBlock(" + strconv.Quote(s.Language) + "," + strconv.Quote(s.Body) + ")"
	default:
		return s.Kind.String() + "(" + strconv.Quote(s.Text) + ")"
	}
}

// =============================================================================
// SEQUENCE HELPERS
// =============================================================================

// Reconstruct concatenates the source spans of segs.
func Reconstruct(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Raw)
	}
	return sb.String()
}

// Stable returns every segment except the last. While text is still
// growing, only the last segment can change on the next parse.
func Stable(segs []Segment) []Segment {
	if len(segs) == 0 {
		return nil
	}
	return segs[:len(segs)-1]
}

// CodeBlocks returns the fenced code segments of segs in order.
func CodeBlocks(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.Kind == KindCodeBlock {
			out = append(out, s)
		}
	}
	return out
}

// Format renders a segment list as one debug string, handy in test output.
func Format(segs []Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
