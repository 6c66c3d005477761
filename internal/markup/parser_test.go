// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"reflect"
	"testing"
)

func segsEqual(a, b []Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{"empty", "", nil},
		{"plain only", "hello world", []Segment{PlainText("hello world")}},
		{"whitespace preserved", "  a\n\n\tb  ", []Segment{PlainText("  a\n\n\tb  ")}},
		{
			"bold and italic",
			"**bold** and *italic*",
			[]Segment{Bold("bold"), PlainText(" and "), Italic("italic")},
		},
		{
			"unclosed bold on last line stays literal",
			"a ** b *c*",
			[]Segment{PlainText("a ** b *c*")},
		},
		{
			"unclosed bold on finished line",
			"a ** b *c*\n",
			[]Segment{PlainText("a *"), Italic(" b "), PlainText("c*\n")},
		},
		{"heading 1", "# Title", []Segment{Heading(1, "Title")}},
		{"heading 2", "## Title", []Segment{Heading(2, "Title")}},
		{"heading 3", "### Title", []Segment{Heading(3, "Title")}},
		{"heading tab", "##\tTabbed  ", []Segment{Heading(2, "Tabbed")}},
		{"four hashes", "#### Title", []Segment{PlainText("#### Title")}},
		{"hash without space", "#Title", []Segment{PlainText("#Title")}},
		{"hash mid line", "a # not heading", []Segment{PlainText("a # not heading")}},
		{
			"heading keeps markup literal",
			"# **not bold**",
			[]Segment{Heading(1, "**not bold**")},
		},
		{
			"heading then body",
			"# Heading\nBody **b**",
			[]Segment{Heading(1, "Heading"), PlainText("\nBody "), Bold("b")},
		},
		{
			"code block",
			"```python\nprint(1)\n```",
			[]Segment{CodeBlock("python", "print(1)\n")},
		},
		{"code block no language", "```\ncode\n```", []Segment{CodeBlock("", "code\n")}},
		{"whitespace language", "```   \nx = 1\n```", []Segment{CodeBlock("", "x = 1\n")}},
		{"info string extra words", "```go title\nx\n```", []Segment{CodeBlock("go", "x\n")}},
		{
			"code block between text",
			"Intro\n```go\nfmt.Println()\n```\nAfter",
			[]Segment{PlainText("Intro\n"), CodeBlock("go", "fmt.Println()\n"), PlainText("\nAfter")},
		},
		{
			"two code blocks",
			"```py\na\n```\n```js\nb\n```",
			[]Segment{CodeBlock("py", "a\n"), PlainText("\n"), CodeBlock("js", "b\n")},
		},
		{
			"markup inside code is literal",
			"```md\n# not heading\n**x**\n```",
			[]Segment{CodeBlock("md", "# not heading\n**x**\n")},
		},
		{"unterminated fence", "```python\nprint(1)", []Segment{PlainText("```python\nprint(1)")}},
		{"fence without newline", "```py", []Segment{PlainText("```py")}},
		{
			"unterminated fence after text",
			"See:\n```go\nx := 1",
			[]Segment{PlainText("See:\n```go\nx := 1")},
		},
		{"inline triple backticks", "use ```x``` inline", []Segment{PlainText("use ```x``` inline")}},
		{"unterminated bold", "**unterminated", []Segment{PlainText("**unterminated")}},
		{"unterminated italic", "*unterminated", []Segment{PlainText("*unterminated")}},
		{"empty bold", "****", []Segment{PlainText("****")}},
		{"bold across lines", "**\n**", []Segment{PlainText("**\n**")}},
		{
			"bold then italic on next line",
			"**a**\n*b*",
			[]Segment{Bold("a"), PlainText("\n"), Italic("b")},
		},
		{
			"bold containing italic markers",
			"**a *b* c**",
			[]Segment{Bold("a *b* c")},
		},
		{
			"unicode text",
			"héllo *wörld*",
			[]Segment{PlainText("héllo "), Italic("wörld")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !segsEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, Format(got), Format(tt.want))
			}
		})
	}
}

func TestParse_SourceSpans(t *testing.T) {
	input := "Hi **there**\n## Next"
	got := Parse(input)

	want := []struct {
		start, end int
		raw        string
	}{
		{0, 3, "Hi "},
		{3, 12, "**there**"},
		{12, 13, "\n"},
		{13, 20, "## Next"},
	}
	if len(got) != len(want) {
		t.Fatalf("Parse(%q) = %s, want %d segments", input, Format(got), len(want))
	}
	for i, w := range want {
		if got[i].Start != w.start || got[i].End != w.end || got[i].Raw != w.raw {
			t.Errorf("segment %d span = [%d,%d) %q, want [%d,%d) %q",
				i, got[i].Start, got[i].End, got[i].Raw, w.start, w.end, w.raw)
		}
	}
}

// =============================================================================
// PROPERTY TESTS
// =============================================================================

var propertyDocs = []string{
	"",
	"plain text only",
	"**bold** and *italic*",
	"# Title\nSome **bold** text and *it*.\n```go\nx := 1\n```\nDone **end**",
	"## Setup\n\n1. Install\n2. Run `go test`\n\n```bash\ngo test ./...\n```\n",
	"**a *b* c** and *d* then **e",
	"```python\nprint('hi')\n``` trailing *x*",
	"### Ünïcödé 世界\n*斜体* and **太字**",
	"odd * count ** markers *",
	"```\nunclosed fence with **bold** inside",
	"a\n#\n# \n##x\n### y\n#### z",
}

func TestParse_Idempotent(t *testing.T) {
	for _, doc := range propertyDocs {
		a := Parse(doc)
		b := Parse(doc)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Parse(%q) not deterministic: %s vs %s", doc, Format(a), Format(b))
		}
	}
}

func TestParse_Reconstruction(t *testing.T) {
	for _, doc := range propertyDocs {
		segs := Parse(doc)
		if got := Reconstruct(segs); got != doc {
			t.Errorf("Reconstruct(Parse(%q)) = %q", doc, got)
		}

		// Spans are contiguous and ordered.
		prev := 0
		for i, s := range segs {
			if s.Start != prev {
				t.Errorf("Parse(%q) segment %d starts at %d, want %d", doc, i, s.Start, prev)
			}
			if s.End <= s.Start {
				t.Errorf("Parse(%q) segment %d is empty", doc, i)
			}
			prev = s.End
		}
	}
}

func TestParse_StreamingMonotonicity(t *testing.T) {
	for _, doc := range propertyDocs {
		var cuts []int
		for i := range doc {
			cuts = append(cuts, i)
		}
		cuts = append(cuts, len(doc))

		for a, i := range cuts {
			earlier := Stable(Parse(doc[:i]))
			for _, j := range cuts[a+1:] {
				later := Parse(doc[:j])
				if len(later) < len(earlier) {
					t.Fatalf("Parse(%q) has fewer segments than the stable part of Parse(%q)", doc[:j], doc[:i])
				}
				for k, s := range earlier {
					l := later[k]
					if !s.Equal(l) || s.Start != l.Start || s.End != l.End {
						t.Fatalf("growth %q -> %q changed closed segment %d: %s -> %s",
							doc[:i], doc[:j], k, s, l)
					}
				}
			}
		}
	}
}

func TestParse_DoesNotMutateInput(t *testing.T) {
	input := "**x** `y`"
	copyOf := string([]byte(input))
	Parse(input)
	if input != copyOf {
		t.Error("input changed")
	}
}

// =============================================================================
// SEGMENT HELPERS
// =============================================================================

func TestSegment_String(t *testing.T) {
	tests := []struct {
		seg  Segment
		want string
	}{
		{Heading(3, "Title"), `Heading(3,"Title")`},
		{Bold("b"), `Bold("b")`},
		{Italic("i"), `Italic("i")`},
		{PlainText(" and "), `PlainText(" and ")`},
		{CodeBlock("go", "x\n"), `CodeBlock("go","x\n")`},
	}
	for _, tt := range tests {
		if got := tt.seg.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestStableAndCodeBlocks(t *testing.T) {
	segs := Parse("```a\n1\n```\ntext\n```b\n2\n```")

	if got := len(Stable(segs)); got != len(segs)-1 {
		t.Errorf("len(Stable) = %d, want %d", got, len(segs)-1)
	}
	if Stable(nil) != nil {
		t.Error("Stable(nil) != nil")
	}

	blocks := CodeBlocks(segs)
	if len(blocks) != 2 || blocks[0].Language != "a" || blocks[1].Body != "2\n" {
		t.Errorf("CodeBlocks = %s", Format(blocks))
	}
}
