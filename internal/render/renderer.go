// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/maanis/voxa/internal/markup"
	"github.com/maanis/voxa/internal/ui/styles"
	"github.com/maanis/voxa/internal/util"
)

const (
	// minCodeWidth is the narrowest code box the renderer will draw.
	minCodeWidth = 20

	defaultWidth = 80
)

// =============================================================================
// STYLES
// =============================================================================

// Styles are the lipgloss styles applied per segment kind.
type Styles struct {
	Heading     [3]lipgloss.Style
	Bold        lipgloss.Style
	Italic      lipgloss.Style
	Plain       lipgloss.Style
	CodeBox     lipgloss.Style
	CodeBadge   lipgloss.Style
	CodeLineNum lipgloss.Style

	// LineNumbers prefixes each code line with its number.
	LineNumbers bool
}

// StylesFromTheme builds renderer styles from the application theme.
func StylesFromTheme(t *styles.Theme) Styles {
	return Styles{
		Heading:     [3]lipgloss.Style{t.Heading1, t.Heading2, t.Heading3},
		Bold:        t.Bold,
		Italic:      t.Italic,
		Plain:       t.Plain,
		CodeBox:     t.CodeBlock,
		CodeBadge:   t.CodeLangBadge,
		CodeLineNum: t.CodeLineNum,
		LineNumbers: true,
	}
}

// PlainStyles applies no decoration. Code blocks are still boxed.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Heading:     [3]lipgloss.Style{plain, plain, plain},
		Bold:        plain,
		Italic:      plain,
		Plain:       plain,
		CodeBox:     plain.BorderStyle(lipgloss.NormalBorder()),
		CodeBadge:   plain,
		CodeLineNum: plain,
	}
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer turns segment lists into terminal text.
//
// It holds no per-message state: rendering the full segment list of a
// growing message on every update is the intended use.
type Renderer struct {
	styles      Styles
	highlighter Highlighter
	width       int
}

// NewRenderer creates a renderer. A nil highlighter leaves code uncolored.
func NewRenderer(st Styles, hl Highlighter) *Renderer {
	if hl == nil {
		hl = PlainHighlighter{}
	}
	return &Renderer{styles: st, highlighter: hl, width: defaultWidth}
}

// SetWidth sets the available width in columns, used to bound code boxes.
func (r *Renderer) SetWidth(width int) {
	r.width = width
}

// Width returns the available width.
func (r *Renderer) Width() int {
	return r.width
}

// RenderText parses text and renders the result.
func (r *Renderer) RenderText(text string) string {
	return r.Render(markup.Parse(text))
}

// Render renders segs in order.
func (r *Renderer) Render(segs []markup.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(r.RenderSegment(seg, atLineStart(b.String())))
	}
	return b.String()
}

// RenderSegment renders one segment. lineStart reports whether output so far
// ends at the start of a line; code blocks begin on a fresh line otherwise.
func (r *Renderer) RenderSegment(seg markup.Segment, lineStart bool) string {
	switch seg.Kind {
	case markup.KindHeading:
		level := seg.Level
		if level < 1 {
			level = 1
		}
		if level > 3 {
			level = 3
		}
		return r.styles.Heading[level-1].Render(seg.Text)

	case markup.KindBold:
		return r.styles.Bold.Render(seg.Text)

	case markup.KindItalic:
		return r.styles.Italic.Render(seg.Text)

	case markup.KindCodeBlock:
		block := r.renderCodeBlock(seg.Language, seg.Body)
		if !lineStart {
			block = "\n" + block
		}
		return block

	default:
		return renderLines(r.styles.Plain, seg.Text)
	}
}

// renderCodeBlock draws a bordered box with a language badge above it.
func (r *Renderer) renderCodeBlock(language, body string) string {
	code := strings.TrimRight(body, "\n")

	highlighted := r.highlighter.Highlight(code, language)
	lines := strings.Split(highlighted, "\n")
	raw := strings.Split(code, "\n")

	if r.styles.LineNumbers {
		for i := range lines {
			lines[i] = r.styles.CodeLineNum.Render(strconv.Itoa(i+1)) + lines[i]
		}
	}

	// Size the box to the widest source line; highlighted lines carry
	// escape sequences and cannot be measured directly.
	contentWidth := 0
	for _, line := range raw {
		if w := util.StringWidth(line); w > contentWidth {
			contentWidth = w
		}
	}
	if r.styles.LineNumbers {
		contentWidth += 5
	}

	maxWidth := r.width - 4
	if maxWidth < minCodeWidth {
		maxWidth = minCodeWidth
	}
	if contentWidth > maxWidth {
		contentWidth = maxWidth
	}

	box := r.styles.CodeBox.
		Width(contentWidth + r.styles.CodeBox.GetHorizontalPadding()).
		Render(strings.Join(lines, "\n"))

	label := language
	if label == "" {
		label = "text"
	}
	return r.styles.CodeBadge.Render(label) + "\n" + box
}

// =============================================================================
// HELPERS
// =============================================================================

// renderLines styles each line separately so lipgloss does not pad lines
// of a multi-line span to a common width.
func renderLines(style lipgloss.Style, text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func atLineStart(s string) bool {
	return s == "" || strings.HasSuffix(s, "\n")
}
