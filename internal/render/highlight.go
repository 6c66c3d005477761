// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"
)

// DefaultCodeStyle is the chroma style used when none is configured.
const DefaultCodeStyle = "monokai"

// Highlighter colors source code for terminal output.
type Highlighter interface {
	Highlight(code, language string) string
}

// =============================================================================
// CHROMA HIGHLIGHTER
// =============================================================================

// ChromaHighlighter highlights code with chroma, formatting for the
// terminal's color profile.
type ChromaHighlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewChromaHighlighter creates a highlighter using the named chroma style.
// Unknown styles fall back to chroma's default.
func NewChromaHighlighter(styleName string, profile termenv.Profile) *ChromaHighlighter {
	if styleName == "" {
		styleName = DefaultCodeStyle
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get(FormatterName(profile))
	if formatter == nil {
		formatter = formatters.Fallback
	}

	return &ChromaHighlighter{style: style, formatter: formatter}
}

// FormatterName maps a terminal color profile to a chroma formatter name.
func FormatterName(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal16"
	default:
		return "noop"
	}
}

// IsStyleKnown reports whether chroma has a style registered under name.
func IsStyleKnown(name string) bool {
	_, ok := chromaStyles.Registry[strings.ToLower(name)]
	return ok
}

// Highlight returns code with terminal color sequences. The lexer comes from
// language, or is guessed from the code when language is empty or unknown.
// On any failure the code is returned unchanged.
func (h *ChromaHighlighter) Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return code
	}

	out := buf.String()
	// Lexers with EnsureNL add a final newline the source may not have.
	if !strings.HasSuffix(code, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}

// DetectLanguage guesses the language of code, or returns "".
func DetectLanguage(code string) string {
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}

// =============================================================================
// PLAIN HIGHLIGHTER
// =============================================================================

// PlainHighlighter returns code unchanged.
type PlainHighlighter struct{}

// Highlight implements Highlighter.
func (PlainHighlighter) Highlight(code, _ string) string {
	return code
}
