// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup classifies chat message text into typed segments.
//
// Only four constructs are recognized: fenced code blocks with an optional
// language, headings of level 1 to 3, **bold** and *italic*. Everything else
// is plain text, kept verbatim. Unterminated constructs stay plain until the
// closing marker arrives, so a message can be re-parsed on every streamed
// fragment without rendering half-open blocks.
//
// # Key Types
//
//   - Segment: one classified span with its source offsets
//   - Kind: PlainText, Heading, Bold, Italic, CodeBlock
//
// # Usage
//
//	for _, seg := range markup.Parse(msg.Content) {
//	    switch seg.Kind {
//	    case markup.KindCodeBlock:
//	        highlight(seg.Language, seg.Body)
//	    case markup.KindHeading:
//	        heading(seg.Level, seg.Text)
//	    default:
//	        write(seg.Text)
//	    }
//	}
package markup
