// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render draws parsed message segments as styled terminal text.
//
// Headings, bold and italic map to lipgloss styles; code blocks are
// highlighted with chroma and boxed with a language badge. StableWriter
// streams a growing message to a plain terminal, printing each segment once
// it is final.
package render
