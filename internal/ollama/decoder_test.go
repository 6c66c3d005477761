// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// =============================================================================
// DECODER TESTS
// =============================================================================

func TestDecoder_ASCII(t *testing.T) {
	d := NewDecoder()
	if got := d.Decode([]byte("hello")); got != "hello" {
		t.Errorf("Decode = %q, want 'hello'", got)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", d.Pending())
	}
}

func TestDecoder_SplitCodepoint(t *testing.T) {
	input := []byte("héllo 世界 🎉")

	// Split at every possible position, including inside each multi-byte rune.
	for cut := 1; cut < len(input); cut++ {
		d := NewDecoder()
		got := d.Decode(input[:cut]) + d.Decode(input[cut:]) + d.Flush()

		if got != string(input) {
			t.Errorf("cut=%d: got %q, want %q", cut, got, string(input))
		}
		if strings.ContainsRune(got, utf8.RuneError) {
			t.Errorf("cut=%d: output contains replacement character", cut)
		}
	}
}

func TestDecoder_ByteAtATime(t *testing.T) {
	input := "日本語のテキスト"
	d := NewDecoder()

	var sb strings.Builder
	for i := 0; i < len(input); i++ {
		sb.WriteString(d.Decode([]byte{input[i]}))
	}
	sb.WriteString(d.Flush())

	if sb.String() != input {
		t.Errorf("got %q, want %q", sb.String(), input)
	}
}

func TestDecoder_CarriesIncompleteTail(t *testing.T) {
	d := NewDecoder()
	euro := []byte("€") // 3 bytes

	if got := d.Decode(euro[:2]); got != "" {
		t.Errorf("Decode(partial) = %q, want empty", got)
	}
	if d.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", d.Pending())
	}
	if got := d.Decode(euro[2:]); got != "€" {
		t.Errorf("Decode(rest) = %q, want '€'", got)
	}
}

func TestDecoder_InvalidBytesReplaced(t *testing.T) {
	d := NewDecoder()
	got := d.Decode([]byte{'a', 0xff, 'b'})
	if got != "a�b" {
		t.Errorf("Decode = %q, want %q", got, "a�b")
	}
}

func TestDecoder_FlushTruncatedSequence(t *testing.T) {
	d := NewDecoder()
	d.Decode([]byte{0xe2, 0x82})
	got := d.Flush()
	if !strings.ContainsRune(got, utf8.RuneError) {
		t.Errorf("Flush = %q, want a replacement character for the truncated rune", got)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending after Flush = %d, want 0", d.Pending())
	}
}
