// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// STATEFUL UTF-8 DECODER
// =============================================================================

// Decoder turns a sequence of byte chunks into text. A codepoint whose bytes
// straddle two chunks is held back and completed by the next chunk, so no
// replacement character is ever produced for it. Bytes that are invalid
// UTF-8 on their own still decode to U+FFFD.
type Decoder struct {
	t    transform.Transformer
	tail []byte
	dst  []byte
}

// NewDecoder creates a decoder with an empty carry buffer.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode decodes chunk, prepending any bytes carried over from the
// previous call. An incomplete trailing sequence is carried forward.
func (d *Decoder) Decode(chunk []byte) string {
	return d.decode(chunk, false)
}

// Flush decodes whatever is still carried. Call once at end of stream.
func (d *Decoder) Flush() string {
	return d.decode(nil, true)
}

// Pending returns the number of carried bytes.
func (d *Decoder) Pending() int {
	return len(d.tail)
}

// Reset clears carried state so the decoder can be reused.
func (d *Decoder) Reset() {
	d.t.Reset()
	d.tail = d.tail[:0]
}

func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	src := make([]byte, 0, len(d.tail)+len(chunk))
	src = append(src, d.tail...)
	src = append(src, chunk...)
	d.tail = d.tail[:0]

	if len(src) == 0 {
		return ""
	}

	// An invalid byte expands to a 3-byte U+FFFD.
	if need := 3*len(src) + 4; cap(d.dst) < need {
		d.dst = make([]byte, need)
	}
	d.dst = d.dst[:cap(d.dst)]

	var out strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.dst, src, atEOF)
		out.Write(d.dst[:nDst])
		src = src[nSrc:]

		switch err {
		case nil:
			return out.String()
		case transform.ErrShortDst:
			d.dst = make([]byte, 2*len(d.dst))
		case transform.ErrShortSrc:
			d.tail = append(d.tail, src...)
			return out.String()
		default:
			// The UTF-8 decoder replaces rather than fails; anything else
			// is passed through untouched.
			out.Write(src)
			return out.String()
		}
	}
}
