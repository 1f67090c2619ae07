// Copyright (c) 2025 A Bit of Help, Inc.

package entropy

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// EncodedPayload is a packed bit stream. BitLen is the number of meaningful bits;
// the final byte is zero-padded in its low-order bits.
type EncodedPayload struct {
	Data   []byte
	BitLen int
}

// Padding returns the number of padding bits in the final byte.
func (p EncodedPayload) Padding() int {
	return len(p.Data)*8 - p.BitLen
}

// Pack concatenates the code of each symbol in input order and packs the bits
// MSB-first, 8 per byte. The result is ceil(bits/8) bytes long.
func Pack[S Symbol](symbols []S, codes CodeTable[S]) (EncodedPayload, error) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)

	bits := 0
	for _, s := range symbols {
		c, ok := codes[s]
		if !ok {
			return EncodedPayload{}, fmt.Errorf("entropy: no code for symbol %q", rune(s))
		}
		if err := w.WriteBits(c.Bits, c.Len); err != nil {
			return EncodedPayload{}, fmt.Errorf("entropy: pack bits: %w", err)
		}
		bits += int(c.Len)
	}

	// Close flushes the partial byte, zero padded
	if err := w.Close(); err != nil {
		return EncodedPayload{}, fmt.Errorf("entropy: flush bits: %w", err)
	}

	data := buf.Bytes()
	if data == nil {
		data = []byte{}
	}
	return EncodedPayload{Data: data, BitLen: bits}, nil
}
