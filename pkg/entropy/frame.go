// Copyright (c) 2025 A Bit of Help, Inc.

package entropy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/icza/bitio"
)

// Frame layout:
//
//	magic "PXH1" | alphabet (1 byte) | uvarint symbol count |
//	count x (uvarint symbol, uvarint frequency) in first-appearance order |
//	uvarint bit length | packed payload
var frameMagic = [4]byte{'P', 'X', 'H', '1'}

// ErrCorruptFrame is returned when a frame cannot be decoded.
var ErrCorruptFrame = errors.New("entropy: corrupt frame")

// MarshalBinary serializes the payload together with everything needed to decode it.
func (e *Encoded) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(frameMagic) + 1 + len(e.entries)*4 + 2*binary.MaxVarintLen64 + len(e.Payload.Data))

	buf.Write(frameMagic[:])
	buf.WriteByte(byte(e.Alphabet))

	var scratch [binary.MaxVarintLen64]byte
	putUvarint := func(v uint64) {
		n := binary.PutUvarint(scratch[:], v)
		buf.Write(scratch[:n])
	}

	putUvarint(uint64(len(e.entries)))
	for _, en := range e.entries {
		putUvarint(en.symbol)
		putUvarint(uint64(en.count))
	}
	putUvarint(uint64(e.Payload.BitLen))
	buf.Write(e.Payload.Data)

	return buf.Bytes(), nil
}

// Decompress restores the original bytes from a frame produced by MarshalBinary.
func Decompress(frame []byte) ([]byte, error) {
	r := bufio.NewReader(bytes.NewReader(frame))

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != frameMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptFrame)
	}

	ab, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: missing alphabet", ErrCorruptFrame)
	}

	switch alphabet := Alphabet(ab); alphabet {
	case AlphabetRunes:
		symbols, err := decodeFrame[rune](r, len(frame))
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, len(symbols))
		for _, s := range symbols {
			if !utf8.ValidRune(s) {
				return nil, fmt.Errorf("%w: invalid code point %d", ErrCorruptFrame, s)
			}
			out = utf8.AppendRune(out, s)
		}
		return out, nil
	case AlphabetBytes:
		return decodeFrame[byte](r, len(frame))
	default:
		return nil, fmt.Errorf("%w: unknown alphabet %d", ErrCorruptFrame, ab)
	}
}

func decodeFrame[S Symbol](r *bufio.Reader, frameLen int) ([]S, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil || n > uint64(frameLen) {
		return nil, fmt.Errorf("%w: bad symbol count", ErrCorruptFrame)
	}

	symbols := make([]S, 0, n)
	counts := make([]int, 0, n)
	seen := make(map[S]struct{}, n)
	total := 0
	for i := uint64(0); i < n; i++ {
		sym, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: truncated table", ErrCorruptFrame)
		}
		count, err := binary.ReadUvarint(r)
		if err != nil || count == 0 {
			return nil, fmt.Errorf("%w: truncated table", ErrCorruptFrame)
		}
		// every occurrence costs at least one bit of the frame
		if count > uint64(frameLen)*8 {
			return nil, fmt.Errorf("%w: count %d exceeds frame size", ErrCorruptFrame, count)
		}
		s := S(sym)
		if uint64(s) != sym {
			return nil, fmt.Errorf("%w: symbol %d out of range", ErrCorruptFrame, sym)
		}
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %d", ErrCorruptFrame, sym)
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
		counts = append(counts, int(count))
		total += int(count)
	}

	bitLen, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: missing bit length", ErrCorruptFrame)
	}
	if bitLen > uint64(frameLen)*8 || uint64(total) > bitLen {
		return nil, fmt.Errorf("%w: bit length %d does not match table", ErrCorruptFrame, bitLen)
	}

	root := BuildTree(newTableFromEntries(symbols, counts))
	if root == nil {
		if bitLen != 0 {
			return nil, fmt.Errorf("%w: bits without a table", ErrCorruptFrame)
		}
		return []S{}, nil
	}

	br := bitio.NewReader(r)
	out := make([]S, 0, total)
	for read := uint64(0); read < bitLen; {
		node := root
		if node.IsLeaf() {
			if _, err := br.ReadBool(); err != nil {
				return nil, fmt.Errorf("%w: truncated payload", ErrCorruptFrame)
			}
			read++
		}
		for !node.IsLeaf() {
			if read == bitLen {
				return nil, fmt.Errorf("%w: payload ends inside a code", ErrCorruptFrame)
			}
			bit, err := br.ReadBool()
			if err != nil {
				return nil, fmt.Errorf("%w: truncated payload", ErrCorruptFrame)
			}
			read++
			if bit {
				node = node.Right
			} else {
				node = node.Left
			}
		}
		out = append(out, node.Symbol)
	}

	if len(out) != total {
		return nil, fmt.Errorf("%w: decoded %d symbols, table counts %d", ErrCorruptFrame, len(out), total)
	}
	return out, nil
}
