// Copyright (c) 2025 A Bit of Help, Inc.

package entropy

import (
	"errors"
	"strings"
)

// MaxCodeLength is the longest code a CodeTable can hold.
const MaxCodeLength = 64

// ErrCodeTooLong is returned when a tree is deeper than MaxCodeLength.
var ErrCodeTooLong = errors.New("entropy: prefix code longer than 64 bits")

// Code is a bit string of Len bits stored in the low bits of Bits, first bit most significant.
type Code struct {
	Bits uint64
	Len  uint8
}

// String renders the code as a string of '0' and '1'.
func (c Code) String() string {
	var b strings.Builder
	for i := int(c.Len) - 1; i >= 0; i-- {
		if c.Bits&(1<<uint(i)) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// HasPrefix reports whether p is a prefix of c.
func (c Code) HasPrefix(p Code) bool {
	if p.Len > c.Len {
		return false
	}
	return c.Bits>>(c.Len-p.Len) == p.Bits
}

// CodeTable maps each symbol to its code.
type CodeTable[S Symbol] map[S]Code

// DeriveCodes assigns every leaf the path from the root (left=0, right=1).
// A single-leaf tree gives its symbol the one-bit code "0". A nil tree gives an empty table.
func DeriveCodes[S Symbol](root *Node[S]) (CodeTable[S], error) {
	codes := make(CodeTable[S])
	if root == nil {
		return codes, nil
	}
	if root.IsLeaf() {
		codes[root.Symbol] = Code{Bits: 0, Len: 1}
		return codes, nil
	}
	if err := walk(root, Code{}, codes); err != nil {
		return nil, err
	}
	return codes, nil
}

func walk[S Symbol](n *Node[S], path Code, codes CodeTable[S]) error {
	if n.IsLeaf() {
		codes[n.Symbol] = path
		return nil
	}
	if path.Len == MaxCodeLength {
		return ErrCodeTooLong
	}
	if err := walk(n.Left, Code{Bits: path.Bits << 1, Len: path.Len + 1}, codes); err != nil {
		return err
	}
	return walk(n.Right, Code{Bits: path.Bits<<1 | 1, Len: path.Len + 1}, codes)
}
