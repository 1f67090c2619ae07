// Copyright (c) 2025 A Bit of Help, Inc.

package entropy

import "unicode/utf8"

// Alphabet selects how input bytes are split into symbols.
type Alphabet uint8

const (
	// AlphabetRunes reads the input as UTF-8 code points
	AlphabetRunes Alphabet = iota + 1
	// AlphabetBytes reads the input as raw bytes
	AlphabetBytes
)

// String returns the alphabet name.
func (a Alphabet) String() string {
	switch a {
	case AlphabetRunes:
		return "runes"
	case AlphabetBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// entry is one (symbol, count) pair of the frequency table, widened for serialization.
type entry struct {
	symbol uint64
	count  int
}

// Encoded is the result of compressing one text.
type Encoded struct {
	Payload  EncodedPayload
	Alphabet Alphabet

	entries []entry
}

// Symbols returns the number of distinct symbols in the input.
func (e *Encoded) Symbols() int {
	return len(e.entries)
}

// Compress entropy-codes text. Valid UTF-8 is coded per code point, anything else per byte.
// The output is deterministic: identical input always yields identical bytes.
func Compress(text []byte) (*Encoded, error) {
	if utf8.Valid(text) {
		return encode([]rune(string(text)), AlphabetRunes)
	}
	return encode(text, AlphabetBytes)
}

// Encode runs frequency analysis, tree construction, code derivation and bit packing
// over symbols and returns the packed payload with the frequency table it was built from.
func Encode[S Symbol](symbols []S) (EncodedPayload, *FrequencyTable[S], error) {
	table := CountFrequencies(symbols)
	codes, err := DeriveCodes(BuildTree(table))
	if err != nil {
		return EncodedPayload{}, nil, err
	}
	payload, err := Pack(symbols, codes)
	if err != nil {
		return EncodedPayload{}, nil, err
	}
	return payload, table, nil
}

func encode[S Symbol](symbols []S, alphabet Alphabet) (*Encoded, error) {
	payload, table, err := Encode(symbols)
	if err != nil {
		return nil, err
	}
	entries := make([]entry, 0, table.Len())
	for _, s := range table.order {
		entries = append(entries, entry{symbol: uint64(s), count: table.counts[s]})
	}
	return &Encoded{Payload: payload, Alphabet: alphabet, entries: entries}, nil
}
