// Copyright (c) 2025 A Bit of Help, Inc.

// Package entropy implements a Huffman-style statistical coder for text.
//
// Compression runs in four steps: count symbol frequencies, build a prefix-code tree by
// repeatedly merging the two lightest nodes, derive each symbol's code from its path in
// the tree (left=0, right=1), and pack the codes MSB-first into bytes. The package also
// provides a self-describing frame and a decoder so payloads can be restored.
package entropy

// Symbol is one unit of the input alphabet: a Unicode code point or a raw byte.
type Symbol interface {
	~rune | ~byte
}

// FrequencyTable maps each symbol of one input to its occurrence count.
// It remembers the order in which symbols first appeared; tree construction
// uses that order to break ties.
type FrequencyTable[S Symbol] struct {
	counts map[S]int
	order  []S
}

// CountFrequencies counts every occurrence of every symbol exactly once.
// An empty input yields an empty table.
func CountFrequencies[S Symbol](symbols []S) *FrequencyTable[S] {
	t := &FrequencyTable[S]{counts: make(map[S]int)}
	for _, s := range symbols {
		if _, seen := t.counts[s]; !seen {
			t.order = append(t.order, s)
		}
		t.counts[s]++
	}
	return t
}

// newTableFromEntries rebuilds a table from (symbol, count) pairs in first-appearance order.
func newTableFromEntries[S Symbol](symbols []S, counts []int) *FrequencyTable[S] {
	t := &FrequencyTable[S]{counts: make(map[S]int, len(symbols)), order: make([]S, 0, len(symbols))}
	for i, s := range symbols {
		t.order = append(t.order, s)
		t.counts[s] = counts[i]
	}
	return t
}

// Len returns the number of distinct symbols.
func (t *FrequencyTable[S]) Len() int {
	return len(t.order)
}

// Count returns the number of occurrences of s.
func (t *FrequencyTable[S]) Count(s S) int {
	return t.counts[s]
}

// Total returns the number of symbols counted.
func (t *FrequencyTable[S]) Total() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

// Symbols returns the distinct symbols in first-appearance order.
func (t *FrequencyTable[S]) Symbols() []S {
	out := make([]S, len(t.order))
	copy(out, t.order)
	return out
}
