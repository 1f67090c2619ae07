// Copyright (c) 2025 A Bit of Help, Inc.

// Package compression provides the text codecs and the Codec contract shared by every
// compressor the dispatcher can route to.
//
// Each codec is context-aware through pkg/dataprocessor: the caller may stop waiting on
// a canceled context, but a codec that has started always runs to completion.
package compression

import (
	"context"
	"strings"

	"github.com/abitofhelp/pixelpack/pkg/normalize"
)

// Output is the result of one codec invocation
type Output struct {
	// Data is the compressed payload
	Data []byte

	// ContentType is the inferred content type of Data
	ContentType string
}

// Codec compresses one payload with parameters derived by pkg/normalize
type Codec interface {
	// Name identifies the codec in errors, logs and metrics
	Name() string

	// Compress compresses data
	Compress(ctx context.Context, data []byte, params normalize.Params) (*Output, error)
}

// Algorithm is the user's choice of text codec
type Algorithm string

// Text algorithms
const (
	Huffman Algorithm = "huffman"
	Deflate Algorithm = "deflate"
	Brotli  Algorithm = "brotli"
	Zstd    Algorithm = "zstd"
)

// DefaultAlgorithm is used for any selector value that names no text algorithm
const DefaultAlgorithm = Deflate

// ParseAlgorithm maps a selector value to a text algorithm. Values that are not text
// algorithms (including "image" and "pdf") fall back to DefaultAlgorithm.
func ParseAlgorithm(s string) Algorithm {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case Huffman, Deflate, Brotli, Zstd:
		return a
	default:
		return DefaultAlgorithm
	}
}

// Target returns the normalizer parameter space of the algorithm
func (a Algorithm) Target() normalize.Codec {
	switch a {
	case Huffman:
		return normalize.Entropy
	case Brotli:
		return normalize.Brotli
	case Zstd:
		return normalize.Zstd
	default:
		return normalize.Deflate
	}
}
