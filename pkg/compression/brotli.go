// Copyright (c) 2025 A Bit of Help, Inc.

package compression

import (
	"bytes"
	"context"
	"fmt"

	"github.com/abitofhelp/pixelpack/pkg/content"
	"github.com/abitofhelp/pixelpack/pkg/dataprocessor"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
	"github.com/andybalholm/brotli"
)

// BrotliCodec compresses text with Brotli at a derived quality level
type BrotliCodec struct{}

// NewBrotli creates a BrotliCodec
func NewBrotli() *BrotliCodec { return &BrotliCodec{} }

// Name implements Codec
func (*BrotliCodec) Name() string { return string(Brotli) }

// Compress implements Codec
func (c *BrotliCodec) Compress(ctx context.Context, data []byte, params normalize.Params) (*Output, error) {
	return dataprocessor.ProcessWithContext(ctx, func() (*Output, error) {
		out, err := compressData(data, params.Level)
		if err != nil {
			return nil, err
		}
		return &Output{Data: out, ContentType: content.TypeOctetStream}, nil
	})
}

// compressData compresses data using Brotli compression
func compressData(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	compressor := brotli.NewWriterLevel(&buf, level)

	if _, err := compressor.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	if err := compressor.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize compression: %w", err)
	}

	return buf.Bytes(), nil
}
