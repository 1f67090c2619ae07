// Copyright (c) 2025 A Bit of Help, Inc.

package compression

import (
	"context"
	"fmt"

	"github.com/abitofhelp/pixelpack/pkg/content"
	"github.com/abitofhelp/pixelpack/pkg/dataprocessor"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
	"github.com/klauspost/compress/zstd"
)

// ZstdCodec compresses text with Zstandard. Level maps onto the encoder speed presets
// (1=fastest ... 4=best compression).
type ZstdCodec struct{}

// NewZstd creates a ZstdCodec
func NewZstd() *ZstdCodec { return &ZstdCodec{} }

// Name implements Codec
func (*ZstdCodec) Name() string { return string(Zstd) }

// Compress implements Codec
func (c *ZstdCodec) Compress(ctx context.Context, data []byte, params normalize.Params) (*Output, error) {
	return dataprocessor.ProcessWithContext(ctx, func() (*Output, error) {
		// single-threaded for byte-identical output across machines
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevel(params.Level)),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		defer encoder.Close()

		return &Output{Data: encoder.EncodeAll(data, nil), ContentType: content.TypeOctetStream}, nil
	})
}
