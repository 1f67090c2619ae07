// Copyright (c) 2025 A Bit of Help, Inc.

package compression

import (
	"bytes"
	"context"
	"fmt"

	"github.com/abitofhelp/pixelpack/pkg/content"
	"github.com/abitofhelp/pixelpack/pkg/dataprocessor"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
	"github.com/klauspost/compress/zlib"
)

// DeflateCodec is the general-purpose compressor: a zlib stream at a derived level
type DeflateCodec struct{}

// NewDeflate creates a DeflateCodec
func NewDeflate() *DeflateCodec { return &DeflateCodec{} }

// Name implements Codec
func (*DeflateCodec) Name() string { return string(Deflate) }

// Compress implements Codec
func (c *DeflateCodec) Compress(ctx context.Context, data []byte, params normalize.Params) (*Output, error) {
	return dataprocessor.ProcessWithContext(ctx, func() (*Output, error) {
		out, err := deflateData(data, params.Level)
		if err != nil {
			return nil, err
		}
		return &Output{Data: out, ContentType: content.TypeOctetStream}, nil
	})
}

func deflateData(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	compressor, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create deflate writer: %w", err)
	}

	if _, err := compressor.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	if err := compressor.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize compression: %w", err)
	}

	return buf.Bytes(), nil
}
