// Copyright (c) 2025 A Bit of Help, Inc.

package compression

import (
	"context"

	"github.com/abitofhelp/pixelpack/pkg/content"
	"github.com/abitofhelp/pixelpack/pkg/dataprocessor"
	"github.com/abitofhelp/pixelpack/pkg/entropy"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
)

// HuffmanCodec wraps the statistical coder. By default it emits a decodable frame;
// with Raw set it emits only the packed bits.
type HuffmanCodec struct {
	Raw bool
}

// NewHuffman creates a HuffmanCodec
func NewHuffman(raw bool) *HuffmanCodec { return &HuffmanCodec{Raw: raw} }

// Name implements Codec
func (*HuffmanCodec) Name() string { return string(Huffman) }

// Compress implements Codec. The target percent has no effect on this codec.
func (c *HuffmanCodec) Compress(ctx context.Context, data []byte, _ normalize.Params) (*Output, error) {
	return dataprocessor.ProcessWithContext(ctx, func() (*Output, error) {
		enc, err := entropy.Compress(data)
		if err != nil {
			return nil, err
		}
		if c.Raw {
			return &Output{Data: enc.Payload.Data, ContentType: content.TypeOctetStream}, nil
		}
		frame, err := enc.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return &Output{Data: frame, ContentType: content.TypeOctetStream}, nil
	})
}
