// Copyright (c) 2025 A Bit of Help, Inc.

package compression

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/abitofhelp/pixelpack/pkg/entropy"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test data - use a repeating pattern to ensure good compression
var sample = bytes.Repeat([]byte("test data for compression "), 100)

func inflate(t *testing.T, data []byte) []byte {
	t.Helper()
	r, err := zlib.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer r.Close()
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestParseAlgorithm(t *testing.T) {
	tests := map[string]Algorithm{
		"huffman":  Huffman,
		"DEFLATE":  Deflate,
		" brotli ": Brotli,
		"zstd":     Zstd,
		"image":    Deflate,
		"pdf":      Deflate,
		"":         Deflate,
		"lzma":     Deflate,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseAlgorithm(in), in)
	}
}

func TestAlgorithm_Target(t *testing.T) {
	assert.Equal(t, normalize.Entropy, Huffman.Target())
	assert.Equal(t, normalize.Deflate, Deflate.Target())
	assert.Equal(t, normalize.Brotli, Brotli.Target())
	assert.Equal(t, normalize.Zstd, Zstd.Target())
}

func TestDeflate_RoundTrip(t *testing.T) {
	codec := NewDeflate()
	for _, p := range []normalize.Percent{10, 50, 90} {
		out, err := codec.Compress(context.Background(), sample, normalize.For(normalize.Deflate, p))
		require.NoError(t, err)
		assert.Less(t, len(out.Data), len(sample))
		assert.Equal(t, "application/octet-stream", out.ContentType)
		assert.Equal(t, sample, inflate(t, out.Data))
	}
}

func TestDeflate_EmptyData(t *testing.T) {
	out, err := NewDeflate().Compress(context.Background(), []byte{}, normalize.For(normalize.Deflate, 30))
	require.NoError(t, err)
	assert.NotEmpty(t, out.Data)
	assert.Empty(t, inflate(t, out.Data))
}

func TestCodecs_Deterministic(t *testing.T) {
	tests := []struct {
		codec  Codec
		target normalize.Codec
	}{
		{NewDeflate(), normalize.Deflate},
		{NewBrotli(), normalize.Brotli},
		{NewZstd(), normalize.Zstd},
		{NewHuffman(false), normalize.Entropy},
		{NewHuffman(true), normalize.Entropy},
	}

	for _, tt := range tests {
		t.Run(tt.codec.Name(), func(t *testing.T) {
			params := normalize.For(tt.target, 70)
			a, err := tt.codec.Compress(context.Background(), sample, params)
			require.NoError(t, err)
			b, err := tt.codec.Compress(context.Background(), sample, params)
			require.NoError(t, err)
			assert.Equal(t, a.Data, b.Data)
		})
	}
}

func TestBrotli_RoundTrip(t *testing.T) {
	out, err := NewBrotli().Compress(context.Background(), sample, normalize.For(normalize.Brotli, 60))
	require.NoError(t, err)
	assert.Less(t, len(out.Data), len(sample))

	decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(out.Data)))
	require.NoError(t, err)
	assert.Equal(t, sample, decompressed)
}

func TestZstd_RoundTrip(t *testing.T) {
	out, err := NewZstd().Compress(context.Background(), sample, normalize.For(normalize.Zstd, 90))
	require.NoError(t, err)
	assert.Less(t, len(out.Data), len(sample))

	decoder, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer decoder.Close()
	decompressed, err := decoder.DecodeAll(out.Data, nil)
	require.NoError(t, err)
	assert.Equal(t, sample, decompressed)
}

func TestZstd_InvalidLevel(t *testing.T) {
	_, err := NewZstd().Compress(context.Background(), sample, normalize.Params{Level: 99})
	assert.Error(t, err)
}

func TestHuffman_FramedRoundTrip(t *testing.T) {
	out, err := NewHuffman(false).Compress(context.Background(), sample, normalize.For(normalize.Entropy, 30))
	require.NoError(t, err)

	decoded, err := entropy.Decompress(out.Data)
	require.NoError(t, err)
	assert.Equal(t, sample, decoded)
}

func TestHuffman_Raw(t *testing.T) {
	out, err := NewHuffman(true).Compress(context.Background(), []byte("aaaabbbcc"), normalize.Params{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0F, 0xE8}, out.Data)
}

func TestHuffman_IgnoresPercent(t *testing.T) {
	codec := NewHuffman(false)
	a, err := codec.Compress(context.Background(), sample, normalize.For(normalize.Entropy, 10))
	require.NoError(t, err)
	b, err := codec.Compress(context.Background(), sample, normalize.For(normalize.Entropy, 90))
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestCodecs_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	codecs := []Codec{NewDeflate(), NewBrotli(), NewZstd(), NewHuffman(false)}
	for _, codec := range codecs {
		out, err := codec.Compress(ctx, sample, normalize.For(normalize.Deflate, 30))
		assert.True(t, customErrors.IsCancellationError(err), codec.Name())
		assert.Nil(t, out)
	}
}

func TestCodecs_Names(t *testing.T) {
	assert.Equal(t, "deflate", NewDeflate().Name())
	assert.Equal(t, "brotli", NewBrotli().Name())
	assert.Equal(t, "zstd", NewZstd().Name())
	assert.Equal(t, "huffman", NewHuffman(false).Name())
}
