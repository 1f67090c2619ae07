// Copyright (c) 2025 A Bit of Help, Inc.

// Package raster re-samples and re-encodes bitmaps at the scale and quality derived
// from the target percent.
//
// Decoders for PNG, JPEG, GIF, WebP, BMP and TIFF are registered. PNG input stays PNG
// (lossless, quality ignored); every other format is re-encoded as JPEG. A payload sniffed
// as an image format without a decoder (SVG, HEIF, AVIF, PSD, ...) is unsupported content;
// any other decode failure is a codec failure.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	"image/png"
	"math"

	"github.com/abitofhelp/pixelpack/pkg/compression"
	"github.com/abitofhelp/pixelpack/pkg/content"
	"github.com/abitofhelp/pixelpack/pkg/dataprocessor"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Name identifies the recompressor in errors, logs and metrics
const Name = "raster"

// Recompressor implements compression.Codec for images
type Recompressor struct {
	scaler draw.Scaler
}

// New creates a Recompressor using bilinear resampling
func New() *Recompressor {
	return &Recompressor{scaler: draw.BiLinear}
}

var _ compression.Codec = (*Recompressor)(nil)

// Name implements compression.Codec
func (*Recompressor) Name() string { return Name }

// Compress implements compression.Codec
func (r *Recompressor) Compress(ctx context.Context, data []byte, params normalize.Params) (*compression.Output, error) {
	return dataprocessor.ProcessWithContext(ctx, func() (*compression.Output, error) {
		return r.recompress(data, params.Raster)
	})
}

func (r *Recompressor) recompress(data []byte, params normalize.RasterParams) (*compression.Output, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if format, ok := undecodable(data); ok {
			return nil, fmt.Errorf("%w: no raster decoder for %s", customErrors.ErrUnsupportedContent, format)
		}
		return nil, fmt.Errorf("%w: failed to decode image: %w", customErrors.ErrCodecFailure, err)
	}

	scaled := r.resize(src, params.Scale)

	var buf bytes.Buffer
	if format == "png" {
		if err := encodePNG(&buf, scaled); err != nil {
			return nil, err
		}
		return &compression.Output{Data: buf.Bytes(), ContentType: content.TypePNG}, nil
	}

	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality(params)}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return &compression.Output{Data: buf.Bytes(), ContentType: content.TypeJPEG}, nil
}

// resize returns src scaled by factor in each dimension. Neither dimension drops below 1.
// decodable lists the sniffed image subtypes with a registered decoder
var decodable = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
	"tiff": true,
}

// undecodable reports the format of an image payload no registered decoder can read
func undecodable(data []byte) (string, bool) {
	if isSVG(data) {
		return "svg+xml", true
	}
	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return "", false
	}
	return kind.MIME.Subtype, !decodable[kind.MIME.Subtype]
}

// isSVG sniffs XML markup whose document element is svg
func isSVG(data []byte) bool {
	head := bytes.TrimLeft(data[:min(len(data), 1024)], " \t\r\n\ufeff")
	return bytes.HasPrefix(head, []byte("<")) && bytes.Contains(head, []byte("<svg"))
}

func (r *Recompressor) resize(src image.Image, factor float64) image.Image {
	b := src.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), factor)
	if w == b.Dx() && h == b.Dy() {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	r.scaler.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// ScaledSize computes the target dimensions for factor
func ScaledSize(w, h int, factor float64) (int, int) {
	if factor <= 0 || factor > 1 {
		factor = 1
	}
	sw := max(1, int(math.Floor(float64(w)*factor)))
	sh := max(1, int(math.Floor(float64(h)*factor)))
	return sw, sh
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(buf, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// jpegQuality maps quality in [0.1, 1] onto the encoder's 1..100 scale
func jpegQuality(params normalize.RasterParams) int {
	if !params.HasQuality {
		return jpeg.DefaultQuality
	}
	return min(max(int(math.Round(params.Quality*100)), 1), 100)
}
