// Copyright (c) 2025 A Bit of Help, Inc.

// Package normalize maps the single user-facing target percent onto each codec's
// native parameters. Every mapping is a pure function of the percent.
package normalize

import (
	"fmt"
	"math"

	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
)

const (
	// MinPercent is the weakest target
	MinPercent = 10

	// MaxPercent is the strongest target
	MaxPercent = 90

	// DefaultPercent matches the "balanced" preset
	DefaultPercent = 30

	// maxDownscale caps how much of each linear dimension raster output may lose
	maxDownscale = 0.5

	// minQuality is the lowest lossy quality ever requested
	minQuality = 0.1
)

// Percent is a target reduction in [MinPercent, MaxPercent].
type Percent int

// Validate rejects values outside [MinPercent, MaxPercent].
func (p Percent) Validate() error {
	if p < MinPercent || p > MaxPercent {
		return fmt.Errorf("%w: target percent %d outside [%d,%d]",
			customErrors.ErrInvalidConfiguration, int(p), MinPercent, MaxPercent)
	}
	return nil
}

// Clamp limits p to [MinPercent, MaxPercent].
func Clamp(p int) Percent {
	return Percent(min(max(p, MinPercent), MaxPercent))
}

// Codec selects which parameter space a percent is normalized into.
type Codec int

const (
	// Entropy is the statistical coder; it has no tunable strength
	Entropy Codec = iota
	// Deflate is the general-purpose zlib/deflate compressor
	Deflate
	// Brotli is the brotli compressor
	Brotli
	// Zstd is the zstandard compressor
	Zstd
	// Raster is the image recompressor
	Raster
	// Document is the document repackager; percent has no effect
	Document
)

// String returns the codec name.
func (c Codec) String() string {
	switch c {
	case Entropy:
		return "entropy"
	case Deflate:
		return "deflate"
	case Brotli:
		return "brotli"
	case Zstd:
		return "zstd"
	case Raster:
		return "raster"
	case Document:
		return "document"
	default:
		return fmt.Sprintf("codec(%d)", int(c))
	}
}

// LevelRange is the inclusive strength range of a leveled compressor.
type LevelRange struct {
	Min int
	Max int
}

// Level ranges of the leveled compressors.
var (
	DeflateLevels = LevelRange{Min: 1, Max: 9}
	BrotliLevels  = LevelRange{Min: 1, Max: 11}
	ZstdLevels    = LevelRange{Min: 1, Max: 4}
)

// Level returns round(p/100 * r.Max) clamped to r.
func (r LevelRange) Level(p Percent) int {
	level := int(math.Round(float64(p) * float64(r.Max) / 100))
	return min(max(level, r.Min), r.Max)
}

// RasterParams controls image recompression.
type RasterParams struct {
	// Scale multiplies each linear dimension, in [0.5, 1]
	Scale float64

	// Quality is the lossy quality in [0.1, 1]; zero when HasQuality is false
	Quality float64

	// HasQuality is false for lossless output formats
	HasQuality bool
}

// Lossless returns a copy of r with the quality axis omitted.
func (r RasterParams) Lossless() RasterParams {
	r.Quality = 0
	r.HasQuality = false
	return r
}

// RasterFor computes the downscale factor and lossy quality for p.
func RasterFor(p Percent) RasterParams {
	pf := float64(p)
	return RasterParams{
		Scale:      1 - math.Min(maxDownscale, pf/200),
		Quality:    math.Max(minQuality, 1-pf/100),
		HasQuality: true,
	}
}

// Params are the codec-native parameters derived from one percent.
type Params struct {
	Codec   Codec
	Percent Percent

	// Level is set for leveled compressors
	Level int

	// Raster is set for the raster recompressor
	Raster RasterParams
}

// For normalizes p into codec's parameter space. Out-of-range percents are clamped.
func For(codec Codec, p Percent) Params {
	p = Clamp(int(p))
	params := Params{Codec: codec, Percent: p}

	switch codec {
	case Deflate:
		params.Level = DeflateLevels.Level(p)
	case Brotli:
		params.Level = BrotliLevels.Level(p)
	case Zstd:
		params.Level = ZstdLevels.Level(p)
	case Raster:
		params.Raster = RasterFor(p)
	case Entropy, Document:
		// no tunable strength
	}

	return params
}
