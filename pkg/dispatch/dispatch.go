// Copyright (c) 2025 A Bit of Help, Inc.

// Package dispatch routes a classified file to exactly one codec.
//
// Images and documents are routed by content kind alone. The user's algorithm choice
// only selects among the text codecs.
package dispatch

import (
	"context"
	"fmt"

	"github.com/abitofhelp/pixelpack/pkg/compression"
	"github.com/abitofhelp/pixelpack/pkg/content"
	"github.com/abitofhelp/pixelpack/pkg/document"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
	"github.com/abitofhelp/pixelpack/pkg/raster"
)

// File is one input with its content kind resolved at ingress
type File struct {
	Name string
	Kind content.Kind
	Data []byte
}

// Settings is the normalized request shared by every file of a run
type Settings struct {
	// TargetPercent is clamped to [normalize.MinPercent, normalize.MaxPercent]
	TargetPercent normalize.Percent

	// Algorithm selects the text codec
	Algorithm compression.Algorithm
}

// Result is the output of compressing one file
type Result struct {
	// Name is the original file name
	Name string

	// Data is the compressed payload
	Data []byte

	// ContentType is the inferred content type of Data
	ContentType string

	// Codec is the name of the codec that produced Data
	Codec string

	// InputSize is the length of the original payload
	InputSize int
}

// Dispatcher selects and invokes a codec per file
type Dispatcher struct {
	text     map[compression.Algorithm]compression.Codec
	image    compression.Codec
	document compression.Codec
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithTextCodec replaces the codec used for a text algorithm
func WithTextCodec(algorithm compression.Algorithm, codec compression.Codec) Option {
	return func(d *Dispatcher) { d.text[algorithm] = codec }
}

// WithImageCodec replaces the codec used for images
func WithImageCodec(codec compression.Codec) Option {
	return func(d *Dispatcher) { d.image = codec }
}

// WithDocumentCodec replaces the codec used for documents
func WithDocumentCodec(codec compression.Codec) Option {
	return func(d *Dispatcher) { d.document = codec }
}

// WithRawEntropy makes the huffman algorithm emit bare packed bits instead of a frame
func WithRawEntropy(raw bool) Option {
	return WithTextCodec(compression.Huffman, compression.NewHuffman(raw))
}

// New creates a Dispatcher wired to the default codecs
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		text: map[compression.Algorithm]compression.Codec{
			compression.Huffman: compression.NewHuffman(false),
			compression.Deflate: compression.NewDeflate(),
			compression.Brotli:  compression.NewBrotli(),
			compression.Zstd:    compression.NewZstd(),
		},
		image:    raster.New(),
		document: document.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Select returns the codec for file and the parameter space it is normalized into
func (d *Dispatcher) Select(file File, settings Settings) (compression.Codec, normalize.Codec, error) {
	switch file.Kind {
	case content.Image:
		return d.image, normalize.Raster, nil
	case content.Document:
		return d.document, normalize.Document, nil
	case content.Text:
		algorithm := compression.ParseAlgorithm(string(settings.Algorithm))
		codec, ok := d.text[algorithm]
		if !ok {
			codec = d.text[compression.DefaultAlgorithm]
		}
		return codec, algorithm.Target(), nil
	default:
		return nil, 0, fmt.Errorf("%w: content kind %s", customErrors.ErrUnsupportedContent, file.Kind)
	}
}

// Dispatch compresses one file. Failures are returned as *errors.PipelineError naming
// the codec; codec-internal failures additionally match errors.ErrCodecFailure.
func (d *Dispatcher) Dispatch(ctx context.Context, file File, settings Settings) (*Result, error) {
	codec, target, err := d.Select(file, settings)
	if err != nil {
		return nil, customErrors.NewPipelineError(err, "dispatch", "select codec", len(file.Data), file.Name)
	}

	params := normalize.For(target, settings.TargetPercent)
	out, err := codec.Compress(ctx, file.Data, params)
	if err != nil {
		if !customErrors.IsUnsupportedContent(err) &&
			!customErrors.IsCancellationError(err) &&
			!customErrors.IsTimeoutError(err) &&
			!customErrors.IsCodecFailure(err) {
			err = fmt.Errorf("%w: %w", customErrors.ErrCodecFailure, err)
		}
		return nil, customErrors.NewPipelineError(err, codec.Name(), "compress", len(file.Data), file.Name)
	}

	return &Result{
		Name:        file.Name,
		Data:        out.Data,
		ContentType: out.ContentType,
		Codec:       codec.Name(),
		InputSize:   len(file.Data),
	}, nil
}
