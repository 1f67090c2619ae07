// Copyright (c) 2025 A Bit of Help, Inc.

// Package document reserializes PDF containers with their metadata stripped.
//
// The repackager drops the XMP metadata stream and every document info entry, then writes
// a classic cross-reference table. pdfcpu always writes a fresh info dictionary; it keeps
// only Producer ("pixelpack", padded to the written length) and CreationDate/ModDate
// pinned to 1980-01-01. The trailer ID is derived from the input digest. The target
// percent has no effect on it.
package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/abitofhelp/pixelpack/pkg/compression"
	"github.com/abitofhelp/pixelpack/pkg/content"
	"github.com/abitofhelp/pixelpack/pkg/dataprocessor"
	"github.com/abitofhelp/pixelpack/pkg/normalize"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Name identifies the repackager in errors, logs and metrics
const Name = "document"

var disableConfigDir sync.Once

// Repackager implements compression.Codec for PDF documents
type Repackager struct{}

// New creates a Repackager
func New() *Repackager {
	// pdfcpu must not write a config directory into the user's home
	disableConfigDir.Do(api.DisableConfigDir)
	return &Repackager{}
}

var _ compression.Codec = (*Repackager)(nil)

// Name implements compression.Codec
func (*Repackager) Name() string { return Name }

// Compress implements compression.Codec
func (r *Repackager) Compress(ctx context.Context, data []byte, _ normalize.Params) (*compression.Output, error) {
	return dataprocessor.ProcessWithContext(ctx, func() (*compression.Output, error) {
		out, err := repackage(data)
		if err != nil {
			return nil, err
		}
		return &compression.Output{Data: out, ContentType: content.TypePDF}, nil
	})
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	// Info dictionary and trailer must stay uncompressed for pinVolatile
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

func repackage(data []byte) ([]byte, error) {
	pdf, err := api.ReadContext(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	if err := api.OptimizeContext(pdf); err != nil {
		return nil, fmt.Errorf("failed to optimize document: %w", err)
	}

	if err := stripMetadata(pdf); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pdf, &buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return pinVolatile(buf.Bytes(), sha256.Sum256(data))
}

// stripMetadata drops the catalog's XMP stream and the source info dictionary
func stripMetadata(pdf *model.Context) error {
	catalog, err := pdf.Catalog()
	if err != nil {
		return fmt.Errorf("failed to resolve document catalog: %w", err)
	}
	catalog.Delete("Metadata")
	pdf.Info = nil
	return nil
}
