// Copyright (c) 2025 A Bit of Help, Inc.

// Package batch compresses a set of files independently and aggregates the results
// into one deliverable.
//
// Files are processed strictly in input order, each to completion before the next
// starts. A single file yields its result unchanged; several files yield one archive
// whose entries keep the source names. The first failure aborts the run and no partial
// archive is produced.
package batch

import (
	"context"
	"fmt"

	"github.com/abitofhelp/pixelpack/pkg/archive"
	"github.com/abitofhelp/pixelpack/pkg/dispatch"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
)

// Dispatcher compresses one file
type Dispatcher interface {
	Dispatch(ctx context.Context, file dispatch.File, settings dispatch.Settings) (*dispatch.Result, error)
}

// Deliverable is the single output of a run
type Deliverable struct {
	// Name is the original file name in single mode, the archive name otherwise
	Name string

	// Data is the deliverable payload
	Data []byte

	// ContentType is the inferred content type of Data
	ContentType string

	// Archived reports whether Data is an archive of several results
	Archived bool

	// Files are the per-file results in input order
	Files []dispatch.Result
}

// InputSize returns the total size of the original payloads
func (d *Deliverable) InputSize() int {
	total := 0
	for _, f := range d.Files {
		total += f.InputSize
	}
	return total
}

// Orchestrator runs batches against a Dispatcher
type Orchestrator struct {
	dispatcher  Dispatcher
	archiveName string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithArchiveName sets the name of the multi-file deliverable
func WithArchiveName(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.archiveName = name
		}
	}
}

// New creates an Orchestrator
func New(dispatcher Dispatcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{dispatcher: dispatcher, archiveName: archive.DefaultName}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run compresses files with shared settings. Failures in a multi-file run are
// returned as *errors.BatchError.
func (o *Orchestrator) Run(ctx context.Context, files []dispatch.File, settings dispatch.Settings) (*Deliverable, error) {
	switch len(files) {
	case 0:
		return nil, fmt.Errorf("%w: no files to compress", customErrors.ErrInvalidConfiguration)
	case 1:
		res, err := o.dispatcher.Dispatch(ctx, files[0], settings)
		if err != nil {
			return nil, err
		}
		return &Deliverable{
			Name:        res.Name,
			Data:        res.Data,
			ContentType: res.ContentType,
			Files:       []dispatch.Result{*res},
		}, nil
	}

	total := len(files)
	names := make([]string, total)
	for i, f := range files {
		names[i] = f.Name
	}
	if i, err := archive.CheckNames(names); err != nil {
		return nil, customErrors.NewBatchError(err, i, total, names[i])
	}

	results := make([]dispatch.Result, 0, total)
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, customErrors.NewBatchError(err, i, total, f.Name)
		}
		res, err := o.dispatcher.Dispatch(ctx, f, settings)
		if err != nil {
			return nil, customErrors.NewBatchError(err, i, total, f.Name)
		}
		results = append(results, *res)
	}

	entries := make([]archive.Entry, len(results))
	for i, r := range results {
		entries[i] = archive.Entry{Name: r.Name, Data: r.Data}
	}
	data, err := archive.Build(entries)
	if err != nil {
		return nil, customErrors.NewBatchError(err, total-1, total, o.archiveName)
	}

	return &Deliverable{
		Name:        o.archiveName,
		Data:        data,
		ContentType: archive.ContentType,
		Archived:    true,
		Files:       results,
	}, nil
}
