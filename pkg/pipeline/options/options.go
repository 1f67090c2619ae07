// Copyright (c) 2025 A Bit of Help, Inc.

// Package options provides configuration options for the processing pipeline.
package options

import "os"

const (
	// DefaultMaxFileSize bounds the size of each input file (256 MiB)
	DefaultMaxFileSize = 256 << 20

	// DefaultFileMode is the permission of written deliverables
	DefaultFileMode os.FileMode = 0644

	// DefaultDirMode is the permission of created output directories
	DefaultDirMode os.FileMode = 0755
)

// PipelineOptions contains configuration options for the processing pipeline
type PipelineOptions struct {
	// MaxFileSize bounds the size of each input file
	MaxFileSize int64

	// FileMode is the permission of written deliverables
	FileMode os.FileMode

	// DirMode is the permission of created output directories
	DirMode os.FileMode
}

// DefaultPipelineOptions returns a PipelineOptions with default values
func DefaultPipelineOptions() *PipelineOptions {
	return &PipelineOptions{
		MaxFileSize: DefaultMaxFileSize,
		FileMode:    DefaultFileMode,
		DirMode:     DefaultDirMode,
	}
}

// WithMaxFileSize returns a copy of o with MaxFileSize set when n is positive
func (o PipelineOptions) WithMaxFileSize(n int64) *PipelineOptions {
	if n > 0 {
		o.MaxFileSize = n
	}
	return &o
}
