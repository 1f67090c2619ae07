// Copyright (c) 2025 A Bit of Help, Inc.

// Package reader provides the reader stage for the processing pipeline.
package reader

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/abitofhelp/pixelpack/pkg/content"
	"github.com/abitofhelp/pixelpack/pkg/dispatch"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/abitofhelp/pixelpack/pkg/stats"
	"go.uber.org/zap"
)

// Stage reads every input file in order and classifies its content. Each file is
// named after its base name. Reading stops at the first failure.
func Stage(
	ctx context.Context,
	logger *zap.Logger,
	paths []string,
	maxFileSize int64,
	pipelineStats *stats.Stats,
	inputHasher io.Writer,
) ([]dispatch.File, error) {
	defer logger.Debug("Reader stage completed")

	files := make([]dispatch.File, 0, len(paths))
	for _, path := range paths {
		// Check if context is canceled with improved error handling
		if err := ctx.Err(); err != nil {
			if customErrors.IsTimeoutError(err) {
				logger.Warn("Reader timed out", zap.Error(err))
			} else {
				logger.Debug("Reader canceled by context", zap.Error(err))
			}
			return nil, customErrors.NewPipelineError(err, "reader", "read_file", 0, path)
		}

		data, err := readFile(path, maxFileSize)
		if err != nil {
			logger.Error("Read error", zap.Error(err), zap.String("file", path))
			return nil, err
		}

		name := filepath.Base(path)
		kind := content.Classify(name, content.TypeByName(name), data)

		pipelineStats.UpdateInputBytes(uint64(len(data)))
		inputHasher.Write(data)

		logger.Debug("Read input file",
			zap.String("file", path),
			zap.String("kind", kind.String()),
			zap.Int("input_bytes", len(data)))

		files = append(files, dispatch.File{Name: name, Kind: kind, Data: data})
	}
	return files, nil
}

// readFile reads path, refusing files larger than maxFileSize. A non-positive
// maxFileSize means no limit.
func readFile(path string, maxFileSize int64) ([]byte, error) {
	if maxFileSize <= 0 {
		maxFileSize = math.MaxInt64 - 1
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, customErrors.NewPipelineError(
			fmt.Errorf("%w: %v", customErrors.ErrIOFailure, err), "reader", "open_input_file", 0, path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, customErrors.NewPipelineError(
			fmt.Errorf("%w: %v", customErrors.ErrIOFailure, err), "reader", "stat_input_file", 0, path)
	}
	if !info.Mode().IsRegular() {
		return nil, customErrors.NewPipelineError(
			fmt.Errorf("%w: not a regular file", customErrors.ErrIOFailure), "reader", "stat_input_file", 0, path)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return nil, customErrors.NewPipelineError(
			fmt.Errorf("%w: %v", customErrors.ErrIOFailure, err), "reader", "read_data", len(data), path)
	}
	if int64(len(data)) > maxFileSize {
		return nil, customErrors.NewPipelineError(
			fmt.Errorf("%w: file exceeds max_file_size of %d bytes", customErrors.ErrInvalidConfiguration, maxFileSize),
			"reader", "read_data", len(data), path)
	}
	return data, nil
}
