// Copyright (c) 2025 A Bit of Help, Inc.

// Package writer provides the writer stage for the processing pipeline.
package writer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/abitofhelp/pixelpack/pkg/pipeline/options"
	"github.com/abitofhelp/pixelpack/pkg/stats"
	"go.uber.org/zap"
)

// Stage writes the deliverable to outputPath. It refuses to overwrite any of the
// inputs and replaces an existing output atomically.
func Stage(
	ctx context.Context,
	logger *zap.Logger,
	outputPath string,
	data []byte,
	inputs []string,
	opts *options.PipelineOptions,
	pipelineStats *stats.Stats,
	outputHasher io.Writer,
) error {
	defer logger.Debug("Writer stage completed")

	if err := ctx.Err(); err != nil {
		if customErrors.IsTimeoutError(err) {
			logger.Warn("Writer timed out", zap.Error(err))
		} else {
			logger.Debug("Writer canceled by context", zap.Error(err))
		}
		return customErrors.NewPipelineError(err, "writer", "write_data", len(data), outputPath)
	}

	if err := checkNotInput(outputPath, inputs); err != nil {
		logger.Error("Refusing to overwrite input", zap.Error(err), zap.String("file", outputPath))
		return err
	}

	if err := writeAtomic(outputPath, data, opts); err != nil {
		ioErr := customErrors.NewPipelineError(
			fmt.Errorf("%w: %v", customErrors.ErrIOFailure, err), "writer", "write_data", len(data), outputPath)
		logger.Error("Write error", zap.Error(ioErr))
		return ioErr
	}

	outputHasher.Write(data)
	pipelineStats.UpdateOutputBytes(uint64(len(data)))
	pipelineStats.Deliverable = outputPath

	logger.Debug("Wrote deliverable",
		zap.String("file", outputPath),
		zap.Int("output_bytes", len(data)))
	return nil
}

// checkNotInput fails when outputPath names the same file as one of inputs
func checkNotInput(outputPath string, inputs []string) error {
	outAbs, err := filepath.Abs(outputPath)
	if err != nil {
		return customErrors.NewPipelineError(
			fmt.Errorf("%w: %v", customErrors.ErrIOFailure, err), "writer", "resolve_output", 0, outputPath)
	}
	outInfo, statErr := os.Stat(outputPath)

	for _, in := range inputs {
		inAbs, err := filepath.Abs(in)
		if err == nil && inAbs == outAbs {
			return sameFileError(outputPath)
		}
		if statErr == nil {
			if inInfo, err := os.Stat(in); err == nil && os.SameFile(inInfo, outInfo) {
				return sameFileError(outputPath)
			}
		}
	}
	return nil
}

func sameFileError(path string) error {
	return customErrors.NewPipelineError(
		fmt.Errorf("%w: output would overwrite an input file", customErrors.ErrInvalidConfiguration),
		"writer", "resolve_output", 0, path)
}

// writeAtomic writes data to a temporary file beside path and renames it into place
func writeAtomic(path string, data []byte, opts *options.PipelineOptions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, opts.DirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(opts.FileMode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
