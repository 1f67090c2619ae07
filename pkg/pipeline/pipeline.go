// Copyright (c) 2025 A Bit of Help, Inc.

// Package pipeline provides the main processing pipeline for the application.
//
// A run moves through four stages, each completing before the next begins:
//
//  1. reader: read and classify every input file
//  2. batch: compress each file through the codec dispatcher, in input order, and
//     aggregate several results into one archive
//  3. seal (optional): encrypt the deliverable
//  4. writer: write the deliverable, refusing to overwrite an input
//
// The core packages under /pkg (entropy, compression, raster, document, dispatch,
// batch) never log; this package owns logging, statistics and metrics.
package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"hash"
	"path/filepath"
	"time"

	"github.com/abitofhelp/pixelpack/pkg/batch"
	"github.com/abitofhelp/pixelpack/pkg/config"
	"github.com/abitofhelp/pixelpack/pkg/dispatch"
	"github.com/abitofhelp/pixelpack/pkg/encryption"
	"github.com/abitofhelp/pixelpack/pkg/entropy"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/abitofhelp/pixelpack/pkg/metrics"
	"github.com/abitofhelp/pixelpack/pkg/pipeline/options"
	"github.com/abitofhelp/pixelpack/pkg/pipeline/reader"
	"github.com/abitofhelp/pixelpack/pkg/pipeline/writer"
	"github.com/abitofhelp/pixelpack/pkg/stats"
	"go.uber.org/zap"
)

type pipelineHashers struct {
	input  hash.Hash
	output hash.Hash
}

func setupHashers() *pipelineHashers {
	return &pipelineHashers{
		input:  sha256.New(),
		output: sha256.New(),
	}
}

// ProcessFiles compresses the files at paths into a single deliverable.
func ProcessFiles(ctx context.Context, logger *zap.Logger, cfg *config.Config, paths []string) (*stats.Stats, error) {
	if err := validateInputs(ctx, logger, cfg, paths); err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	recorder := metrics.NewRecorder()
	defer writeMetrics(logger, recorder, cfg.MetricsFile)

	pipelineStats, err := run(ctx, logger, cfg, paths, recorder)
	recorder.ObserveDuration(time.Since(startTime))
	if err != nil {
		recorder.ObserveFailure(err)
		logPipelineError(logger, err, paths, startTime)
		return nil, err
	}

	pipelineStats.ProcessingTime = time.Since(startTime)
	logger.Info("Compression completed",
		zap.String("file", pipelineStats.Deliverable),
		zap.Uint64("input_bytes", pipelineStats.InputBytes.Load()),
		zap.Uint64("output_bytes", pipelineStats.OutputBytes.Load()),
		zap.String("summary", pipelineStats.Summary()),
		zap.Duration("duration", pipelineStats.ProcessingTime))
	return pipelineStats, nil
}

func run(ctx context.Context, logger *zap.Logger, cfg *config.Config, paths []string, recorder *metrics.Recorder) (*stats.Stats, error) {
	pipelineStats := stats.NewStats()
	hashers := setupHashers()
	opts := options.DefaultPipelineOptions().WithMaxFileSize(cfg.MaxFileSize)

	files, err := reader.Stage(ctx, logger, paths, opts.MaxFileSize, pipelineStats, hashers.input)
	if err != nil {
		return nil, err
	}

	dispatcher := dispatch.New(dispatch.WithRawEntropy(cfg.RawEntropy))
	orchestrator := batch.New(dispatcher, batch.WithArchiveName(cfg.ArchiveName))

	deliverable, err := orchestrator.Run(ctx, files, cfg.Settings())
	if err != nil {
		return nil, err
	}
	for _, res := range deliverable.Files {
		pipelineStats.IncrementFilesProcessed()
		pipelineStats.UpdateCompressedBytes(uint64(len(res.Data)))
		recorder.ObserveFile(res.Codec, res.InputSize, len(res.Data))
		logger.Debug("Compressed file",
			zap.String("file", res.Name),
			zap.String("codec", res.Codec),
			zap.String("content_type", res.ContentType),
			zap.Int("input_bytes", res.InputSize),
			zap.Int("output_bytes", len(res.Data)))
	}
	pipelineStats.Archived = deliverable.Archived

	name, data := deliverable.Name, deliverable.Data
	if cfg.Sealing() {
		if data, err = seal(ctx, logger, cfg.Seal.KeysetPath, data, name); err != nil {
			return nil, err
		}
		pipelineStats.UpdateSealedBytes(uint64(len(data)))
		name += encryption.SealedSuffix
	}

	outputPath := resolveOutputPath(cfg, name)
	if err := writer.Stage(ctx, logger, outputPath, data, paths, opts, pipelineStats, hashers.output); err != nil {
		return nil, err
	}

	finalizeStats(pipelineStats, hashers)
	return pipelineStats, nil
}

// DecodeFile restores the original text from an entropy frame at framePath
func DecodeFile(ctx context.Context, logger *zap.Logger, framePath, outputPath string) (*stats.Stats, error) {
	if ctx == nil || logger == nil || framePath == "" || outputPath == "" {
		return nil, customErrors.NewPipelineError(
			fmt.Errorf("%w: context, logger, frame and output path are required", customErrors.ErrInvalidConfiguration),
			"pipeline", "validate_inputs", 0, framePath)
	}

	startTime := time.Now()
	pipelineStats := stats.NewStats()
	hashers := setupHashers()
	opts := options.DefaultPipelineOptions()

	files, err := reader.Stage(ctx, logger, []string{framePath}, opts.MaxFileSize, pipelineStats, hashers.input)
	if err != nil {
		return nil, err
	}

	text, err := entropy.Decompress(files[0].Data)
	if err != nil {
		err = customErrors.NewPipelineError(
			fmt.Errorf("%w: %w", customErrors.ErrCodecFailure, err), "huffman", "decode", len(files[0].Data), framePath)
		logger.Error("Failed to decode frame", zap.Error(err))
		return nil, err
	}
	pipelineStats.IncrementFilesProcessed()

	if err := writer.Stage(ctx, logger, outputPath, text, []string{framePath}, opts, pipelineStats, hashers.output); err != nil {
		return nil, err
	}

	finalizeStats(pipelineStats, hashers)
	pipelineStats.ProcessingTime = time.Since(startTime)
	return pipelineStats, nil
}

func validateInputs(ctx context.Context, logger *zap.Logger, cfg *config.Config, paths []string) error {
	if ctx == nil {
		return customErrors.NewPipelineError(fmt.Errorf("context cannot be nil"), "pipeline", "validate_inputs", 0, "")
	}
	if logger == nil {
		return customErrors.NewPipelineError(fmt.Errorf("logger cannot be nil"), "pipeline", "validate_inputs", 0, "")
	}
	if cfg == nil {
		return customErrors.NewPipelineError(
			fmt.Errorf("%w: config cannot be nil", customErrors.ErrInvalidConfiguration), "pipeline", "validate_inputs", 0, "")
	}
	if len(paths) == 0 {
		return customErrors.NewPipelineError(
			fmt.Errorf("%w: no input files", customErrors.ErrInvalidConfiguration), "pipeline", "validate_inputs", 0, "")
	}
	for _, p := range paths {
		if p == "" {
			return customErrors.NewPipelineError(
				fmt.Errorf("%w: input path cannot be empty", customErrors.ErrInvalidConfiguration), "pipeline", "validate_inputs", 0, "")
		}
	}
	return nil
}

func seal(ctx context.Context, logger *zap.Logger, keysetPath string, data []byte, name string) ([]byte, error) {
	a, err := encryption.InitEncryption(logger, keysetPath)
	if err != nil {
		return nil, customErrors.NewPipelineError(err, "seal", "init_encryption", len(data), name)
	}
	sealed, err := encryption.Seal(ctx, a, data, name)
	if err != nil {
		return nil, customErrors.NewPipelineError(err, "seal", "encrypt", len(data), name)
	}
	return sealed, nil
}

// resolveOutputPath returns the explicit output path, or name inside the output directory
func resolveOutputPath(cfg *config.Config, name string) string {
	if cfg.Output != "" {
		return cfg.Output
	}
	return filepath.Join(cfg.OutputDir, name)
}

// finalizeStats finalizes the pipeline statistics
func finalizeStats(pipelineStats *stats.Stats, hashers *pipelineHashers) {
	pipelineStats.InputHash = hashers.input.Sum(nil)
	pipelineStats.OutputHash = hashers.output.Sum(nil)
}

// logPipelineError logs a failed run at a level matching its kind
func logPipelineError(logger *zap.Logger, err error, paths []string, startTime time.Time) {
	fields := []zap.Field{
		zap.Error(err),
		zap.Strings("input_files", paths),
		zap.Duration("duration", time.Since(startTime)),
	}
	if customErrors.IsCancellationError(err) {
		logger.Warn("Pipeline canceled", fields...)
		return
	}
	logger.Error("Pipeline processing failed", fields...)
}

func writeMetrics(logger *zap.Logger, recorder *metrics.Recorder, path string) {
	if path == "" {
		return
	}
	if err := recorder.WriteTextfile(path); err != nil {
		logger.Warn("Failed to write metrics", zap.Error(err), zap.String("file", path))
	}
}
