// Copyright (c) 2025 A Bit of Help, Inc.

package main

import (
	"context"
	"os"

	"github.com/abitofhelp/pixelpack/pkg/config"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/abitofhelp/pixelpack/pkg/logger"
	"github.com/abitofhelp/pixelpack/pkg/pipeline"
	"github.com/abitofhelp/pixelpack/pkg/stats"
	"github.com/abitofhelp/pixelpack/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time
var version = "dev"

// ExitFunc is a function that exits the program with a given status code
type ExitFunc func(int)

// DefaultExitFunc is the default implementation of ExitFunc
var DefaultExitFunc = os.Exit

// LoggerFunc builds a logger at the given level
type LoggerFunc func(level string) *zap.Logger

// ProcessFilesFunc is a function type for compressing files
type ProcessFilesFunc func(ctx context.Context, log *zap.Logger, cfg *config.Config, paths []string) (*stats.Stats, error)

// DecodeFileFunc is a function type for decoding an entropy frame
type DecodeFileFunc func(ctx context.Context, log *zap.Logger, framePath, outputPath string) (*stats.Stats, error)

// app carries the injectable collaborators of the commands
type app struct {
	newLogger LoggerFunc
	process   ProcessFilesFunc
	decode    DecodeFileFunc
	log       *zap.Logger
}

// logger returns the logger built by the running command, or a default one
func (a *app) logger() *zap.Logger {
	if a.log == nil {
		a.log = a.newLogger(logger.DefaultLevel)
	}
	return a.log
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pixelpack",
		Short: "Reduce the size of text, image and PDF files",
		Long: `pixelpack compresses files locally with a single "target percent" control.

Images are resampled and re-encoded, PDFs are repackaged with their metadata
stripped, and everything else goes through the selected text codec. Several
files are bundled into one ZIP archive.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCompressCommand(a), newDecodeCommand(a))
	return root
}

func newCompressCommand(a *app) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "compress [flags] FILE...",
		Short: "Compress one or more files into a single deliverable",
		Long: `Compress one or more files into a single deliverable.

Examples:
  # Compress a text file with the default settings (deflate, balanced)
  pixelpack compress notes.txt

  # Bundle several files at maximum reduction
  pixelpack compress --preset max-reduction report.pdf photo.jpg notes.txt

  # Use the huffman coder and write to an explicit path
  pixelpack compress -a huffman -o notes.pxh notes.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, changedFlags(cmd))
			if err != nil {
				return err
			}
			a.log = a.newLogger(cfg.Log.Level)

			return withShutdown(a.log, func(ctx context.Context) error {
				runStats, err := a.process(ctx, a.log, cfg, args)
				if err != nil {
					return err
				}
				runStats.DisplaySummary(a.log, args)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.IntP("target-percent", "p", 0, "target reduction in percent (10-90)")
	flags.String("preset", "", "max-quality, balanced or max-reduction")
	flags.StringP("algorithm", "a", "", "text codec: huffman, deflate, brotli or zstd")
	flags.StringP("output", "o", "", "deliverable path")
	flags.String("output-dir", "", "directory receiving the deliverable")
	flags.String("archive-name", "", "name of the multi-file archive")
	flags.Bool("raw-entropy", false, "emit bare huffman bits without the decode frame")
	flags.Int64("max-file-size", 0, "largest accepted input file in bytes")
	flags.Duration("timeout", 0, "abort the run after this long")
	flags.String("seal-keyset", "", "seal the deliverable with the keyset at this path")
	flags.String("metrics-file", "", "write Prometheus metrics to this file")
	flags.String("log-level", "", "debug, info, warn or error")
	return cmd
}

func newDecodeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode FRAME OUTPUT",
		Short: "Restore the original text from a huffman frame",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger()
			return withShutdown(log, func(ctx context.Context) error {
				runStats, err := a.decode(ctx, log, args[0], args[1])
				if err != nil {
					return err
				}
				runStats.DisplaySummary(log, args[:1])
				return nil
			})
		},
	}
}

// flagKeys maps compress flags onto config keys
var flagKeys = map[string]string{
	"target-percent": "target_percent",
	"preset":         "preset",
	"algorithm":      "algorithm",
	"output":         "output",
	"output-dir":     "output_dir",
	"archive-name":   "archive_name",
	"raw-entropy":    "raw_entropy",
	"max-file-size":  "max_file_size",
	"timeout":        "timeout",
	"seal-keyset":    "seal.keyset_path",
	"metrics-file":   "metrics_file",
	"log-level":      "log.level",
}

// changedFlags returns the explicitly set flags keyed by config key
func changedFlags(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	flags := cmd.Flags()
	for name, key := range flagKeys {
		if !flags.Changed(name) {
			continue
		}
		f := flags.Lookup(name)
		switch f.Value.Type() {
		case "int":
			v, _ := flags.GetInt(name)
			overrides[key] = v
		case "int64":
			v, _ := flags.GetInt64(name)
			overrides[key] = v
		case "bool":
			v, _ := flags.GetBool(name)
			overrides[key] = v
		case "duration":
			v, _ := flags.GetDuration(name)
			overrides[key] = v
		default:
			overrides[key] = f.Value.String()
		}
	}
	return overrides
}

// withShutdown runs fn with a context canceled on termination signals
func withShutdown(log *zap.Logger, fn func(ctx context.Context) error) error {
	// Create a context with cancellation for safety
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanup := utils.SetupGracefulShutdown(ctx, cancel, log)
	defer cleanup()

	return fn(ctx)
}

// run is the main logic of the application, extracted for testability
func run(args []string, newLogger LoggerFunc, exit ExitFunc, process ProcessFilesFunc, decode DecodeFileFunc) {
	a := &app{newLogger: newLogger, process: process, decode: decode}
	defer func() { logger.SafeSync(a.log) }()

	root := newRootCommand(a)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		log := a.logger()
		switch {
		case customErrors.IsInvalidConfiguration(err):
			log.Error("Invalid configuration", zap.Error(err))
		case customErrors.IsCancellationError(err):
			log.Warn("Processing was canceled", zap.Error(err))
		case customErrors.IsTimeoutError(err):
			log.Error("Processing timed out", zap.Error(err))
		case customErrors.IsUnsupportedContent(err):
			log.Error("Unsupported content", zap.Error(err))
		case customErrors.IsCodecFailure(err):
			log.Error("Codec failure during processing", zap.Error(err))
		case customErrors.IsIOError(err):
			log.Error("I/O error during processing", zap.Error(err))
		default:
			log.Error("Failed to process files", zap.Error(err))
		}
		exit(1)
	}
}

func main() {
	run(os.Args[1:], logger.InitLogger, DefaultExitFunc, pipeline.ProcessFiles, pipeline.DecodeFile)
}
