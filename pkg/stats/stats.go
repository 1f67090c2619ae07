// Copyright (c) 2025 A Bit of Help, Inc.

// Package stats provides functionality for tracking compression run statistics
package stats

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Stats tracks run statistics with thread-safe access methods
type Stats struct {
	// Byte counts for different stages
	InputBytes      atomic.Uint64
	CompressedBytes atomic.Uint64
	SealedBytes     atomic.Uint64
	OutputBytes     atomic.Uint64

	// FilesProcessed counts files that were compressed successfully
	FilesProcessed atomic.Uint64

	// Cryptographic hashes for verification
	InputHash  []byte
	OutputHash []byte

	// Performance metrics
	ProcessingTime time.Duration

	// Deliverable is the path the output was written to
	Deliverable string

	// Archived reports whether the deliverable is an archive
	Archived bool
}

// UpdateInputBytes safely adds n bytes to the input byte count
func (s *Stats) UpdateInputBytes(n uint64) {
	s.InputBytes.Add(n)
}

// UpdateOutputBytes safely adds n bytes to the output byte count
func (s *Stats) UpdateOutputBytes(n uint64) {
	s.OutputBytes.Add(n)
}

// UpdateCompressedBytes safely adds n bytes to the compressed byte count
func (s *Stats) UpdateCompressedBytes(n uint64) {
	s.CompressedBytes.Add(n)
}

// UpdateSealedBytes safely adds n bytes to the sealed byte count
func (s *Stats) UpdateSealedBytes(n uint64) {
	s.SealedBytes.Add(n)
}

// IncrementFilesProcessed safely increments the processed file counter
func (s *Stats) IncrementFilesProcessed() {
	s.FilesProcessed.Add(1)
}

// NewStats creates a new Stats instance with initialized fields
func NewStats() *Stats {
	return &Stats{
		InputHash:  make([]byte, 0),
		OutputHash: make([]byte, 0),
	}
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds %dms", hours, minutes, seconds, milliseconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds %dms", minutes, seconds, milliseconds)
	} else if seconds > 0 {
		return fmt.Sprintf("%ds %dms", seconds, milliseconds)
	}
	return fmt.Sprintf("%dms", milliseconds)
}

// SavedBytes returns how many bytes the deliverable is smaller than the input, or zero
func (s *Stats) SavedBytes() uint64 {
	in, out := s.InputBytes.Load(), s.OutputBytes.Load()
	if out >= in {
		return 0
	}
	return in - out
}

// PercentSaved returns the size reduction of the deliverable in [0, 100]
func (s *Stats) PercentSaved() float64 {
	in := s.InputBytes.Load()
	if in == 0 {
		return 0
	}
	return min(100, float64(s.SavedBytes())/float64(in)*100)
}

// CompressionRatio returns input:compressed (higher is better compression)
func (s *Stats) CompressionRatio() float64 {
	if s.CompressedBytes.Load() == 0 {
		return 0
	}
	return float64(s.InputBytes.Load()) / float64(s.CompressedBytes.Load())
}

// Summary returns the one-line reduction summary, e.g. "42.0% smaller (1.2 KiB saved)"
func (s *Stats) Summary() string {
	return fmt.Sprintf("%.1f%% smaller (%s saved)", s.PercentSaved(), humanize.IBytes(s.SavedBytes()))
}

// WriteSummary writes the processing summary to w
func (s *Stats) WriteSummary(w io.Writer, inputs []string) {
	inputBytes := s.InputBytes.Load()
	outputBytes := s.OutputBytes.Load()

	fmt.Fprintln(w, "\n==================")
	fmt.Fprintln(w, "Processing Summary")
	fmt.Fprintln(w, "==================")
	for _, in := range inputs {
		fmt.Fprintf(w, "Input file: %s\n", in)
	}
	fmt.Fprintf(w, "Output file: %s\n", s.Deliverable)
	fmt.Fprintln(w, "------------------")
	fmt.Fprintf(w, "Files processed: %d\n", s.FilesProcessed.Load())
	fmt.Fprintf(w, "Total input bytes: %s (%d bytes)\n", humanize.IBytes(inputBytes), inputBytes)
	fmt.Fprintf(w, "Input SHA256: %s\n", hex.EncodeToString(s.InputHash))
	fmt.Fprintf(w, "Total output bytes: %s (%d bytes)\n", humanize.IBytes(outputBytes), outputBytes)
	fmt.Fprintf(w, "Output SHA256: %s\n", hex.EncodeToString(s.OutputHash))
	fmt.Fprintln(w, "------------------")
	fmt.Fprintf(w, "Input to Compressed Ratio: %.2f:1\n", s.CompressionRatio())
	fmt.Fprintf(w, "Result: %s\n", s.Summary())
	fmt.Fprintln(w, "------------------")
	fmt.Fprintf(w, "Total processing time: %s (%v)\n", FormatDuration(s.ProcessingTime), s.ProcessingTime)
	fmt.Fprintln(w, "==================")
}

// DisplaySummary prints and logs a summary of the processing results
func (s *Stats) DisplaySummary(logger *zap.Logger, inputs []string) {
	s.WriteSummary(os.Stdout, inputs)

	logger.Debug("Processing completed successfully",
		zap.Strings("input_files", inputs),
		zap.String("output_file", s.Deliverable),
		zap.Bool("archived", s.Archived),
		zap.Uint64("files_processed", s.FilesProcessed.Load()),
		zap.Uint64("total_input_bytes", s.InputBytes.Load()),
		zap.String("input_sha256_hash", hex.EncodeToString(s.InputHash)),
		zap.Uint64("compressed_bytes", s.CompressedBytes.Load()),
		zap.Uint64("sealed_bytes", s.SealedBytes.Load()),
		zap.Uint64("total_output_bytes", s.OutputBytes.Load()),
		zap.String("output_sha256_hash", hex.EncodeToString(s.OutputHash)),
		zap.Float64("compression_ratio", s.CompressionRatio()),
		zap.Float64("percent_saved", s.PercentSaved()),
		zap.Duration("processing_time", s.ProcessingTime),
		zap.String("formatted_processing_time", FormatDuration(s.ProcessingTime)))
}
