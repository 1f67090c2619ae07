// Copyright (c) 2025 A Bit of Help, Inc.

// Package metrics records run metrics in a private Prometheus registry and writes
// them in the text exposition format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Failure kinds used as the "kind" label
const (
	KindInvalidConfiguration = "invalid_configuration"
	KindUnsupportedContent   = "unsupported_content"
	KindCanceled             = "canceled"
	KindTimeout              = "timeout"
	KindIO                   = "io"
	KindCodecFailure         = "codec_failure"
	KindOther                = "other"
)

// Recorder owns the run's metrics
type Recorder struct {
	registry    *prometheus.Registry
	files       *prometheus.CounterVec
	inputBytes  prometheus.Counter
	outputBytes prometheus.Counter
	failures    *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewRecorder creates a Recorder with all metrics registered
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixelpack_files_processed_total",
				Help: "Total number of files compressed, by codec",
			},
			[]string{"codec"},
		),
		inputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelpack_input_bytes_total",
			Help: "Total bytes read from input files",
		}),
		outputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelpack_output_bytes_total",
			Help: "Total bytes produced by codecs",
		}),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixelpack_failures_total",
				Help: "Total number of failed runs, by failure kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelpack_batch_duration_seconds",
			Help:    "Wall time of a complete run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}),
	}

	r.registry.MustRegister(r.files, r.inputBytes, r.outputBytes, r.failures, r.duration)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveFile records one compressed file
func (r *Recorder) ObserveFile(codec string, inputSize, outputSize int) {
	r.files.WithLabelValues(codec).Inc()
	r.inputBytes.Add(float64(inputSize))
	r.outputBytes.Add(float64(outputSize))
}

// ObserveFailure records a failed run under its taxonomy kind
func (r *Recorder) ObserveFailure(err error) {
	r.failures.WithLabelValues(FailureKind(err)).Inc()
}

// ObserveDuration records the wall time of a run
func (r *Recorder) ObserveDuration(d time.Duration) {
	r.duration.Observe(d.Seconds())
}

// WriteTextfile writes every metric to path atomically
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("%w: failed to write metrics: %v", customErrors.ErrIOFailure, err)
	}
	return nil
}

// FailureKind classifies err into one of the Kind* label values
func FailureKind(err error) string {
	switch {
	case customErrors.IsInvalidConfiguration(err):
		return KindInvalidConfiguration
	case customErrors.IsUnsupportedContent(err):
		return KindUnsupportedContent
	case customErrors.IsCancellationError(err):
		return KindCanceled
	case customErrors.IsTimeoutError(err):
		return KindTimeout
	case customErrors.IsCodecFailure(err):
		return KindCodecFailure
	case customErrors.IsIOError(err):
		return KindIO
	default:
		return KindOther
	}
}
