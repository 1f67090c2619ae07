// Copyright (c) 2025 A Bit of Help, Inc.

// Package errors provides custom error types and error handling utilities for the application.
//
// The sentinels mirror the failure taxonomy of the compression pipeline. Callers should
// compare with errors.Is (or the Is* helpers) rather than inspecting messages.
package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Standard errors that can be used for comparison with errors.Is
var (
	// ErrInvalidConfiguration indicates a configuration value is outside its allowed range
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedContent indicates no codec can handle the file's content kind
	ErrUnsupportedContent = errors.New("unsupported content")

	// ErrCodecFailure indicates a codec failed internally (malformed image, document, ...)
	ErrCodecFailure = errors.New("codec failure")

	// ErrBatchFailure indicates a multi-file run was aborted
	ErrBatchFailure = errors.New("batch failure")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrIOFailure indicates an I/O operation failed
	ErrIOFailure = errors.New("I/O operation failed")

	// ErrPanic indicates a panic occurred
	ErrPanic = errors.New("panic occurred")
)

// PipelineError represents an error that occurred while processing one file
type PipelineError struct {
	// Err is the underlying error
	Err error

	// Stage is the codec or pipeline stage where the error occurred
	Stage string

	// Operation is the operation being performed
	Operation string

	// Time is when the error occurred
	Time time.Time

	// DataSize is the size of the data being processed
	DataSize int

	// FileName is the name of the file being processed
	FileName string
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	return fmt.Sprintf("[%s] %s (stage=%s, size=%d, file=%s): %v",
		e.Time.Format(time.RFC3339),
		e.Operation,
		e.Stage,
		e.DataSize,
		e.FileName,
		e.Err)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a new PipelineError
func NewPipelineError(err error, stage, operation string, dataSize int, fileName string) *PipelineError {
	return &PipelineError{
		Err:       err,
		Stage:     stage,
		Operation: operation,
		Time:      time.Now(),
		DataSize:  dataSize,
		FileName:  fileName,
	}
}

// BatchError reports the first per-file failure that aborted a multi-file run.
// It matches both ErrBatchFailure and the cause under errors.Is.
type BatchError struct {
	// Index is the zero-based position of the failing file
	Index int

	// Total is the number of files in the batch
	Total int

	// FileName is the name of the failing file
	FileName string

	// Err is the per-file failure
	Err error
}

// Error implements the error interface
func (e *BatchError) Error() string {
	return fmt.Sprintf("%v: file %d of %d (%s): %v", ErrBatchFailure, e.Index+1, e.Total, e.FileName, e.Err)
}

// Unwrap returns both the batch sentinel and the per-file cause
func (e *BatchError) Unwrap() []error {
	return []error{ErrBatchFailure, e.Err}
}

// NewBatchError creates a new BatchError
func NewBatchError(err error, index, total int, fileName string) *BatchError {
	return &BatchError{Index: index, Total: total, FileName: fileName, Err: err}
}

// IsIOError checks if the error is an I/O error
func IsIOError(err error) bool {
	var pathErr *os.PathError
	return errors.Is(err, ErrIOFailure) || errors.As(err, &pathErr)
}

// IsTimeoutError checks if the error is a timeout error
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsCancellationError checks if the error is a cancellation error
func IsCancellationError(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// IsCodecFailure checks if the error is a codec failure
func IsCodecFailure(err error) bool {
	return errors.Is(err, ErrCodecFailure)
}

// IsUnsupportedContent checks if the error is an unsupported content error
func IsUnsupportedContent(err error) bool {
	return errors.Is(err, ErrUnsupportedContent)
}

// IsInvalidConfiguration checks if the error is a configuration error
func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// ErrorCollector collects multiple errors
type ErrorCollector struct {
	errors []error
}

// NewErrorCollector creates a new ErrorCollector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collector
func (c *ErrorCollector) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// HasErrors returns true if the collector has any errors
func (c *ErrorCollector) HasErrors() bool {
	return len(c.errors) > 0
}

// Error implements the error interface
func (c *ErrorCollector) Error() string {
	if len(c.errors) == 0 {
		return "no errors"
	}

	if len(c.errors) == 1 {
		return c.errors[0].Error()
	}

	msg := fmt.Sprintf("%d errors occurred:\n", len(c.errors))
	for i, err := range c.errors {
		msg += fmt.Sprintf("  %d: %v\n", i+1, err)
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (c *ErrorCollector) Unwrap() []error {
	return c.errors
}

// Errors returns all collected errors
func (c *ErrorCollector) Errors() []error {
	return c.errors
}
