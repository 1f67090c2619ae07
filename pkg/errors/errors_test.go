// Copyright (c) 2025 A Bit of Help, Inc.

package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestPipelineError(t *testing.T) {
	baseErr := errors.New("test error")
	pe := NewPipelineError(baseErr, "deflate", "compress", 100, "notes.txt")

	if pe.Err != baseErr {
		t.Errorf("Expected Err to be %v, got %v", baseErr, pe.Err)
	}
	if pe.Stage != "deflate" {
		t.Errorf("Expected Stage to be %s, got %s", "deflate", pe.Stage)
	}
	if pe.Operation != "compress" {
		t.Errorf("Expected Operation to be %s, got %s", "compress", pe.Operation)
	}
	if pe.DataSize != 100 {
		t.Errorf("Expected DataSize to be %d, got %d", 100, pe.DataSize)
	}
	if pe.FileName != "notes.txt" {
		t.Errorf("Expected FileName to be %s, got %s", "notes.txt", pe.FileName)
	}

	if pe.Error() == "" {
		t.Error("Error() returned empty string")
	}

	if pe.Unwrap() != baseErr {
		t.Errorf("Expected Unwrap() to return %v, got %v", baseErr, pe.Unwrap())
	}
}

func TestBatchError(t *testing.T) {
	cause := NewPipelineError(fmt.Errorf("%w: bad header", ErrCodecFailure), "raster", "compress", 10, "b.png")
	be := NewBatchError(cause, 1, 3, "b.png")

	if !errors.Is(be, ErrBatchFailure) {
		t.Error("Expected BatchError to match ErrBatchFailure")
	}
	if !errors.Is(be, ErrCodecFailure) {
		t.Error("Expected BatchError to match the wrapped ErrCodecFailure")
	}

	var pe *PipelineError
	if !errors.As(be, &pe) {
		t.Fatal("Expected errors.As to find the PipelineError")
	}
	if pe.Stage != "raster" {
		t.Errorf("Expected stage raster, got %s", pe.Stage)
	}

	want := "file 2 of 3 (b.png)"
	if !strings.Contains(be.Error(), want) {
		t.Errorf("Expected message to contain %q, got %q", want, be.Error())
	}
}

func TestTaxonomyPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		expected  bool
	}{
		{"codec failure", fmt.Errorf("wrapped: %w", ErrCodecFailure), IsCodecFailure, true},
		{"not codec failure", ErrUnsupportedContent, IsCodecFailure, false},
		{"unsupported", fmt.Errorf("wrapped: %w", ErrUnsupportedContent), IsUnsupportedContent, true},
		{"invalid configuration", fmt.Errorf("wrapped: %w", ErrInvalidConfiguration), IsInvalidConfiguration, true},
		{"batch of unsupported", NewBatchError(ErrUnsupportedContent, 0, 2, "x"), IsUnsupportedContent, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.predicate(tc.err); got != tc.expected {
				t.Errorf("predicate(%v) = %v, expected %v", tc.err, got, tc.expected)
			}
		})
	}
}

func TestIsIOError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrIOFailure", ErrIOFailure, true},
		{"PathError", &os.PathError{Op: "open", Path: "nonexistent", Err: os.ErrNotExist}, true},
		{"Other error", errors.New("some other error"), false},
		{"Wrapped IO error", fmt.Errorf("wrapped: %w", ErrIOFailure), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := IsIOError(tc.err)
			if result != tc.expected {
				t.Errorf("IsIOError(%v) = %v, expected %v", tc.err, result, tc.expected)
			}
		})
	}
}

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrTimeout", ErrTimeout, true},
		{"DeadlineExceeded", context.DeadlineExceeded, true},
		{"Other error", errors.New("some other error"), false},
		{"Wrapped timeout error", fmt.Errorf("wrapped: %w", ErrTimeout), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := IsTimeoutError(tc.err)
			if result != tc.expected {
				t.Errorf("IsTimeoutError(%v) = %v, expected %v", tc.err, result, tc.expected)
			}
		})
	}
}

func TestIsCancellationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrCanceled", ErrCanceled, true},
		{"Canceled", context.Canceled, true},
		{"Other error", errors.New("some other error"), false},
		{"Wrapped cancel error", fmt.Errorf("wrapped: %w", ErrCanceled), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := IsCancellationError(tc.err)
			if result != tc.expected {
				t.Errorf("IsCancellationError(%v) = %v, expected %v", tc.err, result, tc.expected)
			}
		})
	}
}

func TestErrorCollector(t *testing.T) {
	// Test NewErrorCollector
	ec := NewErrorCollector()
	if ec == nil {
		t.Fatal("NewErrorCollector() returned nil")
	}

	// Test HasErrors when empty
	if ec.HasErrors() {
		t.Error("New ErrorCollector should not have errors")
	}

	// Test Error when empty
	if ec.Error() != "no errors" {
		t.Errorf("Expected 'no errors', got '%s'", ec.Error())
	}

	// Test Add with nil
	ec.Add(nil)
	if ec.HasErrors() {
		t.Error("ErrorCollector should not have errors after adding nil")
	}

	// Test Add with error
	err1 := errors.New("error 1")
	ec.Add(err1)

	// Test HasErrors after adding
	if !ec.HasErrors() {
		t.Error("ErrorCollector should have errors after Add")
	}

	// Test Error with one error
	if ec.Error() != err1.Error() {
		t.Errorf("Expected '%s', got '%s'", err1.Error(), ec.Error())
	}

	// Test Errors
	errs := ec.Errors()
	if len(errs) != 1 || errs[0] != err1 {
		t.Errorf("Expected [%v], got %v", []error{err1}, errs)
	}

	// Add another error
	err2 := errors.New("error 2")
	ec.Add(err2)

	// Test Error with multiple errors
	errorMsg := ec.Error()
	if errorMsg == "" {
		t.Error("Error() returned empty string")
	}
	if len(ec.Errors()) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(ec.Errors()))
	}
}

func TestErrorCollectorUnwrap(t *testing.T) {
	ec := NewErrorCollector()
	ec.Add(fmt.Errorf("target_percent: %w", ErrInvalidConfiguration))
	ec.Add(errors.New("other"))

	if !errors.Is(ec, ErrInvalidConfiguration) {
		t.Error("Expected collector to expose ErrInvalidConfiguration through Unwrap")
	}
}
