// Copyright (c) 2025 A Bit of Help, Inc.

// Package dataprocessor runs a single codec invocation with context awareness.
//
// Codecs are not interruptible mid-run. ProcessWithContext lets the caller stop waiting
// when the context ends; the abandoned codec finishes in the background and its result
// is discarded. Panics inside the codec are recovered and reported as errors.
package dataprocessor

import (
	"context"
	"fmt"
	"runtime/debug"

	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
)

// ProcessWithContext executes processFunc and returns its result, or a cancellation or
// timeout error if ctx ends first
func ProcessWithContext[T any](ctx context.Context, processFunc func() (T, error)) (T, error) {
	var zero T

	// Check if context is already done
	if err := ctx.Err(); err != nil {
		return zero, contextError(err, "before processing")
	}

	type outcome struct {
		value T
		err   error
	}

	// Buffered so an abandoned goroutine can always deliver and exit
	done := make(chan outcome, 1)

	go func() {
		var out outcome
		defer func() {
			if r := recover(); r != nil {
				out = outcome{err: fmt.Errorf("%w: %v\nstack: %s", customErrors.ErrPanic, r, debug.Stack())}
			}
			done <- out
		}()

		out.value, out.err = processFunc()
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return zero, out.err
		}
		return out.value, nil
	case <-ctx.Done():
		return zero, contextError(ctx.Err(), "while processing")
	}
}

func contextError(err error, when string) error {
	switch err {
	case context.Canceled:
		return fmt.Errorf("%w %s: %w", customErrors.ErrCanceled, when, err)
	case context.DeadlineExceeded:
		return fmt.Errorf("%w %s: %w", customErrors.ErrTimeout, when, err)
	default:
		return fmt.Errorf("context error %s: %w", when, err)
	}
}
