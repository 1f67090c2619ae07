// Copyright (c) 2025 A Bit of Help, Inc.

// Package utils provides utility functions for the application
package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultGracePeriod is how long a canceled run may take to wind down before the
// process is forced to exit
const DefaultGracePeriod = 30 * time.Second

type shutdownConfig struct {
	gracePeriod time.Duration
	exit        func(int)
	signals     []os.Signal
}

// ShutdownOption configures SetupGracefulShutdown
type ShutdownOption func(*shutdownConfig)

// WithGracePeriod overrides DefaultGracePeriod
func WithGracePeriod(d time.Duration) ShutdownOption {
	return func(c *shutdownConfig) { c.gracePeriod = d }
}

// WithExitFunc replaces os.Exit for the forced shutdown path
func WithExitFunc(exit func(int)) ShutdownOption {
	return func(c *shutdownConfig) { c.exit = exit }
}

// WithSignals replaces the set of signals that trigger shutdown
func WithSignals(signals ...os.Signal) ShutdownOption {
	return func(c *shutdownConfig) { c.signals = signals }
}

// SetupGracefulShutdown cancels ctx on the first termination signal. A second signal,
// or a run that outlives the grace period, forces exit with status 1.
// It returns a function that should be deferred to clean up signal handling.
func SetupGracefulShutdown(ctx context.Context, cancel context.CancelFunc, logger *zap.Logger, opts ...ShutdownOption) func() {
	cfg := shutdownConfig{
		gracePeriod: DefaultGracePeriod,
		exit:        os.Exit,
		signals:     []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, cfg.signals...)

	done := make(chan struct{})

	go func() {
		defer logger.Debug("Signal handling goroutine exited")

		var deadline <-chan time.Time
		ctxDone := ctx.Done()
		signaled := false

		for {
			select {
			case sig := <-sigChan:
				if signaled {
					logger.Warn("Received second signal, forcing immediate shutdown",
						zap.String("signal", sig.String()))
					cfg.exit(1)
					return
				}
				signaled = true
				logger.Info("Received signal, initiating graceful shutdown",
					zap.String("signal", sig.String()),
					zap.Duration("grace_period", cfg.gracePeriod))

				timer := time.NewTimer(cfg.gracePeriod)
				defer timer.Stop()
				deadline = timer.C

				// our own cancel closes ctxDone; stop watching it
				ctxDone = nil
				cancel()
			case <-deadline:
				logger.Warn("Graceful shutdown timed out, forcing exit",
					zap.Duration("grace_period", cfg.gracePeriod))
				cfg.exit(1)
				return
			case <-ctxDone:
				// Context was canceled elsewhere
				return
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		signal.Stop(sigChan)
		logger.Debug("Signal handling cleaned up")
	}
}
