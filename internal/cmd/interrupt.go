// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dotandev/suigaspool/internal/logger"
	"github.com/dotandev/suigaspool/internal/shutdown"
)

const (
	InterruptExitCode = 130
	shutdownTimeout   = 3 * time.Second
)

var ErrInterrupted = stderrors.New("interrupt received")

func IsInterrupted(err error) bool {
	return stderrors.Is(err, ErrInterrupted)
}

func IsCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled)
}

// Execute runs the suigas command line. It is called by main.main.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	coordinator := shutdown.NewCoordinator()
	return executeWithSignals(ctx, cancel, sigCh, coordinator, func(execCtx context.Context) error {
		return NewRootCmd(coordinator).ExecuteContext(execCtx)
	})
}

// executeWithSignals runs fn and cancels its context on the first signal.
// Shutdown hooks run once fn has returned, whichever way it ended.
func executeWithSignals(
	ctx context.Context,
	cancel context.CancelFunc,
	sigCh <-chan os.Signal,
	coordinator *shutdown.Coordinator,
	fn func(context.Context) error,
) error {
	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case sig := <-sigCh:
		logger.Logger.Info("Interrupted, shutting down", "signal", sig.String())
		cancel()
		select {
		case <-done:
		case <-time.After(shutdownTimeout):
			logger.Logger.Warn("Command did not stop before the shutdown timeout")
		}
		err = ErrInterrupted
	}

	coordinator.RunWithTimeout(shutdownTimeout)
	return err
}
