// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package watch polls a check function with capped exponential backoff
// until it reports a result.
package watch

import (
	"context"
	stderrors "errors"
	"time"
)

var (
	ErrTimeout             = stderrors.New("polling timeout exceeded")
	ErrMaxAttemptsExceeded = stderrors.New("max attempts exceeded")
)

type PollerConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	TimeoutDuration time.Duration
}

type Poller struct {
	config PollerConfig
}

// CheckFunc reports found=true once data is available. A returned error
// aborts polling.
type CheckFunc[T any] func(ctx context.Context) (data T, found bool, err error)

func NewPoller(config PollerConfig) *Poller {
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 60
	}
	if config.InitialInterval == 0 {
		config.InitialInterval = 500 * time.Millisecond
	}
	if config.MaxInterval == 0 {
		config.MaxInterval = 5 * time.Second
	}
	if config.TimeoutDuration == 0 {
		config.TimeoutDuration = 30 * time.Second
	}

	return &Poller{config: config}
}

// Poll runs check until it finds data, fails, or the attempt or time budget
// runs out. onAttempt, if set, is called before every check.
func Poll[T any](ctx context.Context, p *Poller, check CheckFunc[T], onAttempt func(attempt int)) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, p.config.TimeoutDuration)
	defer cancel()

	interval := p.config.InitialInterval
	for attempt := 1; ; attempt++ {
		if onAttempt != nil {
			onAttempt(attempt)
		}

		data, found, err := check(ctx)
		if err != nil {
			return zero, err
		}
		if found {
			return data, nil
		}

		if attempt >= p.config.MaxAttempts {
			return zero, ErrMaxAttemptsExceeded
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			interval = p.nextInterval(interval)
		case <-ctx.Done():
			timer.Stop()
			if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
				return zero, ErrTimeout
			}
			return zero, ctx.Err()
		}
	}
}

func (p *Poller) nextInterval(current time.Duration) time.Duration {
	next := current * 2
	if next > p.config.MaxInterval {
		next = p.config.MaxInterval
	}
	return next
}
