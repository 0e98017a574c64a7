// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package gaspool

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/dotandev/suigaspool/internal/logger"
)

// RetryConfig defines the retry behavior of RetryTransport.
type RetryConfig struct {
	MaxRetries         int
	InitialBackoff     time.Duration
	MaxBackoff         time.Duration
	JitterFraction     float64
	StatusCodesToRetry []int
}

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:         3,
		InitialBackoff:     500 * time.Millisecond,
		MaxBackoff:         10 * time.Second,
		JitterFraction:     0.1,
		StatusCodesToRetry: []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
	}
}

// RetryTransport is an http.RoundTripper that retries transport failures and
// selected status codes with exponential backoff. Client never retries on its
// own; callers opt in by wrapping the transport of an injected http.Client:
//
//	hc := &http.Client{Transport: gaspool.NewRetryTransport(gaspool.DefaultRetryConfig(), nil)}
//	c := gaspool.NewClient(poolURL, token, rpcURL, gaspool.WithHTTPClient(hc))
//
// Retrying execute_tx is only safe when the gas pool treats a reservation id
// as idempotent; the transport cannot know that.
type RetryTransport struct {
	config    RetryConfig
	transport http.RoundTripper
}

// NewRetryTransport creates a new RetryTransport with the given config
func NewRetryTransport(config RetryConfig, transport http.RoundTripper) *RetryTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &RetryTransport{
		config:    config,
		transport: transport,
	}
}

func (rt *RetryTransport) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = rt.config.InitialBackoff
	b.MaxInterval = rt.config.MaxBackoff
	b.RandomizationFactor = rt.config.JitterFraction
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// RoundTrip implements http.RoundTripper. When retries run out on a retryable
// status the last response is returned so the caller still sees the status.
func (rt *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	b := rt.newBackOff()
	wait := time.Duration(0)

	for attempt := 0; attempt <= rt.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := waitWithContext(req.Context(), wait); err != nil {
				return nil, err
			}
		}

		attemptReq, err := rewind(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := rt.transport.RoundTrip(attemptReq)
		if err != nil {
			lastErr = err
			wait = b.NextBackOff()
			if attempt < rt.config.MaxRetries {
				logger.Logger.Debug("RoundTrip failed, will retry", "attempt", attempt+1, "error", err)
			}
			continue
		}

		if !rt.shouldRetry(resp.StatusCode) || attempt == rt.config.MaxRetries {
			return resp, nil
		}

		wait = b.NextBackOff()
		if retryAfter := getRetryAfter(resp); retryAfter > 0 {
			wait = retryAfter
		}

		logger.Logger.Warn("Rate limited or temporary failure, will retry",
			"attempt", attempt+1,
			"status_code", resp.StatusCode,
			"retry_after", wait,
		)
		resp.Body.Close()
	}

	return nil, errors.WrapRetriesExhausted(rt.config.MaxRetries+1, lastErr)
}

// rewind returns a request whose body can be sent again.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, errors.WrapRequestFailed(fmt.Errorf("request body cannot be replayed"))
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errors.WrapRequestFailed(err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

// shouldRetry determines if the response status code warrants a retry
func (rt *RetryTransport) shouldRetry(statusCode int) bool {
	for _, code := range rt.config.StatusCodesToRetry {
		if statusCode == code {
			return true
		}
	}
	return false
}

// getRetryAfter parses the Retry-After header and returns the duration
// Supports both "seconds" and "HTTP-date" formats (RFC 7231)
func getRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		if dur := time.Until(t); dur > 0 {
			return dur
		}
	}

	return 0
}

// waitWithContext waits for the specified duration or until context is cancelled
func waitWithContext(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
