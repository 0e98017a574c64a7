// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	ErrReservationDurationTooLong = errors.New("Max gas reservation duration is 600 seconds.")
	ErrHTTPStatus                 = errors.New("unexpected HTTP status")
	ErrRequestFailed              = errors.New("gas pool request failed")
	ErrMalformedResponse          = errors.New("malformed response")
	ErrMarshalFailed              = errors.New("failed to marshal request")
	ErrUnmarshalFailed            = errors.New("failed to unmarshal response")
	ErrClientClosed               = errors.New("gas pool client is closed")
	ErrRetriesExhausted           = errors.New("retries exhausted")
	ErrValidation                 = errors.New("validation error")
	ErrConfig                     = errors.New("configuration error")
	ErrServerVersion              = errors.New("unsupported gas pool server version")
)

// HTTPError carries a non-success response from the gas pool or the Sui RPC
// node. The body is kept verbatim.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d from %s", ErrHTTPStatus, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%s: %d from %s: %s", ErrHTTPStatus, e.StatusCode, e.URL, e.Body)
}

// Is lets errors.Is(err, ErrHTTPStatus) match any *HTTPError.
func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// Wrap functions for consistent error wrapping
func WrapRequestFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrRequestFailed, err)
}

func WrapMalformedResponse(msg string) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, msg)
}

func WrapMarshalFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrMarshalFailed, err)
}

func WrapUnmarshalFailed(err error, output string) error {
	return fmt.Errorf("%w: %w, output: %s", ErrUnmarshalFailed, err, output)
}

func WrapRetriesExhausted(attempts int, err error) error {
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func WrapConfigError(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrConfig, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrConfig, msg, err)
}

func WrapServerVersion(got, minimum string) error {
	return fmt.Errorf("%w: server reports %s, need >= %s", ErrServerVersion, got, minimum)
}
