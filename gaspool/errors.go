// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package gaspool

import (
	"github.com/dotandev/suigaspool/internal/errors"
)

// Errors returned by the client. Compare with errors.Is; use errors.As with
// *HTTPError to read the status code and body of a rejected request.
var (
	ErrReservationDurationTooLong = errors.ErrReservationDurationTooLong
	ErrHTTPStatus                 = errors.ErrHTTPStatus
	ErrRequestFailed              = errors.ErrRequestFailed
	ErrMalformedResponse          = errors.ErrMalformedResponse
	ErrUnmarshalFailed            = errors.ErrUnmarshalFailed
	ErrClientClosed               = errors.ErrClientClosed
	ErrRetriesExhausted           = errors.ErrRetriesExhausted
	ErrServerVersion              = errors.ErrServerVersion
)

// HTTPError is returned when an endpoint answers with a non-2xx status.
type HTTPError = errors.HTTPError
