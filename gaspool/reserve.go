// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package gaspool

import (
	"context"
	"encoding/json"

	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/dotandev/suigaspool/internal/logger"
	"go.opentelemetry.io/otel/attribute"
)

// MaxReserveDurationSecs is the longest reservation the client will request.
// The gas pool enforces its own limit, which may differ.
const MaxReserveDurationSecs = 600

// ValidateReserveDuration rejects durations above MaxReserveDurationSecs.
func ValidateReserveDuration(reserveDurationSecs uint64) error {
	if reserveDurationSecs > MaxReserveDurationSecs {
		return errors.ErrReservationDurationTooLong
	}
	return nil
}

// ReserveGas asks the sponsor to hold gas coins covering gasBudget for
// reserveDurationSecs seconds.
//
// A duration above MaxReserveDurationSecs fails with
// ErrReservationDurationTooLong before anything is sent. A non-2xx answer
// fails with *HTTPError. A result lacking sponsor_address, reservation_id,
// gas_coins or any coin's objectId, version or digest fails with
// ErrMalformedResponse.
func (c *Client) ReserveGas(ctx context.Context, gasBudget, reserveDurationSecs uint64) (reservation *GasReservation, err error) {
	attrs := []attribute.KeyValue{
		AttrGasBudget.Int64(int64(gasBudget)),
		AttrReserveDurationSecs.Int64(int64(reserveDurationSecs)),
	}
	if err := ValidateReserveDuration(reserveDurationSecs); err != nil {
		return nil, c.rejectOperation(ctx, MethodReserveGas, err, attrs...)
	}
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	ctx, finish := c.startOperation(ctx, MethodReserveGas, attrs...)
	defer func() { finish(err) }()

	body, err := c.postJSON(ctx, c.endpoint(ReserveGasPath), reserveGasRequest{
		GasBudget:           gasBudget,
		ReserveDurationSecs: reserveDurationSecs,
	}, true)
	if err != nil {
		return nil, err
	}

	var resp reserveGasResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.WrapUnmarshalFailed(err, string(body))
	}
	if resp.Result == nil {
		if resp.Error != "" {
			return nil, errors.WrapMalformedResponse("reserve_gas returned no result: " + resp.Error)
		}
		return nil, errors.WrapMalformedResponse("reserve_gas response has no result")
	}

	reservation, err = resp.Result.reservation()
	if err != nil {
		return nil, err
	}

	logger.Logger.Debug("Gas reserved",
		"reservation_id", reservation.ReservationID,
		"sponsor", reservation.SponsorAddress,
		"coins", len(reservation.GasCoins),
	)

	return reservation, nil
}
