// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package gaspool

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/dotandev/suigaspool/internal/logger"
)

// ExecuteTx submits a user-signed transaction that spends the gas held by
// reservationID and returns its digest. txBytes and userSig are sent as-is.
func (c *Client) ExecuteTx(ctx context.Context, txBytes string, reservationID uint64, userSig string) (digest string, err error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}

	ctx, finish := c.startOperation(ctx, MethodExecuteTx,
		AttrReservationID.String(strconv.FormatUint(reservationID, 10)),
		AttrTxSizeBytes.Int(len(txBytes)),
	)
	defer func() { finish(err) }()

	body, err := c.postJSON(ctx, c.endpoint(ExecuteTxPath), executeTxRequest{
		ReservationID: reservationID,
		TxBytes:       txBytes,
		UserSig:       userSig,
	}, true)
	if err != nil {
		return "", err
	}

	var resp executeTxResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.WrapUnmarshalFailed(err, string(body))
	}
	if resp.Effects == nil {
		if resp.Error != "" {
			return "", errors.WrapMalformedResponse("execute_tx returned no effects: " + resp.Error)
		}
		return "", errors.WrapMalformedResponse("execute_tx response has no effects")
	}
	if resp.Effects.TransactionDigest == "" {
		return "", errors.WrapMalformedResponse("execute_tx effects have no transactionDigest")
	}

	logger.Logger.Debug("Transaction executed", "reservation_id", reservationID, "digest", resp.Effects.TransactionDigest)

	return resp.Effects.TransactionDigest, nil
}

// SponsorAndExecuteTx reserves gas and immediately spends it on txBytes.
// If execution fails the reservation is left for the gas pool to expire.
func (c *Client) SponsorAndExecuteTx(ctx context.Context, txBytes, userSig string, gasBudget, reserveDurationSecs uint64) (string, error) {
	reservation, err := c.ReserveGas(ctx, gasBudget, reserveDurationSecs)
	if err != nil {
		return "", err
	}

	return c.ExecuteTx(ctx, txBytes, reservation.ReservationID, userSig)
}
