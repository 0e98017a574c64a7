// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package gaspool

import (
	"fmt"

	"github.com/dotandev/suigaspool/internal/errors"
)

// GasCoin is an on-chain reference to a coin object granted by the sponsor.
type GasCoin struct {
	ObjectID string `json:"objectId"`
	Version  uint64 `json:"version"`
	Digest   string `json:"digest"`
}

// GasReservation is the sponsor's answer to a reserve_gas call. The
// reservation id is single-use and only valid for the requested duration.
type GasReservation struct {
	SponsorAddress string    `json:"sponsor_address"`
	ReservationID  uint64    `json:"reservation_id"`
	GasCoins       []GasCoin `json:"gas_coins"`
}

// SponsoredTxResponse is the terminal result of a sponsored execution.
type SponsoredTxResponse struct {
	TxDigest string `json:"tx_digest"`
}

type reserveGasRequest struct {
	GasBudget           uint64 `json:"gas_budget"`
	ReserveDurationSecs uint64 `json:"reserve_duration_secs"`
}

type reserveGasResponse struct {
	Result *wireReservation `json:"result"`
	Error  string           `json:"error,omitempty"`
}

// wireReservation and wireCoin mirror the reserve_gas result with pointer
// fields so that an absent key is told apart from a zero value.
type wireReservation struct {
	SponsorAddress *string     `json:"sponsor_address"`
	ReservationID  *uint64     `json:"reservation_id"`
	GasCoins       *[]wireCoin `json:"gas_coins"`
}

type wireCoin struct {
	ObjectID *string `json:"objectId"`
	Version  *uint64 `json:"version"`
	Digest   *string `json:"digest"`
}

// reservation converts w, failing with ErrMalformedResponse on the first
// missing key. An explicitly empty gas_coins list is accepted.
func (w *wireReservation) reservation() (*GasReservation, error) {
	switch {
	case w.SponsorAddress == nil:
		return nil, errors.WrapMalformedResponse("reserve_gas result missing sponsor_address")
	case w.ReservationID == nil:
		return nil, errors.WrapMalformedResponse("reserve_gas result missing reservation_id")
	case w.GasCoins == nil:
		return nil, errors.WrapMalformedResponse("reserve_gas result missing gas_coins")
	}

	coins := make([]GasCoin, 0, len(*w.GasCoins))
	for i, wc := range *w.GasCoins {
		var missing string
		switch {
		case wc.ObjectID == nil:
			missing = "objectId"
		case wc.Version == nil:
			missing = "version"
		case wc.Digest == nil:
			missing = "digest"
		}
		if missing != "" {
			return nil, errors.WrapMalformedResponse(fmt.Sprintf("reserve_gas gas_coins[%d] missing %s", i, missing))
		}
		coins = append(coins, GasCoin{ObjectID: *wc.ObjectID, Version: *wc.Version, Digest: *wc.Digest})
	}

	return &GasReservation{
		SponsorAddress: *w.SponsorAddress,
		ReservationID:  *w.ReservationID,
		GasCoins:       coins,
	}, nil
}

type executeTxRequest struct {
	ReservationID uint64 `json:"reservation_id"`
	TxBytes       string `json:"tx_bytes"`
	UserSig       string `json:"user_sig"`
}

type executeTxResponse struct {
	Effects *struct {
		TransactionDigest string `json:"transactionDigest"`
	} `json:"effects"`
	Error string `json:"error,omitempty"`
}
