// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/dotandev/suigaspool/gaspool"
	"github.com/dotandev/suigaspool/internal/mockpool"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "rejected", Outcome(gaspool.ErrReservationDurationTooLong))
	assert.Equal(t, "http_error", Outcome(fmt.Errorf("wrap: %w", &gaspool.HTTPError{StatusCode: 500})))
	assert.Equal(t, "cancelled", Outcome(context.Canceled))
	assert.Equal(t, "malformed", Outcome(gaspool.ErrMalformedResponse))
	assert.Equal(t, "transport_error", Outcome(gaspool.ErrRequestFailed))
}

func TestRecorderCountsClientCalls(t *testing.T) {
	ms := mockpool.NewMockServer(map[string]mockpool.MockRoute{
		gaspool.ReserveGasPath: mockpool.ReserveGasRoute("0xabc", 1),
		gaspool.ExecuteTxPath:  mockpool.ErrorRoute(http.StatusBadRequest, "bad sig"),
	})
	defer ms.Close()

	rec := NewRecorder()
	c := gaspool.NewClient(ms.URL(), "tok", ms.URL(), gaspool.WithMethodTelemetry(rec))
	defer c.Close()

	ctx := context.Background()
	_, err := c.ReserveGas(ctx, 1, 60)
	require.NoError(t, err)
	_, err = c.ReserveGas(ctx, 1, 60)
	require.NoError(t, err)
	_, err = c.ExecuteTx(ctx, "AA", 1, "sig")
	require.Error(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(rec.calls.WithLabelValues("reserve_gas", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.calls.WithLabelValues("execute_tx", "http_error")))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.duration))

	snap, err := rec.Snapshot()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Summary{
		{Method: "reserve_gas", Outcome: "ok", Count: 2},
		{Method: "execute_tx", Outcome: "http_error", Count: 1},
	}, snap)
}

func TestRecorderCountsDurationRejections(t *testing.T) {
	ms := mockpool.NewMockServer(nil)
	defer ms.Close()

	rec := NewRecorder()
	c := gaspool.NewClient(ms.URL(), "tok", ms.URL(), gaspool.WithMethodTelemetry(rec))
	defer c.Close()

	_, err := c.ReserveGas(context.Background(), 1, 601)
	require.ErrorIs(t, err, gaspool.ErrReservationDurationTooLong)
	assert.Equal(t, 0, ms.TotalCalls())

	snap, err := rec.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []Summary{{Method: "reserve_gas", Outcome: "rejected", Count: 1}}, snap)
}
