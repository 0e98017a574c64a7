// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package mockpool

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockServerRoutesAndRecords(t *testing.T) {
	ms := NewMockServer(map[string]MockRoute{
		"/v1/reserve_gas": ReserveGasRoute("0xabc", 42, Coin{ObjectID: "0x1", Version: 3, Digest: "d1"}),
	})
	defer ms.Close()

	req, err := http.NewRequest(http.MethodPost, ms.URL()+"/v1/reserve_gas", strings.NewReader(`{"gas_budget":1}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer t")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Result struct {
			ReservationID uint64 `json:"reservation_id"`
			GasCoins      []Coin `json:"gas_coins"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint64(42), body.Result.ReservationID)
	assert.Len(t, body.Result.GasCoins, 1)

	assert.Equal(t, 1, ms.CallCount("/v1/reserve_gas"))
	last, ok := ms.LastRequest("/v1/reserve_gas")
	require.True(t, ok)
	assert.Equal(t, `{"gas_budget":1}`, string(last.Body))
	assert.Equal(t, "Bearer t", last.Header.Get("Authorization"))
}

func TestMockServerUnknownPath(t *testing.T) {
	ms := NewMockServer(nil)
	defer ms.Close()

	resp, err := http.Get(ms.URL() + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, ms.TotalCalls())
}

func TestMockServerRawAndHeaders(t *testing.T) {
	ms := NewMockServer(nil)
	defer ms.Close()
	ms.AddRoute("/version", MockRoute{
		StatusCode: http.StatusOK,
		Raw:        "1.2.3",
		Headers:    map[string]string{"X-Pool": "a"},
	})

	resp, err := http.Get(ms.URL() + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "1.2.3", string(b))
	assert.Equal(t, "a", resp.Header.Get("X-Pool"))

	ms.Reset()
	assert.Equal(t, 0, ms.TotalCalls())
	_, ok := ms.LastRequest("/version")
	assert.False(t, ok)
}

func TestRateLimitRoute(t *testing.T) {
	r := RateLimitRoute()
	assert.Equal(t, http.StatusTooManyRequests, r.StatusCode)
}
