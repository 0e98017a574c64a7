// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dotandev/suigaspool/gaspool"
	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/dotandev/suigaspool/internal/journal"
	"github.com/dotandev/suigaspool/internal/logger"
	"github.com/dotandev/suigaspool/internal/mockpool"
	"github.com/dotandev/suigaspool/internal/shutdown"
	"github.com/dotandev/suigaspool/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// cliEnv isolates a test from the caller's config files and SUI_* variables
// and gives it a private journal.
type cliEnv struct {
	t       *testing.T
	journal string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, k := range []string{
		"SUI_GAS_POOL_URL", "SUI_GAS_POOL_AUTH_TOKEN", "SUI_RPC_URL", "SUI_NETWORK",
		"SUI_GAS_POOL_LOG_LEVEL", "SUI_GAS_POOL_OTEL_ENDPOINT", "SUI_GAS_POOL_JOURNAL",
		"SUI_GAS_POOL_MIN_VERSION", "SUI_GAS_POOL_TIMEOUT", "SUI_GAS_POOL_RETRIES",
	} {
		t.Setenv(k, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SUI_GAS_POOL_CONFIG", filepath.Join(home, "missing.toml"))
	t.Cleanup(func() { logger.SetOutput(os.Stderr, false) })

	return &cliEnv{t: t, journal: filepath.Join(home, "journal.db")}
}

func (e *cliEnv) run(args ...string) cliResult {
	e.t.Helper()
	coordinator := shutdown.NewCoordinator()
	root := NewRootCmd(coordinator)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--journal", e.journal}, args...))

	err := root.ExecuteContext(context.Background())
	require.NoError(e.t, coordinator.Run(context.Background()))
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func newPool(t *testing.T, routes map[string]mockpool.MockRoute) *mockpool.MockServer {
	t.Helper()
	ms := mockpool.NewMockServer(routes)
	t.Cleanup(ms.Close)
	return ms
}

func TestReserveCommand(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.ReserveGasPath: mockpool.ReserveGasRoute("0xabc", 42, mockpool.Coin{ObjectID: "0x1", Version: 3, Digest: "d1"}),
	})

	res := env.run("--gas-pool-url", ms.URL(), "--auth-token", "tok", "reserve", "--budget", "1000", "--duration", "30")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Gas reserved")
	assert.Contains(t, res.stdout, "42")
	assert.Contains(t, res.stdout, "0xabc")
	assert.Contains(t, res.stdout, "0x1 v3 d1")

	req, ok := ms.LastRequest(gaspool.ReserveGasPath)
	require.True(t, ok)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.JSONEq(t, `{"gas_budget":1000,"reserve_duration_secs":30}`, string(req.Body))

	hist := env.run("history", "-o", "json")
	require.NoError(t, hist.err)
	var entries []journal.Entry
	require.NoError(t, json.Unmarshal([]byte(hist.stdout), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, journal.KindReserve, entries[0].Kind)
	assert.Equal(t, journal.StatusOK, entries[0].Status)
	assert.Equal(t, uint64(42), entries[0].ReservationID)
	assert.Equal(t, uint64(1000), entries[0].GasBudget)
	assert.Equal(t, 1, entries[0].CoinCount)
	assert.Equal(t, ms.URL(), entries[0].GasPoolURL)
}

func TestReserveCommandJSON(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.ReserveGasPath: mockpool.ReserveGasRoute("0xabc", 7),
	})

	res := env.run("--gas-pool-url", ms.URL(), "reserve", "--budget", "5", "-o", "json")
	require.NoError(t, res.err)

	var reservation gaspool.GasReservation
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &reservation))
	assert.Equal(t, uint64(7), reservation.ReservationID)
	assert.Empty(t, reservation.GasCoins)
}

func TestReserveCommandRejectsLongDuration(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, nil)

	res := env.run("--gas-pool-url", ms.URL(), "reserve", "--budget", "5", "--duration", "601")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, gaspool.ErrReservationDurationTooLong)
	assert.Zero(t, ms.TotalCalls())
}

func TestExecuteCommand(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.ExecuteTxPath: mockpool.ExecuteTxRoute("Txdigest123"),
	})

	res := env.run("--gas-pool-url", ms.URL(), "execute",
		"--tx-bytes", "AAAB", "--signature", "SIG", "--reservation-id", "9001")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Txdigest123")

	req, ok := ms.LastRequest(gaspool.ExecuteTxPath)
	require.True(t, ok)
	assert.JSONEq(t, `{"reservation_id":9001,"tx_bytes":"AAAB","user_sig":"SIG"}`, string(req.Body))

	res = env.run("history", "--digest", "Txdigest123")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "execute")
	assert.Contains(t, res.stdout, "9001")
}

func TestExecuteCommandRequiresFlags(t *testing.T) {
	env := newCLIEnv(t)
	res := env.run("execute", "--tx-bytes", "AAAB")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "signature")
}

func TestSponsorCommandJournalsFailure(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.ReserveGasPath: mockpool.ReserveGasRoute("0xabc", 5),
		gaspool.ExecuteTxPath:  mockpool.ErrorRoute(http.StatusBadRequest, "bad signature"),
	})

	res := env.run("--gas-pool-url", ms.URL(), "sponsor",
		"--tx-bytes", "AAAB", "--signature", "SIG", "--budget", "100")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, gaspool.ErrHTTPStatus)
	assert.Equal(t, 1, ms.CallCount(gaspool.ReserveGasPath))
	assert.Equal(t, 1, ms.CallCount(gaspool.ExecuteTxPath))

	hist := env.run("history", "-o", "json")
	require.NoError(t, hist.err)
	var entries []journal.Entry
	require.NoError(t, json.Unmarshal([]byte(hist.stdout), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, journal.KindSponsor, entries[0].Kind)
	assert.Equal(t, journal.StatusFailed, entries[0].Status)
	assert.Contains(t, entries[0].Error, "400")
}

func TestSponsorCommandSuccess(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.ReserveGasPath: mockpool.ReserveGasRoute("0xabc", 5),
		gaspool.ExecuteTxPath:  mockpool.ExecuteTxRoute("D1"),
	})

	res := env.run("--gas-pool-url", ms.URL(), "sponsor",
		"--tx-bytes", "AAAB", "--signature", "SIG", "--budget", "100", "-o", "json")
	require.NoError(t, res.err)

	var out gaspool.SponsoredTxResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "D1", out.TxDigest)
}

func TestEventsCommand(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		"/rpc": mockpool.EventsRoute(map[string]interface{}{"type": "0x2::coin::Mint"}),
	})

	res := env.run("--gas-pool-url", ms.URL(), "--auth-token", "tok", "--sui-rpc-url", ms.URL()+"/rpc", "events", "Txdigest123")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"0x2::coin::Mint"`)

	req, ok := ms.LastRequest("/rpc")
	require.True(t, ok)
	assert.Contains(t, string(req.Body), "sui_getEvents")
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestHealthCommand(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.HealthPath:  {StatusCode: http.StatusOK, Raw: "OK"},
		gaspool.VersionPath: {StatusCode: http.StatusOK, Raw: "0.5.1"},
	})

	res := env.run("--gas-pool-url", ms.URL(), "health")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "healthy")
	assert.Contains(t, res.stdout, "0.5.1")

	res = env.run("--gas-pool-url", ms.URL(), "health", "--min-version", "1.0.0")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, gaspool.ErrServerVersion)

	res = env.run("--gas-pool-url", ms.URL(), "health", "--min-version", "0.5.0", "-o", "json")
	require.NoError(t, res.err)
	var report healthReport
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.True(t, report.Healthy)
	assert.Equal(t, "0.5.1", report.Version)
	assert.Equal(t, "0.5.0", report.MinVersion)
}

func TestHealthCommandUnhealthy(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.HealthPath: mockpool.ErrorRoute(http.StatusServiceUnavailable, "down"),
	})

	res := env.run("--gas-pool-url", ms.URL(), "health")
	require.Error(t, res.err)
	var httpErr *gaspool.HTTPError
	require.ErrorAs(t, res.err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

func TestRetriesFlag(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.ReserveGasPath: mockpool.RateLimitRoute(),
	})

	res := env.run("--gas-pool-url", ms.URL(), "--retries", "1", "reserve", "--budget", "1")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, gaspool.ErrHTTPStatus)
	assert.Equal(t, 2, ms.CallCount(gaspool.ReserveGasPath))

	ms.Reset()
	res = env.run("--gas-pool-url", ms.URL(), "reserve", "--budget", "1")
	require.Error(t, res.err)
	assert.Equal(t, 1, ms.CallCount(gaspool.ReserveGasPath))
}

func TestMetricsFlag(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.ReserveGasPath: mockpool.ReserveGasRoute("0xabc", 1),
	})

	res := env.run("--gas-pool-url", ms.URL(), "--metrics", "reserve", "--budget", "1")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "reserve_gas")
	assert.Contains(t, res.stderr, "ok")
}

func TestNoJournalFlag(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		gaspool.ReserveGasPath: mockpool.ReserveGasRoute("0xabc", 1),
	})

	res := env.run("--gas-pool-url", ms.URL(), "--no-journal", "reserve", "--budget", "1")
	require.NoError(t, res.err)
	_, err := os.Stat(env.journal)
	assert.True(t, os.IsNotExist(err))

	res = env.run("--no-journal", "history")
	assert.ErrorIs(t, res.err, errors.ErrConfig)
}

func TestHistoryEmpty(t *testing.T) {
	env := newCLIEnv(t)
	res := env.run("history")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No journal entries.")
}

func TestInvalidSettings(t *testing.T) {
	env := newCLIEnv(t)

	res := env.run("--gas-pool-url", "ftp://pool", "health")
	assert.ErrorIs(t, res.err, errors.ErrValidation)

	res = env.run("-o", "yaml", "history")
	assert.ErrorIs(t, res.err, errors.ErrValidation)

	t.Setenv("SUI_GAS_POOL_RETRIES", "lots")
	res = env.run("history")
	assert.ErrorIs(t, res.err, errors.ErrConfig)
}

func TestConfigShowRedactsToken(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("SUI_GAS_POOL_AUTH_TOKEN", "super-secret")

	res := env.run("--network", "mainnet", "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "<redacted>")
	assert.NotContains(t, res.stdout, "super-secret")
	assert.Contains(t, res.stdout, "https://fullnode.mainnet.sui.io:443")
}

func TestConfigInit(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "suigas.toml")

	res := env.run("--gas-pool-url", "https://pool.example.com", "config", "init", path)
	require.NoError(t, res.err)
	assert.FileExists(t, path)

	res = env.run("config", "init", path)
	assert.ErrorIs(t, res.err, errors.ErrConfig)

	res = env.run("--config", path, "config", "show", "-o", "json")
	require.NoError(t, res.err)
	var view configView
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &view))
	assert.Equal(t, "https://pool.example.com", view.GasPoolURL)
	assert.Equal(t, path, view.Source)
}

func TestVersionCommand(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("SUI_GAS_POOL_RETRIES", "not-a-number")

	res := env.run("version")
	require.NoError(t, res.err)
	assert.Equal(t, "suigas version "+Version+"\n", res.stdout)
}

func TestExecuteWithSignalsInterruptRunsShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	coordinator := shutdown.NewCoordinator()
	ranHook := make(chan struct{}, 1)
	coordinator.Register("test-hook", func(context.Context) error {
		ranHook <- struct{}{}
		return nil
	})

	done := make(chan error, 1)
	go func() {
		done <- executeWithSignals(ctx, cancel, sigCh, coordinator, func(execCtx context.Context) error {
			<-execCtx.Done()
			return execCtx.Err()
		})
	}()

	sigCh <- os.Interrupt

	select {
	case err := <-done:
		assert.True(t, IsInterrupted(err), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for executeWithSignals to return")
	}

	select {
	case <-ranHook:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown hook to run")
	}
}

func TestExecuteWithSignalsReturnsCommandError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordinator := shutdown.NewCoordinator()
	ran := false
	coordinator.Register("hook", func(context.Context) error { ran = true; return nil })

	err := executeWithSignals(ctx, cancel, make(chan os.Signal), coordinator, func(context.Context) error {
		return context.DeadlineExceeded
	})
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.True(t, ran)
	assert.False(t, IsCancellation(err))
}

func TestEventsCommandWaitsForIndexing(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		"/rpc": {StatusCode: http.StatusOK, Raw: `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Could not find the referenced transaction"}}`},
	})

	go func() {
		for ms.CallCount("/rpc") < 2 {
			time.Sleep(5 * time.Millisecond)
		}
		ms.AddRoute("/rpc", mockpool.EventsRoute(map[string]interface{}{"type": "0x2::coin::Burn"}))
	}()

	res := env.run("--sui-rpc-url", ms.URL()+"/rpc", "events", "D", "--wait", "10s")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "0x2::coin::Burn")
	assert.GreaterOrEqual(t, ms.CallCount("/rpc"), 2)
}

func TestEventsCommandWaitTimesOut(t *testing.T) {
	env := newCLIEnv(t)
	ms := newPool(t, map[string]mockpool.MockRoute{
		"/rpc": mockpool.EventsRoute(),
	})

	res := env.run("--sui-rpc-url", ms.URL()+"/rpc", "events", "D", "--wait", "100ms")
	assert.ErrorIs(t, res.err, watch.ErrTimeout)
}

func TestHasEvents(t *testing.T) {
	assert.True(t, hasEvents(json.RawMessage(`{"result":[{"type":"x"}]}`)))
	assert.False(t, hasEvents(json.RawMessage(`{"result":[]}`)))
	assert.False(t, hasEvents(json.RawMessage(`{"error":{"code":1}}`)))
	assert.False(t, hasEvents(json.RawMessage(`not json`)))
}
