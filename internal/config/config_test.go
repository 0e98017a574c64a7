// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"SUI_GAS_POOL_URL",
	"SUI_GAS_POOL_AUTH_TOKEN",
	"SUI_RPC_URL",
	"SUI_NETWORK",
	"SUI_GAS_POOL_LOG_LEVEL",
	"SUI_GAS_POOL_OTEL_ENDPOINT",
	"SUI_GAS_POOL_JOURNAL",
	"SUI_GAS_POOL_MIN_VERSION",
	"SUI_GAS_POOL_TIMEOUT",
	"SUI_GAS_POOL_RETRIES",
}

// isolate clears suigas env vars and points config discovery at path.
func isolate(t *testing.T, path string) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SUI_GAS_POOL_CONFIG", path)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suigas.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotEmpty(t, cfg.GasPoolURL)
	assert.Equal(t, NetworkTestnet, cfg.Network)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.RequestTimeout)
	assert.Zero(t, cfg.MaxRetries)
	assert.NoError(t, cfg.Validate())

	cfg.GasPoolURL = "changed"
	assert.NotEqual(t, "changed", DefaultConfig().GasPoolURL)
}

func TestLoadDefaultsOnly(t *testing.T) {
	isolate(t, filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().GasPoolURL, cfg.GasPoolURL)
	assert.Empty(t, cfg.SuiRPCURL)
	assert.Equal(t, "https://fullnode.testnet.sui.io:443", cfg.EffectiveSuiRPCURL())
	assert.Empty(t, cfg.Source())
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, `
gas_pool_url = "https://pool.example.com"
gas_pool_auth_token = "secret"
network = "mainnet"
log_level = "debug"
request_timeout = 5
max_retries = 2
min_server_version = "0.3.0"
`)
	isolate(t, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pool.example.com", cfg.GasPoolURL)
	assert.Equal(t, "secret", cfg.GasPoolAuthToken)
	assert.Equal(t, NetworkMainnet, cfg.Network)
	assert.Equal(t, "https://fullnode.mainnet.sui.io:443", cfg.EffectiveSuiRPCURL())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, "0.3.0", cfg.MinServerVersion)
	assert.Equal(t, path, cfg.Source())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, `
gas_pool_url = "https://file.example.com"
max_retries = 1
`)
	isolate(t, path)
	t.Setenv("SUI_GAS_POOL_URL", "https://env.example.com")
	t.Setenv("SUI_RPC_URL", "http://localhost:9000")
	t.Setenv("SUI_GAS_POOL_RETRIES", "4")
	t.Setenv("SUI_GAS_POOL_TIMEOUT", "12")
	t.Setenv("SUI_GAS_POOL_OTEL_ENDPOINT", "collector:4318")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.GasPoolURL)
	assert.Equal(t, "http://localhost:9000", cfg.EffectiveSuiRPCURL())
	assert.Equal(t, 4, cfg.MaxRetries)
	assert.Equal(t, 12, cfg.RequestTimeout)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, "collector:4318", cfg.OTelEndpoint)
}

func TestLoadBadEnvInt(t *testing.T) {
	isolate(t, filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("SUI_GAS_POOL_RETRIES", "many")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfig)
	assert.Contains(t, err.Error(), "SUI_GAS_POOL_RETRIES")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t, filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("SUI_GAS_POOL_URL", "ftp://pool")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		path := writeFile(t, `gas_pool_url = `)
		err := DefaultConfig().LoadFile(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrConfig)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeFile(t, `rpc_url = "https://x"`)
		err := DefaultConfig().LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rpc_url")
	})

	t.Run("missing", func(t *testing.T) {
		err := DefaultConfig().LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, errors.ErrConfig)
	})
}

func TestLoadFileKeepsUnsetKeys(t *testing.T) {
	path := writeFile(t, `log_level = "warn"`)
	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, DefaultConfig().GasPoolURL, cfg.GasPoolURL)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "suigas.toml")
	cfg := DefaultConfig()
	cfg.GasPoolURL = "https://pool.example.com"
	cfg.MaxRetries = 3

	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := &Config{}
	require.NoError(t, loaded.LoadFile(path))
	assert.Equal(t, cfg.GasPoolURL, loaded.GasPoolURL)
	assert.Equal(t, 3, loaded.MaxRetries)
}

func TestStringRedactsToken(t *testing.T) {
	cfg := DefaultConfig()
	assert.Contains(t, cfg.String(), "<unset>")

	cfg.GasPoolAuthToken = "super-secret-token"
	s := cfg.String()
	assert.Contains(t, s, "<redacted>")
	assert.False(t, strings.Contains(s, "super-secret-token"))
}

func TestLoadFromExplicitPath(t *testing.T) {
	isolate(t, "")
	path := writeFile(t, `gas_pool_url = "https://explicit.example.com"`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://explicit.example.com", cfg.GasPoolURL)
	assert.Equal(t, path, cfg.Source())
}

func TestEffectiveSuiRPCURLUnknownNetwork(t *testing.T) {
	cfg := &Config{Network: "nowhere"}
	assert.Empty(t, cfg.EffectiveSuiRPCURL())

	cfg.SuiRPCURL = "http://rpc"
	assert.Equal(t, "http://rpc", cfg.EffectiveSuiRPCURL())
}
