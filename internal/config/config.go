// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dotandev/suigaspool/internal/errors"
)

// Config represents the general configuration for suigas
type Config struct {
	GasPoolURL       string  `toml:"gas_pool_url"`
	GasPoolAuthToken string  `toml:"gas_pool_auth_token"`
	SuiRPCURL        string  `toml:"sui_rpc_url"`
	Network          Network `toml:"network"`
	LogLevel         string  `toml:"log_level"`
	LogJSON          bool    `toml:"log_json"`
	// RequestTimeout bounds every HTTP call, in seconds. Zero means no timeout.
	RequestTimeout int `toml:"request_timeout"`
	// MaxRetries enables the retrying transport when greater than zero.
	MaxRetries   int    `toml:"max_retries"`
	OTelEnabled  bool   `toml:"otel_enabled"`
	OTelEndpoint string `toml:"otel_endpoint"`
	JournalPath  string `toml:"journal_path"`
	// MinServerVersion, when set, is checked by `suigas health`.
	MinServerVersion string `toml:"min_server_version"`

	// source is the file the config was read from, if any.
	source string
}

var defaultConfig = &Config{
	GasPoolURL:     "http://localhost:9527",
	Network:        NetworkTestnet,
	LogLevel:       "info",
	RequestTimeout: 30,
	OTelEndpoint:   "localhost:4318",
	JournalPath:    filepath.Join(os.ExpandEnv("$HOME"), ".suigas", "journal.db"),
}

// SearchPaths lists the config files Load considers, first match wins.
func SearchPaths() []string {
	return []string{
		".suigas.toml",
		filepath.Join(os.ExpandEnv("$HOME"), ".suigas.toml"),
		"/etc/suigas/config.toml",
	}
}

// Load builds the configuration from defaults, the first config file found
// (or SUI_GAS_POOL_CONFIG when set) and SUI_* environment variables, in that
// order of increasing precedence.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("SUI_GAS_POOL_CONFIG"))
}

// LoadFrom is Load with an explicit config file. An empty path falls back to
// SearchPaths; a path that does not exist is skipped.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	paths := SearchPaths()
	if path != "" {
		paths = []string{path}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := cfg.LoadFile(p); err != nil {
			return nil, err
		}
		break
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile overlays the TOML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapConfigError("failed to read config file", err)
	}

	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.WrapConfigError("failed to parse config file "+path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return errors.WrapConfigError(fmt.Sprintf("unknown keys in %s: %s", path, strings.Join(keys, ", ")), nil)
	}

	c.source = path
	return nil
}

func (c *Config) applyEnv() error {
	c.GasPoolURL = getEnv("SUI_GAS_POOL_URL", c.GasPoolURL)
	c.GasPoolAuthToken = getEnv("SUI_GAS_POOL_AUTH_TOKEN", c.GasPoolAuthToken)
	c.SuiRPCURL = getEnv("SUI_RPC_URL", c.SuiRPCURL)
	c.Network = Network(getEnv("SUI_NETWORK", string(c.Network)))
	c.LogLevel = getEnv("SUI_GAS_POOL_LOG_LEVEL", c.LogLevel)
	c.OTelEndpoint = getEnv("SUI_GAS_POOL_OTEL_ENDPOINT", c.OTelEndpoint)
	c.JournalPath = getEnv("SUI_GAS_POOL_JOURNAL", c.JournalPath)
	c.MinServerVersion = getEnv("SUI_GAS_POOL_MIN_VERSION", c.MinServerVersion)

	if v := os.Getenv("SUI_GAS_POOL_OTEL_ENDPOINT"); v != "" {
		c.OTelEnabled = true
	}

	var err error
	if c.RequestTimeout, err = getEnvInt("SUI_GAS_POOL_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.MaxRetries, err = getEnvInt("SUI_GAS_POOL_RETRIES", c.MaxRetries); err != nil {
		return err
	}
	return nil
}

// EffectiveSuiRPCURL returns SuiRPCURL, or the public fullnode of Network
// when no URL is configured.
func (c *Config) EffectiveSuiRPCURL() string {
	if c.SuiRPCURL != "" {
		return c.SuiRPCURL
	}
	url, _ := FullnodeURL(c.Network)
	return url
}

// Validate runs the default validators.
func (c *Config) Validate() error {
	return RunValidators(c, DefaultValidators())
}

// Source returns the path of the file the config was read from, or "".
func (c *Config) Source() string {
	return c.source
}

// SaveConfig writes the configuration as TOML with owner-only permissions.
func SaveConfig(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.WrapConfigError("failed to create config directory", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return errors.WrapConfigError("failed to marshal config", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return errors.WrapConfigError("failed to write config file", err)
	}

	return nil
}

func (c *Config) String() string {
	token := "<unset>"
	if c.GasPoolAuthToken != "" {
		token = "<redacted>"
	}
	return fmt.Sprintf(
		"Config{GasPool: %s, Token: %s, SuiRPC: %s, Network: %s, LogLevel: %s, Timeout: %ds, Retries: %d}",
		c.GasPoolURL, token, c.EffectiveSuiRPCURL(), c.Network, c.LogLevel, c.RequestTimeout, c.MaxRetries,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.WrapConfigError(key+" must be an integer", err)
	}
	return n, nil
}

func DefaultConfig() *Config {
	cfg := *defaultConfig
	return &cfg
}
