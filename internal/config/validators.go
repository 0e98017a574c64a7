// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/hashicorp/go-version"
)

// Validator validates a specific aspect of the configuration.
type Validator interface {
	Validate(cfg *Config) error
}

// EndpointValidator checks the gas pool and fullnode URLs.
type EndpointValidator struct{}

func (v EndpointValidator) Validate(cfg *Config) error {
	if cfg.GasPoolURL == "" {
		return errors.WrapValidationError("gas_pool_url cannot be empty")
	}
	if err := isValidURL(cfg.GasPoolURL); err != nil {
		return errors.WrapValidationError(fmt.Sprintf("invalid gas_pool_url: %v", err))
	}
	if cfg.SuiRPCURL != "" {
		if err := isValidURL(cfg.SuiRPCURL); err != nil {
			return errors.WrapValidationError(fmt.Sprintf("invalid sui_rpc_url: %v", err))
		}
	}
	return nil
}

// NetworkValidator checks that the configured network is recognized.
type NetworkValidator struct{}

func (v NetworkValidator) Validate(cfg *Config) error {
	if cfg.Network == "" {
		return nil
	}
	if _, ok := FullnodeURL(cfg.Network); !ok {
		return errors.WrapValidationError(fmt.Sprintf("network %q must be one of: %s", cfg.Network, strings.Join(networkNames(), ", ")))
	}
	return nil
}

// LogLevelValidator checks that the log level is a known value.
type LogLevelValidator struct{}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (v LogLevelValidator) Validate(cfg *Config) error {
	if cfg.LogLevel == "" {
		return nil
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return errors.WrapValidationError("log_level must be one of: debug, info, warn, error")
	}
	return nil
}

// LimitsValidator rejects negative timeouts and retry counts.
type LimitsValidator struct{}

func (v LimitsValidator) Validate(cfg *Config) error {
	if cfg.RequestTimeout < 0 {
		return errors.WrapValidationError("request_timeout cannot be negative")
	}
	if cfg.MaxRetries < 0 {
		return errors.WrapValidationError("max_retries cannot be negative")
	}
	return nil
}

// ServerVersionValidator checks that min_server_version parses.
type ServerVersionValidator struct{}

func (v ServerVersionValidator) Validate(cfg *Config) error {
	if cfg.MinServerVersion == "" {
		return nil
	}
	if _, err := version.NewVersion(cfg.MinServerVersion); err != nil {
		return errors.WrapValidationError(fmt.Sprintf("invalid min_server_version: %v", err))
	}
	return nil
}

// DefaultValidators returns the standard set of validators.
func DefaultValidators() []Validator {
	return []Validator{
		EndpointValidator{},
		NetworkValidator{},
		LogLevelValidator{},
		LimitsValidator{},
		ServerVersionValidator{},
	}
}

// RunValidators executes each validator against the config, returning the
// first error encountered.
func RunValidators(cfg *Config, validators []Validator) error {
	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}

func isValidURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
