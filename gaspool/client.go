// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package gaspool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/dotandev/suigaspool/internal/logger"
	"github.com/dotandev/suigaspool/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Gas pool endpoints, relative to the configured gas pool URL.
const (
	ReserveGasPath = "/v1/reserve_gas"
	ExecuteTxPath  = "/v1/execute_tx"
	HealthPath     = "/"
	VersionPath    = "/version"
)

// newHTTPClient builds the client used when the caller does not inject one.
var newHTTPClient = func() *http.Client {
	return &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
}

// Client talks to a Sui gas pool service and, for event lookups, to a Sui
// fullnode. It is safe for concurrent use.
type Client struct {
	gasPoolURL string
	authToken  string // never logged
	suiRPCURL  string

	httpClient     *http.Client
	ownsHTTPClient bool
	telemetry      MethodTelemetry

	closeOnce sync.Once
	closed    atomic.Bool
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithHTTPClient injects a caller-owned HTTP client. Close leaves it open.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMethodTelemetry installs a timing hook around every operation.
func WithMethodTelemetry(mt MethodTelemetry) ClientOption {
	return func(c *Client) {
		if mt != nil {
			c.telemetry = mt
		}
	}
}

// NewClient creates a gas pool client. It performs no I/O and never fails.
// When no HTTP client is injected the Client creates one and releases it on
// Close.
func NewClient(gasPoolURL, authToken, suiRPCURL string, opts ...ClientOption) *Client {
	c := &Client{
		gasPoolURL: gasPoolURL,
		authToken:  authToken,
		suiRPCURL:  suiRPCURL,
		telemetry:  defaultMethodTelemetry(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = newHTTPClient()
		c.ownsHTTPClient = true
	}

	logger.Logger.Debug("Gas pool client initialized",
		"gas_pool_url", gasPoolURL,
		"sui_rpc_url", suiRPCURL,
		"authenticated", authToken != "",
		"owns_http_client", c.ownsHTTPClient,
	)

	return c
}

// GasPoolURL returns the configured gas pool base URL.
func (c *Client) GasPoolURL() string { return c.gasPoolURL }

// SuiRPCURL returns the configured fullnode URL.
func (c *Client) SuiRPCURL() string { return c.suiRPCURL }

// OwnsHTTPClient reports whether Close will release the HTTP client.
func (c *Client) OwnsHTTPClient() bool { return c.ownsHTTPClient }

// Close releases the HTTP client if this Client created it. Repeated calls are
// no-ops. Operations on a closed Client fail with ErrClientClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.ownsHTTPClient {
			c.httpClient.CloseIdleConnections()
			logger.Logger.Debug("Released owned HTTP client", "gas_pool_url", c.gasPoolURL)
		}
	})
	return nil
}

// Use runs fn with c and closes c on every exit path, panics included.
func Use(c *Client, fn func(*Client) error) (err error) {
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(c)
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.gasPoolURL, "/") + path
}

func (c *Client) checkOpen() error {
	if c.closed.Load() {
		return errors.ErrClientClosed
	}
	return nil
}

// startOperation opens a span and a method timer. The returned func must be
// called with the operation's final error.
func (c *Client) startOperation(ctx context.Context, method Method, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := telemetry.GetTracer().Start(ctx, "gaspool."+string(method))
	span.SetAttributes(attrs...)

	timer := c.telemetry.StartMethodTimer(ctx, method, telemetryLabels(attrs))

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		timer.Stop(err)
		span.End()
	}
}

// postJSON sends payload to url and returns the body of a 2xx response.
// The bearer token is attached only when authorized is set.
func (c *Client) postJSON(ctx context.Context, url string, payload any, authorized bool) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WrapMarshalFailed(err)
	}
	return c.do(ctx, http.MethodPost, url, body, authorized)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, authorized bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.WrapRequestFailed(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	logger.Logger.Debug("Sending request", "method", method, "url", url, "size", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapRequestFailed(err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapRequestFailed(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Logger.Debug("Request rejected", "url", url, "status", resp.StatusCode)
		return nil, &errors.HTTPError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(respBytes),
		}
	}

	return respBytes, nil
}
