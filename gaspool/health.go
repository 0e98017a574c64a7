// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package gaspool

import (
	"context"
	"net/http"
	"strings"

	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/hashicorp/go-version"
)

// Health returns nil when the gas pool answers its root endpoint with a 2xx.
func (c *Client) Health(ctx context.Context) (err error) {
	if err := c.checkOpen(); err != nil {
		return err
	}

	ctx, finish := c.startOperation(ctx, MethodHealth)
	defer func() { finish(err) }()

	_, err = c.do(ctx, http.MethodGet, c.endpoint(HealthPath), nil, false)
	return err
}

// ServerVersion reads the gas pool's /version endpoint. The body may be a bare
// or JSON-quoted version string, optionally followed by a build suffix
// separated by whitespace.
func (c *Client) ServerVersion(ctx context.Context) (v *version.Version, err error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	ctx, finish := c.startOperation(ctx, MethodServerVersion)
	defer func() { finish(err) }()

	body, err := c.do(ctx, http.MethodGet, c.endpoint(VersionPath), nil, false)
	if err != nil {
		return nil, err
	}

	return parseServerVersion(string(body))
}

// CheckServerVersion fails with ErrServerVersion when the gas pool is older
// than minimum.
func (c *Client) CheckServerVersion(ctx context.Context, minimum string) (*version.Version, error) {
	want, err := version.NewVersion(minimum)
	if err != nil {
		return nil, errors.WrapValidationError("invalid minimum server version: " + err.Error())
	}

	got, err := c.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}

	if got.LessThan(want) {
		return got, errors.WrapServerVersion(got.String(), want.String())
	}
	return got, nil
}

func parseServerVersion(body string) (*version.Version, error) {
	raw := strings.Trim(strings.TrimSpace(body), `"`)
	if fields := strings.Fields(raw); len(fields) > 0 {
		raw = fields[0]
	}

	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, errors.WrapMalformedResponse("unparseable server version " + `"` + body + `"`)
	}
	return v, nil
}
