// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/dotandev/suigaspool/internal/logger"
	"github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
)

type healthReport struct {
	GasPoolURL string `json:"gas_pool_url"`
	Healthy    bool   `json:"healthy"`
	Version    string `json:"version,omitempty"`
	MinVersion string `json:"min_version,omitempty"`
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	var minVersion string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the gas pool is reachable and recent enough",
		Long: `Probe the gas pool health endpoint and read its version. When a minimum
version is configured (--min-version or min_server_version) an older server
fails the check.`,
		Example: `  suigas health
  suigas health --min-version 0.4.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := opts.gasPool()
			if cmd.Flags().Changed("min-version") {
				opts.cfg.MinServerVersion = minVersion
			}

			if err := client.Health(ctx); err != nil {
				return err
			}
			report := healthReport{GasPoolURL: client.GasPoolURL(), Healthy: true}

			var (
				v   *version.Version
				err error
			)
			if opts.cfg.MinServerVersion != "" {
				report.MinVersion = opts.cfg.MinServerVersion
				v, err = client.CheckServerVersion(ctx, opts.cfg.MinServerVersion)
				if err != nil {
					return err
				}
			} else {
				v, err = client.ServerVersion(ctx)
				if err != nil {
					// older pools have no version endpoint
					logger.Logger.Debug("Server version unavailable", "error", err)
				}
			}
			if v != nil {
				report.Version = v.String()
			}

			out := cmd.OutOrStdout()
			if opts.output == outputJSON {
				return writeJSON(out, report)
			}
			success(out, "Gas pool is healthy")
			field(out, "URL", report.GasPoolURL)
			if report.Version != "" {
				field(out, "Version", report.Version)
			}
			if report.MinVersion != "" {
				field(out, "Requires", ">= "+report.MinVersion)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&minVersion, "min-version", "", "Fail if the server version is older than this")
	return cmd
}
