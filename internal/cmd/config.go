// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"path/filepath"

	"github.com/dotandev/suigaspool/internal/config"
	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/spf13/cobra"
)

type configView struct {
	Source           string `json:"source,omitempty"`
	GasPoolURL       string `json:"gas_pool_url"`
	AuthToken        string `json:"gas_pool_auth_token"`
	SuiRPCURL        string `json:"sui_rpc_url"`
	Network          string `json:"network"`
	LogLevel         string `json:"log_level"`
	RequestTimeout   int    `json:"request_timeout"`
	MaxRetries       int    `json:"max_retries"`
	OTelEndpoint     string `json:"otel_endpoint,omitempty"`
	JournalPath      string `json:"journal_path,omitempty"`
	MinServerVersion string `json:"min_server_version,omitempty"`
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the suigas configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			view := configView{
				Source:           cfg.Source(),
				GasPoolURL:       cfg.GasPoolURL,
				AuthToken:        redact(cfg.GasPoolAuthToken),
				SuiRPCURL:        cfg.EffectiveSuiRPCURL(),
				Network:          string(cfg.Network),
				LogLevel:         cfg.LogLevel,
				RequestTimeout:   cfg.RequestTimeout,
				MaxRetries:       cfg.MaxRetries,
				JournalPath:      cfg.JournalPath,
				MinServerVersion: cfg.MinServerVersion,
			}
			if cfg.OTelEnabled {
				view.OTelEndpoint = cfg.OTelEndpoint
			}

			out := cmd.OutOrStdout()
			if opts.output == outputJSON {
				return writeJSON(out, view)
			}
			source := view.Source
			if source == "" {
				source = "(defaults and environment)"
			}
			field(out, "Source", source)
			field(out, "Gas pool", view.GasPoolURL)
			field(out, "Auth token", view.AuthToken)
			field(out, "Sui RPC", view.SuiRPCURL)
			field(out, "Network", view.Network)
			field(out, "Log level", view.LogLevel)
			field(out, "Timeout", view.RequestTimeout)
			field(out, "Retries", view.MaxRetries)
			if view.JournalPath != "" {
				field(out, "Journal", view.JournalPath)
			}
			if view.OTelEndpoint != "" {
				field(out, "OTLP endpoint", view.OTelEndpoint)
			}
			if view.MinServerVersion != "" {
				field(out, "Min version", view.MinServerVersion)
			}
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the resolved configuration to a TOML file",
		Long: `Write the current configuration (defaults, file, environment and flags) to
path, or to $HOME/.suigas.toml when no path is given. The file is created
with owner-only permissions.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(os.ExpandEnv("$HOME"), ".suigas.toml")
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errConfigExists(path)
			}
			if err := config.SaveConfig(opts.cfg, path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Configuration written to %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(showCmd, initCmd)
	return configCmd
}

func redact(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	return "<redacted>"
}

func errConfigExists(path string) error {
	return errors.WrapConfigError(path+" already exists, use --force to overwrite", nil)
}
