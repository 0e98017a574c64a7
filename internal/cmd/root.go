// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/dotandev/suigaspool/gaspool"
	"github.com/dotandev/suigaspool/internal/config"
	"github.com/dotandev/suigaspool/internal/journal"
	"github.com/dotandev/suigaspool/internal/logger"
	"github.com/dotandev/suigaspool/internal/metrics"
	"github.com/dotandev/suigaspool/internal/shutdown"
	"github.com/dotandev/suigaspool/internal/telemetry"
	"github.com/spf13/cobra"
)

// rootOptions carries the persistent flags and the per-invocation resources
// shared by every subcommand.
type rootOptions struct {
	configPath   string
	gasPoolURL   string
	authToken    string
	suiRPCURL    string
	network      string
	logLevel     string
	jsonLogs     bool
	retries      int
	timeout      int
	otelEndpoint string
	journalPath  string
	noJournal    bool
	showMetrics  bool
	output       string

	cfg         *config.Config
	recorder    *metrics.Recorder
	coordinator *shutdown.Coordinator
	client      *gaspool.Client
	journal     *journal.Store
}

// NewRootCmd builds the suigas command tree. Resources opened by a command
// are released through coordinator.
func NewRootCmd(coordinator *shutdown.Coordinator) *cobra.Command {
	if coordinator == nil {
		coordinator = shutdown.NewCoordinator()
	}
	opts := &rootOptions{coordinator: coordinator}

	rootCmd := &cobra.Command{
		Use:   "suigas",
		Short: "Client for a Sui gas pool sponsorship service",
		Long: `suigas talks to a Sui gas pool server: it reserves sponsor-owned gas coins,
submits user-signed transactions for sponsored execution and looks up the
resulting events on a Sui fullnode.

Examples:
  suigas reserve --budget 1000000 --duration 60
  suigas execute --tx-bytes <b64> --signature <b64> --reservation-id 42
  suigas sponsor --tx-bytes <b64> --signature <b64> --budget 1000000
  suigas events <tx-digest>
  suigas health
  suigas history`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.report(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a TOML config file")
	flags.StringVar(&opts.gasPoolURL, "gas-pool-url", "", "Gas pool server base URL")
	flags.StringVar(&opts.authToken, "auth-token", "", "Bearer token for the gas pool")
	flags.StringVar(&opts.suiRPCURL, "sui-rpc-url", "", "Sui fullnode JSON-RPC URL")
	flags.StringVar(&opts.network, "network", "", "Sui network used when --sui-rpc-url is unset (mainnet, testnet, devnet, localnet)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "Emit logs as JSON")
	flags.IntVar(&opts.retries, "retries", 0, "Retry transient gas pool failures this many times")
	flags.IntVar(&opts.timeout, "timeout", 0, "Per-request timeout in seconds (0 disables)")
	flags.StringVar(&opts.otelEndpoint, "otel-endpoint", "", "Export traces to this OTLP/HTTP endpoint")
	flags.StringVar(&opts.journalPath, "journal", "", "Path of the local operation journal")
	flags.BoolVar(&opts.noJournal, "no-journal", false, "Do not record operations in the journal")
	flags.BoolVar(&opts.showMetrics, "metrics", false, "Print per-method call metrics after the command")
	flags.StringVarP(&opts.output, "output", "o", "text", "Output format (text, json)")

	rootCmd.AddCommand(
		newReserveCmd(opts),
		newExecuteCmd(opts),
		newSponsorCmd(opts),
		newEventsCmd(opts),
		newHealthCmd(opts),
		newHistoryCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// setup resolves the configuration and wires logging and tracing.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(o.configPath)
	if err != nil {
		return err
	}
	o.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := validateOutput(o.output); err != nil {
		return err
	}
	o.cfg = cfg

	logger.SetOutput(cmd.ErrOrStderr(), cfg.LogJSON)
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if cfg.OTelEnabled {
		flush, err := telemetry.Init(cmd.Context(), telemetry.Config{
			Enabled:        true,
			ExporterURL:    cfg.OTelEndpoint,
			ServiceVersion: Version,
		})
		if err != nil {
			logger.Logger.Warn("Tracing disabled", "error", err)
		} else {
			o.coordinator.Register("otel-flush", func(context.Context) error {
				flush()
				return nil
			})
		}
	}

	o.recorder = metrics.NewRecorder()
	logger.Logger.Debug("Configuration resolved", "config", cfg.String(), "source", cfg.Source())
	return nil
}

func (o *rootOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("gas-pool-url") {
		cfg.GasPoolURL = o.gasPoolURL
	}
	if flags.Changed("auth-token") {
		cfg.GasPoolAuthToken = o.authToken
	}
	if flags.Changed("sui-rpc-url") {
		cfg.SuiRPCURL = o.suiRPCURL
	}
	if flags.Changed("network") {
		cfg.Network = config.Network(o.network)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("json-logs") {
		cfg.LogJSON = o.jsonLogs
	}
	if flags.Changed("retries") {
		cfg.MaxRetries = o.retries
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = o.timeout
	}
	if flags.Changed("otel-endpoint") {
		cfg.OTelEndpoint = o.otelEndpoint
		cfg.OTelEnabled = o.otelEndpoint != ""
	}
	if flags.Changed("journal") {
		cfg.JournalPath = o.journalPath
	}
	if o.noJournal {
		cfg.JournalPath = ""
	}
}

// gasPool returns the client for this invocation, creating it on first use.
func (o *rootOptions) gasPool() *gaspool.Client {
	if o.client != nil {
		return o.client
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	var rt http.RoundTripper = transport
	if o.cfg.MaxRetries > 0 {
		retryCfg := gaspool.DefaultRetryConfig()
		retryCfg.MaxRetries = o.cfg.MaxRetries
		rt = gaspool.NewRetryTransport(retryCfg, transport)
	}
	hc := &http.Client{
		Transport: rt,
		Timeout:   time.Duration(o.cfg.RequestTimeout) * time.Second,
	}

	o.client = gaspool.NewClient(
		o.cfg.GasPoolURL,
		o.cfg.GasPoolAuthToken,
		o.cfg.EffectiveSuiRPCURL(),
		gaspool.WithHTTPClient(hc),
		gaspool.WithMethodTelemetry(o.recorder),
	)

	o.coordinator.Register("gas-pool-client", func(context.Context) error {
		transport.CloseIdleConnections()
		return o.client.Close()
	})
	return o.client
}

// openJournal returns the journal, or nil when journaling is disabled or
// the store cannot be opened.
func (o *rootOptions) openJournal(ctx context.Context) *journal.Store {
	if o.journal != nil || o.cfg.JournalPath == "" {
		return o.journal
	}

	store, err := journal.Open(o.cfg.JournalPath)
	if err != nil {
		logger.Logger.Warn("Journal unavailable", "path", o.cfg.JournalPath, "error", err)
		return nil
	}
	if err := store.Cleanup(ctx, journal.DefaultTTL, journal.DefaultMaxEntries); err != nil {
		logger.Logger.Warn("Journal cleanup failed", "error", err)
	}

	o.journal = store
	o.coordinator.Register("journal", func(context.Context) error {
		return store.Close()
	})
	return store
}

// record appends e to the journal. Journal failures never fail a command.
func (o *rootOptions) record(ctx context.Context, e *journal.Entry, opErr error) {
	store := o.openJournal(ctx)
	if store == nil {
		return
	}
	e.GasPoolURL = o.cfg.GasPoolURL
	if opErr != nil {
		e.Status = journal.StatusFailed
		e.Error = opErr.Error()
	}
	if err := store.Record(context.WithoutCancel(ctx), e); err != nil {
		logger.Logger.Warn("Failed to record journal entry", "kind", e.Kind, "error", err)
	}
}

// report prints the metrics summary when --metrics is set.
func (o *rootOptions) report(cmd *cobra.Command) error {
	if !o.showMetrics || o.recorder == nil {
		return nil
	}
	summary, err := o.recorder.Snapshot()
	if err != nil {
		return err
	}
	printMetrics(cmd.ErrOrStderr(), summary)
	return nil
}
