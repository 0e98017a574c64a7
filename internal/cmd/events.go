// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dotandev/suigaspool/internal/logger"
	"github.com/dotandev/suigaspool/internal/watch"
	"github.com/spf13/cobra"
)

func newEventsCmd(opts *rootOptions) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "events <tx-digest>",
		Short: "Fetch the events emitted by a transaction",
		Long: `Call sui_getEvents on the configured fullnode and print the raw JSON-RPC
response. The fullnode comes from --sui-rpc-url or the public node of --network.

A freshly executed transaction may not be indexed yet. With --wait the call is
repeated until the fullnode returns events or the wait expires.`,
		Example: `  suigas events 5nY8...Qk
  suigas events 5nY8...Qk --network mainnet --wait 20s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := opts.gasPool()
			digest := args[0]

			fetch := func(ctx context.Context) (json.RawMessage, bool, error) {
				raw, err := client.GetEvents(ctx, digest)
				if err != nil {
					return nil, false, err
				}
				return raw, hasEvents(raw), nil
			}

			var (
				raw json.RawMessage
				err error
			)
			if wait > 0 {
				poller := watch.NewPoller(watch.PollerConfig{TimeoutDuration: wait})
				raw, err = watch.Poll(ctx, poller, fetch, func(attempt int) {
					logger.Logger.Debug("Polling for events", "digest", digest, "attempt", attempt)
				})
			} else {
				raw, _, err = fetch(ctx)
			}
			if err != nil {
				return err
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, raw, "", "  "); err != nil {
				// not JSON, print verbatim
				pretty.Reset()
				pretty.Write(raw)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return err
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep polling up to this long until events are indexed")
	return cmd
}

// hasEvents reports whether a sui_getEvents response carries a non-empty
// result. RPC errors such as an unknown digest count as not yet indexed.
func hasEvents(raw json.RawMessage) bool {
	var resp struct {
		Result []json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return false
	}
	return len(resp.Result) > 0
}
