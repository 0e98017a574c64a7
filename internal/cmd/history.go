// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/dotandev/suigaspool/internal/journal"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		digest string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List reservations and executions recorded in the local journal",
		Example: `  suigas history
  suigas history --limit 5 -o json
  suigas history --digest 5nY8...Qk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := opts.openJournal(ctx)
			if store == nil {
				return errors.WrapConfigError("journal is disabled or unavailable", nil)
			}

			var (
				entries []*journal.Entry
				err     error
			)
			if digest != "" {
				entries, err = store.FindByDigest(ctx, digest)
			} else {
				entries, err = store.List(ctx, limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == outputJSON {
				if entries == nil {
					entries = []*journal.Entry{}
				}
				return writeJSON(out, entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No journal entries.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tKIND\tSTATUS\tRESERVATION\tBUDGET\tDIGEST")
			for _, e := range entries {
				status := okColor.Sprint(e.Status)
				if e.Status == journal.StatusFailed {
					status = errColor.Sprint(e.Status)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339),
					e.Kind,
					status,
					orDash(e.ReservationID),
					orDash(e.GasBudget),
					orDashString(e.TxDigest),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	cmd.Flags().StringVar(&digest, "digest", "", "Only show entries for this transaction digest")
	return cmd
}

func orDash(n uint64) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprint(n)
}

func orDashString(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
