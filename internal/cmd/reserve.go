// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/dotandev/suigaspool/gaspool"
	"github.com/dotandev/suigaspool/internal/journal"
	"github.com/spf13/cobra"
)

const defaultReserveDurationSecs = 60

func newReserveCmd(opts *rootOptions) *cobra.Command {
	var budget, duration uint64

	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Reserve sponsor gas coins for a transaction",
		Long: fmt.Sprintf(`Ask the gas pool to hold gas coins covering --budget for --duration seconds.

The returned reservation id can be spent once with 'suigas execute'. Durations
above %d seconds are rejected locally.`, gaspool.MaxReserveDurationSecs),
		Example: `  suigas reserve --budget 1000000
  suigas reserve --budget 5000000 --duration 300 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reservation, err := opts.gasPool().ReserveGas(ctx, budget, duration)

			entry := &journal.Entry{Kind: journal.KindReserve, GasBudget: budget}
			if reservation != nil {
				entry.Sponsor = reservation.SponsorAddress
				entry.ReservationID = reservation.ReservationID
				entry.CoinCount = len(reservation.GasCoins)
			}
			opts.record(ctx, entry, err)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == outputJSON {
				return writeJSON(out, reservation)
			}

			success(out, "Gas reserved")
			field(out, "Reservation", reservation.ReservationID)
			field(out, "Sponsor", reservation.SponsorAddress)
			field(out, "Expires in", fmt.Sprintf("%ds", duration))
			for i, coin := range reservation.GasCoins {
				field(out, fmt.Sprintf("Coin %d", i), fmt.Sprintf("%s v%d %s", coin.ObjectID, coin.Version, coin.Digest))
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&budget, "budget", 0, "Gas budget in MIST")
	cmd.Flags().Uint64Var(&duration, "duration", defaultReserveDurationSecs, "Reservation lifetime in seconds")
	_ = cmd.MarkFlagRequired("budget")

	return cmd
}
