// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/dotandev/suigaspool/internal/journal"
	"github.com/spf13/cobra"
)

func newSponsorCmd(opts *rootOptions) *cobra.Command {
	var (
		txBytes  string
		userSig  string
		budget   uint64
		duration uint64
	)

	cmd := &cobra.Command{
		Use:   "sponsor",
		Short: "Reserve gas and execute a signed transaction in one step",
		Long: `Reserve gas for --budget and immediately execute the signed transaction with
it. If execution fails the reservation is left to expire on the gas pool.`,
		Example: `  suigas sponsor --budget 1000000 --tx-bytes AAAB... --signature AJ3f...`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			digest, err := opts.gasPool().SponsorAndExecuteTx(ctx, txBytes, userSig, budget, duration)

			opts.record(ctx, &journal.Entry{
				Kind:      journal.KindSponsor,
				GasBudget: budget,
				TxDigest:  digest,
			}, err)
			if err != nil {
				return err
			}

			return printDigest(cmd, opts, digest)
		},
	}

	cmd.Flags().StringVar(&txBytes, "tx-bytes", "", "Base64 transaction bytes")
	cmd.Flags().StringVar(&userSig, "signature", "", "Base64 user signature")
	cmd.Flags().Uint64Var(&budget, "budget", 0, "Gas budget in MIST")
	cmd.Flags().Uint64Var(&duration, "duration", defaultReserveDurationSecs, "Reservation lifetime in seconds")
	_ = cmd.MarkFlagRequired("tx-bytes")
	_ = cmd.MarkFlagRequired("signature")
	_ = cmd.MarkFlagRequired("budget")

	return cmd
}
