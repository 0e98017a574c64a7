// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/dotandev/suigaspool/gaspool"
	"github.com/dotandev/suigaspool/internal/journal"
	"github.com/spf13/cobra"
)

func newExecuteCmd(opts *rootOptions) *cobra.Command {
	var (
		txBytes       string
		userSig       string
		reservationID uint64
	)

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute a signed transaction against a gas reservation",
		Long: `Submit base64 transaction bytes and the user's signature. The gas pool adds
the sponsor signature, spends the reserved coins and returns the digest.`,
		Example: `  suigas execute --reservation-id 42 --tx-bytes AAAB... --signature AJ3f...`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			digest, err := opts.gasPool().ExecuteTx(ctx, txBytes, reservationID, userSig)

			opts.record(ctx, &journal.Entry{
				Kind:          journal.KindExecute,
				ReservationID: reservationID,
				TxDigest:      digest,
			}, err)
			if err != nil {
				return err
			}

			return printDigest(cmd, opts, digest)
		},
	}

	cmd.Flags().StringVar(&txBytes, "tx-bytes", "", "Base64 transaction bytes")
	cmd.Flags().StringVar(&userSig, "signature", "", "Base64 user signature")
	cmd.Flags().Uint64Var(&reservationID, "reservation-id", 0, "Reservation id from 'suigas reserve'")
	_ = cmd.MarkFlagRequired("tx-bytes")
	_ = cmd.MarkFlagRequired("signature")
	_ = cmd.MarkFlagRequired("reservation-id")

	return cmd
}

func printDigest(cmd *cobra.Command, opts *rootOptions, digest string) error {
	out := cmd.OutOrStdout()
	if opts.output == outputJSON {
		return writeJSON(out, gaspool.SponsoredTxResponse{TxDigest: digest})
	}
	success(out, "Transaction executed")
	field(out, "Digest", digest)
	return nil
}
