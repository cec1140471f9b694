package main

import (
	"github.com/spf13/cobra"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var (
		engine       engineFlags
		failOnErrors bool
	)

	cmd := &cobra.Command{
		Use:   "validate <entry.json|entry.yaml>",
		Short: "Run the validation checks on a single ledger entry",
		Long: `Validate runs the entry checks (saldo mismatch, exchange consistency, DPL
voucher, cross-stop counts and missing fields) against one pallet-type entry
and prints the issues together with the adjusted entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := engine.resolve(cmd)
			if err != nil {
				return err
			}

			var entry reconcile.Entry
			if err := readDocument(args[0], &entry); err != nil {
				return err
			}

			result := reconcile.Validate(entry, cfg)

			opts.logger.Debug("entry validated",
				"file", args[0],
				"pallet_type", entry.PalletType,
				"issues", len(result.Issues),
				"corrected", result.Corrected,
			)

			if err := render(cmd.OutOrStdout(), opts.format, result, summarizeResult); err != nil {
				return err
			}

			if failOnErrors && len(result.Unresolved()) > 0 {
				return errNeedsReview
			}
			return nil
		},
	}

	engine.register(cmd)
	cmd.Flags().BoolVar(&failOnErrors, "fail-on-errors", false, "exit with status 2 when uncorrected errors remain")

	return cmd
}
