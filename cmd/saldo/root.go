package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errNeedsReview signals exit code 2 when --fail-on-review is set and the
// ledger needs human review.
var errNeedsReview = errors.New("ledger needs review")

var envFiles = []string{".env", ".env.local"}

type rootOptions struct {
	format  string
	verbose bool
	logger  *slog.Logger
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "saldo",
		Short: "Pallet exchange reconciliation for scanned freight documents",
		Long: `saldo correlates the pallet movements recorded on German freight documents
(Lieferschein, Ladeliste, Palettenschein, Wareneingangsbestätigung) into one
ledger per delivery and computes the carrier's pallet balance per type.

Engine policy comes from SALDO_ENGINE_* variables, optionally loaded from
.env and .env.local in the working directory, and can be overridden by flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			loadEnvFiles(opts.logger)

			switch opts.format {
			case formatSummary, formatJSON, formatYAML:
				return nil
			default:
				return fmt.Errorf("unknown format %q: use summary, json or yaml", opts.format)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.format, "format", "o", formatSummary, "output format: summary, json, yaml")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.SetVersionTemplate("saldo {{.Version}}\n")

	cmd.AddCommand(
		newReconcileCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(version),
	)

	return cmd
}

// loadEnvFiles loads the env files that exist. Variables already set in the
// environment are kept.
func loadEnvFiles(logger *slog.Logger) {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			logger.Warn("env file not loaded", "file", name, "error", err)
			continue
		}
		logger.Debug("env file loaded", "file", name)
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the saldo version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "saldo %s\n", version)
			return err
		},
	}
}
