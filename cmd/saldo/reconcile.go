package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/saldo/internal/config"
	"github.com/JaimeStill/saldo/internal/extraction"
	"github.com/JaimeStill/saldo/internal/reconcile"
)

type engineFlags struct {
	reviewThreshold     float64
	autoCorrectSaldo    bool
	autoCorrectExchange bool
	tieBreak            string
}

func (f *engineFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64Var(&f.reviewThreshold, "review-threshold", 0, "confidence below which a ledger needs review")
	flags.BoolVar(&f.autoCorrectSaldo, "auto-correct-saldo", false, "replace a mismatched reported saldo with the computed one")
	flags.BoolVar(&f.autoCorrectExchange, "auto-correct-exchange", false, "repair exchange inconsistencies and DPL conflicts")
	flags.StringVar(&f.tieBreak, "tie-break", "", "role for receipts whose given and received counts are equal: pickup or delivery")
}

// resolve layers changed flags over the SALDO_ENGINE_* environment.
func (f *engineFlags) resolve(cmd *cobra.Command) (reconcile.Config, error) {
	var ec config.EngineConfig
	if err := ec.Finalize(); err != nil {
		return reconcile.Config{}, fmt.Errorf("engine config: %w", err)
	}
	cfg := ec.Reconcile()

	flags := cmd.Flags()
	if flags.Changed("review-threshold") {
		cfg.ReviewThreshold = f.reviewThreshold
	}
	if flags.Changed("auto-correct-saldo") {
		cfg.AutoCorrectSaldo = f.autoCorrectSaldo
	}
	if flags.Changed("auto-correct-exchange") {
		cfg.AutoCorrectExchange = f.autoCorrectExchange
	}
	if flags.Changed("tie-break") {
		cfg.TieBreak = reconcile.ParseRole(f.tieBreak)
	}

	if err := cfg.Validate(); err != nil {
		return reconcile.Config{}, fmt.Errorf("engine config: %w", err)
	}
	return cfg, nil
}

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	var (
		engine       engineFlags
		failOnReview bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile <responses.json|responses.yaml>",
		Short: "Correlate saved oracle responses into a pallet ledger",
		Long: `Reconcile reads saved oracle responses, one per classified page group, and
runs them through extraction, correlation, gap filling, saldo computation and
validation. Each response names its page or pages, its document type and the
oracle's answer, either as the raw text or as a parsed JSON value.`,
		Example: `  saldo reconcile scan-4711.json
  saldo reconcile scan-4711.yaml -o json --tie-break pickup
  saldo reconcile scan-4711.json --fail-on-review`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := engine.resolve(cmd)
			if err != nil {
				return err
			}

			responses, err := readResponses(args[0])
			if err != nil {
				return err
			}

			extractions := decodeResponses(opts, responses)
			outcome := reconcile.Correlate(extractions, cfg)

			opts.logger.Debug("ledger reconciled",
				"file", args[0],
				"responses", len(responses),
				"stops", len(outcome.Ledger.Stops),
				"needs_review", outcome.Disposition.NeedsReview,
			)

			if err := render(cmd.OutOrStdout(), opts.format, outcome, summarizeOutcome); err != nil {
				return err
			}

			if failOnReview && outcome.Disposition.NeedsReview {
				return errNeedsReview
			}
			return nil
		},
	}

	engine.register(cmd)
	cmd.Flags().BoolVar(&failOnReview, "fail-on-review", false, "exit with status 2 when the ledger needs review")

	return cmd
}

// decodeResponses extracts every response. A response that cannot be
// decoded is kept as a failed extraction so the ledger reports it.
func decodeResponses(opts *rootOptions, responses []response) []reconcile.Extraction {
	var extractions []reconcile.Extraction

	for _, r := range responses {
		docType := extraction.ParseDocumentType(r.DocumentType)
		pages := r.Pages
		if len(pages) == 0 && r.Page > 0 {
			pages = []int{r.Page}
		}

		decoded, err := extraction.Decode(docType, r.content())
		if err != nil {
			opts.logger.Warn("response not decoded", "source", r.label(), "error", err)
			extractions = append(extractions, reconcile.Extraction{
				Page:         r.first(),
				Pages:        slices.Clone(pages),
				DocumentType: docType,
				Warnings:     []string{fmt.Sprintf("%s: extraction failed, excluded: %v", r.label(), err)},
				Failed:       true,
			})
			continue
		}

		for _, ex := range decoded {
			if ex.Page == 0 {
				ex.Page = r.first()
			}
			if len(ex.Pages) == 0 {
				ex.Pages = slices.Clone(pages)
			}
			extractions = append(extractions, ex)
		}
	}

	return extractions
}
