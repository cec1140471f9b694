package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

// CorrelateNode returns a state node that folds the ordered extractions
// into a ledger. It never calls the oracle.
func CorrelateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		extractions, err := stateValue[[]reconcile.Extraction](s, KeyExtractions)
		if err != nil {
			return s, fmt.Errorf("correlate: %w", err)
		}

		outcome := reconcile.Correlate(extractions, rt.Engine)

		rt.Logger.InfoContext(
			ctx, "correlate node complete",
			"stops", len(outcome.Ledger.Stops),
			"rows", len(outcome.Rows),
			"needs_review", outcome.Disposition.NeedsReview,
		)

		return s.Set(KeyOutcome, outcome), nil
	})
}
