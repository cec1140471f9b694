package workflow

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/saldo/internal/extraction"
	"github.com/JaimeStill/saldo/internal/oracle"
	"github.com/JaimeStill/saldo/internal/prompts"
	"github.com/JaimeStill/saldo/internal/reconcile"
)

// ClassifyNode returns a state node that detects the document type of every
// page with bounded concurrency. A page whose classification fails after
// retries becomes DocUnknown with a warning; only cancellation aborts.
func ClassifyNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		pages, err := stateValue[[]Page](s, KeyPages)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		pages, err = classifyPages(ctx, rt, pages)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		unknown := 0
		for _, p := range pages {
			if p.DocumentType == reconcile.DocUnknown {
				unknown++
			}
		}

		rt.Logger.InfoContext(
			ctx, "classify node complete",
			"page_count", len(pages),
			"unknown_pages", unknown,
		)

		return s.Set(KeyPages, pages), nil
	})
}

func classifyPages(ctx context.Context, rt *Runtime, in []Page) ([]Page, error) {
	prompt, err := rt.Prompts.Compose(ctx, prompts.StageClassify, nil)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, len(in))
	copy(pages, in)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.workerCount(len(pages)))

	for i := range pages {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			p := &pages[i]

			img, err := os.ReadFile(p.ImagePath)
			if err != nil {
				p.DocumentType = reconcile.DocUnknown
				p.Warning = fmt.Sprintf("page %d: read image: %v", p.Number, err)
				return nil
			}

			c, err := oracle.Ask(gctx, rt.vision(), rt.Retry, prompt, [][]byte{img}, extraction.DecodeClassification)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				rt.Logger.WarnContext(gctx, "page classification failed", "page", p.Number, "error", err)
				p.DocumentType = reconcile.DocUnknown
				p.Warning = fmt.Sprintf("page %d: classification failed, excluded: %v", p.Number, err)
				return nil
			}

			p.DocumentType = c.DocumentType
			p.Confidence = c.Confidence
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}
