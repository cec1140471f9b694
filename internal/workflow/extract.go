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

// ExtractNode returns a state node that submits each group of consecutive
// same-type pages to the oracle with bounded concurrency. Results land in
// per-group slots so the extractions leave the node in page order whatever
// order the calls finish in. A group that cannot be extracted is recorded as
// a failed extraction carrying a warning.
func ExtractNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		pages, err := stateValue[[]Page](s, KeyPages)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		groups := Groups(pages, maxGroupPages)

		extractions, err := extractGroups(ctx, rt, pages, groups)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		failed := 0
		for _, ex := range extractions {
			if ex.Failed {
				failed++
			}
		}

		rt.Logger.InfoContext(
			ctx, "extract node complete",
			"groups", len(groups),
			"extractions", len(extractions),
			"failed", failed,
		)

		return s.Set(KeyExtractions, extractions), nil
	})
}

func extractGroups(ctx context.Context, rt *Runtime, pages []Page, groups []Group) ([]reconcile.Extraction, error) {
	byNumber := make(map[int]Page, len(pages))
	for _, p := range pages {
		byNumber[p.Number] = p
	}

	slots := make([][]reconcile.Extraction, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.workerCount(len(groups)))

	for i, grp := range groups {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			stage, ok := prompts.ExtractStage(grp.DocumentType)
			if !ok {
				slots[i] = []reconcile.Extraction{excluded(grp, byNumber)}
				return nil
			}

			out, err := extractGroup(gctx, rt, grp, stage, byNumber)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				rt.Logger.WarnContext(gctx, "group extraction failed", "pages", grp.Pages, "error", err)
				slots[i] = []reconcile.Extraction{failedExtraction(grp, err)}
				return nil
			}

			slots[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var extractions []reconcile.Extraction
	for _, slot := range slots {
		extractions = append(extractions, slot...)
	}
	return extractions, nil
}

func extractGroup(
	ctx context.Context,
	rt *Runtime,
	grp Group,
	stage prompts.Stage,
	byNumber map[int]Page,
) ([]reconcile.Extraction, error) {
	prompt, err := rt.Prompts.Compose(ctx, stage, grp.Pages)
	if err != nil {
		return nil, err
	}

	images := make([][]byte, 0, len(grp.Pages))
	for _, n := range grp.Pages {
		img, err := os.ReadFile(byNumber[n].ImagePath)
		if err != nil {
			return nil, fmt.Errorf("read page %d image: %w", n, err)
		}
		images = append(images, img)
	}

	decode := func(content string) ([]reconcile.Extraction, error) {
		return extraction.Decode(grp.DocumentType, content)
	}

	out, err := oracle.Ask(ctx, rt.vision(), rt.Retry, prompt, images, decode)
	if err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Page == 0 {
			out[i].Page = grp.Pages[0]
			out[i].Pages = grp.Pages
		}
	}
	return out, nil
}

// excluded records pages that have no extraction stage. The classification
// warning, when present, explains why.
func excluded(grp Group, byNumber map[int]Page) reconcile.Extraction {
	var warnings []string
	for _, n := range grp.Pages {
		if w := byNumber[n].Warning; w != "" {
			warnings = append(warnings, w)
		} else {
			warnings = append(warnings, fmt.Sprintf("page %d: unrecognized document type, excluded", n))
		}
	}

	return reconcile.Extraction{
		Page:         grp.Pages[0],
		Pages:        grp.Pages,
		DocumentType: grp.DocumentType,
		Warnings:     warnings,
		Failed:       true,
	}
}

func failedExtraction(grp Group, err error) reconcile.Extraction {
	return reconcile.Extraction{
		Page:         grp.Pages[0],
		Pages:        grp.Pages,
		DocumentType: grp.DocumentType,
		Warnings:     []string{fmt.Sprintf("%s: extraction failed, excluded: %v", grp.label(), err)},
		Failed:       true,
	}
}
