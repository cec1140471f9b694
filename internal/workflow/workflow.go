package workflow

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/saldo/internal/reconcile"
)

// Execute runs the full workflow for a single stored document. Page images
// live in a temp directory that is removed when Execute returns.
func Execute(ctx context.Context, rt *Runtime, documentID uuid.UUID) (*Result, error) {
	tempDir, err := os.MkdirTemp("", "saldo-reconcile-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	graph, err := buildGraph(rt, true)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyDocumentID, documentID)
	initial = initial.Set(KeyTempDir, tempDir)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(final)
}

// ExecutePages runs classification, extraction and correlation over pages
// that are already rendered to disk.
func ExecutePages(ctx context.Context, rt *Runtime, pages []Page) (*Result, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	graph, err := buildGraph(rt, false)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyPages, pages)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(final)
}

type namedNode struct {
	name string
	node state.StateNode
}

// buildGraph wires the nodes as a linear chain ending at correlate.
func buildGraph(rt *Runtime, withInit bool) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("saldo-reconcile")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	var nodes []namedNode
	if withInit {
		nodes = append(nodes, namedNode{"init", InitNode(rt)})
	}
	nodes = append(nodes,
		namedNode{"classify", ClassifyNode(rt)},
		namedNode{"extract", ExtractNode(rt)},
		namedNode{"correlate", CorrelateNode(rt)},
	)

	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	for i := 1; i < len(nodes); i++ {
		if err := graph.AddEdge(nodes[i-1].name, nodes[i].name, nil); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint(nodes[0].name); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("correlate"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractResult(s state.State) (*Result, error) {
	pages, err := stateValue[[]Page](s, KeyPages)
	if err != nil {
		return nil, err
	}
	extractions, err := stateValue[[]reconcile.Extraction](s, KeyExtractions)
	if err != nil {
		return nil, err
	}
	outcome, err := stateValue[reconcile.Outcome](s, KeyOutcome)
	if err != nil {
		return nil, err
	}

	result := &Result{
		PageCount:   len(pages),
		Pages:       pages,
		Extractions: extractions,
		Outcome:     outcome,
		CompletedAt: time.Now(),
	}

	if id, err := stateValue[uuid.UUID](s, KeyDocumentID); err == nil {
		result.DocumentID = id
	}
	if name, err := stateValue[string](s, KeyFilename); err == nil {
		result.Filename = name
	}

	return result, nil
}
