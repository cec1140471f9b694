package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/JaimeStill/saldo/internal/documents"
	"github.com/JaimeStill/saldo/internal/oracle"
	"github.com/JaimeStill/saldo/internal/prompts"
	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/storage"
)

// Prompts composes the oracle prompt for a stage. prompts.System and
// prompts.Defaults both satisfy it.
type Prompts interface {
	Compose(ctx context.Context, stage prompts.Stage, pages []int) (string, error)
}

// Runtime bundles the dependencies that workflow nodes require.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
// Storage and Documents are only used by the init node.
//
// Workers bounds oracle calls across every execution sharing the Runtime,
// so concurrent documents never multiply oracle load. A Runtime must not be
// copied after first use.
type Runtime struct {
	Oracle    oracle.Oracle
	Retry     oracle.RetryPolicy
	Workers   int
	Engine    reconcile.Config
	Prompts   Prompts
	Storage   storage.System
	Documents documents.System
	Logger    *slog.Logger

	once    sync.Once
	limited oracle.Oracle
}

// vision returns the Runtime's shared, concurrency-limited oracle.
func (rt *Runtime) vision() oracle.Oracle {
	rt.once.Do(func() {
		rt.limited = oracle.Limit(rt.Oracle, rt.workers())
	})
	return rt.limited
}

func (rt *Runtime) workers() int {
	if rt.Workers <= 0 {
		return 3
	}
	return rt.Workers
}

func (rt *Runtime) workerCount(n int) int {
	return max(min(rt.workers(), n), 1)
}
