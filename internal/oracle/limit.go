package oracle

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limit returns an Oracle that allows at most n Vision calls on o to be in
// flight at once, across every caller sharing it. A caller waiting for a
// slot returns early with the context error. n below 1 is treated as 1.
func Limit(o Oracle, n int) Oracle {
	return &limited{oracle: o, sem: semaphore.NewWeighted(int64(max(n, 1)))}
}

type limited struct {
	oracle Oracle
	sem    *semaphore.Weighted
}

func (l *limited) Vision(ctx context.Context, prompt string, images [][]byte) (string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.oracle.Vision(ctx, prompt, images)
}
