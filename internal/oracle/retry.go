package oracle

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds the attempts made for one oracle call. The wait before
// attempt n+1 is InitialBackoff doubled n-1 times, capped at MaxBackoff.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy returns three attempts starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     15 * time.Second,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Ask calls o and decodes the reply with decode. Transport failures and
// decode failures are both retried under p. Cancellation of ctx stops the
// loop immediately and returns the context error. When every attempt fails
// the result wraps ErrOracleExhausted and the last failure.
func Ask[T any](
	ctx context.Context,
	o Oracle,
	p RetryPolicy,
	prompt string,
	images [][]byte,
	decode func(string) (T, error),
) (T, error) {
	var zero T

	attempts := max(p.MaxAttempts, 1)
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		content, err := o.Vision(ctx, prompt, images)
		if err == nil {
			var out T
			out, err = decode(content)
			if err == nil {
				return out, nil
			}
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		lastErr = err

		if attempt < attempts {
			if err := wait(ctx, p.Backoff(attempt)); err != nil {
				return zero, err
			}
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrOracleExhausted, attempts, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
