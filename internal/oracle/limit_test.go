package oracle_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/saldo/internal/oracle"
)

func TestLimitBoundsInFlightCalls(t *testing.T) {
	var active, peak atomic.Int32
	o := oracle.Func(func(ctx context.Context, prompt string, images [][]byte) (string, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return "ok", nil
	})

	limited := oracle.Limit(o, 3)

	var wg sync.WaitGroup
	for range 12 {
		wg.Go(func() {
			if _, err := limited.Vision(context.Background(), "p", nil); err != nil {
				t.Errorf("Vision error: %v", err)
			}
		})
	}
	wg.Wait()

	if got := peak.Load(); got > 3 {
		t.Errorf("peak concurrent calls = %d, want at most 3", got)
	}
}

func TestLimitWaitCanceled(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	o := oracle.Func(func(ctx context.Context, prompt string, images [][]byte) (string, error) {
		close(started)
		<-release
		return "ok", nil
	})

	limited := oracle.Limit(o, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		limited.Vision(context.Background(), "p", nil)
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := limited.Vision(ctx, "p", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}

	close(release)
	<-done
}
