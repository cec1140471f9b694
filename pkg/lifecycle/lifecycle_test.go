package lifecycle_test

import (
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/saldo/pkg/lifecycle"
)

type flag struct{ ok atomic.Bool }

func (f *flag) Ready() bool { return f.ok.Load() }

func TestReadiness(t *testing.T) {
	lc := lifecycle.New()
	db := &flag{}
	lc.Register("database", db)

	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}
	if got := lc.NotReady(); !slices.Equal(got, []string{"database", "startup"}) {
		t.Errorf("NotReady before startup = %v", got)
	}

	lc.WaitForStartup()
	if lc.Ready() {
		t.Error("should not be ready while a subsystem is not ready")
	}
	if got := lc.NotReady(); !slices.Equal(got, []string{"database"}) {
		t.Errorf("NotReady after startup = %v", got)
	}

	db.ok.Store(true)
	if !lc.Ready() {
		t.Error("should be ready once every subsystem is ready")
	}
	if got := lc.NotReady(); len(got) != 0 {
		t.Errorf("NotReady = %v, want none", got)
	}
}

func TestReadyWithoutChecks(t *testing.T) {
	lc := lifecycle.New()
	lc.WaitForStartup()

	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() {
			count.Add(1)
		})
	}

	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestShutdown(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}

	select {
	case <-lc.Context().Done():
	default:
		t.Error("context should be cancelled after shutdown")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	lc.WaitForStartup()

	err := lc.Shutdown(50 * time.Millisecond)
	if !errors.Is(err, lifecycle.ErrShutdownTimeout) {
		t.Errorf("Shutdown error = %v, want ErrShutdownTimeout", err)
	}
}
