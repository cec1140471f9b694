package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/saldo/pkg/database"
)

func unreachable() database.Config {
	return database.Config{
		Host:            "127.0.0.1",
		Port:            1,
		Name:            "saldo",
		User:            "saldo",
		Password:        "saldo",
		SSLMode:         "disable",
		MaxOpenConns:    42,
		MaxIdleConns:    7,
		ConnMaxLifetime: "10m",
		ConnTimeout:     "500ms",
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewIsLazy(t *testing.T) {
	cfg := unreachable()

	sys, err := database.New(&cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn := sys.Connection()
	if conn == nil {
		t.Fatal("Connection() returned nil")
	}
	defer conn.Close()

	if stats := conn.Stats(); stats.MaxOpenConnections != 42 {
		t.Errorf("MaxOpenConnections = %d, want 42", stats.MaxOpenConnections)
	}
	if sys.Ready() {
		t.Error("system should not be ready before a successful ping")
	}
}

func TestCheckUnreachable(t *testing.T) {
	cfg := unreachable()

	sys, err := database.New(&cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sys.Connection().Close()

	err = sys.Check(context.Background())
	if !errors.Is(err, database.ErrNotReady) {
		t.Errorf("Check error = %v, want ErrNotReady", err)
	}
}
