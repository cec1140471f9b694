// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies domain systems require: logging, database,
// blob storage and the vision oracle.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/saldo/internal/config"
	"github.com/JaimeStill/saldo/internal/oracle"
	"github.com/JaimeStill/saldo/pkg/database"
	"github.com/JaimeStill/saldo/pkg/lifecycle"
	"github.com/JaimeStill/saldo/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, file storage, and page interpretation.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Oracle    oracle.Oracle
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	orc, err := oracle.New(context.Background(), &cfg.Oracle, cfg.Agent.Resolved(), logger)
	if err != nil {
		return nil, fmt.Errorf("oracle init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Oracle:    orc,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown
// coordination, and both gate readiness.
func (i *Infrastructure) Start() error {
	i.Lifecycle.Register("database", i.Database)
	i.Lifecycle.Register("storage", i.Storage)

	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
