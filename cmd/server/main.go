// Command server runs the saldo HTTP API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/saldo/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}
	logger := srv.infra.Logger

	logger.Info("saldo starting", "version", cfg.Version, "addr", cfg.Server.Addr(), "env", cfg.Env())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := srv.Start(); err != nil {
		stop()
		logger.Error("server start failed", "error", err)
		srv.Shutdown(cfg.ShutdownTimeoutDuration())
		os.Exit(1)
	}

	<-ctx.Done()
	stop()

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("saldo stopped")
}
