// Package main is the entry point for the civic-sync server.
//
// main only reads configuration, builds the logger and hands both to the
// server package, which wires everything else. See internal/config for the
// recognised environment variables and the optional YAML file.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/config"
	"github.com/sakif/civic-sync/internal/server"
)

func main() {
	// === 1. CONFIGURATION ===
	// .env, then $CIVIC_CONFIG, then the process environment.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if cfg.GeneratedSecret {
		logger.Warn("JWT_SECRET not set, using a random secret; sessions will not survive a restart")
	}
	if cfg.Auth.Mode == "mock" {
		logger.Warn("auth mode is mock: any email and password will sign in")
	}

	// === 3. BUILD AND START ===
	srv, err := server.New(context.Background(), cfg, clock.Real(), logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
