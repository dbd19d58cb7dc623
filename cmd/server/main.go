package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nfrund/quay/internal/config"
	"github.com/nfrund/quay/internal/database"
	"github.com/nfrund/quay/internal/logging"
	"github.com/nfrund/quay/internal/server"
)

func main() {
	cfg, err := config.New()
	logging.New()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := server.SignalContext(context.Background())
	defer stop()

	backend, err := database.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	s, err := server.New(cfg, backend)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}
	if err := s.RegisterRoutes(ctx); err != nil {
		slog.Error("Failed to register routes", "error", err)
		os.Exit(1)
	}

	if err := s.Start(ctx, cfg.GetAppAddr()); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
