package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/colarrange/internal/config"
	"github.com/JonMunkholm/colarrange/internal/core"
	"github.com/JonMunkholm/colarrange/internal/database"
	"github.com/JonMunkholm/colarrange/internal/logging"
	"github.com/JonMunkholm/colarrange/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Backend,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"workspace_idle_timeout", cfg.Workspace.IdleTimeout,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()
	store, err := database.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open arrangement store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	service := core.NewService(store, cfg.ServiceConfig())
	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartWorkspaceSweeper(jobCtx, cfg.Workspace.SweepInterval)

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight parses finish before the listener closes.
		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for parses to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("parses did not complete in time", "error", err)
			} else {
				slog.Info("all parses completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		return
	}
	<-done
}
