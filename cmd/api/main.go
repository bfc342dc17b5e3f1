// Package main is the entry point for the shift rota API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/shift-rota/internal/api"
	"github.com/zapponejosh/shift-rota/internal/config"
	"github.com/zapponejosh/shift-rota/internal/database"
	"github.com/zapponejosh/shift-rota/internal/export"
	"github.com/zapponejosh/shift-rota/internal/logger"
	"github.com/zapponejosh/shift-rota/internal/metrics"
	"github.com/zapponejosh/shift-rota/internal/palette"
	"github.com/zapponejosh/shift-rota/internal/rota"
)

const (
	shutdownTimeout = 15 * time.Second
	pruneInterval   = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting shift rota API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
	)

	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return fmt.Errorf("open export store: %w", err)
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate export store: %w", err)
	}

	pal, err := palette.Load(cfg.PalettePath)
	if err != nil {
		return err
	}

	schedule := rota.Default2026()
	m := metrics.New()

	renderer, err := export.NewRenderer(pal, export.WithSize(cfg.ExportWidth, cfg.ExportHeight))
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	exporter := export.NewExporter(m.CountAssignments(schedule), renderer, export.Config{
		Concurrency: cfg.ExportConcurrency,
		Logger:      log,
		Observer:    m,
	})

	handlers := api.NewHandlers(api.Deps{
		DB:       db,
		Schedule: schedule,
		Palette:  pal,
		Exporter: exporter,
		Metrics:  m,
	}, cfg, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
		// Exports of a full year at A4 size can take a while.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go pruneLoop(ctx, db, cfg.ExportRetention, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("shift rota API ready", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// pruneLoop removes stored export images older than retention until ctx is
// done.
func pruneLoop(ctx context.Context, db *database.DB, retention time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := db.PruneOlderThan(ctx, now.Add(-retention))
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("prune exports failed", slog.Any("error", err))
				}
				continue
			}
			if n > 0 {
				log.Info("pruned old exports", slog.Int64("deleted", n))
			}
		}
	}
}
