// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/veland/grimsync/internal/api"
	"github.com/veland/grimsync/internal/cache"
	"github.com/veland/grimsync/internal/engine"
	"github.com/veland/grimsync/internal/models"
	"github.com/veland/grimsync/internal/sse"
	"github.com/veland/grimsync/internal/storage"
	"github.com/veland/grimsync/internal/syncstate"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("state_path", cfg.State.Path),
		slog.String("log_level", cfg.App.LogLevel.String()),
		slog.Bool("dry_run", app.dryRun))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize vault storage.
	vault, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Open sync state.
	state, err := syncstate.Open(cfg.State.Path, logger)
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}
	defer state.Close()

	if app.forceResync {
		logger.Info("Clearing sync state, all notes will be rewritten")
		if err := state.Clear(); err != nil {
			return fmt.Errorf("clear state: %w", err)
		}
	}

	eng := engine.New(vault, state, engine.Options{
		Subfolder:         cfg.Vault.Subfolder,
		IncludePanels:     cfg.Render.IncludePanels,
		IncludeTranscript: cfg.Render.IncludeTranscript,
		AutoLink:          cfg.Wikilinks.Enabled,
		MinTermLength:     cfg.Wikilinks.MinTermLength,
		Preview:           app.dryRun,
	}, logger)

	// loadCache reads and decodes the upstream cache. A missing file is
	// normal before the first meeting is recorded.
	loadCache := func() ([]models.Document, error) {
		data, err := os.ReadFile(cfg.Cache.Path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("cache file not found", slog.String("path", cfg.Cache.Path))
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read cache: %w", err)
		}
		return cache.Parse(data, logger)
	}

	// Initial cycle.
	docs, err := loadCache()
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	summary, err := eng.RunCycle(ctx, docs)
	if err != nil {
		return err
	}

	if app.once {
		if summary.Failed > 0 {
			return fmt.Errorf("%d notes failed to sync", summary.Failed)
		}
		return nil
	}

	// SSE broker and status tracker for the watch-mode surfaces.
	broker := sse.NewBroker()
	defer broker.Close()

	tracker := api.NewTracker()
	tracker.Record(summary)
	broker.PublishCycle(summary)

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the cache file for changes.
	g.Go(func() error {
		return eng.Watch(gCtx, cfg.Cache.Path, loadCache, func(s engine.Summary) {
			tracker.Record(s)
			broker.PublishCycle(s)
		})
	})

	// Optional status HTTP server.
	var httpServer *http.Server
	if cfg.App.HTTP.Enabled {
		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		r.Mount("/api", api.NewRouter(api.NewHandler(tracker, state), broker))

		httpServer = &http.Server{
			Addr:    cfg.App.HTTP.Address(),
			Handler: r,
		}

		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}

		// Cancel the group so the watcher unblocks.
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped")
	return nil
}
