// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/engine"
	"github.com/starford/raido/internal/httpapi"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/store"
)

// BuildEngine wires the sync engine for a discovered workspace.
func BuildEngine(cfg *Config, project *Project, client remote.Client, logger *slog.Logger) (*engine.Engine, error) {
	fs, err := storage.NewFS(project.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if client == nil {
		client = remote.NewHTTP(cfg.Remote.BaseURL, cfg.Remote.WorkspaceID, cfg.Remote.Branch, cfg.Remote.Token)
	}
	return engine.New(engine.Params{
		Store:         store.New(project.ObjectsPath()),
		FS:            fs,
		Client:        client,
		Logger:        logger,
		PathOpts:      cfg.Workspace.PathOptions(),
		Root:          project.Root,
		IndexFile:     project.IndexPath(),
		GroupsFile:    project.GroupsPath(),
		EndpointsFile: project.EndpointsPath(),
	}), nil
}

// NewLogger builds the structured JSON logger and installs it as default.
func NewLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts serve mode: the read-only HTTP surface plus the local drift
// watcher, shut down together on SIGINT/SIGTERM or context cancellation.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.project == nil {
		return fmt.Errorf("project is required")
	}

	cfg := app.config
	logger := NewLogger(cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("workspace_root", app.project.Root),
		slog.String("log_level", cfg.App.LogLevel.String()))

	eng, err := BuildEngine(cfg, app.project, app.client, logger)
	if err != nil {
		return err
	}

	apiRouter := httpapi.NewRouter(eng, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the drift watcher; it only logs, the HTTP surface recomputes
	// status on demand.
	g.Go(func() error {
		return eng.Watch(gCtx, func(res *engine.StatusResult) {
			logger.Info("workspace drift",
				slog.Int("synced", res.Synced),
				slog.Int("modified", res.Modified),
				slog.Int("untracked", res.Untracked),
				slog.Int("orphans", res.Orphans))
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
