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

	"github.com/starford/ehwaz/internal/api"
	"github.com/starford/ehwaz/internal/backlink"
	"github.com/starford/ehwaz/internal/index"
	"github.com/starford/ehwaz/internal/mcpserver"
	"github.com/starford/ehwaz/internal/publish"
	"github.com/starford/ehwaz/internal/remote"
	"github.com/starford/ehwaz/internal/sse"
	"github.com/starford/ehwaz/internal/storage"
)

// services bundles everything a command surface needs.
type services struct {
	logger *slog.Logger
	store  storage.Provider
	db     *index.DB
	svc    *publish.Service
}

func (s *services) close() {
	_ = s.db.Close()
}

// bootstrap builds the shared service stack from configuration: logger,
// vault storage, sqlite index (with an initial sync), remote client, and
// the publish service.
func bootstrap(app *application) (*services, error) {
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	client, err := remote.NewHTTP(cfg.Remote.Endpoint, cfg.Remote.Token, cfg.Remote.Timeout(), logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init remote client: %w", err)
	}
	meta := remote.NewMetaCache(client, remote.DefaultMetaTTL)

	svc := publish.New(store, db, client, meta, cfg.Site.BaseURL, logger, app.notifier)

	return &services{logger: logger, store: store, db: db, svc: svc}, nil
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// Run starts the long-running server: file watcher, HTTP API, and SSE.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	s, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer s.close()
	logger := s.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("remote_endpoint", cfg.Remote.Endpoint),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker. The publish service reports lifecycle phases through it.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	s.svc.SetEventSink(broker)

	// Build API router.
	apiRouter := api.NewRouter(s.svc, s.db, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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

	// Start file watcher with SSE callback.
	g.Go(func() error {
		index.Watch(gCtx, s.db, s.store, cfg.Vault.Path, logger, func(kind, path string) {
			broker.PublishDocEvent(kind, path)
		})
		return nil
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

// PublishOne runs the publish cycle for a single document and exits.
func PublishOne(ctx context.Context, path string, opts ...Option) (*publish.Outcome, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	s, err := bootstrap(app)
	if err != nil {
		return nil, err
	}
	defer s.close()
	return s.svc.Publish(ctx, path)
}

// PreviewOne runs backlink conversion for a single document and exits.
func PreviewOne(ctx context.Context, path string, opts ...Option) (*backlink.Result, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	s, err := bootstrap(app)
	if err != nil {
		return nil, err
	}
	defer s.close()
	return s.svc.Preview(ctx, path)
}

// DeleteOne deletes the remote object for a single document and exits.
func DeleteOne(ctx context.Context, path string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer s.close()
	return s.svc.Delete(ctx, path)
}

// UnlinkOne strips sync state from a single document and exits.
func UnlinkOne(ctx context.Context, path string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer s.close()
	return s.svc.Unlink(path)
}

// Ping probes the remote service and exits.
func Ping(ctx context.Context, opts ...Option) (*remote.ConnectionStatus, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	s, err := bootstrap(app)
	if err != nil {
		return nil, err
	}
	defer s.close()
	return s.svc.TestConnection(ctx)
}

// ServeMCP runs the MCP server on stdio until the client disconnects.
func ServeMCP(opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer s.close()
	return mcpserver.New(s.svc, s.store, s.db).ServeStdio()
}
