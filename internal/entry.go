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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/bergsten/raido/internal/api"
	"github.com/bergsten/raido/internal/index"
	"github.com/bergsten/raido/internal/mcpserver"
	"github.com/bergsten/raido/internal/notify"
	"github.com/bergsten/raido/internal/projects"
	"github.com/bergsten/raido/internal/queue"
	"github.com/bergsten/raido/internal/reconcile"
	"github.com/bergsten/raido/internal/settings"
	"github.com/bergsten/raido/internal/sse"
	"github.com/bergsten/raido/internal/storage"
)

// components holds the wired application graph shared by the HTTP and
// MCP entry points.
type components struct {
	vault    storage.Provider
	db       *index.DB
	store    *projects.Store
	engine   *reconcile.Engine
	broker   *sse.Broker
	settings *settings.Store
	logger   *slog.Logger
}

func build(cfg *Config, logger *slog.Logger) (*components, func(), error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create vault dir: %w", err)
	}

	vault, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, vault, cfg.Board.TrackTag, cfg.Board.Path, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker(2 * time.Second)

	q := queue.New(logger, func(name string, err error) {
		broker.PublishNotice(fmt.Sprintf("%s failed: %v", name, err))
	})

	store := projects.NewStore(vault, projects.NewPathIndex(vault, cfg.Board.ProjectsDir))
	sink := notify.Multi(notify.NewLogSink(logger), notify.Func(broker.PublishNotice))

	engine := reconcile.NewEngine(vault, cfg.Board.Path, store, db, q, sink, logger)
	engine.OnBoardChange = broker.PublishBoardUpdated

	st := settings.NewStore(filepath.Join(cfg.Vault.Path, ".raido", "settings.yaml"))
	if err := st.Load(); err != nil {
		logger.Warn("load settings failed", slog.String("error", err.Error()))
	}

	c := &components{
		vault:    vault,
		db:       db,
		store:    store,
		engine:   engine,
		broker:   broker,
		settings: st,
		logger:   logger,
	}
	cleanup := func() {
		engine.Wait()
		db.Close()
	}
	return c, cleanup, nil
}

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
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("board_path", cfg.Board.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, cleanup, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	apiRouter := api.NewRouter(c.engine, c.db, c.store, c.settings,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token, c.broker)

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

	// Start file watcher wired to the sync engine and SSE broker.
	g.Go(func() error {
		cbs := index.Callbacks{
			Project: c.broker.PublishProjectEvent,
			Status: func(name, status string) {
				c.engine.OnStatusChanged(gCtx, name, status)
			},
			Board: c.broker.PublishBoardUpdated,
		}
		if err := index.Watch(gCtx, c.db, c.vault, cfg.Vault.Path, cfg.Board.TrackTag, cfg.Board.Path, logger, cbs); err != nil {
			logger.Error("watcher error", slog.String("error", err.Error()))
		}
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
		c.broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdio with the given options. Logs go
// to stderr so they do not corrupt the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	c, cleanup, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := mcpserver.New(c.engine, c.store)
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
