// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jr6v5m2k/rotomsongs/internal/api"
	"github.com/jr6v5m2k/rotomsongs/internal/catalog"
	"github.com/jr6v5m2k/rotomsongs/internal/index"
	"github.com/jr6v5m2k/rotomsongs/internal/search"
	"github.com/jr6v5m2k/rotomsongs/internal/songservice"
	"github.com/jr6v5m2k/rotomsongs/internal/sse"
	"github.com/jr6v5m2k/rotomsongs/internal/storage"
	"github.com/jr6v5m2k/rotomsongs/internal/validation"
)

// env is the wired application shared by every command.
type env struct {
	cfg       *Config
	logger    *slog.Logger
	store     *storage.FS
	validator *validation.Validator
	repo      *catalog.Repository
	db        *index.DB
	svc       *songservice.Service
	closers   []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, stdout: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup wires logger, storage, repository, index and service. withIndex
// controls whether the SQLite mirror is opened.
func (a *application) setup(withIndex bool) (*env, error) {
	cfg := a.config
	logger, logCloser := newLogger(cfg.App, a.logOutput)
	slog.SetDefault(logger)
	e := &env{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	logger.Info("Configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("content_path", cfg.Content.Path),
		slog.String("inclusion_tag", cfg.Content.InclusionTag),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	e.store = store
	if !store.Exists() {
		logger.Warn("content directory missing, catalog is empty",
			slog.String("path", store.Root()))
	}

	e.validator = validation.New(cfg.Content.InclusionTag,
		validation.WithLogger(logger),
		validation.WithVerbose(!cfg.App.Production()),
	)
	e.repo = catalog.NewRepository(store, e.validator,
		catalog.WithWorkers(cfg.Content.Workers),
		catalog.WithLogger(logger),
	)

	svcOpts := []songservice.Option{
		songservice.WithLogger(logger),
		songservice.WithSearchOptions(search.Options{
			Threshold:      cfg.Search.Threshold,
			MaxQueryLength: cfg.Search.MaxQueryLength,
		}),
		songservice.WithSuggestions(cfg.Search.Suggestions),
	}
	if withIndex {
		db, err := index.Open(cfg.SQLite.Path)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("init index: %w", err)
		}
		e.db = db
		e.closers = append(e.closers, db)
		svcOpts = append(svcOpts, songservice.WithIndex(db))
	}
	e.svc = songservice.New(e.repo, svcOpts...)
	return e, nil
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// newServerRouter mounts health checks and the API.
func newServerRouter(e *env, broker *sse.Broker) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if e.svc.BuildID() == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		healthOK(w, req)
	})

	r.Mount("/api", api.NewRouter(e.svc, e.cfg.Auth.AuthEnabled(), e.cfg.Auth.Token, broker))
	return r
}

// reloadAndPublish rebuilds the catalog and fans the differences out as
// SSE events.
func reloadAndPublish(ctx context.Context, e *env, broker *sse.Broker) {
	res, err := e.svc.Reload(ctx)
	if err != nil {
		e.logger.Error("catalog reload failed", slog.String("error", err.Error()))
		return
	}
	for _, ch := range res.Changes {
		broker.PublishSongEvent(string(ch.Kind), ch.ID)
	}
	broker.PublishReload(res.BuildID, res.Songs)
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	e, err := app.setup(true)
	if err != nil {
		return err
	}
	defer e.Close()
	cfg, logger := e.cfg, e.logger

	res, err := e.svc.Reload(ctx)
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	logger.Info("Catalog loaded", slog.Int("songs", res.Songs), slog.String("build_id", res.BuildID))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newServerRouter(e, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Content.Watch {
		g.Go(func() error {
			err := index.Watch(gCtx, e.store.Root(), logger, func(changes []index.Change) {
				logger.Debug("content changed", slog.Int("files", len(changes)))
				reloadAndPublish(gCtx, e, broker)
			})
			if err != nil {
				logger.Warn("content watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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
		defer signal.Stop(quit)

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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the run group once the server has been shut down so
// the watcher exits too.
var errShutdown = errors.New("shutdown")
