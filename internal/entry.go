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

	"github.com/starford/graphblog/internal/api"
	"github.com/starford/graphblog/internal/docservice"
	"github.com/starford/graphblog/internal/export"
	"github.com/starford/graphblog/internal/graph"
	"github.com/starford/graphblog/internal/markdown"
	"github.com/starford/graphblog/internal/mcpserver"
	"github.com/starford/graphblog/internal/metrics"
	"github.com/starford/graphblog/internal/page"
	"github.com/starford/graphblog/internal/sse"
	"github.com/starford/graphblog/internal/storage"
	"github.com/starford/graphblog/internal/watch"
)

// components is the pipeline shared by every run mode.
type components struct {
	cfg      *Config
	logger   *slog.Logger
	store    *storage.FS
	metrics  *metrics.Metrics
	svc      *docservice.Service
	composer *page.Composer
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup builds the logger and the document pipeline from configuration.
func setup(app *application) (*components, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("corpus_path", cfg.Corpus.Path),
		slog.String("assets_path", cfg.Site.AssetsPath),
		slog.Bool("strict_links", cfg.Graph.StrictLinks),
		slog.Bool("drafts", cfg.Graph.Drafts),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// The corpus is read-only: a missing root is a configuration error.
	store, err := storage.NewFS(cfg.Corpus.Path, cfg.Corpus.Extension)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	m := metrics.New()
	extractor := markdown.NewExtractor(
		markdown.WithStrict(cfg.Graph.StrictLinks),
		markdown.WithMalformedHook(func(source, destination string) {
			logger.Debug("malformed link skipped",
				slog.String("source", source),
				slog.String("destination", destination))
		}),
	)
	builder := graph.NewBuilder(store, extractor,
		graph.WithDrafts(cfg.Graph.Drafts),
		graph.WithLogger(logger),
		graph.WithMetrics(m),
	)
	svc := docservice.New(store, markdown.NewRenderer(), builder,
		docservice.WithDrafts(cfg.Graph.Drafts),
		docservice.WithLogger(logger),
		docservice.WithMetrics(m),
	)

	return &components{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		metrics:  m,
		svc:      svc,
		composer: page.NewComposer(os.DirFS(cfg.Site.AssetsPath)),
	}, nil
}

// newHandler assembles the HTTP surface.
func newHandler(c *components, broker *sse.Broker) http.Handler {
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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", c.metrics.Handler())

	var events http.Handler
	if broker != nil {
		events = broker
	}
	r.Mount("/api", api.NewRouter(c.svc, events))
	r.Mount("/", api.NewSiteRouter(c.svc, c.composer, c.cfg.Site.AssetsPath))
	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := setup(app)
	if err != nil {
		return err
	}
	cfg, logger := c.cfg, c.logger

	// SSE broker fed by the corpus watcher.
	broker := sse.NewBroker(cfg.Events.Throttle())
	defer broker.Close()
	watcher := watch.New(c.store, watch.WithLogger(logger))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHandler(c, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; a watcher failure only disables live updates.
	g.Go(func() error {
		if err := watcher.Run(gCtx, broker.Notify); err != nil {
			logger.Warn("watcher failed", slog.String("error", err.Error()))
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
		waitForShutdown(gCtx, logger)
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ExportOptions overrides export settings from the command line.
type ExportOptions struct {
	OutputPath string
	Watch      bool
}

// RunExport writes the static site once, or keeps rewriting it on corpus
// changes when eo.Watch is set.
func RunExport(ctx context.Context, eo ExportOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := setup(app)
	if err != nil {
		return err
	}

	out := c.cfg.Export.OutputPath
	if eo.OutputPath != "" {
		out = eo.OutputPath
	}
	exp := export.New(c.svc, c.composer, export.Options{
		OutputPath: out,
		AssetsRoot: c.cfg.Site.AssetsPath,
		Assets:     c.cfg.Export.Assets,
	}, c.logger)

	if !eo.Watch {
		report, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		if len(report.Skipped) > 0 {
			c.logger.Warn("some documents were not exported", slog.Any("slugs", report.Skipped))
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return exp.Watch(ctx, watch.New(c.store, watch.WithLogger(c.logger)))
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to the configured log
// output, which must not be stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	c, err := setup(app)
	if err != nil {
		return err
	}
	c.logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc, app.version).ServeStdio()
}

func waitForShutdown(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}
