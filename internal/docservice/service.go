// Package docservice is the facade the outer surfaces (HTTP, export, MCP) use
// to reach the document pipeline.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/graphblog/internal/apperr"
	"github.com/starford/graphblog/internal/document"
	"github.com/starford/graphblog/internal/graph"
	"github.com/starford/graphblog/internal/index"
	"github.com/starford/graphblog/internal/markdown"
	"github.com/starford/graphblog/internal/metrics"
	"github.com/starford/graphblog/internal/models"
	"github.com/starford/graphblog/internal/storage"
)

var errDraftHidden = errors.New("draft documents are not published")

// Option configures a Service.
type Option func(*Service)

// WithDrafts controls whether draft documents can be retrieved. Default true.
func WithDrafts(include bool) Option {
	return func(s *Service) {
		s.drafts = include
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics sets the recorder for retrieval outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service reads documents through a storage.Provider. It keeps no cache:
// every call goes back to the corpus.
type Service struct {
	store    storage.Provider
	renderer *markdown.Renderer
	builder  *graph.Builder
	drafts   bool
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a Service.
func New(store storage.Provider, renderer *markdown.Renderer, builder *graph.Builder, opts ...Option) *Service {
	s := &Service{
		store:    store,
		renderer: renderer,
		builder:  builder,
		drafts:   true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source reads and decodes the document for slug without rendering it.
// A slug with no backing file fails with an error matching apperr.ErrNotFound.
func (s *Service) Source(ctx context.Context, slug string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := s.store.Resolve(slug)
	if err != nil {
		return nil, apperr.IO(slug, fmt.Errorf("%w: %w", apperr.ErrNotFound, err))
	}
	raw, err := s.store.Read(rel)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(slug, raw)
	if err != nil {
		return nil, err
	}
	if doc.Metadata.Draft && !s.drafts {
		return nil, apperr.IO(slug, fmt.Errorf("%w: %w", apperr.ErrNotFound, errDraftHidden))
	}
	return doc, nil
}

// Document returns the rendered document for slug. Failures are apperr
// errors of kind io (including not found) or metadata.
func (s *Service) Document(ctx context.Context, slug string) (*models.RenderedDocument, error) {
	doc, err := s.Source(ctx, slug)
	if err != nil {
		s.record(slug, err)
		return nil, err
	}
	html, err := s.renderer.Render(doc.Body)
	if err != nil {
		err = apperr.IO(slug, err)
		s.record(slug, err)
		return nil, err
	}
	s.record(slug, nil)
	return &models.RenderedDocument{Document: *doc, HTML: html}, nil
}

// Graph builds the site graph from the whole corpus.
func (s *Service) Graph(ctx context.Context) (*graph.Result, error) {
	return s.builder.Build(ctx)
}

// Index lists the slug of every corpus file in lexicographic order.
func (s *Service) Index(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return index.Build(s.store)
}

func (s *Service) record(slug string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNotFound):
		outcome = "not_found"
	case apperr.KindOf(err) != "":
		outcome = string(apperr.KindOf(err))
	default:
		outcome = "unknown"
	}
	s.metrics.DocumentRendered(outcome)
	if err != nil {
		s.logger.Debug("document unavailable",
			slog.String("slug", slug),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()),
		)
	}
}
