// Package graph builds the site graph from every decodable document in the corpus.
package graph

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/graphblog/internal/apperr"
	"github.com/starford/graphblog/internal/document"
	"github.com/starford/graphblog/internal/index"
	"github.com/starford/graphblog/internal/markdown"
	"github.com/starford/graphblog/internal/metrics"
	"github.com/starford/graphblog/internal/models"
	"github.com/starford/graphblog/internal/storage"
)

var ErrDraft = errors.New("document is a draft")

// Skip records one corpus file left out of the graph.
type Skip struct {
	Path string
	Slug string
	Err  error
}

// Reason is the kind of failure: an apperr kind, "draft" or "unknown".
func (s Skip) Reason() string {
	if errors.Is(s.Err, ErrDraft) {
		return "draft"
	}
	if k := apperr.KindOf(s.Err); k != "" {
		return string(k)
	}
	return "unknown"
}

// Duplicate records a document whose id was already taken by an earlier full
// node. Its links are in the graph; its metadata is not.
type Duplicate struct {
	Path string
	Slug string
	ID   string
}

// Result is a built graph plus the files that did not contribute to it and
// the documents that shared an id with an earlier one.
type Result struct {
	Graph      *models.Graph
	Skipped    []Skip
	Duplicates []Duplicate
}

// Option configures a Builder.
type Option func(*Builder)

// WithDrafts controls whether draft documents appear as full nodes. Default true.
func WithDrafts(include bool) Option {
	return func(b *Builder) {
		b.drafts = include
	}
}

// WithLogger sets the logger used for skip diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithMetrics sets the recorder for build counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}

// Builder walks a corpus and assembles the graph. It holds no state between
// builds and is safe for concurrent use.
type Builder struct {
	store     storage.Provider
	extractor *markdown.Extractor
	drafts    bool
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewBuilder creates a Builder reading from store.
func NewBuilder(store storage.Provider, extractor *markdown.Extractor, opts ...Option) *Builder {
	b := &Builder{
		store:     store,
		extractor: extractor,
		drafts:    true,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build reads every corpus file in slug order. Files that cannot be read,
// decoded or scanned are collected in Result.Skipped; Build itself fails only
// when the root cannot be walked or ctx is done.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	entries, err := index.Entries(b.store)
	if err != nil {
		return nil, err
	}

	nodes := newNodeSet()
	res := &Result{Graph: models.NewGraph()}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, links, err := b.load(e)
		if err == nil && doc.Metadata.Draft && !b.drafts {
			err = ErrDraft
		}
		if err != nil {
			b.skip(res, e, err)
			continue
		}
		if !nodes.addFull(doc.Metadata) {
			res.Duplicates = append(res.Duplicates, Duplicate{Path: e.Path, Slug: e.Slug, ID: doc.Metadata.ID})
			b.logger.Debug("duplicate id",
				slog.String("path", e.Path),
				slog.String("id", doc.Metadata.ID),
			)
		}
		for _, l := range links {
			nodes.addShallow(l.Target)
			res.Graph.Links = append(res.Graph.Links, l)
		}
	}
	res.Graph.Nodes = nodes.list

	elapsed := time.Since(start)
	b.metrics.ObserveGraphBuild(elapsed)
	b.logger.Debug("graph built",
		slog.Int("nodes", len(res.Graph.Nodes)),
		slog.Int("links", len(res.Graph.Links)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("duplicates", len(res.Duplicates)),
		slog.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (b *Builder) load(e index.Entry) (*models.Document, []models.Link, error) {
	raw, err := b.store.Read(e.Path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := document.Parse(e.Slug, raw)
	if err != nil {
		return nil, nil, err
	}
	links, err := b.extractor.Extract(doc.Body, doc.Metadata)
	if err != nil {
		return nil, nil, apperr.WithPath(err, e.Slug)
	}
	return doc, links, nil
}

func (b *Builder) skip(res *Result, e index.Entry, err error) {
	s := Skip{Path: e.Path, Slug: e.Slug, Err: err}
	res.Skipped = append(res.Skipped, s)
	b.metrics.DocumentSkipped(s.Reason())
	b.logger.Debug("document skipped",
		slog.String("path", e.Path),
		slog.String("reason", s.Reason()),
		slog.String("error", err.Error()),
	)
}
