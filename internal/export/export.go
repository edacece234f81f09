// Package export writes the whole site as static files.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/graphblog/internal/docservice"
	"github.com/starford/graphblog/internal/page"
	"github.com/starford/graphblog/internal/watch"
)

// Options controls what an export writes and where.
type Options struct {
	// OutputPath is the directory receiving the site. It is created if missing
	// and never cleaned: pages of deleted documents stay until removed by hand.
	OutputPath string
	// AssetsRoot is the directory asset patterns are matched against.
	AssetsRoot string
	// Assets are doublestar patterns relative to AssetsRoot, e.g. "styles/**/*.css".
	Assets []string
}

// Report summarizes one export.
type Report struct {
	Pages   int
	Skipped []string
	Assets  int
}

// Exporter renders every page through a docservice.Service.
type Exporter struct {
	svc      *docservice.Service
	composer *page.Composer
	opts     Options
	logger   *slog.Logger
}

// New creates an Exporter. A nil logger uses slog.Default.
func New(svc *docservice.Service, composer *page.Composer, opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{svc: svc, composer: composer, opts: opts, logger: logger}
}

// Run writes index.html with the graph inlined, graph.json, one
// <slug>/index.html per renderable document, and the matched assets.
// Documents that cannot be rendered are reported, not fatal.
func (e *Exporter) Run(ctx context.Context) (*Report, error) {
	out := e.opts.OutputPath
	if out == "" {
		return nil, errors.New("export: output path is required")
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}

	res, err := e.svc.Graph(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: build graph: %w", err)
	}
	slugs, err := e.svc.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: build index: %w", err)
	}

	if err := e.writePage(filepath.Join(out, "index.html"), page.IndexPage(res.Graph, slugs)); err != nil {
		return nil, err
	}
	graphJSON, err := json.Marshal(res.Graph)
	if err != nil {
		return nil, fmt.Errorf("export: encode graph: %w", err)
	}
	if err := os.WriteFile(filepath.Join(out, "graph.json"), graphJSON, 0o644); err != nil {
		return nil, fmt.Errorf("export: write graph: %w", err)
	}

	report := &Report{}
	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := e.svc.Document(ctx, slug)
		if err != nil {
			e.logger.Warn("export: document skipped",
				slog.String("slug", slug),
				slog.String("error", err.Error()))
			report.Skipped = append(report.Skipped, slug)
			continue
		}
		target := filepath.Join(out, filepath.FromSlash(slug), "index.html")
		if err := e.writePage(target, page.DocumentPage(doc)); err != nil {
			return nil, err
		}
		report.Pages++
	}

	n, err := e.copyAssets()
	if err != nil {
		return nil, err
	}
	report.Assets = n

	e.logger.Info("export: done",
		slog.String("output", out),
		slog.Int("pages", report.Pages),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("assets", report.Assets))
	return report, nil
}

// Watch exports once, then again after every batch of corpus changes until
// ctx is cancelled. A failed re-export is logged and the watch goes on.
func (e *Exporter) Watch(ctx context.Context, w *watch.Watcher) error {
	if _, err := e.Run(ctx); err != nil {
		return err
	}
	return w.Run(ctx, func(changes []watch.Change) {
		e.logger.Info("export: corpus changed", slog.Int("changes", len(changes)))
		if _, err := e.Run(ctx); err != nil {
			e.logger.Error("export: rebuild failed", slog.String("error", err.Error()))
		}
	})
}

func (e *Exporter) writePage(target string, p page.Page) error {
	var buf bytes.Buffer
	if err := e.composer.Write(&buf, p); err != nil {
		return fmt.Errorf("export: render %s: %w", target, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("export: create dir: %w", err)
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", target, err)
	}
	return nil
}

// copyAssets copies every file matching the asset patterns, keeping its path
// relative to the asset root. A file matched by several patterns is copied once.
func (e *Exporter) copyAssets() (int, error) {
	if len(e.opts.Assets) == 0 {
		return 0, nil
	}
	fsys := os.DirFS(e.opts.AssetsRoot)
	copied := make(map[string]bool)
	for _, pattern := range e.opts.Assets {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return 0, fmt.Errorf("export: asset pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if copied[m] {
				continue
			}
			if err := copyFile(filepath.Join(e.opts.AssetsRoot, filepath.FromSlash(m)), filepath.Join(e.opts.OutputPath, filepath.FromSlash(m))); err != nil {
				return 0, fmt.Errorf("export: copy %s: %w", m, err)
			}
			copied[m] = true
		}
	}
	return len(copied), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
