// Package watch reports corpus file changes. It only notifies: consumers
// rebuild whatever they need from the corpus.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change observed for a file.
type Op string

const (
	Created Op = "created"
	Updated Op = "updated"
	Deleted Op = "deleted"
)

// Change is one settled file change.
type Change struct {
	Op   Op
	Path string // root-relative, slash-separated
	Slug string
}

// Handler receives each debounced batch of changes, ordered by path.
type Handler func([]Change)

// Corpus is the part of the document store the watcher needs.
type Corpus interface {
	Root() string
	Slug(rel string) string
}

const defaultDebounce = 200 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the watcher waits for a burst of events to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// Watcher follows every directory under the corpus root.
type Watcher struct {
	corpus   Corpus
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher for corpus.
func New(corpus Corpus, opts ...Option) *Watcher {
	w := &Watcher{
		corpus:   corpus,
		debounce: defaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. Directories created while running are
// added to the watch list and the files already inside them reported as
// created. A rename is reported as a deletion of the old path; the new path
// arrives as its own create event.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	root := w.corpus.Root()
	if err := addDirsRecursive(fw, root); err != nil {
		return err
	}
	w.logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]Op)
	var timer *time.Timer
	var timerCh <-chan time.Time

	record := func(abs string, op Op) {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return
		}
		rel = filepath.ToSlash(rel)
		pending[rel] = merge(pending[rel], op)
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if batch := w.flush(pending); len(batch) > 0 && fn != nil {
				fn(batch)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			switch {
			case ev.Op&fsnotify.Create != 0:
				info, statErr := os.Stat(ev.Name)
				if statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						w.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					walkFiles(ev.Name, func(p string) { record(p, Created) })
					continue
				}
				record(ev.Name, Created)
			case ev.Op&fsnotify.Write != 0:
				record(ev.Name, Updated)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				record(ev.Name, Deleted)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) flush(pending map[string]Op) []Change {
	batch := make([]Change, 0, len(pending))
	for rel, op := range pending {
		if op == "" {
			continue
		}
		batch = append(batch, Change{Op: op, Path: rel, Slug: w.corpus.Slug(rel)})
	}
	clear(pending)
	slices.SortFunc(batch, func(a, b Change) int {
		return strings.Compare(a.Path, b.Path)
	})
	for _, c := range batch {
		w.logger.Debug("watcher: change", slog.String("path", c.Path), slog.String("op", string(c.Op)))
	}
	return batch
}

// merge folds a new event into the pending op for one path. A file created
// and removed within one window produces nothing.
func merge(prev, next Op) Op {
	switch {
	case prev == "":
		return next
	case prev == Created && next == Updated:
		return Created
	case prev == Created && next == Deleted:
		return ""
	case prev == Deleted && next == Created:
		return Updated
	}
	return next
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

func walkFiles(dir string, fn func(string)) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		fn(path)
		return nil
	})
}
