// Package index projects the corpus directory listing onto document slugs.
// It does not parse files: every walked file yields a slug, valid or not.
package index

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/starford/graphblog/internal/storage"
)

// Entry is one walked corpus file.
type Entry struct {
	Path string // root-relative, slash-separated
	Slug string
}

// Entries walks the corpus and returns its files ordered by slug, then path.
// Sorting replaces the filesystem's traversal order so output is reproducible.
func Entries(store storage.Provider) ([]Entry, error) {
	paths, err := store.Walk()
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, Entry{Path: p, Slug: store.Slug(p)})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Or(strings.Compare(a.Slug, b.Slug), strings.Compare(a.Path, b.Path))
	})
	return entries, nil
}

// Build returns one slug per corpus file, in slug order. It fails only when
// the corpus root cannot be walked.
func Build(store storage.Provider) ([]string, error) {
	entries, err := Entries(store)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(entries))
	for i, e := range entries {
		slugs[i] = e.Slug
	}
	return slugs, nil
}
