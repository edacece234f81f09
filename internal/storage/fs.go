package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/graphblog/internal/apperr"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to corpus directory
	ext  string // document extension used by Resolve, e.g. ".md"
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root, ext string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, ext: ext}, nil
}

// Root returns the absolute corpus root.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the corpus root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes corpus root: %s", rel)
	}
	return abs, nil
}

// Walk recursively lists every regular file under the root, following
// symlinks that point at regular files. Unreadable entries below the root are
// left out; only a failure to walk the root itself is returned.
func (f *FS) Walk() ([]string, error) {
	var out []string
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == f.root {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(p)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: walk: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a corpus file. Failures are apperr io errors;
// a missing file also matches apperr.ErrNotFound.
func (f *FS) Read(rel string) ([]byte, error) {
	abs, err := f.safePath(rel)
	if err != nil {
		return nil, apperr.IO(rel, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.IO(rel, fmt.Errorf("%w: %w", apperr.ErrNotFound, err))
		}
		return nil, apperr.IO(rel, err)
	}
	return data, nil
}

// Resolve maps slug to its document path by appending the configured extension.
func (f *FS) Resolve(slug string) (string, error) {
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return "", fmt.Errorf("storage: empty slug")
	}
	rel := slug + f.ext
	if _, err := f.safePath(rel); err != nil {
		return "", err
	}
	return rel, nil
}

// Slug returns the slug of a root-relative path.
func (f *FS) Slug(rel string) string {
	return trimExt(filepath.ToSlash(rel))
}

// Slug returns path with the root prefix and the file extension removed,
// using forward slashes. Slug("md", "md/a/post.md") is "a/post".
func Slug(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		rel = p
	}
	return trimExt(filepath.ToSlash(rel))
}

func trimExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}
