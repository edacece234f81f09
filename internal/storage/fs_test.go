package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/starford/graphblog/internal/apperr"
)

func tempCorpus(t *testing.T, files map[string]string) *FS {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := NewFS(dir, ".md")
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestRead(t *testing.T) {
	s := tempCorpus(t, map[string]string{"note.md": "# Hello\nWorld\n"})
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\nWorld\n" {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := tempCorpus(t, nil)
	_, err := s.Read("missing.md")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, apperr.ErrIO) {
		t.Errorf("expected io kind, got %v", err)
	}
}

func TestWalkListsEveryRegularFile(t *testing.T) {
	s := tempCorpus(t, map[string]string{
		"a.md":        "a",
		"sub/b.md":    "b",
		"readme.txt":  "not md",
		"deep/x/y.md": "y",
	})
	paths, err := s.Walk()
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sort.Strings(paths)
	want := []string{"a.md", "deep/x/y.md", "readme.txt", "sub/b.md"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestWalkFollowsFileSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	s := tempCorpus(t, map[string]string{"real.md": "r"})
	if err := os.Symlink(filepath.Join(s.Root(), "real.md"), filepath.Join(s.Root(), "link.md")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(s.Root(), "nowhere.md"), filepath.Join(s.Root(), "dangling.md")); err != nil {
		t.Fatal(err)
	}
	paths, err := s.Walk()
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sort.Strings(paths)
	if len(paths) != 2 || paths[0] != "link.md" || paths[1] != "real.md" {
		t.Errorf("paths = %v", paths)
	}
}

func TestWalkRootRemoved(t *testing.T) {
	s := tempCorpus(t, nil)
	if err := os.RemoveAll(s.Root()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Walk(); err == nil {
		t.Error("expected error walking a removed root")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempCorpus(t, nil)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
	if _, err := s.Resolve("../../etc/passwd"); err == nil {
		t.Error("expected Resolve to reject traversal")
	}
}

func TestResolveAndSlug(t *testing.T) {
	s := tempCorpus(t, nil)
	rel, err := s.Resolve("/a/post")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rel != "a/post.md" {
		t.Errorf("Resolve = %q", rel)
	}
	if got := s.Slug("a/post.md"); got != "a/post" {
		t.Errorf("Slug = %q", got)
	}
	if _, err := s.Resolve(""); err == nil {
		t.Error("expected error for empty slug")
	}
}

func TestSlugStripsRootAndExtension(t *testing.T) {
	cases := []struct{ root, path, want string }{
		{"md", "md/a/post.md", "a/post"},
		{"md", "md/top.md", "top"},
		{"md/", "md/notes.txt", "notes"},
		{"corpus", "corpus/no_ext", "no_ext"},
		{"corpus", "corpus/v1.2/file.md", "v1.2/file"},
	}
	for _, c := range cases {
		if got := Slug(c.root, c.path); got != c.want {
			t.Errorf("Slug(%q, %q) = %q, want %q", c.root, c.path, got, c.want)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/graphblog-does-not-exist-"+t.Name(), ".md")
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "graphblog-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name(), ".md")
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
