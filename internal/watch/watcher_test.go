package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/graphblog/internal/storage"
)

type collector struct {
	mu      sync.Mutex
	changes []Change
}

func (c *collector) handle(batch []Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, batch...)
}

func (c *collector) snapshot() []Change {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Change(nil), c.changes...)
}

func startWatcher(t *testing.T) (string, *collector) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root, ".md")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	c := &collector{}
	done := make(chan error, 1)
	go func() {
		done <- New(store, WithDebounce(30*time.Millisecond)).Run(ctx, c.handle)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give fsnotify time to register the root.
	time.Sleep(50 * time.Millisecond)
	return store.Root(), c
}

func TestMerge(t *testing.T) {
	cases := []struct {
		prev, next, want Op
	}{
		{"", Created, Created},
		{Created, Updated, Created},
		{Created, Deleted, ""},
		{Deleted, Created, Updated},
		{Updated, Deleted, Deleted},
		{Updated, Updated, Updated},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, merge(tc.prev, tc.next), "%q then %q", tc.prev, tc.next)
	}
}

func TestRun_ReportsCreateWithSlug(t *testing.T) {
	root, c := startWatcher(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "post.md"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(c.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	got := c.snapshot()
	assert.Equal(t, Change{Op: Created, Path: "post.md", Slug: "post"}, got[0])
}

func TestRun_ReportsDelete(t *testing.T) {
	root, c := startWatcher(t)
	p := filepath.Join(root, "gone.md")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	require.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(p))
	require.Eventually(t, func() bool {
		got := c.snapshot()
		return len(got) == 2 && got[1].Op == Deleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRun_WatchesNewDirectories(t *testing.T) {
	root, c := startWatcher(t)
	dir := filepath.Join(root, "notes")
	require.NoError(t, os.Mkdir(dir, 0o755))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inner.md"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		for _, ch := range c.snapshot() {
			if ch.Slug == "notes/inner" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}
