package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/graphblog/internal/docservice"
	"github.com/starford/graphblog/internal/graph"
	"github.com/starford/graphblog/internal/markdown"
	"github.com/starford/graphblog/internal/models"
	"github.com/starford/graphblog/internal/page"
	"github.com/starford/graphblog/internal/storage"
	"github.com/starford/graphblog/internal/testutil"
	"github.com/starford/graphblog/internal/watch"
)

type env struct {
	corpus string
	store  *storage.FS
	assets string
	out    string
	exp    *Exporter
}

func newEnv(t *testing.T, files map[string]string, patterns ...string) *env {
	t.Helper()
	corpus, store := testutil.Corpus(t, files)
	assets := t.TempDir()
	testutil.WriteFile(t, assets, "styles/default.css", "body{}")
	testutil.WriteFile(t, assets, "styles/themes/dark.css", "html{}")
	testutil.WriteFile(t, assets, "js/graph.js", "draw()")
	testutil.WriteFile(t, assets, "README.txt", "not an asset")

	builder := graph.NewBuilder(store, markdown.NewExtractor())
	svc := docservice.New(store, markdown.NewRenderer(), builder)
	out := filepath.Join(t.TempDir(), "dist")
	exp := New(svc, page.NewComposer(os.DirFS(assets)), Options{
		OutputPath: out,
		AssetsRoot: assets,
		Assets:     patterns,
	}, nil)
	return &env{corpus: corpus, store: store, assets: assets, out: out, exp: exp}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_WritesSite(t *testing.T) {
	e := newEnv(t, map[string]string{
		"hello_world.md": testutil.Doc("hello_world", "Hello", "[n](/nested)"),
		"a/nested.md":    testutil.Doc("nested", "Nested", "# Deep"),
		"broken.md":      "no metadata here",
	}, "styles/**/*.css", "js/*.js", "styles/default.css")

	report, err := e.exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, []string{"broken"}, report.Skipped)
	assert.Equal(t, 3, report.Assets)

	index := readFile(t, filepath.Join(e.out, "index.html"))
	assert.Contains(t, index, "var graph_data = ")
	assert.Contains(t, index, ">hello world</a>")

	var g models.Graph
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(e.out, "graph.json"))), &g))
	assert.Len(t, g.Nodes, 2)
	assert.Equal(t, []models.Link{{Source: "hello_world", Target: "nested"}}, g.Links)

	nested := readFile(t, filepath.Join(e.out, "a", "nested", "index.html"))
	assert.Contains(t, nested, `<h1 id="deep">Deep</h1>`)
	assert.FileExists(t, filepath.Join(e.out, "hello_world", "index.html"))
	assert.NoFileExists(t, filepath.Join(e.out, "broken", "index.html"))

	assert.Equal(t, "html{}", readFile(t, filepath.Join(e.out, "styles", "themes", "dark.css")))
	assert.FileExists(t, filepath.Join(e.out, "js", "graph.js"))
	assert.NoFileExists(t, filepath.Join(e.out, "README.txt"))
}

func TestRun_NoAssets(t *testing.T) {
	e := newEnv(t, map[string]string{"a.md": testutil.Doc("a", "A", "")})
	report, err := e.exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Assets)
	assert.Equal(t, 1, report.Pages)
}

func TestRun_BadPattern(t *testing.T) {
	e := newEnv(t, nil, "styles/[")
	_, err := e.exp.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_RequiresOutputPath(t *testing.T) {
	_, err := New(nil, nil, Options{}, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestWatch_ReexportsOnChange(t *testing.T) {
	e := newEnv(t, map[string]string{"a.md": testutil.Doc("a", "A", "")})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- e.exp.Watch(ctx, watch.New(e.store, watch.WithDebounce(20*time.Millisecond)))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(e.out, "a", "index.html"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	// Let the watcher register the corpus root before writing.
	time.Sleep(100 * time.Millisecond)
	testutil.WriteFile(t, e.corpus, "b.md", testutil.Doc("b", "B", ""))

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(e.out, "b", "index.html"))
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)
}
