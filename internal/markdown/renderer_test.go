package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_BasicMarkdown(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("# Title\n\nSome *emphasis* and a [link](/other).\n")
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, html, "<em>emphasis</em>")
	assert.Contains(t, html, `<a href="/other">link</a>`)
}

func TestRender_StripsScript(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("Hello\n\n<script>alert(1)</script>\n\nBye\n")
	require.NoError(t, err)
	html := strings.ToLower(string(out))
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "alert(1)")
	assert.Contains(t, html, "hello")
	assert.Contains(t, html, "bye")
}

func TestRender_StripsEventHandlersAndJavascriptURLs(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("<img src=\"/a.png\" onerror=\"alert(1)\">\n\n[click](javascript:alert(1))\n")
	require.NoError(t, err)
	html := string(out)
	assert.NotContains(t, html, "onerror")
	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, `src="/a.png"`)
	assert.Contains(t, html, "click")
}

func TestRender_KeepsCodeBlockLanguage(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("```go\nfmt.Println(\"<b>\")\n```\n")
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, `<pre><code class="language-go">`)
	assert.Contains(t, html, "&lt;b&gt;")
}

func TestRender_GFMTable(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<table>")
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		`<p>Hello <a href="/x" onclick="evil()">x</a></p><script>alert(1)</script>`,
		`<h2 id="a-b">It's "quoted" &amp; fine</h2><pre><code class="language-rust">let x = 1 &lt; 2;</code></pre>`,
		`<img src="javascript:alert(1)"><iframe src="https://example.com"></iframe><em>ok</em>`,
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
		assert.NotContains(t, strings.ToLower(once), "<script")
	}
}

func TestRender_OutputIsSanitizeFixpoint(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("## Heading\n\n- [a](/a)\n- `code`\n\n<div onclick=\"x()\">raw</div>\n")
	require.NoError(t, err)
	assert.Equal(t, string(out), Sanitize(string(out)))
}
