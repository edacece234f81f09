package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"regexp"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Composer renders blocks. Script and Stylesheet contents are read from the
// asset filesystem on every render.
type Composer struct {
	assets fs.FS
	tmpl   *template.Template
}

// NewComposer returns a Composer reading inlined files from assets.
func NewComposer(assets fs.FS) *Composer {
	return &Composer{
		assets: assets,
		tmpl:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

type indexItem struct {
	Href string
	Text string
}

type division struct {
	ID    string
	Class string
	Inner template.HTML
}

type inlineData struct {
	Name  template.JS
	Value any
}

// Render writes one block.
func (c *Composer) Render(w io.Writer, b Block) error {
	switch b := b.(type) {
	case Script:
		data, err := c.readAsset(b.Path)
		if err != nil {
			return c.exec(w, "missing", b.Path)
		}
		return c.exec(w, "script", template.JS(data))
	case Stylesheet:
		data, err := c.readAsset(b.Path)
		if err != nil {
			return c.exec(w, "missing", b.Path)
		}
		return c.exec(w, "stylesheet", template.CSS(data))
	case ExternalAsset:
		if b.Kind == JS {
			return c.exec(w, "external_js", b.URL)
		}
		return c.exec(w, "external_css", b.URL)
	case Meta:
		return c.exec(w, "meta", b.Metadata)
	case Markdown:
		return c.exec(w, "markdown", b.HTML)
	case Index:
		items := make([]indexItem, len(b.Slugs))
		for i, slug := range b.Slugs {
			items[i] = indexItem{Href: "/" + slug, Text: strings.ReplaceAll(slug, "_", " ")}
		}
		return c.exec(w, "index", items)
	case Icons:
		return c.exec(w, "icons", nil)
	case Logo:
		return c.exec(w, "logo", nil)
	case InlineData:
		if !identPattern.MatchString(b.Name) {
			return fmt.Errorf("page: invalid variable name %q", b.Name)
		}
		return c.exec(w, "inline_data", inlineData{Name: template.JS(b.Name), Value: b.Value})
	case Division:
		inner, err := c.renderAll(b.Children)
		if err != nil {
			return err
		}
		return c.exec(w, "division", division{ID: b.ID, Class: b.Class, Inner: inner})
	default:
		return fmt.Errorf("page: unknown block %T", b)
	}
}

// Write renders a complete HTML document.
func (c *Composer) Write(w io.Writer, p Page) error {
	head, err := c.renderAll(p.Head)
	if err != nil {
		return err
	}
	body, err := c.renderAll(p.Body)
	if err != nil {
		return err
	}
	return c.exec(w, "layout", struct {
		Head template.HTML
		Body template.HTML
	}{head, body})
}

func (c *Composer) renderAll(blocks []Block) (template.HTML, error) {
	var buf bytes.Buffer
	for _, b := range blocks {
		if err := c.Render(&buf, b); err != nil {
			return "", err
		}
	}
	return template.HTML(buf.String()), nil
}

func (c *Composer) exec(w io.Writer, name string, data any) error {
	if err := c.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("page: render %s: %w", name, err)
	}
	return nil
}

func (c *Composer) readAsset(p string) ([]byte, error) {
	if c.assets == nil {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(c.assets, strings.TrimPrefix(p, "/"))
}
