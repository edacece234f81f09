// Package page composes HTML pages from a closed set of blocks.
package page

import (
	"html/template"

	"github.com/starford/graphblog/internal/models"
)

// Block is one renderable piece of page chrome. The set of blocks is closed:
// only types in this package implement it.
type Block interface {
	block()
}

// Script inlines a JavaScript file read from the asset root.
type Script struct {
	Path string
}

// Stylesheet inlines a CSS file read from the asset root.
type Stylesheet struct {
	Path string
}

// AssetKind selects how an ExternalAsset is referenced.
type AssetKind int

const (
	CSS AssetKind = iota
	JS
)

// ExternalAsset references a stylesheet or script by URL.
type ExternalAsset struct {
	URL  string
	Kind AssetKind
}

// Meta renders the author, description, Open Graph and Twitter card tags and
// the page title.
type Meta struct {
	Metadata models.Metadata
}

// Markdown embeds an already sanitized document body.
type Markdown struct {
	HTML template.HTML
}

// Index is the no-script list of every document.
type Index struct {
	Slugs []string
}

// Icons links the favicon set under /assets.
type Icons struct{}

// Logo is the animated site logo linking home.
type Logo struct{}

// InlineData assigns Value, encoded as JSON, to a global script variable.
type InlineData struct {
	Name  string
	Value any
}

// Division wraps child blocks in a div.
type Division struct {
	ID       string
	Class    string
	Children []Block
}

func (Script) block()        {}
func (Stylesheet) block()    {}
func (ExternalAsset) block() {}
func (Meta) block()          {}
func (Markdown) block()      {}
func (Index) block()         {}
func (Icons) block()         {}
func (Logo) block()          {}
func (InlineData) block()    {}
func (Division) block()      {}

// Page is a complete document: blocks for the head and for the body.
type Page struct {
	Head []Block
	Body []Block
}
