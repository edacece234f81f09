// Package models defines the domain types shared by the pipeline and its collaborators.
package models

import (
	"html/template"

	"github.com/pelletier/go-toml/v2"
)

// Metadata is the decoded frontmatter block of a document.
type Metadata struct {
	Title       string         `toml:"title" json:"title"`
	ID          string         `toml:"id" json:"id"`
	Author      string         `toml:"author" json:"author"`
	Description string         `toml:"description" json:"description"`
	Date        toml.LocalDate `toml:"date" json:"date"`
	Tag         string         `toml:"tag" json:"tag"`
	Image       string         `toml:"image" json:"image"`
	Icon        string         `toml:"icon" json:"icon"`
	Draft       bool           `toml:"draft" json:"draft"`
}

// Document is a source file split into decoded metadata and markdown body.
type Document struct {
	Slug     string   `json:"slug"`
	Metadata Metadata `json:"metadata"`
	Body     string   `json:"body"`
	Checksum string   `json:"checksum"`
}

// RenderedDocument is a Document whose body has been rendered to sanitized HTML.
// HTML is already escaped and must not be escaped again by templates.
type RenderedDocument struct {
	Document
	HTML template.HTML `json:"html"`
}
