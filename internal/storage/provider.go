// Package storage exposes the document corpus as a read-only file tree.
package storage

// Provider is the interface for read-only corpus access.
type Provider interface {
	// Walk returns the root-relative, slash-separated path of every regular
	// file under the corpus root.
	Walk() ([]string, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Resolve maps a slug to the root-relative path of its document file.
	Resolve(slug string) (string, error)
	// Slug returns the slug of a root-relative path.
	Slug(path string) string
}
