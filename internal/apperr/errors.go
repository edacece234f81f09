// Package apperr defines the error kinds surfaced by the document pipeline.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrIO        = errors.New("io error")
	ErrMetadata  = errors.New("metadata error")
	ErrReference = errors.New("reference error")
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindIO        Kind = "io"
	KindMetadata  Kind = "metadata"
	KindReference Kind = "reference"
)

// Error is a structured pipeline error tied to a single corpus file.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrMetadata)
// works without callers type-asserting.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == KindIO
	case ErrMetadata:
		return e.Kind == KindMetadata
	case ErrReference:
		return e.Kind == KindReference
	}
	return false
}

// IO wraps a read failure for path.
func IO(path string, err error) *Error {
	return &Error{Kind: KindIO, Path: path, Err: err}
}

// Metadata wraps a frontmatter failure for path.
func Metadata(path string, err error) *Error {
	return &Error{Kind: KindMetadata, Path: path, Err: err}
}

// Reference wraps a malformed link target found in path.
func Reference(path string, err error) *Error {
	return &Error{Kind: KindReference, Path: path, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// WithPath returns err with its path set, if it is an *Error without one.
func WithPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		return &Error{Kind: e.Kind, Path: path, Err: e.Err}
	}
	return err
}
