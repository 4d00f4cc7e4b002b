// Package content defines the portfolio works served by folio.
package content

import (
	"html/template"
	"time"
)

// Kind is the form of a work.
type Kind string

const (
	KindProse  Kind = "prose"
	KindPoetry Kind = "poetry"
	KindEbook  Kind = "ebook"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindProse, KindPoetry, KindEbook:
		return true
	}
	return false
}

// Label is the human name used in listings.
func (k Kind) Label() string {
	switch k {
	case KindPoetry:
		return "Poetry"
	case KindEbook:
		return "Ebook"
	default:
		return "Prose"
	}
}

// Work is one published piece. ID is stable and keys the engagement record;
// Slug is the URL segment.
type Work struct {
	ID         string
	Slug       string
	Title      string
	Kind       Kind
	Summary    string
	Cover      string // path relative to the media directory, may be empty
	Published  time.Time
	Draft      bool
	SourcePath string
	ModTime    time.Time
	Body       template.HTML // sanitized HTML rendered from markdown
}

// HasCover reports whether the work declares a cover image.
func (w *Work) HasCover() bool {
	return w.Cover != ""
}
