// Package models defines the domain types for Raido.
package models

import (
	"time"

	"github.com/starford/raido/internal/frontmatter"
)

// Document represents one parsed content file in the corpus. Path is the
// identity: the file location relative to the corpus root, with forward
// slashes.
type Document struct {
	Path     string               `json:"path"`
	Meta     frontmatter.Metadata `json:"-"`
	Body     string               `json:"body,omitempty"`
	Checksum string               `json:"checksum"`
	ModTime  time.Time            `json:"mod_time"`
}

// Title returns the front-matter title, or empty string.
func (d *Document) Title() string {
	t, _ := d.Meta.StringVal("title")
	return t
}

// Date returns the publication date and whether one is present.
func (d *Document) Date() (time.Time, bool) {
	return d.Meta.DateVal("date")
}

// Lastmod returns the last-modified date and whether one is present.
func (d *Document) Lastmod() (time.Time, bool) {
	return d.Meta.DateVal("lastmod")
}

// Tags returns the tag list as written, duplicates preserved.
func (d *Document) Tags() []string {
	tags, _ := d.Meta.ListVal("tags")
	return tags
}

// Authors returns the author list.
func (d *Document) Authors() []string {
	authors, _ := d.Meta.ListVal("authors")
	return authors
}

// Summary returns the front-matter summary, or empty string.
func (d *Document) Summary() string {
	s, _ := d.Meta.StringVal("summary")
	return s
}

// Draft reports the draft flag; absent means published.
func (d *Document) Draft() bool {
	return d.Meta.Draft()
}

// FileMetadata is a lightweight representation returned by storage list
// operations, before any parsing.
type FileMetadata struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}
