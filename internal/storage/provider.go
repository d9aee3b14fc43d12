// Package storage defines the corpus file-system abstraction.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the read-only interface for corpus file access. The corpus
// is mutated by editing files on disk, never through this interface.
type Provider interface {
	// List returns metadata for every content file under dir (relative to
	// the corpus root).
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the
	// corpus root).
	Read(path string) ([]byte, error)
	// Root returns the absolute corpus root directory.
	Root() string
	// Matches reports whether path has a content-file extension.
	Matches(path string) bool
}
