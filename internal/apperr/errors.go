// Package apperr defines the sentinel errors shared across the application.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing corpus root or document.
	ErrNotFound = errors.New("not found")
	// ErrMalformedFrontMatter reports an unterminated or undecodable
	// front-matter block.
	ErrMalformedFrontMatter = errors.New("malformed front matter")
	// ErrMissingRequiredField reports a required front-matter key absent
	// under strict loading.
	ErrMissingRequiredField = errors.New("missing required field")
)

// FileError attaches a document path to a per-file load failure.
type FileError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying sentinel for errors.Is checks.
func (e *FileError) Unwrap() error {
	return e.Err
}
