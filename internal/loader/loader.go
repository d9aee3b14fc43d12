// Package loader turns a corpus directory into an ordered collection of
// parsed documents.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Policy controls how per-file failures are handled during a load.
type Policy int

const (
	// PolicySkipAndReport collects failing files in Collection.Skipped and
	// keeps loading. This is the default.
	PolicySkipAndReport Policy = iota
	// PolicyFailFast aborts the load on the first file-level error.
	PolicyFailFast
)

const defaultParallelism = 8

// Loader reads and parses every content file under a corpus root.
type Loader struct {
	store       storage.Provider
	logger      *slog.Logger
	policy      Policy
	required    []string
	parallelism int
}

// Option is a functional option for configuring a Loader.
type Option func(*Loader)

// WithPolicy sets the per-file failure policy.
func WithPolicy(p Policy) Option {
	return func(l *Loader) { l.policy = p }
}

// WithRequiredFields enables strict mode: documents missing any of the
// given front-matter keys fail with apperr.ErrMissingRequiredField.
func WithRequiredFields(keys ...string) Option {
	return func(l *Loader) { l.required = keys }
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithParallelism caps the number of concurrent file reads.
func WithParallelism(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.parallelism = n
		}
	}
}

// New creates a Loader over the given storage provider.
func New(store storage.Provider, opts ...Option) *Loader {
	l := &Loader{
		store:       store,
		logger:      slog.Default(),
		parallelism: defaultParallelism,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Collection is the result of a load: successfully parsed documents in
// path order, plus the per-file errors of skipped documents. A skipped
// file is always reported, never silently dropped.
type Collection struct {
	Documents []models.Document
	Skipped   []*apperr.FileError
}

// Load reads every content file under the corpus root, parses its
// front-matter, and returns the collection ordered by path. File reads run
// concurrently; ordering never depends on completion order. Under
// PolicyFailFast the first file-level error aborts the load and no partial
// collection is returned.
func (l *Loader) Load(ctx context.Context) (*Collection, error) {
	metas, err := l.store.List("")
	if err != nil {
		return nil, err
	}

	docs := make([]*models.Document, len(metas))
	fileErrs := make([]*apperr.FileError, len(metas))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)

	for i, meta := range metas {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := l.loadOne(meta)
			if err != nil {
				ferr := &apperr.FileError{Path: meta.Path, Err: err}
				if l.policy == PolicyFailFast {
					return ferr
				}
				l.logger.Warn("load: skipped",
					slog.String("path", meta.Path),
					slog.String("reason", err.Error()))
				fileErrs[i] = ferr
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// metas is already sorted by path; compacting by index keeps that order
	// regardless of which goroutine finished first.
	col := &Collection{}
	for i := range metas {
		if docs[i] != nil {
			col.Documents = append(col.Documents, *docs[i])
		}
		if fileErrs[i] != nil {
			col.Skipped = append(col.Skipped, fileErrs[i])
		}
	}
	return col, nil
}

func (l *Loader) loadOne(meta models.FileMetadata) (*models.Document, error) {
	data, err := l.store.Read(meta.Path)
	if err != nil {
		return nil, err
	}
	fm, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}
	for _, key := range l.required {
		if _, ok := fm[key]; !ok {
			return nil, fmt.Errorf("%w: %s", apperr.ErrMissingRequiredField, key)
		}
	}
	return &models.Document{
		Path:     meta.Path,
		Meta:     fm,
		Body:     body,
		Checksum: meta.Checksum,
		ModTime:  meta.ModTime,
	}, nil
}

// Filter returns the documents satisfying pred, in order. Pure, no I/O.
func Filter(docs []models.Document, pred func(*models.Document) bool) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for i := range docs {
		if pred(&docs[i]) {
			out = append(out, docs[i])
		}
	}
	return out
}

// NotDraft is the predicate that excludes draft documents.
func NotDraft(d *models.Document) bool {
	return !d.Draft()
}

// HasTag returns a predicate matching documents carrying the given tag.
func HasTag(tag string) func(*models.Document) bool {
	return func(d *models.Document) bool {
		for _, t := range d.Tags() {
			if t == tag {
				return true
			}
		}
		return false
	}
}

// SortByDate returns a copy of docs stably sorted on the named date field
// (typically "date"). Documents whose field is missing or not a date sort
// last; ties keep their original relative order.
func SortByDate(docs []models.Document, field string, descending bool) []models.Document {
	out := make([]models.Document, len(docs))
	copy(out, docs)
	sort.SliceStable(out, func(i, j int) bool {
		di, iok := out[i].Meta.DateVal(field)
		dj, jok := out[j].Meta.DateVal(field)
		if iok != jok {
			return iok // dated documents before undated ones
		}
		if !iok {
			return false
		}
		if descending {
			return di.After(dj)
		}
		return di.Before(dj)
	})
	return out
}
