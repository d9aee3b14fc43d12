// Package docservice exposes read-only corpus operations to the API and
// MCP layers. The corpus itself is only ever mutated on disk; this service
// never writes content.
package docservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/loader"
	"github.com/starford/raido/internal/storage"
)

// DocumentDetail is the full representation of a document.
type DocumentDetail struct {
	Path      string         `json:"path"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Date      string         `json:"date,omitempty"`
	Lastmod   string         `json:"lastmod,omitempty"`
	Draft     bool           `json:"draft"`
	Summary   string         `json:"summary,omitempty"`
	Tags      []string       `json:"tags"`
	Authors   []string       `json:"authors,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Checksum  string         `json:"checksum"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Date      string    `json:"date,omitempty"`
	Draft     bool      `json:"draft"`
	Summary   string    `json:"summary,omitempty"`
	Tags      []string  `json:"tags"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage, loader, and index operations.
type Service struct {
	store  storage.Provider
	db     *index.DB
	ldr    *loader.Loader
	logger *slog.Logger
}

// NewService creates a new document service.
func NewService(store storage.Provider, db *index.DB, ldr *loader.Loader, logger *slog.Logger) *Service {
	return &Service{store: store, db: db, ldr: ldr, logger: logger}
}

// GetDocument reads a document from storage and parses it. The error is
// apperr.ErrNotFound for missing paths and apperr.ErrMalformedFrontMatter
// for unparseable ones.
func (s *Service) GetDocument(_ context.Context, path string) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}

	d := &DocumentDetail{
		Path:     path,
		Body:     body,
		Draft:    meta.Draft(),
		Tags:     nonNilSlice(tagsOf(meta)),
		Metadata: meta.Plain(),
		Checksum: checksum.Sum(data),
	}
	d.Title, _ = meta.StringVal("title")
	d.Summary, _ = meta.StringVal("summary")
	d.Authors, _ = meta.ListVal("authors")
	if dt, ok := meta.DateVal("date"); ok {
		d.Date = dt.Format(frontmatter.DateLayout)
	}
	if lm, ok := meta.DateVal("lastmod"); ok {
		d.Lastmod = lm.Format(frontmatter.DateLayout)
	}
	if row, rowErr := s.db.GetDocument(path); rowErr == nil {
		d.UpdatedAt = row.UpdatedAt
	}
	return d, nil
}

// ListDocuments returns a page of indexed documents.
func (s *Service) ListDocuments(_ context.Context, q index.ListQuery) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocuments(q)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			Path:      r.Path,
			Title:     r.Title,
			Date:      r.Date,
			Draft:     r.Draft,
			Summary:   r.Summary,
			Tags:      nonNilSlice(r.Tags),
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Tags returns the corpus tag histogram.
func (s *Service) Tags(_ context.Context) ([]index.TagCount, error) {
	return s.db.Tags()
}

// Reload runs a full sync pass against the corpus directory.
func (s *Service) Reload(ctx context.Context) error {
	return index.Sync(ctx, s.db, s.ldr, s.logger)
}

func tagsOf(meta frontmatter.Metadata) []string {
	tags, _ := meta.ListVal("tags")
	return tags
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
