package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/models"
)

// DocRow represents a row in the documents table. Date and Lastmod hold
// ISO-8601 dates or the empty string when the front-matter omits them.
type DocRow struct {
	Path      string
	Title     string
	Date      string
	Lastmod   string
	Draft     bool
	Summary   string
	Checksum  string
	Tags      []string
	Authors   []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// TagCount is one entry in the tag histogram.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ListQuery selects and orders a page of documents.
type ListQuery struct {
	Limit         int
	Offset        int
	Tag           string
	IncludeDrafts bool
	Sort          string // "date" (default), "title", "path"
}

// RowFromDocument projects a parsed document onto its index row.
func RowFromDocument(d *models.Document) DocRow {
	row := DocRow{
		Path:      d.Path,
		Title:     d.Title(),
		Draft:     d.Draft(),
		Summary:   d.Summary(),
		Checksum:  d.Checksum,
		Tags:      d.Tags(),
		Authors:   d.Authors(),
		UpdatedAt: d.ModTime,
	}
	if dt, ok := d.Date(); ok {
		row.Date = dt.Format(frontmatter.DateLayout)
	}
	if lm, ok := d.Lastmod(); ok {
		row.Lastmod = lm.Format(frontmatter.DateLayout)
	}
	return row
}

// UpsertDocument inserts or replaces a document, its FTS entry, and its
// tag rows within a transaction.
func (db *DB) UpsertDocument(row DocRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(nonNil(row.Tags))
	authorsJSON, _ := json.Marshal(nonNil(row.Authors))

	_, err = tx.Exec(`
		INSERT INTO documents (path, title, date, lastmod, draft, summary, checksum, tags, authors, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			date       = excluded.date,
			lastmod    = excluded.lastmod,
			draft      = excluded.draft,
			summary    = excluded.summary,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			authors    = excluded.authors,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.Path, row.Title, row.Date, row.Lastmod, row.Draft, row.Summary,
		row.Checksum, string(tagsJSON), string(authorsJSON), body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path, row.Title, row.Summary, body, row.Tags); err != nil {
		return err
	}

	// Replace tag rows: delete old then bulk insert. The UNIQUE constraint
	// collapses in-document duplicates; the documents.tags JSON column keeps
	// the list as written.
	_, _ = tx.Exec(`DELETE FROM document_tags WHERE path = ?`, row.Path)
	if len(row.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO document_tags (path, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range row.Tags {
			if _, err := stmt.Exec(row.Path, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its FTS entry, and its tag rows.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM document_tags WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetDocument returns the indexed row for a path.
func (db *DB) GetDocument(path string) (*DocRow, error) {
	var (
		row         DocRow
		tagsJSON    string
		authorsJSON string
	)
	err := db.conn.QueryRow(`
		SELECT path, title, date, lastmod, draft, summary, checksum, tags, authors, updated_at
		FROM documents WHERE path = ?
	`, path).Scan(&row.Path, &row.Title, &row.Date, &row.Lastmod, &row.Draft,
		&row.Summary, &row.Checksum, &tagsJSON, &authorsJSON, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: document %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	_ = json.Unmarshal([]byte(tagsJSON), &row.Tags)
	_ = json.Unmarshal([]byte(authorsJSON), &row.Authors)
	return &row, nil
}

// GetChecksum returns the stored checksum for a document, or empty string
// if not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// ListDocuments returns a page of documents plus the total count matching
// the query. Drafts are excluded unless requested; undated documents sort
// after dated ones.
func (db *DB) ListDocuments(q ListQuery) ([]DocRow, int, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	where := `WHERE 1=1`
	args := []any{}
	if !q.IncludeDrafts {
		where += ` AND draft = 0`
	}
	if q.Tag != "" {
		where += ` AND EXISTS (SELECT 1 FROM document_tags t WHERE t.path = documents.path AND t.tag = ?)`
		args = append(args, q.Tag)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	var order string
	switch q.Sort {
	case "title":
		order = `title ASC, path ASC`
	case "path":
		order = `path ASC`
	default:
		order = `CASE WHEN date = '' THEN 1 ELSE 0 END, date DESC, path ASC`
	}

	args = append(args, q.Limit, q.Offset)
	rows, err := db.conn.Query(`
		SELECT path, title, date, lastmod, draft, summary, checksum, tags, authors, updated_at
		FROM documents `+where+` ORDER BY `+order+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocRow
	for rows.Next() {
		var (
			row         DocRow
			tagsJSON    string
			authorsJSON string
		)
		if err := rows.Scan(&row.Path, &row.Title, &row.Date, &row.Lastmod, &row.Draft,
			&row.Summary, &row.Checksum, &tagsJSON, &authorsJSON, &row.UpdatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &row.Tags)
		_ = json.Unmarshal([]byte(authorsJSON), &row.Authors)
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// Tags returns the tag histogram across non-draft documents, most used
// first.
func (db *DB) Tags() ([]TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT t.tag, count(*)
		FROM document_tags t
		JOIN documents d ON d.path = t.path
		WHERE d.draft = 0
		GROUP BY t.tag
		ORDER BY count(*) DESC, t.tag ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: tags: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// AllChecksums returns path -> checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
