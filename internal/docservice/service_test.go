package docservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/loader"
	"github.com/starford/raido/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testService(t *testing.T) (*Service, string) {
	t.Helper()
	corpusDir, store := testutil.TestCorpus(t)
	db := testutil.TestDB(t)
	ldr := loader.New(store, loader.WithLogger(quietLogger()))
	return NewService(store, db, ldr, quietLogger()), corpusDir
}

func TestGetDocument(t *testing.T) {
	svc, corpusDir := testService(t)
	testutil.WriteArticle(t, corpusDir, "sql/windows.md",
		"---\ntitle: Window Functions\ndate: 2024-03-15\ntags: [sql, databases]\n---\nBody text.\n")

	d, err := svc.GetDocument(context.Background(), "sql/windows.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if d.Title != "Window Functions" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Date != "2024-03-15" {
		t.Errorf("date = %q", d.Date)
	}
	if len(d.Tags) != 2 || d.Tags[0] != "sql" {
		t.Errorf("tags = %v", d.Tags)
	}
	if d.Body != "Body text.\n" {
		t.Errorf("body = %q", d.Body)
	}
	if d.Checksum == "" {
		t.Error("checksum should be set")
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.GetDocument(context.Background(), "missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetDocument_Malformed(t *testing.T) {
	svc, corpusDir := testService(t)
	testutil.WriteArticle(t, corpusDir, "broken.md", "---\ntitle: Broken\nno closing fence\n")

	_, err := svc.GetDocument(context.Background(), "broken.md")
	if !errors.Is(err, apperr.ErrMalformedFrontMatter) {
		t.Errorf("err = %v, want ErrMalformedFrontMatter", err)
	}
}

func TestReloadThenList(t *testing.T) {
	svc, corpusDir := testService(t)
	testutil.WriteArticle(t, corpusDir, "a.md", "---\ntitle: A\ndate: 2024-01-02\n---\nA.\n")
	testutil.WriteArticle(t, corpusDir, "b.md", "---\ntitle: B\ndraft: true\n---\nB.\n")

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	items, total, err := svc.ListDocuments(context.Background(), index.ListQuery{Limit: 10})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("total = %d, items = %d, want 1 published", total, len(items))
	}
	if items[0].Path != "a.md" {
		t.Errorf("path = %q", items[0].Path)
	}

	items, _, err = svc.ListDocuments(context.Background(), index.ListQuery{Limit: 10, IncludeDrafts: true})
	if err != nil {
		t.Fatalf("ListDocuments drafts: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("items = %d, want 2 with drafts", len(items))
	}
}

func TestTagsAfterReload(t *testing.T) {
	svc, corpusDir := testService(t)
	testutil.WriteArticle(t, corpusDir, "a.md", "---\ntags: [go, web]\n---\nA.\n")
	testutil.WriteArticle(t, corpusDir, "b.md", "---\ntags: [go]\n---\nB.\n")

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	tags, err := svc.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("tags = %v", tags)
	}
	if tags[0].Tag != "go" || tags[0].Count != 2 {
		t.Errorf("top tag = %+v, want go/2", tags[0])
	}
}
