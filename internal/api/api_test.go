package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/docservice"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/loader"
	"github.com/starford/raido/internal/storage"
)

// testEnv sets up a temp corpus, SQLite index, service, and router.
// An empty authToken means disabled auth.
func testEnv(t *testing.T, authToken string, files map[string]string) (http.Handler, string) {
	t.Helper()

	corpusDir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(corpusDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store, err := storage.NewFS(corpusDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "raido-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ldr := loader.New(store, loader.WithLogger(logger))
	if err := index.Sync(context.Background(), db, ldr, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	svc := docservice.NewService(store, db, ldr, logger)
	router := NewRouter(svc, authToken != "", authToken, nil, corpusDir)
	return router, corpusDir
}

func corpusFixture() map[string]string {
	return map[string]string{
		"sql/windows.md": "---\ntitle: SQL Window Functions\ndate: 2023-11-02\ntags:\n  - sql\n  - databases\n---\nA walkthrough of OVER and PARTITION BY.\n",
		"css/grid.mdx":   "---\ntitle: CSS Grid Tricks\ndate: 2024-02-10\ntags:\n  - css\n---\nSubgrid is finally everywhere.\n",
		"wip.md":         "---\ntitle: Unfinished\ndraft: true\n---\nNot ready.\n",
	}
}

func TestListDocuments_DraftsExcluded(t *testing.T) {
	router, _ := testEnv(t, "", corpusFixture())

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp DocumentListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(resp.Documents) != 2 {
		t.Fatalf("total = %d, docs = %v", resp.Total, resp.Documents)
	}
	// Default ordering is date descending.
	if resp.Documents[0].Path != "css/grid.mdx" || resp.Documents[1].Path != "sql/windows.md" {
		t.Errorf("order = %q, %q", resp.Documents[0].Path, resp.Documents[1].Path)
	}
}

func TestListDocuments_IncludeDrafts(t *testing.T) {
	router, _ := testEnv(t, "", corpusFixture())

	req := httptest.NewRequest(http.MethodGet, "/documents?include_drafts=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp DocumentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
}

func TestListDocuments_TagFilter(t *testing.T) {
	router, _ := testEnv(t, "", corpusFixture())

	req := httptest.NewRequest(http.MethodGet, "/documents?tag=css", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp DocumentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Documents[0].Path != "css/grid.mdx" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetDocument(t *testing.T) {
	router, _ := testEnv(t, "", corpusFixture())

	req := httptest.NewRequest(http.MethodGet, "/documents/sql/windows.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var doc DocumentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Title != "SQL Window Functions" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Date != "2023-11-02" {
		t.Errorf("date = %q", doc.Date)
	}
	if len(doc.Tags) != 2 {
		t.Errorf("tags = %v", doc.Tags)
	}
	if doc.Body == "" {
		t.Error("body should not be empty")
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	router, _ := testEnv(t, "", corpusFixture())

	req := httptest.NewRequest(http.MethodGet, "/documents/absent.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetDocument_Malformed(t *testing.T) {
	files := corpusFixture()
	files["broken.md"] = "---\ntitle: Broken\nno closing delimiter\n"
	router, _ := testEnv(t, "", files)

	req := httptest.NewRequest(http.MethodGet, "/documents/broken.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestSearch(t *testing.T) {
	router, _ := testEnv(t, "", corpusFixture())

	req := httptest.NewRequest(http.MethodGet, "/search?q=Subgrid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Path != "css/grid.mdx" {
		t.Errorf("results = %v", resp.Results)
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	router, _ := testEnv(t, "", corpusFixture())

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestTags(t *testing.T) {
	router, _ := testEnv(t, "", corpusFixture())

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp TagsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Tags) != 3 {
		t.Errorf("tags = %v, want css, databases, sql", resp.Tags)
	}
}

func TestReload_PicksUpNewFile(t *testing.T) {
	router, corpusDir := testEnv(t, "", corpusFixture())

	newFile := filepath.Join(corpusDir, "fresh.md")
	if err := os.WriteFile(newFile, []byte("---\ntitle: Fresh\ndate: 2025-01-01\n---\nNew post.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("reload status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp DocumentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3 after reload", resp.Total)
	}
}

func TestAuth_TokenRequired(t *testing.T) {
	router, _ := testEnv(t, "sekret", corpusFixture())

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("with token: status = %d, want 200", w.Code)
	}
}

func TestAssets_ServeAndTraversal(t *testing.T) {
	router, corpusDir := testEnv(t, "", corpusFixture())

	assetDir := filepath.Join(corpusDir, "assets")
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assetDir, "diagram.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/assets/diagram.svg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("asset status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/assets/..%2Fsql%2Fwindows.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusOK {
		t.Error("traversal should not be served")
	}
}
