package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArticle(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runList(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &buf
	err := cmd.Run(context.Background(), append([]string{"raido", "list"}, args...))
	return buf.String(), err
}

func TestList_PrintsDocuments(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "a.md", "---\ntitle: A\ndate: 2024-01-02\n---\nA body.\n")

	out, err := runList(t, "--dir", dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"path":"a.md"`) {
		t.Errorf("output = %q", out)
	}
}

func TestList_AllDraftsExitsZero(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "wip.md", "---\ntitle: WIP\ndraft: true\n---\nNot yet.\n")

	// Everything loaded fine; the draft filter emptying the output is not
	// an error.
	out, err := runList(t, "--dir", dir)
	if err != nil {
		t.Fatalf("all-drafts corpus should succeed: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("output should be empty without --include-drafts, got %q", out)
	}

	out, err = runList(t, "--dir", dir, "--include-drafts")
	if err != nil {
		t.Fatalf("list --include-drafts: %v", err)
	}
	if !strings.Contains(out, `"path":"wip.md"`) {
		t.Errorf("output = %q", out)
	}
}

func TestList_EmptyCorpusFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := runList(t, "--dir", dir); err == nil {
		t.Fatal("empty corpus should exit non-zero")
	}
}

func TestList_FailFast(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "good.md", "---\ntitle: Good\n---\nFine.\n")
	writeArticle(t, dir, "bad.md", "---\ntitle: Bad\nno closing fence\n")

	if _, err := runList(t, "--dir", dir, "--fail-fast"); err == nil {
		t.Fatal("fail-fast with a broken document should exit non-zero")
	}

	// Default policy skips the broken file and still prints the good one.
	out, err := runList(t, "--dir", dir)
	if err != nil {
		t.Fatalf("skip-and-report list: %v", err)
	}
	if !strings.Contains(out, `"path":"good.md"`) {
		t.Errorf("output = %q", out)
	}
}
