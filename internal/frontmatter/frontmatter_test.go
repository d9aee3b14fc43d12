package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
)

func TestParse_TypedValues(t *testing.T) {
	input := []byte("---\ntitle: Hello World\ndate: 2024-03-15\ndraft: true\ntags:\n  - go\n  - web\n---\n# Hello\nBody text.\n")
	meta, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := meta.StringVal("title"); got != "Hello World" {
		t.Errorf("title = %q, want %q", got, "Hello World")
	}
	d, ok := meta.DateVal("date")
	if !ok {
		t.Fatalf("date kind = %v, want date", meta["date"].Kind)
	}
	if d.Format(DateLayout) != "2024-03-15" {
		t.Errorf("date = %s", d.Format(DateLayout))
	}
	if !meta.Draft() {
		t.Error("draft should be true")
	}
	tags, _ := meta.ListVal("tags")
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "web" {
		t.Errorf("tags = %v, want [go web]", tags)
	}
	if body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text with --- inline.\n")
	meta, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta) != 0 {
		t.Errorf("expected empty metadata, got %v", meta)
	}
	if body != string(input) {
		t.Errorf("body = %q", body)
	}
}

func TestParse_MissingClosingDelimiter(t *testing.T) {
	input := []byte("---\ntitle: Broken\ndate: 2024-01-01\n\n# Body never delimited\n")
	_, _, err := Parse(input)
	if !errors.Is(err, apperr.ErrMalformedFrontMatter) {
		t.Fatalf("err = %v, want ErrMalformedFrontMatter", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	_, _, err := Parse(input)
	if !errors.Is(err, apperr.ErrMalformedFrontMatter) {
		t.Fatalf("err = %v, want ErrMalformedFrontMatter", err)
	}
}

func TestParse_NestedMappingRejected(t *testing.T) {
	input := []byte("---\nauthor:\n  name: Alice\n---\nBody\n")
	_, _, err := Parse(input)
	if !errors.Is(err, apperr.ErrMalformedFrontMatter) {
		t.Fatalf("err = %v, want ErrMalformedFrontMatter", err)
	}
}

func TestParse_InvalidDateValue(t *testing.T) {
	input := []byte("---\ndate: 2024-99-99\n---\nBody\n")
	_, _, err := Parse(input)
	if !errors.Is(err, apperr.ErrMalformedFrontMatter) {
		t.Fatalf("err = %v, want ErrMalformedFrontMatter", err)
	}
}

func TestParse_QuotedDateCoerced(t *testing.T) {
	input := []byte("---\ndate: \"2024-03-15\"\n---\nBody\n")
	meta, _, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := meta.DateVal("date"); !ok {
		t.Errorf("quoted date should coerce to date kind, got %v", meta["date"].Kind)
	}
}

func TestParse_FlowSequence(t *testing.T) {
	input := []byte("---\ntags: ['a', 'b', 'a']\n---\n")
	meta, _, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags, _ := meta.ListVal("tags")
	// Duplicates are preserved as written, no implicit dedup.
	if len(tags) != 3 || tags[0] != "a" || tags[1] != "b" || tags[2] != "a" {
		t.Errorf("tags = %v, want [a b a]", tags)
	}
}

func TestParse_LoneScalarTagPromoted(t *testing.T) {
	input := []byte("---\ntags: networking\n---\n")
	meta, _, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags, ok := meta.ListVal("tags")
	if !ok || len(tags) != 1 || tags[0] != "networking" {
		t.Errorf("tags = %v, want [networking]", tags)
	}
}

func TestParse_NumbersStayStrings(t *testing.T) {
	input := []byte("---\nweight: 42\n---\n")
	meta, _, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := meta.StringVal("weight"); !ok || got != "42" {
		t.Errorf("weight = %v, want string \"42\"", meta["weight"])
	}
}

func TestParse_QuotedBoolStaysString(t *testing.T) {
	input := []byte("---\nnote: \"true\"\n---\n")
	meta, _, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := meta.StringVal("note"); !ok || got != "true" {
		t.Errorf("note = %v, want string \"true\"", meta["note"])
	}
}

func TestParse_HorizontalRuleIsBody(t *testing.T) {
	input := []byte("--- not a delimiter\ntext\n")
	meta, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta) != 0 || body != string(input) {
		t.Errorf("meta = %v, body = %q", meta, body)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	orig := Metadata{
		"title":   String("SQL Window Functions"),
		"date":    Date(time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)),
		"lastmod": Date(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)),
		"draft":   Bool(false),
		"summary": String("A walkthrough of OVER and PARTITION BY."),
		"tags":    List("sql", "databases", "sql"),
		"authors": List("alice"),
	}

	block, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	meta, body, err := Parse(block)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
	if !meta.Equal(orig) {
		t.Errorf("round-trip mismatch:\n got  %v\n want %v", meta, orig)
	}
}

func TestEncode_AmbiguousStringsQuoted(t *testing.T) {
	orig := Metadata{
		"alias":   String("2020-01-01"),
		"literal": String("true"),
	}
	block, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	meta, _, err := Parse(block)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if !meta.Equal(orig) {
		t.Errorf("round-trip mismatch: got %v, want %v", meta, orig)
	}
}

func TestValue_Equal(t *testing.T) {
	if !List("a", "b").Equal(List("a", "b")) {
		t.Error("identical lists should be equal")
	}
	if List("a", "b").Equal(List("b", "a")) {
		t.Error("list equality is order-sensitive")
	}
	if String("true").Equal(Bool(true)) {
		t.Error("kinds must match")
	}
}
