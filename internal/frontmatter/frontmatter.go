// Package frontmatter parses and serializes the YAML front-matter dialect
// used by corpus documents: string scalars, booleans, ISO-8601 dates, and
// sequences of strings between leading --- delimiters.
package frontmatter

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/apperr"
)

// DateLayout is the calendar date format accepted in front-matter values.
const DateLayout = "2006-01-02"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Kind discriminates the variants of a metadata value.
type Kind int

// Metadata value kinds.
const (
	KindString Kind = iota
	KindBool
	KindDate
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Value is one front-matter value as a tagged variant. Exactly the field
// selected by Kind is meaningful.
type Value struct {
	Kind Kind
	Str  string
	Bool bool
	Date time.Time
	List []string
}

// String constructs a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Bool constructs a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Date constructs a date value.
func Date(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

// List constructs a list-of-strings value. Order and duplicates are
// preserved as written.
func List(items ...string) Value { return Value{Kind: KindList, List: items} }

// Equal reports structural equality between two values.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	case KindDate:
		return v.Date.Equal(o.Date)
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	}
	return false
}

// Scalar returns the value rendered as a single string, for logging and
// JSON output of untyped consumers.
func (v Value) Scalar() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindDate:
		return v.Date.Format(DateLayout)
	case KindList:
		return strings.Join(v.List, ", ")
	}
	return ""
}

// Metadata is the parsed front-matter mapping of a document. All keys are
// optional; accessors return a second result reporting presence.
type Metadata map[string]Value

// StringVal returns the string under key, if present with that kind.
func (m Metadata) StringVal(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// BoolVal returns the boolean under key, if present with that kind.
func (m Metadata) BoolVal(key string) (bool, bool) {
	v, ok := m[key]
	if !ok || v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

// DateVal returns the date under key, if present with that kind.
func (m Metadata) DateVal(key string) (time.Time, bool) {
	v, ok := m[key]
	if !ok || v.Kind != KindDate {
		return time.Time{}, false
	}
	return v.Date, true
}

// ListVal returns the string list under key. A lone string scalar is
// promoted to a one-element list (corpora write `tags: go` and
// `tags: [go, web]` interchangeably).
func (m Metadata) ListVal(key string) ([]string, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	switch v.Kind {
	case KindList:
		return v.List, true
	case KindString:
		return []string{v.Str}, true
	}
	return nil, false
}

// Draft reports the draft flag; absent means not-draft.
func (m Metadata) Draft() bool {
	b, _ := m.BoolVal("draft")
	return b
}

// Plain renders the metadata as a JSON-friendly map: strings, bools,
// ISO-8601 date strings, and string slices.
func (m Metadata) Plain() map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch v.Kind {
		case KindBool:
			out[k] = v.Bool
		case KindList:
			out[k] = v.List
		default:
			out[k] = v.Scalar()
		}
	}
	return out
}

// Equal reports structural equality, key-order independent.
func (m Metadata) Equal(o Metadata) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Parse splits raw document bytes into metadata and body. A document
// without a leading --- delimiter has empty metadata and its full content
// as body. An opening delimiter without a matching close, undecodable
// YAML, a value outside the supported dialect, or a `date` key that is not
// a valid calendar date all yield apperr.ErrMalformedFrontMatter.
func Parse(data []byte) (Metadata, string, error) {
	block, body, found, err := split(data)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return Metadata{}, body, nil
	}

	meta, err := decode(block)
	if err != nil {
		return nil, "", err
	}

	if v, ok := meta["date"]; ok && v.Kind != KindDate {
		// Tolerate a quoted date scalar, reject anything that does not
		// parse as a calendar date.
		t, err := time.Parse(DateLayout, v.Scalar())
		if v.Kind != KindString || err != nil {
			return nil, "", fmt.Errorf("%w: date %q is not a valid calendar date", apperr.ErrMalformedFrontMatter, v.Scalar())
		}
		meta["date"] = Date(t)
	}

	return meta, body, nil
}

// split separates the front-matter block (between leading --- delimiter
// lines) from the body.
func split(data []byte) (block []byte, body string, found bool, err error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), false, nil
	}
	rest := trimmed[len(delim):]

	// The opening delimiter must sit on a line of its own; anything else
	// (e.g. a horizontal rule variant) is body text.
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, string(data), false, nil
	}
	rest = rest[nl+1:]

	idx := closingDelim(rest)
	if idx < 0 {
		return nil, "", false, fmt.Errorf("%w: missing closing delimiter", apperr.ErrMalformedFrontMatter)
	}

	block = rest[:idx]
	after := rest[idx+len(delim):]
	// Skip the delimiter's own line break.
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = nil
	}
	return block, string(after), true, nil
}

// closingDelim returns the offset of the first line that is exactly ---
// (modulo trailing whitespace), or -1.
func closingDelim(data []byte) int {
	offset := 0
	for offset <= len(data) {
		end := bytes.IndexByte(data[offset:], '\n')
		line := data[offset:]
		if end >= 0 {
			line = data[offset : offset+end]
		}
		t := bytes.TrimRight(line, " \t\r")
		if bytes.Equal(t, []byte("---")) {
			return offset
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return -1
}

// decode unmarshals a front-matter block into typed metadata using the
// yaml node tree, so scalar kinds and quoting styles are observable.
func decode(block []byte) (Metadata, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(block, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedFrontMatter, err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return Metadata{}, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: front matter is not a mapping", apperr.ErrMalformedFrontMatter)
	}

	meta := make(Metadata, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		keyNode, valNode := doc.Content[i], doc.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar mapping key", apperr.ErrMalformedFrontMatter)
		}
		v, err := decodeValue(keyNode.Value, valNode)
		if err != nil {
			return nil, err
		}
		meta[keyNode.Value] = v
	}
	return meta, nil
}

func decodeValue(key string, node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return decodeScalar(node), nil

	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("%w: %s contains a non-scalar list item", apperr.ErrMalformedFrontMatter, key)
			}
			items = append(items, item.Value)
		}
		return List(items...), nil

	default:
		return Value{}, fmt.Errorf("%w: unsupported value for %s", apperr.ErrMalformedFrontMatter, key)
	}
}

// decodeScalar maps a YAML scalar node onto the dialect: booleans keep
// their kind, plain date-shaped scalars become dates, everything else
// (including numbers and quoted scalars) is a string.
func decodeScalar(node *yaml.Node) Value {
	if node.Tag == "!!bool" {
		return Bool(node.Value == "true")
	}
	if node.Style == 0 && dateRe.MatchString(node.Value) {
		if t, err := time.Parse(DateLayout, node.Value); err == nil {
			return Date(t)
		}
	}
	return String(node.Value)
}

// Encode serializes metadata back to a front-matter block, delimiters
// included. Keys are emitted sorted so output is deterministic; re-parsing
// the result yields an Equal mapping.
func Encode(meta Metadata) ([]byte, error) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			encodeValue(meta[k]))
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}

func encodeValue(v Value) *yaml.Node {
	switch v.Kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.Scalar()}

	case KindDate:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.Date.Format(DateLayout)}

	case KindList:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.List {
			seq.Content = append(seq.Content, stringNode(item))
		}
		return seq
	}
	return stringNode(v.Str)
}

// stringNode builds a string scalar, quoting values that would otherwise
// re-parse as a bool or date.
func stringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if s == "true" || s == "false" || dateRe.MatchString(s) {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}
