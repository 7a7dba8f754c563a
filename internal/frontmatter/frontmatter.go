// Package frontmatter splits a document with a "---" delimited header into
// metadata fields and a body.
//
// The header is a list of "key: value" lines. Lines are split at the first
// colon; lines without one are ignored. The configured list key is split on
// commas into a list of values. No defaults are applied to missing fields.
package frontmatter

import (
	"slices"
	"strings"
)

const (
	delimiter = "---\n"
	closing   = "\n---\n"

	// DefaultListKey is the header key parsed as a comma separated list
	DefaultListKey = "tools"
)

// Metadata holds the header fields in the order they first appeared
type Metadata struct {
	fields map[string]string
	lists  map[string][]string
	order  []string
}

// NewMetadata creates empty metadata
func NewMetadata() Metadata {
	return Metadata{
		fields: make(map[string]string),
		lists:  make(map[string][]string),
	}
}

// Set stores a scalar field
func (m *Metadata) Set(key, value string) {
	m.track(key)
	delete(m.lists, key)
	m.fields[key] = value
}

// SetList stores a list field
func (m *Metadata) SetList(key string, values []string) {
	m.track(key)
	delete(m.fields, key)
	m.lists[key] = slices.Clone(values)
}

func (m *Metadata) track(key string) {
	if m.fields == nil {
		*m = NewMetadata()
	}
	if !slices.Contains(m.order, key) {
		m.order = append(m.order, key)
	}
}

// String returns a scalar field
func (m Metadata) String(key string) (string, bool) {
	v, ok := m.fields[key]
	return v, ok
}

// Strings returns a list field
func (m Metadata) Strings(key string) ([]string, bool) {
	v, ok := m.lists[key]
	return v, ok
}

// Has reports whether key was present in the header
func (m Metadata) Has(key string) bool {
	_, scalar := m.fields[key]
	_, list := m.lists[key]
	return scalar || list
}

// Keys returns the field names in header order
func (m Metadata) Keys() []string {
	return slices.Clone(m.order)
}

// Len returns the number of fields
func (m Metadata) Len() int {
	return len(m.order)
}

// Document is a parsed document
type Document struct {
	Metadata Metadata
	Body     string
	// HasHeader is false when the input had no complete header
	HasHeader bool
}

// Parser parses documents. The zero value uses DefaultListKey.
type Parser struct {
	ListKey string
}

// Parse parses doc with the default parser
func Parse(doc string) Document {
	return Parser{}.Parse(doc)
}

// Parse splits doc into metadata and body. A document without a header, or
// whose header is never closed, is returned whole as the body with empty
// metadata.
func (p Parser) Parse(doc string) Document {
	listKey := p.ListKey
	if listKey == "" {
		listKey = DefaultListKey
	}

	text := strings.ReplaceAll(doc, "\r\n", "\n")
	rest, ok := strings.CutPrefix(text, delimiter)
	if !ok {
		return Document{Metadata: NewMetadata(), Body: doc}
	}
	end := strings.Index(rest, closing)
	if end < 0 {
		return Document{Metadata: NewMetadata(), Body: doc}
	}

	meta := NewMetadata()
	for _, line := range strings.Split(rest[:end], "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if key == listKey {
			meta.SetList(key, splitList(value))
			continue
		}
		meta.Set(key, value)
	}

	return Document{
		Metadata:  meta,
		Body:      strings.TrimSpace(rest[end+len(closing):]),
		HasHeader: true,
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Format renders metadata and body as a document Parse reads back
func Format(meta Metadata, body string) string {
	lines := make([]string, 0, len(meta.order))
	for _, key := range meta.order {
		value := meta.fields[key]
		if list, ok := meta.lists[key]; ok {
			value = strings.Join(list, ", ")
		}
		lines = append(lines, key+": "+value)
	}

	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString(closing)
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}
