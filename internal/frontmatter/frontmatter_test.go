package frontmatter

import (
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantName  string
		wantTools []string
		wantBody  string
		header    bool
	}{
		{
			name:      "full header",
			doc:       "---\nname: reviewer\ndescription: Reviews code\ntools: Read, Grep ,Bash\n---\n\n# Reviewer\n\nBody text.\n\n",
			wantName:  "reviewer",
			wantTools: []string{"Read", "Grep", "Bash"},
			wantBody:  "# Reviewer\n\nBody text.",
			header:    true,
		},
		{
			name:     "value with colon",
			doc:      "---\nname: a: b\n---\nbody",
			wantName: "a: b",
			wantBody: "body",
			header:   true,
		},
		{
			name:     "crlf",
			doc:      "---\r\nname: win\r\n---\r\nbody\r\n",
			wantName: "win",
			wantBody: "body",
			header:   true,
		},
		{
			name:     "no header",
			doc:      "  just a body\n",
			wantBody: "  just a body\n",
		},
		{
			name:     "unterminated header",
			doc:      "---\nname: broken\nbody without closing\n",
			wantBody: "---\nname: broken\nbody without closing\n",
		},
		{
			name:     "header not at start",
			doc:      "\n---\nname: late\n---\nbody",
			wantBody: "\n---\nname: late\n---\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.doc)

			if doc.HasHeader != tt.header {
				t.Errorf("HasHeader = %v, want %v", doc.HasHeader, tt.header)
			}
			if name, _ := doc.Metadata.String("name"); name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if tools, _ := doc.Metadata.Strings("tools"); !slices.Equal(tools, tt.wantTools) {
				t.Errorf("tools = %q, want %q", tools, tt.wantTools)
			}
			if doc.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", doc.Body, tt.wantBody)
			}
			if !tt.header && doc.Metadata.Len() != 0 {
				t.Errorf("metadata should be empty, got %v", doc.Metadata.Keys())
			}
		})
	}
}

func TestParseIgnoresLinesWithoutColon(t *testing.T) {
	doc := Parse("---\nname: x\njust words\n---\nbody")
	if doc.Metadata.Len() != 1 {
		t.Errorf("Keys() = %v, want only name", doc.Metadata.Keys())
	}
}

func TestParserListKey(t *testing.T) {
	doc := Parser{ListKey: "tags"}.Parse("---\ntags: a, b\ntools: Read, Write\n---\n")

	if tags, ok := doc.Metadata.Strings("tags"); !ok || !slices.Equal(tags, []string{"a", "b"}) {
		t.Errorf("tags = %q", tags)
	}
	if tools, _ := doc.Metadata.String("tools"); tools != "Read, Write" {
		t.Errorf("tools = %q, want scalar", tools)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		meta func() Metadata
		body string
	}{
		{"fields and list", func() Metadata {
			m := NewMetadata()
			m.Set("name", "reviewer")
			m.Set("description", "Reviews: carefully")
			m.SetList("tools", []string{"Read", "Grep"})
			return m
		}, "Review the code."},
		{"empty metadata", NewMetadata, "only body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := tt.meta()
			doc := Parse(Format(meta, tt.body))

			if !doc.HasHeader {
				t.Fatal("formatted document has no header")
			}
			if !slices.Equal(doc.Metadata.Keys(), meta.Keys()) {
				t.Errorf("Keys() = %v, want %v", doc.Metadata.Keys(), meta.Keys())
			}
			for _, key := range meta.Keys() {
				want, _ := meta.String(key)
				got, _ := doc.Metadata.String(key)
				if got != want {
					t.Errorf("%s = %q, want %q", key, got, want)
				}
			}
			wantTools, _ := meta.Strings("tools")
			gotTools, _ := doc.Metadata.Strings("tools")
			if !slices.Equal(gotTools, wantTools) {
				t.Errorf("tools = %q, want %q", gotTools, wantTools)
			}
			if doc.Body != tt.body {
				t.Errorf("Body = %q, want %q", doc.Body, tt.body)
			}
		})
	}
}
