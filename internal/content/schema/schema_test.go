package schema

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range All() {
		assert.False(t, seen[r.Name], "duplicate resource %s", r.Name)
		seen[r.Name] = true

		assert.NotEmpty(t, r.Table)
		assert.Contains(t, r.Columns(), r.DefaultSort, "%s default sort must be a column", r.Name)
		if r.PublishedColumn != "" {
			_, ok := r.Field(r.PublishedColumn)
			assert.True(t, ok, "%s published column must be a field", r.Name)
		}
		for _, f := range r.Fields {
			if f.Type == TypeSelect {
				assert.NotEmpty(t, f.Options, "%s.%s needs options", r.Name, f.Name)
			}
		}
	}

	for _, name := range []string{"projects", "awards", "press", "testimonials", "team", "timeline", "enquiries"} {
		assert.True(t, seen[name], "missing resource %s", name)
	}
}

func TestLookup(t *testing.T) {
	r, err := Lookup("press")
	require.NoError(t, err)
	assert.Equal(t, "press_articles", r.Table)

	_, err = Lookup("invoices")
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestPublic(t *testing.T) {
	names := []string{}
	for _, r := range Public() {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"awards", "press", "testimonials", "team", "timeline"}, names)
}

func TestReferencedBy(t *testing.T) {
	names := []string{}
	for _, r := range ReferencedBy("projects") {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"awards"}, names)
	assert.Empty(t, ReferencedBy("awards"))
}

func TestColumns(t *testing.T) {
	r, err := Lookup("timeline")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"id", "year", "title", "description", "is_published", "sort_order", "created_at", "updated_at"},
		r.Columns())
}

func TestValidate_Create(t *testing.T) {
	r, err := Lookup("press")
	require.NoError(t, err)

	out, err := r.Validate(map[string]any{
		"title":        "  A house in the trees ",
		"published_on": "2024-03-01",
		"url":          "https://example.com/article",
		"is_published": true,
		"sort_order":   float64(3),
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "A house in the trees", out["title"])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), out["published_on"])
	assert.Equal(t, true, out["is_published"])
	assert.Equal(t, int64(3), out["sort_order"])
	// absent optional fields are reset on full writes
	assert.Equal(t, "", out["excerpt"])
}

func TestValidate_Errors(t *testing.T) {
	r, err := Lookup("awards")
	require.NoError(t, err)

	_, err = r.Validate(map[string]any{
		"organisation": 12,
		"year":         2023.5,
		"url":          "ftp://example.com",
		"project_id":   float64(-1),
		"colour":       "red",
	}, false)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, name := range []string{"title", "organisation", "year", "url", "project_id", "colour"} {
		assert.True(t, fields[name], "expected error for %s", name)
	}
}

func TestValidate_Partial(t *testing.T) {
	r, err := Lookup("enquiries")
	require.NoError(t, err)

	out, err := r.Validate(map[string]any{"status": "read"}, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "read"}, out)

	_, err = r.Validate(map[string]any{"status": "spam"}, true)
	assert.Error(t, err)

	_, err = r.Validate(map[string]any{"message": "edited"}, true)
	assert.Error(t, err, "read only fields are rejected")
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		name  string
		field Field
		in    any
		want  any
		fails bool
	}{
		{"string max length", Field{Type: TypeString, MaxLength: 3}, "abcd", nil, true},
		{"string counts runes", Field{Type: TypeString, MaxLength: 3}, "äöü", "äöü", false},
		{"email", Field{Type: TypeEmail}, "studio@example.com", "studio@example.com", false},
		{"bad email", Field{Type: TypeEmail}, "studio at example", nil, true},
		{"bool from string", Field{Type: TypeBool}, "true", true, false},
		{"json object", Field{Type: TypeJSON}, map[string]any{"web": "https://a.b"}, `{"web":"https://a.b"}`, false},
		{"json nil", Field{Type: TypeJSON}, nil, "{}", false},
		{"list", Field{Type: TypeList}, []any{" /a.jpg ", "", "/b.jpg"}, pq.StringArray{"/a.jpg", "/b.jpg"}, false},
		{"list of numbers", Field{Type: TypeList}, []any{1}, nil, true},
		{"empty reference", Field{Type: TypeReference}, nil, nil, false},
		{"optional select defaults", Field{Type: TypeSelect, Options: []string{"a", "b"}}, "", "a", false},
		{"empty date", Field{Type: TypeDate}, "", nil, false},
		{"bad date", Field{Type: TypeDate}, "01/02/2024", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.field.Coerce(tc.in)
			if tc.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFilter(t *testing.T) {
	r, err := Lookup("awards")
	require.NoError(t, err)

	year, _ := r.Field("year")
	v, err := year.ParseFilter("2021")
	require.NoError(t, err)
	assert.Equal(t, int64(2021), v)

	title, _ := r.Field("title")
	_, err = title.ParseFilter("x")
	assert.Error(t, err)

	published, _ := r.Field("is_published")
	v, err = published.ParseFilter("false")
	require.NoError(t, err)
	assert.Equal(t, false, v)
}
