package listview

import (
	"net/url"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryValues(t *testing.T) {
	q := Query{
		Page:       2,
		PageSize:   50,
		SortColumn: "fecha_creacion",
		SortOrder:  Desc,
		Search:     "maria",
		Filters: Filters{
			"propietario": {Value("Ana"), NullValue()},
			"estado":      {Value("nuevo")},
		},
	}

	v, err := url.ParseQuery(q.Encode())
	require.NoError(t, err)
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "50", v.Get("page_size"))
	assert.Equal(t, "fecha_creacion", v.Get("sort_column"))
	assert.Equal(t, "DESC", v.Get("sort_order"))
	assert.Equal(t, "maria", v.Get("search"))
	assert.Equal(t, `["Ana",null]`, v.Get("propietario"))
	assert.Equal(t, `["nuevo"]`, v.Get("estado"))
}

func TestQueryValues_OmitsEmptySearchAndSort(t *testing.T) {
	v := Query{Page: 1, PageSize: 50}.Values()
	_, hasSearch := v["search"]
	_, hasSort := v["sort_column"]
	assert.False(t, hasSearch)
	assert.False(t, hasSort)
}

func TestNormalizeFilter(t *testing.T) {
	known := []null.String{Value("a"), Value("b"), NullValue()}
	tests := []struct {
		name     string
		selected []null.String
		known    []null.String
		want     []null.String
	}{
		{"empty", nil, known, nil},
		{"full set", []null.String{NullValue(), Value("b"), Value("a")}, known, nil},
		{"full set with dupes", []null.String{Value("a"), Value("a"), Value("b"), NullValue()}, known, nil},
		{"partial", []null.String{Value("b")}, known, []null.String{Value("b")}},
		{"null only", []null.String{NullValue()}, known, []null.String{NullValue()}},
		{"no known values", []null.String{Value("x"), Value("x")}, nil, []null.String{Value("x")}},
		{"empty string is not null", []null.String{Value(""), Value("a"), Value("b")}, known, []null.String{Value(""), Value("a"), Value("b")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeFilter(tt.selected, tt.known))
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("asc")
	require.NoError(t, err)
	assert.Equal(t, Asc, o)
	assert.Equal(t, Desc, o.Toggle())
	assert.Equal(t, Asc, Desc.Toggle())

	_, err = ParseSortOrder("up")
	assert.Error(t, err)
}

func TestValueLabel(t *testing.T) {
	assert.Equal(t, "(Vacío)", ValueLabel(NullValue()))
	assert.Equal(t, "MBA", ValueLabel(Value("MBA")))
}

func TestSelection(t *testing.T) {
	s := NewSelection[string]()
	assert.True(t, s.Add("b"))
	assert.False(t, s.Add("b"))
	s.Add("a")
	assert.True(t, s.Toggle("c"))
	assert.False(t, s.Toggle("b"))
	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Remove("zzz"))

	s.Replace([]string{"x", "y", "x"})
	assert.Equal(t, []string{"x", "y"}, s.IDs())
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}
