package listview

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/aarondl/null/v8"

	"github.com/leadpanel/panelctl/internal/constants"
)

// SortOrder is the direction of the single sort column.
type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// ParseSortOrder accepts ASC/DESC in any case.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC":
		return Asc, nil
	case "DESC":
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort order %q: must be ASC or DESC", s)
}

// Toggle flips ASC and DESC.
func (o SortOrder) Toggle() SortOrder {
	if o == Asc {
		return Desc
	}
	return Asc
}

// Value builds a concrete filter value.
func Value(s string) null.String { return null.StringFrom(s) }

// NullValue is the filter value matching SQL NULL rows.
func NullValue() null.String { return null.String{} }

// ValueLabel is the display form of a filter value.
func ValueLabel(v null.String) string {
	if !v.Valid {
		return constants.NullFilterLabel
	}
	return v.String
}

// Filters maps a column to the set of accepted values ("value IN set").
// A column without a key is unrestricted.
type Filters map[string][]null.String

// Clone returns a deep copy.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for col, vals := range f {
		out[col] = append([]null.String(nil), vals...)
	}
	return out
}

// Columns returns the filtered column names in sorted order.
func (f Filters) Columns() []string {
	cols := make([]string, 0, len(f))
	for col := range f {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Has reports whether column is restricted.
func (f Filters) Has(column string) bool {
	_, ok := f[column]
	return ok
}

// Equal reports whether f and o restrict the same columns to the same
// values in the same order.
func (f Filters) Equal(o Filters) bool {
	if len(f) != len(o) {
		return false
	}
	for col, vals := range f {
		other, ok := o[col]
		if !ok || len(other) != len(vals) {
			return false
		}
		for i := range vals {
			if vals[i] != other[i] {
				return false
			}
		}
	}
	return true
}

// Query is one list request. It is rebuilt from controller state on every
// reload and never mutated after being handed to a Source.
type Query struct {
	Page       int
	PageSize   int
	SortColumn string
	SortOrder  SortOrder
	Search     string
	Filters    Filters
}

// Values encodes the query with the unified parameter names. Filter values
// are sent as a JSON array per column, with NULL encoded as null.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if q.SortColumn != "" {
		v.Set("sort_column", q.SortColumn)
		v.Set("sort_order", string(q.SortOrder))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for _, col := range q.Filters.Columns() {
		raw, err := json.Marshal(q.Filters[col])
		if err != nil {
			continue
		}
		v.Set(col, string(raw))
	}
	return v
}

// Encode returns the URL-encoded query string.
func (q Query) Encode() string {
	return q.Values().Encode()
}

// normalizeFilter applies the filter invariant. It returns nil when the
// selection must be dropped: empty, or covering every known value.
func normalizeFilter(selected, known []null.String) []null.String {
	seen := make(map[null.String]struct{}, len(selected))
	out := make([]null.String, 0, len(selected))
	for _, v := range selected {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	if len(known) > 0 {
		full := true
		for _, k := range known {
			if _, ok := seen[k]; !ok {
				full = false
				break
			}
		}
		if full {
			return nil
		}
	}
	return out
}

// SortValues orders filter options the way the column menu lists them:
// concrete values ascending, NULL last, duplicates removed.
func SortValues(values []null.String) []null.String {
	seen := make(map[null.String]struct{}, len(values))
	out := make([]null.String, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.String < b.String
	})
	return out
}
