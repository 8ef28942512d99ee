package cli

import (
	"fmt"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/spf13/cobra"

	"github.com/leadpanel/panelctl/internal/listview"
)

// listFlags are shared by every list and browse command.
type listFlags struct {
	page    int
	search  string
	sort    string
	filters []string
	json    bool
}

func (f *listFlags) register(cmd *cobra.Command, sortable, filterable bool) {
	f.registerQuery(cmd, sortable, filterable)
	cmd.Flags().BoolVarP(&f.json, "json", "J", false, "Output as JSON")
}

// registerQuery registers the query flags only, for browse commands.
func (f *listFlags) registerQuery(cmd *cobra.Command, sortable, filterable bool) {
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "Page number")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Free-text search")
	if sortable {
		cmd.Flags().StringVar(&f.sort, "sort", "", "Sort column, optionally with :asc or :desc (e.g. nombre:asc)")
	}
	if filterable {
		cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil,
			`Column filter "column=value1,value2" (repeatable). Use (vacío) or null for empty values; escape commas as \,`)
	}
}

// preset turns the flags into a controller preset.
func (f *listFlags) preset() (listview.Preset, error) {
	p := listview.Preset{Page: f.page, Search: f.search}
	if f.page < 1 {
		return p, fmt.Errorf("--page must be 1 or greater, got %d", f.page)
	}
	if f.sort != "" {
		col, order, err := parseSort(f.sort)
		if err != nil {
			return p, err
		}
		p.SortColumn, p.SortOrder = col, order
	}
	if len(f.filters) > 0 {
		p.Filters = listview.Filters{}
		for _, raw := range f.filters {
			col, values, err := parseFilter(raw)
			if err != nil {
				return p, err
			}
			p.Filters[col] = append(p.Filters[col], values...)
		}
	}
	return p, nil
}

// parseSort reads "column" or "column:asc|desc".
func parseSort(s string) (string, listview.SortOrder, error) {
	col, order, found := strings.Cut(strings.TrimSpace(s), ":")
	col = strings.TrimSpace(col)
	if col == "" {
		return "", "", fmt.Errorf("invalid sort %q: column is required", s)
	}
	if !found {
		return col, "", nil
	}
	o, err := listview.ParseSortOrder(order)
	if err != nil {
		return "", "", err
	}
	return col, o, nil
}

// parseFilter reads "column=value1,value2". An empty value list is valid
// and clears the column.
func parseFilter(s string) (string, []null.String, error) {
	col, rest, found := strings.Cut(s, "=")
	col = strings.TrimSpace(col)
	if !found || col == "" {
		return "", nil, fmt.Errorf("invalid filter %q: expected column=value1,value2", s)
	}
	var values []null.String
	for _, v := range splitValues(rest) {
		values = append(values, parseFilterValue(v))
	}
	return col, values, nil
}

// parseFilterValue maps the NULL spellings to the NULL value.
func parseFilterValue(s string) null.String {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "(vacío)", "(vacio)", "null":
		return listview.NullValue()
	}
	return listview.Value(strings.TrimSpace(s))
}

// splitValues splits on commas not escaped with a backslash. Blank items
// are dropped.
func splitValues(s string) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if v := strings.TrimSpace(cur.String()); v != "" {
			out = append(out, v)
		}
		cur.Reset()
	}
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == ',':
			cur.WriteByte(',')
			i++
		case s[i] == ',':
			flush()
		default:
			cur.WriteByte(s[i])
		}
	}
	flush()
	return out
}
