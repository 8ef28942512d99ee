package listview

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aarondl/null/v8"

	"github.com/leadpanel/panelctl/internal/constants"
)

var (
	// ErrSuperseded is returned by Reload when a newer reload was issued
	// before this one's response arrived. The response is discarded.
	ErrSuperseded = errors.New("list response superseded by a newer request")

	// ErrEmptySelection is returned by RunBulk when nothing is selected.
	ErrEmptySelection = errors.New("no rows selected")

	// ErrUnknownColumn is returned for sort or filter columns the view does not expose.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoValueSource is returned by LoadColumnValues when the view has no column-values endpoint.
	ErrNoValueSource = errors.New("view has no column value source")
)

// Result is one page of a remote collection.
type Result[R any] struct {
	Items      []R
	Total      int
	Page       int
	TotalPages int
}

// Source lists one page of a remote collection.
type Source[R any] interface {
	List(ctx context.Context, q Query) (Result[R], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[R any] func(ctx context.Context, q Query) (Result[R], error)

// List calls f.
func (f SourceFunc[R]) List(ctx context.Context, q Query) (Result[R], error) {
	return f(ctx, q)
}

// ValueSource returns the distinct values of a column for filter menus.
type ValueSource interface {
	ColumnValues(ctx context.Context, column string) ([]null.String, error)
}

// Notifier shows transient user-facing messages.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// ViewConfig describes one list view.
type ViewConfig struct {
	Name     string
	PageSize int

	// SortColumns restricts SetSort. Empty allows any column.
	SortColumns []string
	// DefaultSort and DefaultOrder are the initial sort state.
	DefaultSort  string
	DefaultOrder SortOrder
	// NewColumnOrder is applied when SetSort switches to a different column.
	NewColumnOrder SortOrder

	// FilterColumns restricts ApplyFilter. Empty allows any column.
	FilterColumns []string

	// ExitSelectModeAfterBulk turns select mode off once a bulk action finishes.
	ExitSelectModeAfterBulk bool
}

func (v ViewConfig) withDefaults() ViewConfig {
	if v.PageSize <= 0 {
		v.PageSize = constants.DefaultPageSize
	}
	if v.PageSize > constants.MaxPageSize {
		v.PageSize = constants.MaxPageSize
	}
	if v.DefaultOrder == "" {
		v.DefaultOrder = Desc
	}
	if v.NewColumnOrder == "" {
		v.NewColumnOrder = v.DefaultOrder
	}
	return v
}

// Validate checks that defaults refer to declared columns.
func (v ViewConfig) Validate() error {
	if v.Name == "" {
		return errors.New("view name is required")
	}
	if v.DefaultSort != "" && len(v.SortColumns) > 0 && !slices.Contains(v.SortColumns, v.DefaultSort) {
		return fmt.Errorf("view %s: default sort %q is not a sortable column", v.Name, v.DefaultSort)
	}
	for _, o := range []SortOrder{v.DefaultOrder, v.NewColumnOrder} {
		if o != "" && o != Asc && o != Desc {
			return fmt.Errorf("view %s: invalid sort order %q", v.Name, o)
		}
	}
	return nil
}

func (v ViewConfig) sortable(column string) bool {
	return len(v.SortColumns) == 0 || slices.Contains(v.SortColumns, column)
}

func (v ViewConfig) filterable(column string) bool {
	return len(v.FilterColumns) == 0 || slices.Contains(v.FilterColumns, column)
}
