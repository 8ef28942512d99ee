package api

import (
	"context"
	"net/url"

	"github.com/aarondl/null/v8"

	"github.com/leadpanel/panelctl/internal/listview"
	"github.com/leadpanel/panelctl/internal/models"
)

// listResponse is the list envelope. Knowledge points come under "points",
// every other list under "data".
type listResponse[R any] struct {
	models.PageInfo
	Data   []R `json:"data"`
	Points []R `json:"points"`
}

type valuesResponse struct {
	Values []null.String `json:"values"`
}

// Collection is one paged list endpoint. It satisfies listview.Source and,
// when it has a column-values endpoint, listview.ValueSource.
type Collection[R any] struct {
	client     *Client
	op         string
	listPath   string
	valuesPath string
	itemsKey   string
}

func newCollection[R any](c *Client, op, listPath, valuesPath, itemsKey string) *Collection[R] {
	return &Collection[R]{client: c, op: op, listPath: listPath, valuesPath: valuesPath, itemsKey: itemsKey}
}

// List fetches one page for q.
func (col *Collection[R]) List(ctx context.Context, q listview.Query) (listview.Result[R], error) {
	var resp listResponse[R]
	if err := col.client.get(ctx, col.op+" list", col.listPath, q.Values(), &resp); err != nil {
		return listview.Result[R]{}, err
	}

	items := resp.Data
	if col.itemsKey == "points" {
		items = resp.Points
	}
	page := resp.Page
	if page == 0 {
		page = q.Page
	}
	return listview.Result[R]{
		Items:      items,
		Total:      resp.Total,
		Page:       page,
		TotalPages: resp.TotalPages,
	}, nil
}

// ColumnValues returns the distinct values of column, NULL included.
func (col *Collection[R]) ColumnValues(ctx context.Context, column string) ([]null.String, error) {
	if col.valuesPath == "" {
		return nil, listview.ErrNoValueSource
	}
	var resp valuesResponse
	if err := col.client.get(ctx, col.op+" column values", col.valuesPath, url.Values{"column": {column}}, &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// HasValues reports whether the collection can serve ColumnValues.
func (col *Collection[R]) HasValues() bool {
	return col.valuesPath != ""
}
