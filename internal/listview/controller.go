// Package listview owns the pagination, sort, filter and selection state of
// one server-paginated list and mediates every change through a single
// reload path.
//
// A Controller keeps two copies of the query state. The pending state is
// what the next reload sends and is what mutators edit. The shown state is
// the query that produced the rows currently rendered. A successful reload
// promotes pending to shown; a failed one rolls pending back, so the
// rendered rows always match the filters, sort and page they claim.
package listview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aarondl/null/v8"

	"github.com/leadpanel/panelctl/internal/events"
	"github.com/leadpanel/panelctl/internal/logging"
)

// Snapshot is the rendered projection of a controller.
type Snapshot[R any, K comparable] struct {
	View        string
	Query       Query
	Items       []R
	Total       int
	TotalPages  int
	Loaded      bool
	SelectMode  bool
	Selected    []K
	AllSelected bool

	selected map[K]struct{}
}

// IsSelected reports whether id was selected when the snapshot was taken.
func (s Snapshot[R, K]) IsSelected(id K) bool {
	_, ok := s.selected[id]
	return ok
}

// Range returns the 1-based row range shown on this page, or 0,0 when empty.
func (s Snapshot[R, K]) Range() (from, to int) {
	if len(s.Items) == 0 {
		return 0, 0
	}
	from = (s.Query.Page-1)*s.Query.PageSize + 1
	to = from + len(s.Items) - 1
	return from, to
}

// Options wires a Controller to its collaborators.
type Options[R any, K comparable] struct {
	View   ViewConfig
	Source Source[R]
	// Values backs LoadColumnValues. Optional.
	Values ValueSource
	// ID extracts the row identifier used by the selection.
	ID func(R) K
	// Render is called with a fresh snapshot after every applied response.
	Render   func(Snapshot[R, K])
	Notifier Notifier
	Logger   *logging.Logger
	Bus      *events.EventBus
}

type queryState struct {
	page       int
	sortColumn string
	sortOrder  SortOrder
	search     string
	filters    Filters
}

func (s queryState) clone() queryState {
	s.filters = s.filters.Clone()
	return s
}

// Controller is the list-view state machine. It is safe for concurrent use.
type Controller[R any, K comparable] struct {
	view     ViewConfig
	source   Source[R]
	values   ValueSource
	idOf     func(R) K
	render   func(Snapshot[R, K])
	notifier Notifier
	logger   *logging.Logger
	bus      *events.EventBus

	mu         sync.Mutex
	pending    queryState
	shown      queryState
	items      []R
	total      int
	totalPages int
	loaded     bool
	known      map[string][]null.String
	selectMode bool
	selection  *Selection[K]
	token      uint64
}

// New creates a controller for one view instance.
func New[R any, K comparable](opts Options[R, K]) (*Controller[R, K], error) {
	if opts.Source == nil {
		return nil, errors.New("listview: source is required")
	}
	if opts.ID == nil {
		return nil, errors.New("listview: row id func is required")
	}
	if err := opts.View.Validate(); err != nil {
		return nil, err
	}
	view := opts.View.withDefaults()

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	initial := queryState{
		page:       1,
		sortColumn: view.DefaultSort,
		sortOrder:  view.DefaultOrder,
		filters:    Filters{},
	}

	return &Controller[R, K]{
		view:       view,
		source:     opts.Source,
		values:     opts.Values,
		idOf:       opts.ID,
		render:     opts.Render,
		notifier:   opts.Notifier,
		logger:     logger.Named("listview." + view.Name),
		bus:        opts.Bus,
		pending:    initial,
		shown:      initial.clone(),
		totalPages: 1,
		known:      make(map[string][]null.String),
		selection:  NewSelection[K](),
	}, nil
}

// View returns the view configuration after defaults were applied.
func (c *Controller[R, K]) View() ViewConfig {
	return c.view
}

// Query returns the query the next reload will send.
func (c *Controller[R, K]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked(c.pending)
}

// Page returns the pending page number.
func (c *Controller[R, K]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.page
}

// TotalPages returns the page count of the last applied response, 1 before any.
func (c *Controller[R, K]) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Snapshot returns the current rendered state.
func (c *Controller[R, K]) Snapshot() Snapshot[R, K] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[R, K]) queryLocked(s queryState) Query {
	return Query{
		Page:       s.page,
		PageSize:   c.view.PageSize,
		SortColumn: s.sortColumn,
		SortOrder:  s.sortOrder,
		Search:     s.search,
		Filters:    s.filters.Clone(),
	}
}

func (c *Controller[R, K]) snapshotLocked() Snapshot[R, K] {
	items := make([]R, len(c.items))
	copy(items, c.items)
	ids := c.selection.IDs()
	set := make(map[K]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Snapshot[R, K]{
		View:        c.view.Name,
		Query:       c.queryLocked(c.shown),
		Items:       items,
		Total:       c.total,
		TotalPages:  c.totalPages,
		Loaded:      c.loaded,
		SelectMode:  c.selectMode,
		Selected:    ids,
		AllSelected: c.allSelectedLocked(),
		selected:    set,
	}
}

// SetPage moves to page n and reloads. Out-of-range pages are ignored.
func (c *Controller[R, K]) SetPage(ctx context.Context, n int) error {
	c.mu.Lock()
	return c.setPageLocked(ctx, n)
}

// NextPage moves one page forward.
func (c *Controller[R, K]) NextPage(ctx context.Context) error {
	c.mu.Lock()
	return c.setPageLocked(ctx, c.pending.page+1)
}

// PrevPage moves one page back.
func (c *Controller[R, K]) PrevPage(ctx context.Context) error {
	c.mu.Lock()
	return c.setPageLocked(ctx, c.pending.page-1)
}

// setPageLocked is called with c.mu held and always releases it.
func (c *Controller[R, K]) setPageLocked(ctx context.Context, n int) error {
	if limit := c.pageLimitLocked(); n < 1 || n > limit {
		c.mu.Unlock()
		c.logger.Debug().Int("page", n).Int("limit", limit).Msg("page out of range, ignored")
		return nil
	}
	c.pending.page = n
	return c.commitLocked(ctx)
}

// pageLimitLocked is the highest page the pending query may ask for. The
// page count of the rendered rows only bounds a pending query over the same
// rows; once filters or search changed, only page 1 is known to exist
// until the new response arrives.
func (c *Controller[R, K]) pageLimitLocked() int {
	if c.pending.search != c.shown.search || !c.pending.filters.Equal(c.shown.filters) {
		return 1
	}
	return c.totalPages
}

// SetSort sorts by column. Sorting by the current column toggles the order;
// a new column starts at the view's NewColumnOrder. Resets to page 1.
func (c *Controller[R, K]) SetSort(ctx context.Context, column string) error {
	if !c.view.sortable(column) {
		return fmt.Errorf("%w: cannot sort %s by %q", ErrUnknownColumn, c.view.Name, column)
	}
	c.mu.Lock()
	if c.pending.sortColumn == column {
		c.pending.sortOrder = c.pending.sortOrder.Toggle()
	} else {
		c.pending.sortColumn = column
		c.pending.sortOrder = c.view.NewColumnOrder
	}
	c.pending.page = 1
	return c.commitLocked(ctx)
}

// ApplyFilter restricts column to values. An empty selection, or one that
// covers every known value of the column, removes the filter instead.
func (c *Controller[R, K]) ApplyFilter(ctx context.Context, column string, values []null.String) error {
	if !c.view.filterable(column) {
		return fmt.Errorf("%w: cannot filter %s by %q", ErrUnknownColumn, c.view.Name, column)
	}
	c.mu.Lock()
	normalized := normalizeFilter(values, c.known[column])
	if normalized == nil {
		delete(c.pending.filters, column)
	} else {
		c.pending.filters[column] = normalized
	}
	c.pending.page = 1
	return c.commitLocked(ctx)
}

// ClearFilter removes the filter on column.
func (c *Controller[R, K]) ClearFilter(ctx context.Context, column string) error {
	c.mu.Lock()
	delete(c.pending.filters, column)
	c.pending.page = 1
	return c.commitLocked(ctx)
}

// ClearAllFilters removes every filter.
func (c *Controller[R, K]) ClearAllFilters(ctx context.Context) error {
	c.mu.Lock()
	c.pending.filters = Filters{}
	c.pending.page = 1
	return c.commitLocked(ctx)
}

// SetSearch sets the free-text term and resets to page 1.
func (c *Controller[R, K]) SetSearch(ctx context.Context, term string) error {
	c.mu.Lock()
	c.pending.search = strings.TrimSpace(term)
	c.pending.page = 1
	return c.commitLocked(ctx)
}

// Preset describes a starting query, for example one given on the command
// line. Zero fields keep the current value.
type Preset struct {
	Page       int
	SortColumn string
	SortOrder  SortOrder
	Search     string
	Filters    Filters
}

// Preset edits the pending query without reloading, so several changes
// cost one request on the next Reload. Columns and filters are checked and
// normalized the same way the individual mutators do. Once a response has
// been applied the page is clamped to the known page count. Before that the
// page count is unknown, so any page >= 1 is sent as the entry page of a
// one-shot listing and the backend echoes the page it actually served.
func (c *Controller[R, K]) Preset(p Preset) error {
	if p.SortColumn != "" && !c.view.sortable(p.SortColumn) {
		return fmt.Errorf("%w: cannot sort %s by %q", ErrUnknownColumn, c.view.Name, p.SortColumn)
	}
	if p.SortOrder != "" && p.SortOrder != Asc && p.SortOrder != Desc {
		return fmt.Errorf("invalid sort order %q", p.SortOrder)
	}
	for _, col := range p.Filters.Columns() {
		if !c.view.filterable(col) {
			return fmt.Errorf("%w: cannot filter %s by %q", ErrUnknownColumn, c.view.Name, col)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p.SortColumn != "" {
		if p.SortColumn != c.pending.sortColumn && p.SortOrder == "" {
			c.pending.sortOrder = c.view.NewColumnOrder
		}
		c.pending.sortColumn = p.SortColumn
	}
	if p.SortOrder != "" {
		c.pending.sortOrder = p.SortOrder
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		c.pending.search = s
	}
	for col, vals := range p.Filters {
		if normalized := normalizeFilter(vals, c.known[col]); normalized != nil {
			c.pending.filters[col] = normalized
		} else {
			delete(c.pending.filters, col)
		}
	}
	if p.Page >= 1 {
		page := p.Page
		if c.loaded {
			page = min(page, c.pageLimitLocked())
		}
		c.pending.page = page
	}
	return nil
}

// ToggleSelectMode flips select mode and returns the new value. Leaving
// select mode clears the selection.
func (c *Controller[R, K]) ToggleSelectMode() bool {
	c.mu.Lock()
	c.selectMode = !c.selectMode
	if !c.selectMode {
		c.selection.Clear()
	}
	on, count := c.selectMode, c.selection.Len()
	c.mu.Unlock()

	c.publish(newSelectionChangedEvent(c.view.Name, on, count))
	return on
}

// SelectMode reports whether rows can currently be selected.
func (c *Controller[R, K]) SelectMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectMode
}

// ToggleRow flips id in the selection and returns whether it is now
// selected. Outside select mode it does nothing.
func (c *Controller[R, K]) ToggleRow(id K) bool {
	c.mu.Lock()
	if !c.selectMode {
		c.mu.Unlock()
		return false
	}
	now := c.selection.Toggle(id)
	count := c.selection.Len()
	c.mu.Unlock()

	c.publish(newSelectionChangedEvent(c.view.Name, true, count))
	return now
}

// ToggleSelectAll acts on the rows rendered on the current page only. When
// every rendered row is already selected it clears the selection;
// otherwise the selection becomes exactly the rendered rows.
func (c *Controller[R, K]) ToggleSelectAll() {
	c.mu.Lock()
	if !c.selectMode {
		c.mu.Unlock()
		return
	}
	if c.allSelectedLocked() {
		c.selection.Clear()
	} else {
		ids := make([]K, 0, len(c.items))
		for _, item := range c.items {
			ids = append(ids, c.idOf(item))
		}
		c.selection.Replace(ids)
	}
	count := c.selection.Len()
	c.mu.Unlock()

	c.publish(newSelectionChangedEvent(c.view.Name, true, count))
}

// AllSelected reports whether the "select all" box is checked: the page has
// rows and every one of them is selected.
func (c *Controller[R, K]) AllSelected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allSelectedLocked()
}

func (c *Controller[R, K]) allSelectedLocked() bool {
	if len(c.items) == 0 {
		return false
	}
	for _, item := range c.items {
		if !c.selection.Has(c.idOf(item)) {
			return false
		}
	}
	return true
}

// Selected returns the selected identifiers in selection order.
func (c *Controller[R, K]) Selected() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.IDs()
}

// BulkAction runs against the selected identifiers and returns a message
// for the user on success.
type BulkAction[K comparable] func(ctx context.Context, ids []K) (string, error)

// RunBulk runs action over the selection. The selection is cleared once the
// action returns, whether it failed or not. Success reloads the list.
func (c *Controller[R, K]) RunBulk(ctx context.Context, op string, action BulkAction[K]) error {
	ids := c.Selected()
	if len(ids) == 0 {
		return ErrEmptySelection
	}

	c.logger.Debug().Str("op", op).Int("count", len(ids)).Msg("running bulk action")
	msg, err := action(ctx, ids)

	c.mu.Lock()
	c.selection.Clear()
	if c.view.ExitSelectModeAfterBulk {
		c.selectMode = false
	}
	on := c.selectMode
	q := c.queryLocked(c.pending)
	c.mu.Unlock()
	c.publish(newSelectionChangedEvent(c.view.Name, on, 0))

	if err != nil {
		c.fail(op, q, err)
		return err
	}
	if msg != "" && c.notifier != nil {
		c.notifier.Success(msg)
	}
	if err := c.Reload(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

// SetColumnValues seeds the known values of column, used to detect a
// filter that selects everything. A pending filter on column that now
// covers every value is dropped before the next reload.
func (c *Controller[R, K]) SetColumnValues(column string, values []null.String) {
	sorted := SortValues(values)
	c.mu.Lock()
	c.known[column] = sorted
	c.normalizeFiltersLocked()
	c.mu.Unlock()
}

// KnownValues returns the known values of column, if any were loaded.
func (c *Controller[R, K]) KnownValues(column string) []null.String {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]null.String(nil), c.known[column]...)
}

// LoadColumnValues fetches and remembers the distinct values of column.
func (c *Controller[R, K]) LoadColumnValues(ctx context.Context, column string) ([]null.String, error) {
	if c.values == nil {
		return nil, ErrNoValueSource
	}
	if !c.view.filterable(column) {
		return nil, fmt.Errorf("%w: %s has no filter on %q", ErrUnknownColumn, c.view.Name, column)
	}
	values, err := c.values.ColumnValues(ctx, column)
	if err != nil {
		c.mu.Lock()
		q := c.queryLocked(c.pending)
		c.mu.Unlock()
		c.fail("column-values", q, err)
		return nil, err
	}
	c.SetColumnValues(column, values)
	return c.KnownValues(column), nil
}

// Reload issues the pending query. Only the response to the most recently
// issued reload is applied; older ones return ErrSuperseded. On failure the
// rendered state is left as it was and the pending query is rolled back to
// it.
func (c *Controller[R, K]) Reload(ctx context.Context) error {
	c.mu.Lock()
	token, requested := c.issueLocked()
	c.mu.Unlock()
	return c.await(ctx, token, requested)
}

// commitLocked is called with c.mu held after a mutator edited the pending
// state. It takes the request token in the same critical section, so no
// other mutation can slip between the edit and the request, then releases
// the lock and reloads.
func (c *Controller[R, K]) commitLocked(ctx context.Context) error {
	token, requested := c.issueLocked()
	q := c.queryLocked(requested)
	c.mu.Unlock()

	c.publish(newQueryChangedEvent(c.view.Name, q))
	return c.await(ctx, token, requested)
}

func (c *Controller[R, K]) issueLocked() (uint64, queryState) {
	c.normalizeFiltersLocked()
	c.token++
	return c.token, c.pending.clone()
}

// normalizeFiltersLocked re-applies the filter invariant to every pending
// filter against the values known right now.
func (c *Controller[R, K]) normalizeFiltersLocked() {
	for col, vals := range c.pending.filters {
		if normalized := normalizeFilter(vals, c.known[col]); normalized != nil {
			c.pending.filters[col] = normalized
		} else {
			delete(c.pending.filters, col)
		}
	}
}

func (c *Controller[R, K]) await(ctx context.Context, token uint64, requested queryState) error {
	q := c.queryLocked(requested)
	c.publish(newListLoadingEvent(c.view.Name, token, q))
	c.logger.Debug().Uint64("token", token).Int("page", q.Page).Str("sort", q.SortColumn).Msg("reloading")

	res, err := c.source.List(ctx, q)

	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		c.logger.Debug().Uint64("token", token).Msg("discarding superseded response")
		return ErrSuperseded
	}
	if err != nil {
		c.pending = c.shown.clone()
		c.mu.Unlock()
		c.fail("reload", q, err)
		return err
	}

	if res.Page >= 1 {
		requested.page = res.Page
	}
	c.pending.page = requested.page
	c.shown = requested
	c.items = res.Items
	c.total = res.Total
	c.totalPages = derivePages(res.Total, res.TotalPages, c.view.PageSize)
	c.loaded = true
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.render != nil {
		c.render(snap)
	}
	c.publish(newListLoadedEvent(c.view.Name, token, snap.Query, len(snap.Items), snap.Total, snap.TotalPages))
	return nil
}

func (c *Controller[R, K]) fail(op string, q Query, err error) {
	c.logger.Error().Err(err).Str("op", op).Int("page", q.Page).Msg("list operation failed")
	c.publish(newListErrorEvent(c.view.Name, op, q, err))
	if c.notifier != nil {
		c.notifier.Error(MessageOf(err))
	}
}

func (c *Controller[R, K]) publish(e events.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}

func derivePages(total, totalPages, pageSize int) int {
	pages := totalPages
	if pages <= 0 && total > 0 && pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

// MessageOf returns the text shown to the user for err. Errors carrying a
// backend message expose it through a UserMessage method.
func MessageOf(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}
