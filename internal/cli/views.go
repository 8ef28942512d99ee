package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aarondl/null/v8"
	"golang.org/x/sync/errgroup"

	"github.com/leadpanel/panelctl/internal/api"
	"github.com/leadpanel/panelctl/internal/config"
	"github.com/leadpanel/panelctl/internal/listview"
	"github.com/leadpanel/panelctl/internal/models"
	"github.com/leadpanel/panelctl/internal/render"
)

func prospectsView(cfg *config.Config) listview.ViewConfig {
	return listview.ViewConfig{
		Name:                    "prospectos",
		PageSize:                cfg.Views.PageSize,
		SortColumns:             models.ProspectSortColumns,
		DefaultSort:             "fecha_creacion",
		DefaultOrder:            listview.Desc,
		NewColumnOrder:          listview.SortOrder(cfg.Views.ProspectsSortOrder),
		FilterColumns:           models.ProspectFilterColumns,
		ExitSelectModeAfterBulk: true,
	}
}

func activeView(cfg *config.Config) listview.ViewConfig {
	return listview.ViewConfig{
		Name:           "prospectos_activos",
		PageSize:       cfg.Views.PageSize,
		SortColumns:    models.ActiveSortColumns,
		DefaultSort:    "dias_transcurridos",
		DefaultOrder:   listview.Desc,
		NewColumnOrder: listview.SortOrder(cfg.Views.ActiveSortOrder),
		FilterColumns:  models.ActiveFilterColumns,
	}
}

// pointsView leaves sort and filters unset. The endpoint orders by
// creation date and only supports search, so the points commands expose
// neither.
func pointsView(cfg *config.Config) listview.ViewConfig {
	return listview.ViewConfig{
		Name:     "knowledge_points",
		PageSize: cfg.Views.PageSize,
	}
}

// controllerOptions builds controller options for a. A non-nil render
// makes the controller interactive: it redraws after every page and
// reports failures through the notifier. One-shot commands pass nil and
// get their errors returned so they are printed once.
func controllerOptions[R any, K comparable](a *app, view listview.ViewConfig, src listview.Source[R], id func(R) K, render func(listview.Snapshot[R, K])) listview.Options[R, K] {
	opts := listview.Options[R, K]{
		View:   view,
		Source: src,
		ID:     id,
		Logger: GetLogger(),
		Bus:    a.bus,
		Render: render,
	}
	if render != nil {
		opts.Notifier = a.notifier
	}
	return opts
}

func newProspectsController(a *app, render func(listview.Snapshot[models.Prospect, int64])) (*listview.Controller[models.Prospect, int64], error) {
	col := a.client.Prospects()
	opts := controllerOptions(a, prospectsView(a.cfg), listview.Source[models.Prospect](col), prospectID, render)
	return listview.New(withValues(opts, col))
}

func newActiveController(a *app, render func(listview.Snapshot[models.ActiveProspect, string])) (*listview.Controller[models.ActiveProspect, string], error) {
	col := a.client.ActiveProspects()
	opts := controllerOptions(a, activeView(a.cfg), listview.Source[models.ActiveProspect](col), activeID, render)
	return listview.New(withValues(opts, col))
}

func newPointsController(a *app, baseID string, render func(listview.Snapshot[models.Point, string])) (*listview.Controller[models.Point, string], error) {
	col, err := a.client.Points(baseID)
	if err != nil {
		return nil, err
	}
	opts := controllerOptions(a, pointsView(a.cfg), listview.Source[models.Point](col), pointID, render)
	return listview.New(withValues(opts, col))
}

// withValues backs LoadColumnValues with col when its endpoint serves
// column values. Views without one rely on values seeded by the caller.
func withValues[R any, K comparable](opts listview.Options[R, K], col *api.Collection[R]) listview.Options[R, K] {
	if col.HasValues() {
		opts.Values = col
	}
	return opts
}

// drawTo adapts a render func to the controller's Render callback.
func drawTo[R any, K comparable](w io.Writer, draw func(io.Writer, listview.Snapshot[R, K])) func(listview.Snapshot[R, K]) {
	return func(s listview.Snapshot[R, K]) { draw(w, s) }
}

func prospectID(p models.Prospect) int64     { return p.ID }
func activeID(p models.ActiveProspect) string { return p.ID }
func pointID(p models.Point) string           { return p.ID }

// seedFilterOptions loads the active prospects filter options into ctl as
// known column values.
func seedFilterOptions(ctx context.Context, a *app, ctl *listview.Controller[models.ActiveProspect, string]) error {
	opts, err := a.client.FilterOptions(ctx)
	if err != nil {
		return err
	}
	for col, values := range opts.ByColumn() {
		known := make([]null.String, 0, len(values))
		for _, v := range values {
			known = append(known, listview.Value(v))
		}
		ctl.SetColumnValues(col, known)
	}
	return nil
}

// refreshWithStats reloads the list and fetches the stats panel at the
// same time. Neither call cancels the other; both errors are returned.
func refreshWithStats(ctx context.Context, reload, stats func(context.Context) error) error {
	var (
		g                 errgroup.Group
		listErr, statsErr error
	)
	g.Go(func() error {
		listErr = reload(ctx)
		return listErr
	})
	g.Go(func() error {
		statsErr = stats(ctx)
		return statsErr
	})
	_ = g.Wait()
	if errors.Is(listErr, listview.ErrSuperseded) {
		listErr = nil
	}
	return errors.Join(listErr, statsErr)
}

// statsView is a fetched stats panel.
type statsView struct {
	data any
	draw func(io.Writer)
}

// statsFunc fetches the stats panel shown next to a list.
type statsFunc func(ctx context.Context) (*statsView, error)

func prospectStats(a *app) statsFunc {
	return func(ctx context.Context) (*statsView, error) {
		st, err := a.client.ProspectStats(ctx)
		if err != nil {
			return nil, err
		}
		return &statsView{data: st, draw: func(w io.Writer) { render.ProspectStats(w, st) }}, nil
	}
}

func activeStats(a *app) statsFunc {
	return func(ctx context.Context) (*statsView, error) {
		st, err := a.client.ActiveStats(ctx)
		if err != nil {
			return nil, err
		}
		return &statsView{data: st, draw: func(w io.Writer) { render.ActiveStats(w, st) }}, nil
	}
}

// listOutput is the --json shape of a list page.
type listOutput[R any] struct {
	Items      []R            `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	PageSize   int            `json:"page_size"`
	Query      map[string]any `json:"query"`
	Stats      any            `json:"stats,omitempty"`
}

func newListOutput[R any, K comparable](s listview.Snapshot[R, K]) listOutput[R] {
	q := map[string]any{}
	for k, v := range s.Query.Values() {
		if len(v) == 1 {
			q[k] = v[0]
		}
	}
	items := s.Items
	if items == nil {
		items = []R{}
	}
	return listOutput[R]{
		Items:      items,
		Total:      s.Total,
		Page:       s.Query.Page,
		TotalPages: s.TotalPages,
		PageSize:   s.Query.PageSize,
		Query:      q,
	}
}

// runList applies the list flags, loads one page and prints it. A non-nil
// stats is fetched alongside the page and printed after it.
func runList[R any, K comparable](ctx context.Context, a *app, ctl *listview.Controller[R, K], f *listFlags, draw func(io.Writer, listview.Snapshot[R, K]), stats statsFunc) error {
	p, err := f.preset()
	if err != nil {
		return err
	}
	if err := ctl.Preset(p); err != nil {
		return err
	}

	var panel *statsView
	err = withSpinner(a.errOut, func() error {
		if stats == nil {
			return ctl.Reload(ctx)
		}
		return refreshWithStats(ctx, ctl.Reload, func(ctx context.Context) error {
			var err error
			panel, err = stats(ctx)
			return err
		})
	})
	if err != nil {
		return err
	}

	snap := ctl.Snapshot()
	if f.json {
		out := newListOutput(snap)
		if panel != nil {
			out.Stats = panel.data
		}
		return render.JSON(a.out, out)
	}
	draw(a.out, snap)
	if panel != nil {
		fmt.Fprintln(a.out)
		panel.draw(a.out)
	}
	return nil
}
