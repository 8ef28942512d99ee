package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/leadpanel/panelctl/internal/api"
	"github.com/leadpanel/panelctl/internal/events"
	"github.com/leadpanel/panelctl/internal/listview"
	"github.com/leadpanel/panelctl/internal/notify"
)

// browseCommand is one parsed line of the browse loop.
type browseCommand struct {
	name string
	args []string
}

// rest joins the arguments from i on, for values that may hold spaces.
func (c browseCommand) rest(i int) string {
	if i >= len(c.args) {
		return ""
	}
	return strings.Join(c.args[i:], " ")
}

// canonicalCommand resolves the short forms of built-in commands.
func canonicalCommand(name string) string {
	switch name {
	case "n", ">":
		return "next"
	case "p", "<":
		return "prev"
	case "g":
		return "page"
	case "o":
		return "sort"
	case "f":
		return "filter"
	case "s", "/":
		return "search"
	case "sel":
		return "select"
	case "t", "x":
		return "toggle"
	case "a":
		return "all"
	case "r", "reload":
		return "refresh"
	case "h", "?":
		return "help"
	case "q", "exit":
		return "quit"
	}
	return name
}

// parseBrowseCommand splits a browse line into a command name and
// arguments. Built-in aliases are resolved; other words are returned as
// typed so views can add their own commands. A blank line yields an empty
// name.
func parseBrowseCommand(line string) (browseCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return browseCommand{}, nil
	}
	name := canonicalCommand(strings.ToLower(fields[0]))
	cmd := browseCommand{name: name, args: fields[1:]}

	switch name {
	case "page":
		if len(cmd.args) != 1 {
			return cmd, errors.New("usage: page <n>")
		}
		if _, err := strconv.Atoi(cmd.args[0]); err != nil {
			return cmd, fmt.Errorf("invalid page %q", cmd.args[0])
		}
	case "sort", "values":
		if len(cmd.args) != 1 {
			return cmd, fmt.Errorf("usage: %s <column>", name)
		}
	case "filter":
		if len(cmd.args) < 1 {
			return cmd, errors.New("usage: filter <column> [value1,value2]")
		}
	case "toggle":
		if len(cmd.args) < 1 {
			return cmd, errors.New("usage: toggle <id> [id...]")
		}
	}
	return cmd, nil
}

// browseAction is a bulk command over the selection.
type browseAction[K comparable] struct {
	usage string
	// build validates the arguments and returns the confirmation question
	// and the action to run.
	build func(args []string, count int) (string, listview.BulkAction[K], error)
}

// browseExtra is a view-specific command that is not a bulk action.
type browseExtra struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

// browser is the interactive loop over one controller.
type browser[R any, K comparable] struct {
	name       string
	ctl        *listview.Controller[R, K]
	draw       func(io.Writer, listview.Snapshot[R, K])
	parseID    func(string) (K, error)
	sortable   bool
	filterable bool
	actions    map[string]browseAction[K]
	extras     map[string]browseExtra
	stats      statsFunc

	p        *prompter
	out      io.Writer
	notifier *notify.Notifier
	status   *statusLine
}

func newBrowser[R any, K comparable](a *app, name string, ctl *listview.Controller[R, K], draw func(io.Writer, listview.Snapshot[R, K]), parseID func(string) (K, error)) *browser[R, K] {
	return &browser[R, K]{
		name:     name,
		ctl:      ctl,
		draw:     draw,
		parseID:  parseID,
		actions:  map[string]browseAction[K]{},
		extras:   map[string]browseExtra{},
		p:        newPrompter(a.in, a.out),
		out:      a.out,
		notifier: a.notifier,
		status:   newStatusLine(a.bus),
	}
}

// run loads the first page and reads commands until quit or end of input.
func (b *browser[R, K]) run(ctx context.Context) error {
	defer b.status.close()

	if err := b.refresh(ctx); err != nil {
		b.notifier.Error(api.UserMessage(err))
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.status.drain()
		fmt.Fprint(b.out, b.status.prompt(b.name))

		line, err := b.p.r.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			if err == io.EOF {
				fmt.Fprintln(b.out)
				return nil
			}
			return err
		}

		cmd, err := parseBrowseCommand(line)
		if err != nil {
			b.notifier.Error(err.Error())
			continue
		}
		if cmd.name == "" {
			continue
		}
		quit, err := b.exec(ctx, cmd)
		if err != nil {
			b.notifier.Error(api.UserMessage(err))
		}
		if quit {
			return nil
		}
	}
}

// refresh reloads the page and, when the view has one, the stats panel.
func (b *browser[R, K]) refresh(ctx context.Context) error {
	if b.stats == nil {
		return b.ctlErr(b.ctl.Reload(ctx))
	}
	var (
		panel    *statsView
		statsErr error
	)
	_ = refreshWithStats(ctx, b.ctl.Reload, func(ctx context.Context) error {
		panel, statsErr = b.stats(ctx)
		return statsErr
	})
	if panel != nil {
		fmt.Fprintln(b.out)
		panel.draw(b.out)
	}
	return statsErr
}

func (b *browser[R, K]) exec(ctx context.Context, cmd browseCommand) (bool, error) {
	switch cmd.name {
	case "quit":
		return true, nil
	case "help":
		b.help()
	case "next":
		return false, b.ctlErr(b.ctl.NextPage(ctx))
	case "prev":
		return false, b.ctlErr(b.ctl.PrevPage(ctx))
	case "page":
		n, _ := strconv.Atoi(cmd.args[0])
		if n < 1 || n > b.ctl.TotalPages() {
			return false, fmt.Errorf("page %d is out of range 1-%d", n, b.ctl.TotalPages())
		}
		return false, b.ctlErr(b.ctl.SetPage(ctx, n))
	case "sort":
		if !b.sortable {
			return false, fmt.Errorf("%s cannot be sorted", b.name)
		}
		return false, b.ctlErr(b.ctl.SetSort(ctx, cmd.args[0]))
	case "filter":
		if !b.filterable {
			return false, fmt.Errorf("%s has no column filters", b.name)
		}
		_, values, err := parseFilter(cmd.args[0] + "=" + cmd.rest(1))
		if err != nil {
			return false, err
		}
		return false, b.ctlErr(b.ctl.ApplyFilter(ctx, cmd.args[0], values))
	case "clear":
		if len(cmd.args) > 0 {
			return false, b.ctlErr(b.ctl.ClearFilter(ctx, cmd.args[0]))
		}
		return false, b.ctlErr(b.ctl.ClearAllFilters(ctx))
	case "search":
		return false, b.ctlErr(b.ctl.SetSearch(ctx, cmd.rest(0)))
	case "values":
		return false, b.values(ctx, cmd.args[0])
	case "select":
		on := b.ctl.ToggleSelectMode()
		if on {
			fmt.Fprintln(b.out, "Modo selección activado")
		} else {
			fmt.Fprintln(b.out, "Modo selección desactivado")
		}
		b.draw(b.out, b.ctl.Snapshot())
	case "toggle":
		if !b.ctl.SelectMode() {
			return false, errors.New("select mode is off: run \"select\" first")
		}
		for _, raw := range cmd.args {
			id, err := b.parseID(raw)
			if err != nil {
				return false, err
			}
			b.ctl.ToggleRow(id)
		}
		b.draw(b.out, b.ctl.Snapshot())
	case "all":
		if !b.ctl.SelectMode() {
			return false, errors.New("select mode is off: run \"select\" first")
		}
		b.ctl.ToggleSelectAll()
		b.draw(b.out, b.ctl.Snapshot())
	case "refresh":
		return false, b.refresh(ctx)
	case "stats":
		if b.stats == nil {
			return false, fmt.Errorf("%s has no stats panel", b.name)
		}
		panel, err := b.stats(ctx)
		if err != nil {
			return false, err
		}
		panel.draw(b.out)
	default:
		if action, ok := b.actions[cmd.name]; ok {
			return false, b.bulk(ctx, cmd, action)
		}
		if extra, ok := b.extras[cmd.name]; ok {
			return false, extra.run(ctx, cmd.args)
		}
		return false, fmt.Errorf("unknown command %q (type help)", cmd.name)
	}
	return false, nil
}

func (b *browser[R, K]) bulk(ctx context.Context, cmd browseCommand, action browseAction[K]) error {
	selected := b.ctl.Selected()
	if len(selected) == 0 {
		return listview.ErrEmptySelection
	}
	question, run, err := action.build(cmd.args, len(selected))
	if err != nil {
		return err
	}
	if err := b.p.confirm(question); err != nil {
		return err
	}
	return b.ctlErr(b.ctl.RunBulk(ctx, cmd.name, run))
}

func (b *browser[R, K]) values(ctx context.Context, column string) error {
	values, err := b.ctl.LoadColumnValues(ctx, column)
	if errors.Is(err, listview.ErrNoValueSource) {
		values, err = b.ctl.KnownValues(column), nil
	}
	if err != nil {
		return b.ctlErr(err)
	}
	if len(values) == 0 {
		fmt.Fprintf(b.out, "No hay valores conocidos para %s\n", column)
		return nil
	}
	active := map[string]bool{}
	for _, v := range b.ctl.Query().Filters[column] {
		active[listview.ValueLabel(v)] = true
	}
	for _, v := range values {
		mark := " "
		if active[listview.ValueLabel(v)] {
			mark = "*"
		}
		fmt.Fprintf(b.out, " %s %s\n", mark, listview.ValueLabel(v))
	}
	return nil
}

// ctlErr drops errors the controller already showed through the notifier.
// Only its argument checks come back to be reported here.
func (b *browser[R, K]) ctlErr(err error) error {
	switch {
	case err == nil, errors.Is(err, listview.ErrSuperseded):
		return nil
	case errors.Is(err, listview.ErrUnknownColumn),
		errors.Is(err, listview.ErrEmptySelection),
		errors.Is(err, listview.ErrNoValueSource):
		return err
	default:
		return nil
	}
}

func (b *browser[R, K]) help() {
	lines := []string{
		"n, next / p, prev       next or previous page",
		"page <n>                go to page n",
		"search <text>           free-text search (empty clears)",
	}
	if b.sortable {
		lines = append(lines, "sort <column>           sort; again to flip ASC/DESC")
	}
	if b.filterable {
		lines = append(lines,
			"filter <column> [v1,v2] filter a column; (vacío) matches empty values",
			"values <column>         list the values of a column",
			"clear [column]          remove one or every filter")
	}
	lines = append(lines,
		"select                  toggle select mode",
		"toggle <id>...          select or unselect rows",
		"all                     select or unselect the whole page")
	for _, name := range slices.Sorted(maps.Keys(b.actions)) {
		lines = append(lines, fmt.Sprintf("%-23s %s", name+" "+b.actions[name].usage, "run over the selected rows"))
	}
	for _, name := range slices.Sorted(maps.Keys(b.extras)) {
		lines = append(lines, name+" "+b.extras[name].usage)
	}
	if b.stats != nil {
		lines = append(lines, "stats                   show the stats panel")
	}
	lines = append(lines, "r, refresh              reload", "q, quit                 leave")
	for _, l := range lines {
		fmt.Fprintln(b.out, strings.TrimRight(l, " "))
	}
}

// statusLine follows the controller's events to build the prompt.
type statusLine struct {
	bus *events.EventBus
	ch  <-chan events.Event

	page, pages int
	selectMode  bool
	selected    int
	loading     bool
	failed      bool
}

func newStatusLine(bus *events.EventBus) *statusLine {
	s := &statusLine{bus: bus, page: 1, pages: 1}
	if bus != nil {
		s.ch = bus.Subscribe(
			listview.EventListLoading,
			listview.EventListLoaded,
			listview.EventListError,
			listview.EventSelectionChanged,
		)
	}
	return s
}

// drain applies every event already published. Publish is synchronous
// with the controller call, so draining after a command sees its events.
func (s *statusLine) drain() {
	for s.ch != nil {
		select {
		case e, ok := <-s.ch:
			if !ok {
				s.ch = nil
				return
			}
			s.apply(e)
		default:
			return
		}
	}
}

func (s *statusLine) apply(e events.Event) {
	switch ev := e.(type) {
	case *listview.ListLoadingEvent:
		s.loading = true
	case *listview.ListLoadedEvent:
		s.loading, s.failed = false, false
		s.page, s.pages = ev.Query.Page, ev.TotalPages
	case *listview.ListErrorEvent:
		s.loading, s.failed = false, true
	case *listview.SelectionChangedEvent:
		s.selectMode, s.selected = ev.SelectMode, ev.Count
	}
}

// prompt renders e.g. "prospectos 2/3 [sel 4]> ".
func (s *statusLine) prompt(view string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d/%d", view, s.page, s.pages)
	if s.selectMode {
		fmt.Fprintf(&b, " [sel %d]", s.selected)
	}
	if s.loading {
		b.WriteString(" ...")
	}
	if s.failed {
		b.WriteString(" !")
	}
	b.WriteString("> ")
	return b.String()
}

func (s *statusLine) close() {
	if s.bus != nil && s.ch != nil {
		s.bus.Unsubscribe(s.ch)
	}
}
