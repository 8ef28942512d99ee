package cli

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpanel/panelctl/internal/events"
	"github.com/leadpanel/panelctl/internal/listview"
)

func TestParseBrowseCommand(t *testing.T) {
	tests := []struct {
		line    string
		name    string
		args    []string
		wantErr bool
	}{
		{line: "", name: ""},
		{line: "   ", name: ""},
		{line: "n", name: "next", args: []string{}},
		{line: "> ", name: "next", args: []string{}},
		{line: "P", name: "prev", args: []string{}},
		{line: "g 3", name: "page", args: []string{"3"}},
		{line: "page x", wantErr: true},
		{line: "page", wantErr: true},
		{line: "sort nombre", name: "sort", args: []string{"nombre"}},
		{line: "o", wantErr: true},
		{line: "f estado nuevo,(vacío)", name: "filter", args: []string{"estado", "nuevo,(vacío)"}},
		{line: "filter", wantErr: true},
		{line: "/ ana maría", name: "search", args: []string{"ana", "maría"}},
		{line: "t 4 9", name: "toggle", args: []string{"4", "9"}},
		{line: "toggle", wantErr: true},
		{line: "state perdido", name: "state", args: []string{"perdido"}},
		{line: "exit", name: "quit", args: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := parseBrowseCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, cmd.name)
			if tt.args != nil {
				assert.Equal(t, tt.args, cmd.args)
			}
		})
	}
}

func TestBrowseCommandRest(t *testing.T) {
	cmd, err := parseBrowseCommand("search ana  maría soto")
	require.NoError(t, err)
	assert.Equal(t, "ana maría soto", cmd.rest(0))
	assert.Equal(t, "", cmd.rest(5))
}

func TestStatusLineFollowsEvents(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()
	s := newStatusLine(bus)
	defer s.close()

	assert.Equal(t, "prospectos 1/1> ", s.prompt("prospectos"))

	q := listview.Query{Page: 2, PageSize: 50}
	bus.Publish(&listview.ListLoadingEvent{BaseEvent: events.NewBase(listview.EventListLoading), View: "prospectos", Query: q})
	s.drain()
	assert.Equal(t, "prospectos 1/1 ...> ", s.prompt("prospectos"))

	bus.Publish(&listview.ListLoadedEvent{BaseEvent: events.NewBase(listview.EventListLoaded), View: "prospectos", Query: q, TotalPages: 3})
	bus.Publish(&listview.SelectionChangedEvent{BaseEvent: events.NewBase(listview.EventSelectionChanged), View: "prospectos", SelectMode: true, Count: 2})
	s.drain()
	assert.Equal(t, "prospectos 2/3 [sel 2]> ", s.prompt("prospectos"))

	bus.Publish(&listview.ListErrorEvent{BaseEvent: events.NewBase(listview.EventListError), View: "prospectos", Op: "reload"})
	s.drain()
	assert.Equal(t, "prospectos 2/3 [sel 2] !> ", s.prompt("prospectos"))
}

func TestProspectsBrowse_SelectAndActivate(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(prospectsList, prospectPage(2,
		map[string]any{"id": 7, "nombre": "Ana", "apellidos": "Soto"},
		map[string]any{"id": 8, "nombre": "Luis", "apellidos": "Rojas"},
	))
	d.router.Get("/prospectos/api/stats", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"stats": map[string]any{"total": 2}})
	})
	d.router.Post("/prospectos/api/activar", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"message": "1 prospecto activado", "activated": 1})
	})

	script := strings.Join([]string{"select", "t 7", "activate", "y", "q"}, "\n") + "\n"
	res := d.run(script, "prospects", "browse")
	require.NoError(t, res.err, res.errOut)

	assert.JSONEq(t, `{"ids":[7]}`, string(d.lastTo("/prospectos/api/activar").body))
	assert.Len(t, d.to(prospectsList), 2, "initial load and the reload after activating")
	assert.Contains(t, res.out, "Modo selección activado")
	assert.Contains(t, res.out, "prospectos 1/1 [sel 1]> ")
	assert.Contains(t, res.out, "Activados: 1")
	assert.Contains(t, res.errOut, "✓ 1 prospecto activado")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(res.out), "prospectos 1/1>"), "select mode is left after activating")
}

func TestProspectsBrowse_ReportsBadInputAndKeepsGoing(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(prospectsList, prospectPage(120))
	d.router.Get("/prospectos/api/stats", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"stats": map[string]any{"total": 120}})
	})
	d.router.Get("/prospectos/api/column-values", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"values": []any{"Camila", nil}})
	})

	script := strings.Join([]string{"sort rut", "activate", "bogus", "values propietario", "f propietario Camila", "n", "q"}, "\n") + "\n"
	res := d.run(script, "prospects", "browse")
	require.NoError(t, res.err, res.errOut)

	assert.Contains(t, res.errOut, "rut")
	assert.Contains(t, res.errOut, listview.ErrEmptySelection.Error())
	assert.Contains(t, res.errOut, `unknown command "bogus"`)
	assert.Contains(t, res.out, "Camila")
	assert.Contains(t, res.out, "(Vacío)")

	reqs := d.to(prospectsList)
	require.Len(t, reqs, 3, "initial load, the filter and the next page")
	assert.JSONEq(t, `["Camila"]`, reqs[1].query.Get("propietario"))
	assert.Equal(t, "1", reqs[1].query.Get("page"))
	assert.Equal(t, "2", reqs[2].query.Get("page"))
	assert.Equal(t, "propietario", d.lastTo("/prospectos/api/column-values").query.Get("column"))
}
