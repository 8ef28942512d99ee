package cli

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpanel/panelctl/internal/listview"
)

func TestParseSort(t *testing.T) {
	col, order, err := parseSort("nombre")
	require.NoError(t, err)
	assert.Equal(t, "nombre", col)
	assert.Equal(t, listview.SortOrder(""), order, "no order leaves it to the view")

	col, order, err = parseSort(" dias_transcurridos:desc ")
	require.NoError(t, err)
	assert.Equal(t, "dias_transcurridos", col)
	assert.Equal(t, listview.Desc, order)

	_, _, err = parseSort(":asc")
	assert.Error(t, err)
	_, _, err = parseSort("nombre:up")
	assert.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	col, values, err := parseFilter("estado=nuevo, (Vacío) ,calificando")
	require.NoError(t, err)
	assert.Equal(t, "estado", col)
	assert.Equal(t, []null.String{listview.Value("nuevo"), listview.NullValue(), listview.Value("calificando")}, values)

	col, values, err = parseFilter("plan=")
	require.NoError(t, err)
	assert.Equal(t, "plan", col)
	assert.Empty(t, values, "an empty list clears the column")

	_, _, err = parseFilter("estado")
	assert.Error(t, err)
	_, _, err = parseFilter("=nuevo")
	assert.Error(t, err)
}

func TestSplitValues(t *testing.T) {
	assert.Equal(t, []string{"Ingeniería, mención TI", "Derecho"}, splitValues(`Ingeniería\, mención TI,Derecho`))
	assert.Equal(t, []string{"a", "b"}, splitValues("a,, ,b,"))
	assert.Nil(t, splitValues(""))
	assert.Equal(t, []string{`a\b`}, splitValues(`a\b`))
}

func TestListFlagsPreset(t *testing.T) {
	f := listFlags{
		page:    3,
		search:  "ana",
		sort:    "nombre:asc",
		filters: []string{"estado=nuevo", "estado=null", "plan=Regular"},
	}
	p, err := f.preset()
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, "ana", p.Search)
	assert.Equal(t, "nombre", p.SortColumn)
	assert.Equal(t, listview.Asc, p.SortOrder)
	assert.Equal(t, []null.String{listview.Value("nuevo"), listview.NullValue()}, p.Filters["estado"], "repeated columns accumulate")
	assert.Equal(t, []null.String{listview.Value("Regular")}, p.Filters["plan"])

	f = listFlags{page: 0}
	_, err = f.preset()
	assert.ErrorContains(t, err, "--page")
}
