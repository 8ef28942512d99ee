package cli

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prospectsList = "/prospectos/api/list"

func TestProspectsList_FlagsCostOneRequest(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(prospectsList, prospectPage(120,
		map[string]any{"id": 7, "nombre": "Ana", "apellidos": "Soto", "propietario": "Camila", "fecha_creacion": "2024-03-05T10:00:00"},
	))

	res := d.run("", "prospects", "list", "-p", "2", "--sort", "nombre", "-s", "ana", "-f", "propietario=Camila,(vacío)")
	require.NoError(t, res.err, res.errOut)

	reqs := d.to(prospectsList)
	require.Len(t, reqs, 1)
	q := reqs[0].query
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "50", q.Get("page_size"))
	assert.Equal(t, "nombre", q.Get("sort_column"))
	assert.Equal(t, "DESC", q.Get("sort_order"), "new column takes the configured prospects order")
	assert.Equal(t, "ana", q.Get("search"))
	assert.JSONEq(t, `["Camila",null]`, q.Get("propietario"))

	assert.Contains(t, res.out, "Ana")
	assert.Contains(t, res.out, "2024-03-05")
	assert.Contains(t, res.out, "Página 2 de 3 · Mostrando 51-51 de 120")
	assert.Contains(t, res.out, `propietario=[Camila, (Vacío)]`)
}

func TestProspectsList_UnknownColumnNeverReachesBackend(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(prospectsList, prospectPage(0))

	res := d.run("", "prospects", "list", "--sort", "rut")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "rut")
	assert.Empty(t, d.to(prospectsList))
}

func TestProspectsList_JSONWithStats(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(prospectsList, prospectPage(1, map[string]any{"id": 3, "nombre": "Luis", "apellidos": "Rojas"}))
	d.router.Get("/prospectos/api/stats", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"stats": map[string]any{
			"total":           1,
			"por_propietario": []map[string]any{{"propietario": "Camila", "count": 1}},
			"ultimos_lotes":   []map[string]any{},
		}})
	})

	res := d.run("", "prospects", "list", "--stats", "-J")
	require.NoError(t, res.err, res.errOut)

	var got struct {
		Items []struct {
			ID     int64  `json:"id"`
			Nombre string `json:"nombre"`
		} `json:"items"`
		Total      int            `json:"total"`
		TotalPages int            `json:"total_pages"`
		Query      map[string]any `json:"query"`
		Stats      struct {
			Total int `json:"total"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.out), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(3), got.Items[0].ID)
	assert.Equal(t, 1, got.TotalPages)
	assert.Equal(t, "fecha_creacion", got.Query["sort_column"])
	assert.Equal(t, 1, got.Stats.Total)
}

func TestProspectsList_BackendErrorIsReturned(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(prospectsList, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusInternalServerError, map[string]any{"error": "Database connection failed"})
	})

	res := d.run("", "prospects", "list")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "Database connection failed")
	assert.NotContains(t, res.errOut, "✗", "one-shot commands do not notify")
}

func TestProspectsActivate_RequiresConfirmation(t *testing.T) {
	d := newDashboard(t)
	d.router.Post("/prospectos/api/activar", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"message": "2 prospectos activados", "activated": 2, "skipped": 0})
	})

	res := d.run("", "prospects", "activate", "4", "9")
	assert.ErrorIs(t, res.err, errConfirmationRequired)
	assert.Empty(t, d.to("/prospectos/api/activar"))

	res = d.run("n\n", "prospects", "activate", "4", "9")
	assert.ErrorIs(t, res.err, errAborted)

	res = d.run("y\n", "prospects", "activate", "4", "9")
	require.NoError(t, res.err, res.errOut)
	assert.JSONEq(t, `{"ids":[4,9]}`, string(d.lastTo("/prospectos/api/activar").body))
	assert.Contains(t, res.out, "2 prospectos activados")
	assert.Contains(t, res.out, "Activados: 2")
}

func TestProspectsActivate_RejectsBadIDs(t *testing.T) {
	d := newDashboard(t)
	res := d.run("", "--yes", "prospects", "activate", "4", "abc")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "abc")
}

func TestProspectsCreate_ValidatesBeforeSending(t *testing.T) {
	d := newDashboard(t)
	d.router.Post("/prospectos/api/create", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"message": "Prospecto creado"})
	})

	res := d.run("", "prospects", "create", "--nombre", "Ana")
	require.Error(t, res.err)
	assert.Empty(t, d.to("/prospectos/api/create"))

	res = d.run("", "prospects", "create", "--nombre", "Ana", "--apellidos", "Soto", "--email", "ana@example.com")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "Prospecto creado")

	var body map[string]any
	require.NoError(t, json.Unmarshal(d.lastTo("/prospectos/api/create").body, &body))
	assert.Equal(t, "Soto", body["apellidos"])
	assert.Equal(t, "ana@example.com", body["email_1"])
	assert.NotContains(t, body, "rut")
}

func TestProspectsImport_MergesMappingOverrides(t *testing.T) {
	d := newDashboard(t)
	d.router.Post("/prospectos/api/upload", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{
			"file_id":  "f1",
			"filename": "leads.csv",
			"preview": map[string]any{
				"columns":    []string{"Nombre", "Apellido", "Correo", "Fono"},
				"rows":       []map[string]any{{"Nombre": "Ana", "Apellido": "Soto", "Correo": "a@x.cl", "Fono": "56911112222"}},
				"total_rows": 1,
			},
			"suggested_mapping": map[string]string{"nombre": "Nombre", "apellidos": "Apellido", "email_1": "Correo"},
			"target_fields":     []string{"nombre", "apellidos", "email_1", "telefono_1"},
		})
	})
	d.router.Post("/prospectos/api/import", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"message": "1 prospectos importados", "lote_id": "L-1", "imported_count": 1})
	})

	file := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(file, []byte("Nombre,Apellido,Correo,Fono\nAna,Soto,a@x.cl,56911112222\n"), 0600))

	res := d.run("", "--yes", "prospects", "import", file, "--map", "telefono_1=Fono", "--map", "email_1=")
	require.NoError(t, res.err, res.errOut)
	assert.JSONEq(t,
		`{"mapping":{"nombre":"Nombre","apellidos":"Apellido","telefono_1":"Fono"}}`,
		string(d.lastTo("/prospectos/api/import").body))
	assert.Contains(t, res.out, "Lote: L-1")

	res = d.run("", "--yes", "prospects", "import", file, "--map", "telefono_1=Telefono")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `"Telefono" is not in the file`)
}

func TestParseMappings(t *testing.T) {
	m, err := parseMappings([]string{"email_1 = Correo", "rut="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"email_1": "Correo", "rut": ""}, m)

	_, err = parseMappings([]string{"correo=Correo"})
	assert.ErrorContains(t, err, "unknown field")

	_, err = parseMappings([]string{"nombre"})
	assert.ErrorContains(t, err, "want field=Column")
}
