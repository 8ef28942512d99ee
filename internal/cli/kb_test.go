package cli

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpanel/panelctl/internal/models"
)

const (
	baseID   = "3f6c1d2e-8a4b-4c5d-9e7f-0a1b2c3d4e5f"
	pointA   = "0c9a8b7d-1111-4222-8333-444455556666"
	pointB   = "0c9a8b7d-7777-4888-9999-aaaabbbbcccc"
	kbPrefix = "/knowledge_base/api"
)

func pointsPage(w http.ResponseWriter, r *http.Request) {
	reply(w, http.StatusOK, map[string]any{
		"points": []map[string]any{
			{"id": pointA, "page_content": "Horario de atención\nlunes a viernes", "synced": true, "created_at": "2025-01-02 09:00:00"},
			{"id": pointB, "content_preview": "Aranceles 2025", "synced": false},
		},
		"total": 2, "page": 1, "total_pages": 1,
	})
}

func TestKBPointsList(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(kbPrefix+"/bases/"+baseID+"/points", pointsPage)

	res := d.run("", "kb", "points", "list", baseID, "-s", "horario")
	require.NoError(t, res.err, res.errOut)

	q := d.lastTo(kbPrefix + "/bases/" + baseID + "/points").query
	assert.Equal(t, "horario", q.Get("search"))
	assert.Empty(t, q.Get("sort_column"), "points keep the backend order")
	assert.Contains(t, res.out, "Horario de atención lunes a viernes")
	assert.Contains(t, res.out, "Aranceles 2025")
	assert.Contains(t, res.out, "Pendiente")
	assert.Contains(t, res.out, "Página 1 de 1 · Mostrando 1-2 de 2")
}

func TestKBPointsList_RejectsBadBaseID(t *testing.T) {
	d := newDashboard(t)
	res := d.run("", "kb", "points", "list", "not-a-uuid")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid id")
}

func TestKBPointsImport_TagsImportID(t *testing.T) {
	d := newDashboard(t)
	d.router.Post(kbPrefix+"/bases/"+baseID+"/points/import", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"message": "2 puntos importados", "imported": 2, "errors": []string{}})
	})

	file := filepath.Join(t.TempDir(), "points.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"contenidoPagina": "Horario", "metadatos": {"tema": "horario"}},
		{"contenidoPagina": "   "},
		{"contenidoPagina": "Becas", "metadatos": {"import_id": "previo"}}
	]`), 0600))

	res := d.run("", "kb", "points", "import", baseID, file)
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "omitido #2")
	assert.Contains(t, res.out, "Importados: 2")

	var body models.PointImportRequest
	require.NoError(t, json.Unmarshal(d.lastTo(kbPrefix+"/bases/"+baseID+"/points/import").body, &body))
	require.Len(t, body.Points, 2)
	assert.Equal(t, "Horario", body.Points[0].PageContent)
	assert.Equal(t, "horario", body.Points[0].Metadata["tema"])
	assert.NotEmpty(t, body.Points[0].Metadata["import_id"])
	assert.Equal(t, "previo", body.Points[1].Metadata["import_id"])
}

func TestKBPointsImport_DryRunSendsNothing(t *testing.T) {
	d := newDashboard(t)
	file := filepath.Join(t.TempDir(), "points.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"pageContent": "Horario"}]`), 0600))

	res := d.run("", "kb", "points", "import", baseID, file, "--dry-run")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "1 punto(s) leídos")
	assert.Empty(t, d.to(kbPrefix+"/bases/"+baseID+"/points/import"))
}

func TestKBPointsUpdate_MergesMetadata(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(kbPrefix+"/points/"+pointA, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"point": map[string]any{
			"id": pointA, "page_content": "Horario antiguo", "metadata": map[string]any{"tema": "horario", "v": 1},
		}})
	})
	d.router.Put(kbPrefix+"/points/"+pointA, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"message": "Punto actualizado", "point": map[string]any{"id": pointA}})
	})

	res := d.run("", "kb", "points", "update", pointA, "--meta", "v=2")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "Punto actualizado")
	assert.JSONEq(t,
		`{"page_content":"Horario antiguo","metadata":{"tema":"horario","v":"2"}}`,
		string(d.lastTo(kbPrefix+"/points/"+pointA).body))
}

func TestKBBasesDelete_AsksWithBaseName(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(kbPrefix+"/bases/"+baseID, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"base": map[string]any{"id": baseID, "nombre": "Admisión", "total_points": 12}})
	})
	d.router.Delete(kbPrefix+"/bases/"+baseID, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"message": "Base eliminada"})
	})

	res := d.run("n\n", "kb", "bases", "delete", baseID)
	assert.ErrorIs(t, res.err, errAborted)
	assert.Contains(t, res.errOut, `Delete knowledge base "Admisión" and its 12 point(s)?`)

	res = d.run("y\n", "kb", "bases", "delete", baseID)
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "Base eliminada")
	assert.Len(t, d.to(kbPrefix+"/bases/"+baseID), 3, "two lookups and one delete")
}

func TestKBBasesList(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(kbPrefix+"/bases/list", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{
			"bases": []map[string]any{
				{"id": baseID, "nombre": "Admisión", "collection_name": "admision", "total_points": 3, "synced_points": 1, "pending_points": 2},
			},
			"stats": map[string]any{"total_bases": 1, "total_points": 3, "synced_points": 1, "pending_points": 2},
		})
	})

	res := d.run("", "kb", "bases", "list")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "Admisión")
	assert.Contains(t, res.out, "2 pendientes")
}

func TestTagImport(t *testing.T) {
	pts := []models.PointInput{{PageContent: "a"}, {PageContent: "b", Metadata: map[string]any{"import_id": "x"}}}
	id := tagImport(pts)
	assert.Equal(t, id, pts[0].Metadata["import_id"])
	assert.Equal(t, "x", pts[1].Metadata["import_id"])
}

func TestKBShow_NotFoundNamesTheID(t *testing.T) {
	d := newDashboard(t)
	d.router.Get(kbPrefix+"/bases/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusNotFound, map[string]any{"error": "Base no encontrada"})
	})
	d.router.Get(kbPrefix+"/points/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusNotFound, map[string]any{"error": "Punto no encontrado"})
	})

	res := d.run("", "kb", "bases", "show", baseID)
	require.ErrorIs(t, res.err, errBaseNotFound)
	assert.Contains(t, res.err.Error(), baseID)

	res = d.run("", "kb", "points", "show", pointA)
	require.ErrorIs(t, res.err, errPointNotFound)
	assert.Contains(t, res.err.Error(), pointA)
}

func TestKBBasesCreate_Conflict(t *testing.T) {
	d := newDashboard(t)
	d.router.Post(kbPrefix+"/bases/create", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusConflict, map[string]any{"error": "La colección admisiones ya existe"})
	})

	res := d.run("", "kb", "bases", "create", "--nombre", "Admisiones", "--collection", "admisiones")
	require.ErrorIs(t, res.err, errBaseExists)
	assert.Contains(t, res.err.Error(), "La colección admisiones ya existe")
}
