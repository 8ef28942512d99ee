package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpanel/panelctl/internal/listview"
	"github.com/leadpanel/panelctl/internal/models"
)

func activeSnapshot(t *testing.T, rows []models.ActiveProspect, selectIDs ...string) listview.Snapshot[models.ActiveProspect, string] {
	t.Helper()
	ctl, err := listview.New(listview.Options[models.ActiveProspect, string]{
		View: listview.ViewConfig{Name: "prospectos_activos", DefaultSort: "nombre", DefaultOrder: listview.Asc},
		Source: listview.SourceFunc[models.ActiveProspect](func(ctx context.Context, q listview.Query) (listview.Result[models.ActiveProspect], error) {
			return listview.Result[models.ActiveProspect]{Items: rows, Total: 120, Page: q.Page}, nil
		}),
		ID: func(p models.ActiveProspect) string { return p.ID },
	})
	require.NoError(t, err)
	require.NoError(t, ctl.ApplyFilter(context.Background(), "estado", []null.String{listview.Value("nuevo"), listview.NullValue()}))
	if len(selectIDs) > 0 {
		ctl.ToggleSelectMode()
		for _, id := range selectIDs {
			ctl.ToggleRow(id)
		}
	}
	return ctl.Snapshot()
}

func TestEstadoLabel(t *testing.T) {
	tests := map[string]string{
		"listo_matricula": "Listo",
		"en_proceso":      "Activo",
		"primer_contacto": "Primer Contacto",
		"nuevo":           "Nuevo",
		"desconocido":     "desconocido",
		"":                "-",
	}
	for in, want := range tests {
		assert.Equal(t, want, EstadoLabel(in), in)
	}
}

func TestPlanLabels(t *testing.T) {
	assert.Equal(t, "Sin plan", PlanBadge(""))
	assert.Equal(t, "Regular", PlanBadge("Regular"))
	assert.Equal(t, "-", PlanLabel(""))
}

func TestFollowupBadges(t *testing.T) {
	f := models.Followups{
		Dia3: models.Followup{Enviado: true, Fecha: null.StringFrom("2025-01-03T10:00:00Z")},
		Dia5: models.Followup{Enviado: true},
	}
	assert.Equal(t, "3✓ 5✓ 6· 8·", FollowupBadges(f))
	assert.Equal(t, "Día 3: Enviado (2025-01-03 10:00)", FollowupTitle(3, f.Dia3))
	assert.Equal(t, "Día 5: Enviado", FollowupTitle(5, f.Dia5))
	assert.Equal(t, "Día 8: Pendiente", FollowupTitle(8, f.Dia8))
}

func TestSyncLabel(t *testing.T) {
	tests := []struct {
		name string
		base models.KnowledgeBase
		want string
	}{
		{"empty", models.KnowledgeBase{}, "Vacía"},
		{"synced", models.KnowledgeBase{TotalPoints: 4, SyncedPoints: 4}, "Sincronizado"},
		{"partial", models.KnowledgeBase{TotalPoints: 4, SyncedPoints: 1, PendingPoints: 3}, "3 pendientes"},
		{"pending", models.KnowledgeBase{TotalPoints: 4, PendingPoints: 4}, "Sin sincronizar"},
		{"backend label", models.KnowledgeBase{SyncLabel: "Listo"}, "Listo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SyncLabel(tt.base))
		})
	}
}

func TestDates(t *testing.T) {
	assert.Equal(t, "2025-03-01", Date(null.StringFrom("Sat, 01 Mar 2025 12:30:00 GMT")))
	assert.Equal(t, "2025-03-01 12:30", DateTime(null.StringFrom("2025-03-01 12:30:00")))
	assert.Equal(t, "-", Date(null.String{}))
	assert.Equal(t, "ayer", Date(null.StringFrom("ayer")))
}

func TestActiveProspectsTable(t *testing.T) {
	rows := []models.ActiveProspect{
		{ID: "a1", Nombre: "Camila", Apellido: "Rojas", Carrera: "Ingeniería", Plan: "Regular", Estado: "listo_matricula", Experiencia: 3, MensajeCount: 12},
		{ID: "a2", Nombre: "Diego", Estado: "en_proceso"},
	}
	s := activeSnapshot(t, rows)

	var buf bytes.Buffer
	ActiveProspects(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "Camila")
	assert.Contains(t, out, "Listo")
	assert.Contains(t, out, "Activo")
	assert.Contains(t, out, "3 años")
	assert.NotContains(t, out, Unchecked)
	assert.Contains(t, out, "Página 1 de 3 · Mostrando 1-2 de 120")
	assert.Contains(t, out, "Orden: nombre ASC")
	assert.Contains(t, out, "Filtros: estado=[nuevo, (Vacío)]")
}

func TestSelectColumn(t *testing.T) {
	rows := []models.ActiveProspect{{ID: "a1", Nombre: "Camila"}, {ID: "a2", Nombre: "Diego"}}
	s := activeSnapshot(t, rows, "a2")

	var buf bytes.Buffer
	ActiveProspects(&buf, s)
	lines := strings.Split(buf.String(), "\n")

	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], Unchecked), "header checkbox unchecked while one row is unselected")
	assert.True(t, strings.HasPrefix(lines[1], Unchecked))
	assert.True(t, strings.HasPrefix(lines[2], Checked))
	assert.Contains(t, buf.String(), "Seleccionados: 1")
}

func TestEmptyList(t *testing.T) {
	s := activeSnapshot(t, nil)
	var buf bytes.Buffer
	ActiveProspects(&buf, s)
	assert.Contains(t, buf.String(), "No hay prospectos para mostrar")
	assert.Contains(t, buf.String(), "Mostrando 0-0 de 120")
}

func TestTranscript(t *testing.T) {
	tr := &models.Transcript{
		Prospecto: &models.ChatProspect{Nombre: "Camila", Apellido: "Rojas", Telefono: "+56911112222"},
		Mensajes: []models.ChatMessage{
			{Role: "user", Content: "Hola"},
			{Type: "ai", Content: "Hola Camila, ¿en qué te ayudo?"},
			{Role: "tool", Content: "lookup"},
		},
	}
	var buf bytes.Buffer
	Transcript(&buf, tr)
	out := buf.String()

	assert.Contains(t, out, "Camila Rojas")
	assert.Contains(t, out, "Sin email")
	assert.Contains(t, out, "Sin plan")
	assert.Contains(t, out, "Mensaje #1 · Camila")
	assert.Contains(t, out, "Mensaje #2 · AI Assistant")
	assert.Contains(t, out, "Mensaje #3 · Sistema")
}

func TestSenderNameWithoutProspect(t *testing.T) {
	assert.Equal(t, "Usuario", SenderName(models.ChatMessage{Role: "human"}, nil))
	assert.Equal(t, "AI Assistant", SenderName(models.ChatMessage{Role: "assistant"}, nil))
}

func TestEmptyTranscript(t *testing.T) {
	var buf bytes.Buffer
	Transcript(&buf, &models.Transcript{})
	assert.Equal(t, "No hay mensajes en esta conversación\n", buf.String())
}

func TestActiveStats(t *testing.T) {
	var buf bytes.Buffer
	ActiveStats(&buf, &models.ActiveStats{
		TotalActivos: 4,
		PorEstado:    []models.EstadoCount{{Estado: "en_proceso", Count: 3}, {Estado: "perdido", Nombre: "Perdidos", Count: 1}},
	})
	out := buf.String()
	assert.Contains(t, out, "Prospectos activos: 4")
	assert.Contains(t, out, "Activo")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "Perdidos")
}

func TestCut(t *testing.T) {
	assert.Equal(t, "abc", cut("abc", 5))
	assert.Equal(t, "ab...", cut("abcdefg", 5))
	assert.Equal(t, "a b", oneLine(" a\n  b "))
}
