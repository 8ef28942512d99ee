package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointsFile_Spanish(t *testing.T) {
	in := `[
		{"contenidoPagina": "  Horario de clases: lunes a viernes  ", "metadatos": {"tema": "horarios"}},
		{"contenidoPagina": "   ", "metadatos": {}},
		{"contenidoPagina": "Arancel 2025"}
	]`
	f, err := ParsePointsFile(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, LayoutSpanish, f.Layout)
	require.Len(t, f.Points, 2)
	assert.Equal(t, "Horario de clases: lunes a viernes", f.Points[0].PageContent)
	assert.Equal(t, "horarios", f.Points[0].Metadata["tema"])
	assert.NotNil(t, f.Points[1].Metadata)
	assert.Equal(t, []SkippedPoint{{Index: 2, Reason: "empty content"}}, f.Skipped)
}

func TestParsePointsFile_English(t *testing.T) {
	in := `[{"pageContent": "Admission FAQ", "metadata": {"lang": "en"}}, {"foo": 1}]`
	f, err := ParsePointsFile(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, LayoutEnglish, f.Layout)
	require.Len(t, f.Points, 1)
	assert.Equal(t, "en", f.Points[0].Metadata["lang"])
	require.Len(t, f.Skipped, 1)
	assert.Equal(t, 2, f.Skipped[0].Index)
}

func TestParsePointsFile_Errors(t *testing.T) {
	_, err := ParsePointsFile(strings.NewReader(`{"points": []}`))
	assert.Error(t, err)

	_, err = ParsePointsFile(strings.NewReader(`[]`))
	assert.ErrorIs(t, err, ErrNoPoints)

	f, err := ParsePointsFile(strings.NewReader(`[{"pageContent": ""}]`))
	assert.ErrorIs(t, err, ErrNoPoints)
	require.NotNil(t, f)
	assert.Len(t, f.Skipped, 1)
}

func TestParsePointsFile_BadEntriesSkippedIndividually(t *testing.T) {
	in := `[{"pageContent": "a"}, "oops", {"pageContent": 5}, null, [1], {"pageContent": true}]`
	f, err := ParsePointsFile(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, LayoutEnglish, f.Layout)

	var contents []string
	for _, p := range f.Points {
		contents = append(contents, p.PageContent)
	}
	assert.Equal(t, []string{"a", "5", "true"}, contents)
	assert.Equal(t, []SkippedPoint{
		{Index: 2, Reason: SkipNotObject},
		{Index: 4, Reason: SkipNotObject},
		{Index: 5, Reason: SkipNotObject},
	}, f.Skipped)
}

func TestParsePointsFile_EnglishKeysWinOverEmptySpanish(t *testing.T) {
	in := `[
		{"contenidoPagina": "", "pageContent": "b"},
		{"contenidoPagina": "c", "pageContent": ""},
		{"pageContent": "d", "metadata": {"lang": "en"}, "metadatos": {"lang": "es"}},
		{"pageContent": "e", "metadata": null, "metadatos": {"lang": "es"}}
	]`
	f, err := ParsePointsFile(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, LayoutEnglish, f.Layout, "an empty contenidoPagina does not mark the file Spanish")
	require.Len(t, f.Points, 4)
	assert.Equal(t, "b", f.Points[0].PageContent)
	assert.Equal(t, "c", f.Points[1].PageContent)
	assert.Equal(t, "en", f.Points[2].Metadata["lang"])
	assert.Equal(t, "es", f.Points[3].Metadata["lang"])
	assert.Empty(t, f.Skipped)
}

func TestParsePointsFile_UnknownLayout(t *testing.T) {
	f, err := ParsePointsFile(strings.NewReader(`["x", {"contenidoPagina": "y"}]`))
	require.NoError(t, err)
	assert.Equal(t, LayoutUnknown, f.Layout)
	require.Len(t, f.Points, 1)
}

func TestPointInput_WireKeys(t *testing.T) {
	raw, err := json.Marshal(PointImportRequest{Points: []PointInput{{PageContent: "x", Metadata: map[string]any{}}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"points":[{"pageContent":"x","metadata":{}}]}`, string(raw))

	raw, err = json.Marshal(PointWrite{PageContent: "y"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"page_content":"y","metadata":null}`, string(raw))
}

func TestKnowledgeBaseStatus(t *testing.T) {
	tests := []struct {
		base KnowledgeBase
		want string
	}{
		{KnowledgeBase{}, SyncEmpty},
		{KnowledgeBase{TotalPoints: 4, SyncedPoints: 4}, SyncSynced},
		{KnowledgeBase{TotalPoints: 4, SyncedPoints: 1}, SyncPartial},
		{KnowledgeBase{TotalPoints: 4}, SyncPending},
		{KnowledgeBase{TotalPoints: 4, SyncStatus: SyncSynced}, SyncSynced},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.base.Status())
	}
}

func TestChatMessageSender(t *testing.T) {
	assert.Equal(t, RoleUser, ChatMessage{Role: "user"}.Sender())
	assert.Equal(t, RoleUser, ChatMessage{Type: "human"}.Sender())
	assert.Equal(t, RoleAssistant, ChatMessage{Role: "ai"}.Sender())
	assert.Equal(t, RoleAssistant, ChatMessage{Role: "assistant"}.Sender())
	assert.Equal(t, "system", ChatMessage{Role: "tool"}.Sender())
}

func TestActiveProspect_Decode(t *testing.T) {
	in := `{"id":"42","nombre":"María","apellido":"Soto","experiencia":3,"descuento_actual":15.5,
		"dias_transcurridos":6,"agente_asignado":null,
		"followups":{"dia3":{"enviado":true,"fecha":"2025-01-03T10:00:00"},"dia5":{"enviado":false,"fecha":null}}}`
	var p ActiveProspect
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	assert.Equal(t, "María Soto", p.FullName())
	assert.False(t, p.AgenteAsignado.Valid)
	assert.True(t, p.Followups.Dia3.Enviado)
	assert.Equal(t, "2025-01-03T10:00:00", p.Followups.Dia3.Fecha.String)
	assert.False(t, p.Followups.Dia5.Fecha.Valid)
	days := p.Followups.Ordered()
	assert.Equal(t, 3, days[0].Day)
	assert.Equal(t, 8, days[3].Day)
}
