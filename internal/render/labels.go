package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"

	"github.com/leadpanel/panelctl/internal/models"
)

const empty = "-"

var estadoLabels = map[string]string{
	models.EstadoNuevo:          "Nuevo",
	models.EstadoCalificando:    "Calificando",
	models.EstadoPersuadiendo:   "Persuadiendo",
	models.EstadoListoMatricula: "Listo",
	models.EstadoEnProceso:      "Activo",
	models.EstadoPerdido:        "Perdido",
	"primer_contacto":           "Primer Contacto",
}

// EstadoLabel is the display name of a lead state. Unknown states are shown
// as sent.
func EstadoLabel(estado string) string {
	if label, ok := estadoLabels[estado]; ok {
		return label
	}
	if estado == "" {
		return empty
	}
	return estado
}

// PlanLabel is the plan cell of the list.
func PlanLabel(plan string) string {
	if plan == "" {
		return empty
	}
	return plan
}

// PlanBadge is the plan shown in the transcript header.
func PlanBadge(plan string) string {
	if plan == "" {
		return "Sin plan"
	}
	return plan
}

// FollowupBadges renders the day 3/5/6/8 follow-ups as "3✓ 5✓ 6· 8·".
func FollowupBadges(f models.Followups) string {
	parts := make([]string, 0, 4)
	for _, d := range f.Ordered() {
		mark := "·"
		if d.Enviado {
			mark = "✓"
		}
		parts = append(parts, fmt.Sprintf("%d%s", d.Day, mark))
	}
	return strings.Join(parts, " ")
}

// FollowupTitle describes one follow-up, e.g. "Día 3: Enviado".
func FollowupTitle(day int, f models.Followup) string {
	if !f.Enviado {
		return fmt.Sprintf("Día %d: Pendiente", day)
	}
	if f.Fecha.Valid && f.Fecha.String != "" {
		return fmt.Sprintf("Día %d: Enviado (%s)", day, DateTime(f.Fecha))
	}
	return fmt.Sprintf("Día %d: Enviado", day)
}

// SyncLabel describes the sync state of a base. The backend label wins
// when it sent one.
func SyncLabel(b models.KnowledgeBase) string {
	if b.SyncLabel != "" {
		return b.SyncLabel
	}
	switch b.Status() {
	case models.SyncEmpty:
		return "Vacía"
	case models.SyncSynced:
		return "Sincronizado"
	case models.SyncPartial:
		return fmt.Sprintf("%d pendientes", b.PendingPoints)
	default:
		return "Sin sincronizar"
	}
}

// PointSyncLabel is the badge of one point.
func PointSyncLabel(p models.Point) string {
	if p.Synced {
		return "Sync"
	}
	return "Pendiente"
}

// Text shows an optional column, "-" when NULL or blank.
func Text(v null.String) string {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return empty
	}
	return v.String
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return empty
	}
	return s
}

// Layouts the backend has been seen to emit for timestamps. Flask's
// jsonify uses the RFC 1123 form for datetimes.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date formats a timestamp as YYYY-MM-DD. Unparseable values are shown raw.
func Date(v null.String) string {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return empty
	}
	if t, ok := parseTime(v.String); ok {
		return t.Format("2006-01-02")
	}
	return v.String
}

// DateTime formats a timestamp as YYYY-MM-DD HH:MM.
func DateTime(v null.String) string {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return empty
	}
	if t, ok := parseTime(v.String); ok {
		return t.Format("2006-01-02 15:04")
	}
	return v.String
}
