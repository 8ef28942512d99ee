package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leadpanel/panelctl/internal/listview"
	"github.com/leadpanel/panelctl/internal/models"
)

// Checkbox cells shown while select mode is on.
const (
	Checked   = "[x]"
	Unchecked = "[ ]"
)

func checkbox[R any, K comparable](s listview.Snapshot[R, K], id K) string {
	if s.IsSelected(id) {
		return Checked
	}
	return Unchecked
}

// withSelect prepends the checkbox column when select mode is on.
func withSelect[R any, K comparable](s listview.Snapshot[R, K], header []string, id func(R) K, row func(R) []string) ([]string, [][]string) {
	rows := make([][]string, 0, len(s.Items))
	if s.SelectMode {
		head := Unchecked
		if s.AllSelected {
			head = Checked
		}
		header = append([]string{head}, header...)
	}
	for _, item := range s.Items {
		cells := row(item)
		if s.SelectMode {
			cells = append([]string{checkbox(s, id(item))}, cells...)
		}
		rows = append(rows, cells)
	}
	return header, rows
}

// Prospects renders the raw prospects page.
func Prospects(w io.Writer, s listview.Snapshot[models.Prospect, int64]) {
	if len(s.Items) == 0 {
		fmt.Fprintln(w, "No hay prospectos para mostrar")
		Footer(w, s)
		return
	}
	header, rows := withSelect(s,
		[]string{"ID", "NOMBRE", "APELLIDOS", "EMAIL", "TELÉFONO", "PROGRAMA", "PROPIETARIO", "FECHA"},
		func(p models.Prospect) int64 { return p.ID },
		func(p models.Prospect) []string {
			return []string{
				strconv.FormatInt(p.ID, 10),
				cut(orDash(p.Nombre), nameWidth),
				cut(orDash(p.Apellidos), nameWidth),
				cut(Text(p.Email1), emailWidth),
				Text(p.Telefono1),
				cut(Text(p.Programa), labelWidth),
				cut(Text(p.Propietario), labelWidth),
				Date(p.FechaCreacion),
			}
		})
	writeTable(w, header, rows)
	Footer(w, s)
}

// ActiveProspects renders the active prospects page.
func ActiveProspects(w io.Writer, s listview.Snapshot[models.ActiveProspect, string]) {
	if len(s.Items) == 0 {
		fmt.Fprintln(w, "No hay prospectos para mostrar")
		Footer(w, s)
		return
	}
	header, rows := withSelect(s,
		[]string{"ID", "NOMBRE", "APELLIDO", "CARRERA", "PLAN", "EXPERIENCIA", "ESTADO", "DÍAS", "MENSAJES", "FOLLOWUPS", "TELÉFONO"},
		func(p models.ActiveProspect) string { return p.ID },
		func(p models.ActiveProspect) []string {
			return []string{
				p.ID,
				cut(orDash(p.Nombre), nameWidth),
				cut(orDash(p.Apellido), nameWidth),
				cut(orDash(p.Carrera), labelWidth),
				PlanLabel(p.Plan),
				fmt.Sprintf("%g años", p.Experiencia),
				EstadoLabel(p.Estado),
				strconv.Itoa(p.DiasTranscurridos),
				strconv.Itoa(p.MensajeCount),
				FollowupBadges(p.Followups),
				orDash(p.Telefono),
			}
		})
	writeTable(w, header, rows)
	Footer(w, s)
}

// Points renders one page of knowledge points.
func Points(w io.Writer, s listview.Snapshot[models.Point, string]) {
	if len(s.Items) == 0 {
		fmt.Fprintln(w, "No hay puntos")
		Footer(w, s)
		return
	}
	header, rows := withSelect(s,
		[]string{"ID", "ESTADO", "CONTENIDO", "CREADO"},
		func(p models.Point) string { return p.ID },
		func(p models.Point) []string {
			preview := p.ContentPreview
			if preview == "" {
				preview = p.PageContent
			}
			return []string{
				p.ID,
				PointSyncLabel(p),
				cut(oneLine(preview), previewWidth),
				DateTime(p.CreatedAt),
			}
		})
	writeTable(w, header, rows)
	Footer(w, s)
}

// Bases renders every knowledge base.
func Bases(w io.Writer, bases []models.KnowledgeBase) {
	if len(bases) == 0 {
		fmt.Fprintln(w, "No hay bases de conocimiento")
		return
	}
	rows := make([][]string, 0, len(bases))
	for _, b := range bases {
		rows = append(rows, []string{
			b.ID,
			cut(b.Nombre, nameWidth),
			b.CollectionName,
			strconv.Itoa(b.TotalPoints),
			strconv.Itoa(b.SyncedPoints),
			SyncLabel(b),
			DateTime(b.LastSyncedAt),
		})
	}
	writeTable(w, []string{"ID", "NOMBRE", "COLECCIÓN", "PUNTOS", "SINCRONIZADOS", "ESTADO", "ÚLTIMA SYNC"}, rows)
}

// Footer prints paging, sort, search, filter and selection state.
func Footer[R any, K comparable](w io.Writer, s listview.Snapshot[R, K]) {
	q := s.Query
	from, to := s.Range()
	fmt.Fprintf(w, "\nPágina %d de %d · Mostrando %d-%d de %d\n", q.Page, max(s.TotalPages, 1), from, to, s.Total)

	var parts []string
	if q.SortColumn != "" {
		parts = append(parts, fmt.Sprintf("Orden: %s %s", q.SortColumn, q.SortOrder))
	}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("Búsqueda: %q", q.Search))
	}
	if f := FilterSummary(q.Filters); f != "" {
		parts = append(parts, "Filtros: "+f)
	}
	if s.SelectMode {
		parts = append(parts, fmt.Sprintf("Seleccionados: %d", len(s.Selected)))
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, strings.Join(parts, " · "))
	}
}

// FilterSummary shows filters as "estado=[nuevo, (Vacío)] plan=[Regular]".
func FilterSummary(f listview.Filters) string {
	cols := f.Columns()
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		labels := make([]string, 0, len(f[col]))
		for _, v := range f[col] {
			labels = append(labels, listview.ValueLabel(v))
		}
		parts = append(parts, fmt.Sprintf("%s=[%s]", col, strings.Join(labels, ", ")))
	}
	return strings.Join(parts, " ")
}
