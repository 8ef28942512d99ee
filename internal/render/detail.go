package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/leadpanel/panelctl/internal/models"
)

// BaseDetail renders one knowledge base.
func BaseDetail(w io.Writer, b *models.KnowledgeBase) {
	fmt.Fprintf(w, "%s (%s)\n", b.Nombre, b.ID)
	if b.Descripcion != "" {
		fmt.Fprintf(w, "  %s\n", b.Descripcion)
	}
	fmt.Fprintf(w, "  Colección:     %s\n", b.CollectionName)
	if b.EmbeddingModel != "" {
		fmt.Fprintf(w, "  Modelo:        %s (%d dims)\n", b.EmbeddingModel, b.VectorDimension)
	}
	fmt.Fprintf(w, "  Puntos:        %d (%d sincronizados, %d pendientes)\n", b.TotalPoints, b.SyncedPoints, b.PendingPoints)
	fmt.Fprintf(w, "  Estado:        %s\n", SyncLabel(*b))
	if b.LastSyncedAt.Valid {
		fmt.Fprintf(w, "  Última sync:   %s\n", DateTime(b.LastSyncedAt))
	} else {
		fmt.Fprintln(w, "  Última sync:   Sin sincronizar")
	}
	fmt.Fprintf(w, "  Creada:        %s\n", DateTime(b.CreatedAt))
}

// PointDetail renders one point with its full content and metadata.
func PointDetail(w io.Writer, p *models.Point) {
	fmt.Fprintf(w, "Punto %s [%s]\n", p.ID, PointSyncLabel(*p))
	fmt.Fprintf(w, "  Creado:      %s\n", DateTime(p.CreatedAt))
	fmt.Fprintf(w, "  Actualizado: %s\n", DateTime(p.UpdatedAt))
	if p.QdrantID.Valid {
		fmt.Fprintf(w, "  Qdrant ID:   %s\n", p.QdrantID.String)
	}
	if len(p.Metadata) > 0 {
		meta, err := json.MarshalIndent(p.Metadata, "  ", "  ")
		if err == nil {
			fmt.Fprintf(w, "  Metadata:    %s\n", meta)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.PageContent)
}

// UploadPreview renders the detected columns and the suggested mapping of
// an uploaded spreadsheet.
func UploadPreview(w io.Writer, up *models.UploadPreview) {
	fmt.Fprintf(w, "Archivo: %s (%d filas)\n\n", up.Filename, up.Preview.TotalRows)

	targets := make([]string, 0, len(up.SuggestedMapping))
	for target := range up.SuggestedMapping {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	rows := make([][]string, 0, len(targets))
	for _, target := range targets {
		rows = append(rows, []string{target, up.SuggestedMapping[target]})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, "Mapeo sugerido:")
		writeTable(w, []string{"CAMPO", "COLUMNA"}, rows)
		fmt.Fprintln(w)
	}

	if len(up.Preview.Columns) == 0 {
		return
	}
	fmt.Fprintln(w, "Vista previa:")
	preview := make([][]string, 0, len(up.Preview.Rows))
	for _, r := range up.Preview.Rows {
		cells := make([]string, 0, len(up.Preview.Columns))
		for _, col := range up.Preview.Columns {
			cells = append(cells, cut(cell(r[col]), labelWidth))
		}
		preview = append(preview, cells)
	}
	writeTable(w, up.Preview.Columns, preview)
}

// SyncResult summarizes a sync run.
func SyncResult(w io.Writer, r *models.SyncResult) {
	fmt.Fprintf(w, "Sincronizados: %d de %d · Errores: %d\n", r.Synced, r.TotalPoints, r.Errors)
	for _, e := range r.ErrorsDetail {
		fmt.Fprintf(w, "  ✗ %s\n", e)
	}
	if len(r.Cost) > 0 && string(r.Cost) != "null" {
		fmt.Fprintf(w, "Costo: %s\n", r.Cost)
	}
}

// PointImportResult summarizes a bulk point import.
func PointImportResult(w io.Writer, r *models.PointImportResult) {
	fmt.Fprintf(w, "Importados: %d\n", r.Imported)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", e)
	}
}

// ActivationResult summarizes promoted prospects.
func ActivationResult(w io.Writer, r *models.ActivationResult) {
	fmt.Fprintf(w, "Activados: %d · Omitidos: %d\n", r.Activated, r.Skipped)
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warn)
	}
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
