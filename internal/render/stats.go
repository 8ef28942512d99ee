package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/leadpanel/panelctl/internal/models"
)

// ProspectStats renders the totals, per-owner breakdown and latest batches.
func ProspectStats(w io.Writer, st *models.ProspectStats) {
	fmt.Fprintf(w, "Total de prospectos: %d\n", st.Total)

	if len(st.PorPropietario) > 0 {
		fmt.Fprintln(w, "\nPor propietario:")
		rows := make([][]string, 0, len(st.PorPropietario))
		for _, o := range st.PorPropietario {
			rows = append(rows, []string{orDash(o.Propietario), strconv.Itoa(o.Count)})
		}
		writeTable(w, []string{"PROPIETARIO", "CANTIDAD"}, rows)
	}

	if len(st.UltimosLotes) > 0 {
		fmt.Fprintln(w, "\nÚltimos lotes:")
		rows := make([][]string, 0, len(st.UltimosLotes))
		for _, b := range st.UltimosLotes {
			rows = append(rows, []string{orDash(b.LoteImportacion), strconv.Itoa(b.Count), DateTime(b.Fecha)})
		}
		writeTable(w, []string{"LOTE", "CANTIDAD", "FECHA"}, rows)
	}
}

// ActiveStats renders the per-state breakdown.
func ActiveStats(w io.Writer, st *models.ActiveStats) {
	fmt.Fprintf(w, "Prospectos activos: %d\n", st.TotalActivos)
	if len(st.PorEstado) == 0 {
		return
	}
	rows := make([][]string, 0, len(st.PorEstado))
	for _, e := range st.PorEstado {
		name := e.Nombre
		if name == "" {
			name = EstadoLabel(e.Estado)
		}
		rows = append(rows, []string{name, strconv.Itoa(e.Count), percent(e.Count, st.TotalActivos)})
	}
	fmt.Fprintln(w)
	writeTable(w, []string{"ESTADO", "CANTIDAD", "%"}, rows)
}

// BaseStats renders the aggregate of every knowledge base.
func BaseStats(w io.Writer, st models.BaseStats) {
	fmt.Fprintf(w, "Bases: %d · Puntos: %d · Sincronizados: %d · Pendientes: %d\n",
		st.TotalBases, st.TotalPoints, st.SyncedPoints, st.PendingPoints)
	if st.LastSync.Valid {
		fmt.Fprintf(w, "Última sincronización: %s\n", DateTime(st.LastSync))
	}
}

func percent(n, total int) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(n)*100/float64(total))
}
