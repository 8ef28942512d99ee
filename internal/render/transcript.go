package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/leadpanel/panelctl/internal/models"
)

// SenderName is the label shown above a chat message.
func SenderName(m models.ChatMessage, p *models.ChatProspect) string {
	switch m.Sender() {
	case models.RoleAssistant:
		return "AI Assistant"
	case models.RoleUser:
		if p != nil && strings.TrimSpace(p.Nombre) != "" {
			return p.Nombre
		}
		return "Usuario"
	default:
		return "Sistema"
	}
}

// Transcript renders a lead's conversation with a header describing the
// lead. Messages are numbered from 1 in the order received.
func Transcript(w io.Writer, t *models.Transcript) {
	if p := t.Prospecto; p != nil {
		fmt.Fprintln(w, strings.TrimSpace(p.Nombre+" "+p.Apellido))
		fmt.Fprintf(w, "  Email:    %s\n", orDefault(p.Email, "Sin email"))
		fmt.Fprintf(w, "  Teléfono: %s\n", orDefault(p.Telefono, "Sin teléfono"))
		fmt.Fprintf(w, "  Carrera:  %s\n", orDefault(p.Carrera, "Sin carrera"))
		fmt.Fprintf(w, "  Plan:     %s\n", PlanBadge(p.Plan))
		if p.Estado != "" {
			fmt.Fprintf(w, "  Estado:   %s\n", EstadoLabel(p.Estado))
		}
		if p.DerivadoAHumano {
			fmt.Fprintf(w, "  Derivado a: %s\n", orDefault(p.AgenteAsignado, "agente humano"))
		}
		fmt.Fprintln(w)
	}

	if len(t.Mensajes) == 0 {
		fmt.Fprintln(w, "No hay mensajes en esta conversación")
		return
	}

	for i, m := range t.Mensajes {
		fmt.Fprintf(w, "── Mensaje #%d · %s\n", i+1, SenderName(m, t.Prospecto))
		fmt.Fprintln(w, m.Content)
		fmt.Fprintln(w)
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
