package models

import (
	"github.com/aarondl/null/v8"
)

// Followup is one scheduled follow-up message.
type Followup struct {
	Enviado bool        `json:"enviado"`
	Fecha   null.String `json:"fecha"`
}

// Followups are the day 3/5/6/8 follow-ups of an active prospect.
type Followups struct {
	Dia3 Followup `json:"dia3"`
	Dia5 Followup `json:"dia5"`
	Dia6 Followup `json:"dia6"`
	Dia8 Followup `json:"dia8"`
}

// Ordered pairs each follow-up with its day number.
func (f Followups) Ordered() []struct {
	Day int
	Followup
} {
	return []struct {
		Day int
		Followup
	}{{3, f.Dia3}, {5, f.Dia5}, {6, f.Dia6}, {8, f.Dia8}}
}

// ActiveProspect is a lead the assistant is working.
type ActiveProspect struct {
	ID                  string      `json:"id"`
	Nombre              string      `json:"nombre"`
	Apellido            string      `json:"apellido"`
	Email               string      `json:"email"`
	Telefono            string      `json:"telefono"`
	Carrera             string      `json:"carrera"`
	Experiencia         float64     `json:"experiencia"`
	Plan                string      `json:"plan"`
	Estado              string      `json:"estado"`
	NivelIntencion      string      `json:"nivel_intencion"`
	DiasTranscurridos   int         `json:"dias_transcurridos"`
	DescuentoActual     float64     `json:"descuento_actual"`
	FechaPrimerContacto string      `json:"fecha_primer_contacto"`
	MensajeCount        int         `json:"mensaje_count"`
	Followups           Followups   `json:"followups"`
	DerivadoAHumano     bool        `json:"derivado_a_humano"`
	AgenteAsignado      null.String `json:"agente_asignado"`
	ChatStatus          string      `json:"chat_status"`
	Notas               string      `json:"notas"`
	FechaDerivacion     null.String `json:"fecha_derivacion"`
	RazonDerivacion     string      `json:"razon_derivacion"`
	CreatedAt           null.String `json:"created_at"`
	UpdatedAt           null.String `json:"updated_at"`
}

// FullName joins nombre and apellido.
func (p ActiveProspect) FullName() string {
	if p.Apellido == "" {
		return p.Nombre
	}
	return p.Nombre + " " + p.Apellido
}

// Active prospect list columns.
var (
	ActiveSortColumns   = []string{"nombre", "apellido", "carrera", "dias_transcurridos", "mensaje_count", "fecha_primer_contacto"}
	ActiveFilterColumns = []string{"estado", "carrera", "plan"}
)

// Lead states accepted by the state-change endpoint.
const (
	EstadoNuevo          = "nuevo"
	EstadoCalificando    = "calificando"
	EstadoPersuadiendo   = "persuadiendo"
	EstadoListoMatricula = "listo_matricula"
	EstadoPerdido        = "perdido"
	EstadoEnProceso      = "en_proceso"
)

// ValidEstados lists the states a lead can be moved to.
var ValidEstados = []string{
	EstadoNuevo, EstadoCalificando, EstadoPersuadiendo,
	EstadoListoMatricula, EstadoPerdido, EstadoEnProceso,
}

// EstadoCount is one bar of the per-state breakdown.
type EstadoCount struct {
	Estado string `json:"estado"`
	Nombre string `json:"nombre"`
	Color  string `json:"color"`
	Count  int    `json:"count"`
}

// ActiveStats is the stats panel of the active prospects view.
type ActiveStats struct {
	TotalActivos int           `json:"total_activos"`
	PorEstado    []EstadoCount `json:"por_estado"`
}

// FilterOptions are the distinct values behind the column filters.
type FilterOptions struct {
	Carreras []string `json:"carreras"`
	Planes   []string `json:"planes"`
	Estados  []string `json:"estados"`
}

// ByColumn maps FilterOptions onto the list's filter column names.
func (o FilterOptions) ByColumn() map[string][]string {
	return map[string][]string{
		"carrera": o.Carreras,
		"plan":    o.Planes,
		"estado":  o.Estados,
	}
}

// Message roles as returned by the transcript endpoint. Older rows still
// carry the raw human/ai types.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleHuman     = "human"
	RoleAI        = "ai"
)

// ChatMessage is one message of a lead's conversation.
type ChatMessage struct {
	ID        int64       `json:"id"`
	Role      string      `json:"role"`
	Type      string      `json:"type,omitempty"`
	Content   string      `json:"content"`
	Timestamp null.String `json:"timestamp"`
}

// Sender classifies the message as "user", "assistant" or "system".
func (m ChatMessage) Sender() string {
	role := m.Role
	if role == "" {
		role = m.Type
	}
	switch role {
	case RoleUser, RoleHuman:
		return RoleUser
	case RoleAssistant, RoleAI:
		return RoleAssistant
	default:
		return "system"
	}
}

// ChatProspect is the lead summary attached to a transcript.
type ChatProspect struct {
	Nombre              string    `json:"nombre"`
	Apellido            string    `json:"apellido"`
	Email               string    `json:"email"`
	Telefono            string    `json:"telefono"`
	Carrera             string    `json:"carrera"`
	Plan                string    `json:"plan"`
	Estado              string    `json:"estado"`
	NivelIntencion      string    `json:"nivel_intencion"`
	DescuentoActual     float64   `json:"descuento_actual"`
	FechaPrimerContacto string    `json:"fecha_primer_contacto"`
	Followups           Followups `json:"followups"`
	DerivadoAHumano     bool      `json:"derivado_a_humano"`
	AgenteAsignado      string    `json:"agente_asignado"`
	FechaDerivacion     string    `json:"fecha_derivacion"`
	RazonDerivacion     string    `json:"razon_derivacion"`
	ChatStatus          string    `json:"chat_status"`
	Notas               string    `json:"notas"`
}

// Transcript is the response of the messages endpoint.
type Transcript struct {
	Mensajes  []ChatMessage `json:"mensajes"`
	Prospecto *ChatProspect `json:"prospecto"`
}

// StateChangeRequest moves leads to a new state.
type StateChangeRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,required"`
	Estado string   `json:"estado" validate:"required,oneof=nuevo calificando persuadiendo listo_matricula perdido en_proceso"`
}

// StateChangeResult reports updated leads.
type StateChangeResult struct {
	Message    string   `json:"message"`
	UpdatedIDs []string `json:"updated_ids"`
}
