package models

import (
	"github.com/aarondl/null/v8"
)

// Prospect is a row of the raw prospects list.
type Prospect struct {
	ID            int64       `json:"id"`
	Nombre        string      `json:"nombre"`
	Apellidos     string      `json:"apellidos"`
	Email1        null.String `json:"email_1"`
	Telefono1     null.String `json:"telefono_1"`
	FechaCreacion null.String `json:"fecha_creacion"`
	Propietario   null.String `json:"propietario"`
	Programa      null.String `json:"programa"`
}

// FullName joins nombre and apellidos.
func (p Prospect) FullName() string {
	if p.Apellidos == "" {
		return p.Nombre
	}
	return p.Nombre + " " + p.Apellidos
}

// Prospect list columns.
var (
	ProspectSortColumns   = []string{"nombre", "apellidos", "email_1", "telefono_1", "programa", "propietario", "fecha_creacion", "created_at"}
	ProspectFilterColumns = []string{"nombre", "apellidos", "email_1", "telefono_1", "programa", "propietario"}
)

// ProspectTargetFields are the columns an imported spreadsheet can map onto.
var ProspectTargetFields = []string{
	"nombre", "apellidos", "fecha_creacion", "propietario", "canal", "referrer",
	"email_1", "email_2", "telefono_1", "telefono_2", "programa", "rut",
	"carrera_postula", "experiencia", "urgencia",
}

// OwnerCount is one row of the per-owner breakdown.
type OwnerCount struct {
	Propietario string `json:"propietario"`
	Count       int    `json:"count"`
}

// BatchCount is one import batch in the stats panel.
type BatchCount struct {
	LoteImportacion string      `json:"lote_importacion"`
	Count           int         `json:"count"`
	Fecha           null.String `json:"fecha"`
}

// ProspectStats is the stats panel of the prospects view.
type ProspectStats struct {
	Total          int          `json:"total"`
	PorPropietario []OwnerCount `json:"por_propietario"`
	UltimosLotes   []BatchCount `json:"ultimos_lotes"`
}

// NewProspect is the manual-entry form. Empty fields are omitted.
type NewProspect struct {
	Nombre         string `json:"nombre" validate:"required"`
	Apellidos      string `json:"apellidos" validate:"required"`
	FechaCreacion  string `json:"fecha_creacion,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Propietario    string `json:"propietario,omitempty"`
	Canal          string `json:"canal,omitempty"`
	Referrer       string `json:"referrer,omitempty"`
	Email1         string `json:"email_1,omitempty" validate:"omitempty,email"`
	Email2         string `json:"email_2,omitempty" validate:"omitempty,email"`
	Telefono1      string `json:"telefono_1,omitempty" validate:"omitempty,min=8,max=20"`
	Telefono2      string `json:"telefono_2,omitempty" validate:"omitempty,min=8,max=20"`
	Programa       string `json:"programa,omitempty"`
	Rut            string `json:"rut,omitempty"`
	CarreraPostula string `json:"carrera_postula,omitempty"`
	Experiencia    string `json:"experiencia,omitempty"`
	Urgencia       string `json:"urgencia,omitempty"`
}

// UploadPreview is the server's view of an uploaded spreadsheet.
type UploadPreview struct {
	FileID           string            `json:"file_id"`
	Filename         string            `json:"filename"`
	Preview          SheetPreview      `json:"preview"`
	SuggestedMapping map[string]string `json:"suggested_mapping"`
	TargetFields     []string          `json:"target_fields"`
}

// SheetPreview holds the first rows of an uploaded sheet.
type SheetPreview struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	TotalRows int              `json:"total_rows"`
}

// ImportRequest maps target field to source column.
type ImportRequest struct {
	Mapping map[string]string `json:"mapping"`
}

// ImportResult reports a finished spreadsheet import.
type ImportResult struct {
	Message       string `json:"message"`
	LoteID        string `json:"lote_id"`
	ImportedCount int    `json:"imported_count"`
}

// ActivationResult reports promoted prospects.
type ActivationResult struct {
	Message   string   `json:"message"`
	Activated int      `json:"activated"`
	Skipped   int      `json:"skipped"`
	Warnings  []string `json:"warnings,omitempty"`
}
