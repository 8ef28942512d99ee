package models

import (
	"encoding/json"

	"github.com/aarondl/null/v8"
)

// Sync status of a knowledge base.
const (
	SyncEmpty   = "empty"
	SyncSynced  = "synced"
	SyncPartial = "partial"
	SyncPending = "pending"
)

// KnowledgeBase is one vector collection and its bookkeeping.
type KnowledgeBase struct {
	ID              string      `json:"id"`
	Nombre          string      `json:"nombre"`
	Descripcion     string      `json:"descripcion"`
	CollectionName  string      `json:"collection_name"`
	VectorDimension int         `json:"vector_dimension,omitempty"`
	EmbeddingModel  string      `json:"embedding_model,omitempty"`
	TotalPoints     int         `json:"total_points"`
	SyncedPoints    int         `json:"synced_points"`
	PendingPoints   int         `json:"pending_points"`
	LastSyncedAt    null.String `json:"last_synced_at"`
	CreatedAt       null.String `json:"created_at"`
	SyncStatus      string      `json:"sync_status,omitempty"`
	SyncLabel       string      `json:"sync_label,omitempty"`
}

// Status returns the sync status, deriving it from the counters when the
// endpoint did not send one.
func (b KnowledgeBase) Status() string {
	if b.SyncStatus != "" {
		return b.SyncStatus
	}
	switch {
	case b.TotalPoints == 0:
		return SyncEmpty
	case b.SyncedPoints == b.TotalPoints:
		return SyncSynced
	case b.SyncedPoints > 0:
		return SyncPartial
	default:
		return SyncPending
	}
}

// BaseStats aggregates every knowledge base.
type BaseStats struct {
	TotalBases    int         `json:"total_bases"`
	TotalPoints   int         `json:"total_points"`
	SyncedPoints  int         `json:"synced_points"`
	PendingPoints int         `json:"pending_points"`
	LastSync      null.String `json:"last_sync"`
}

// BaseList is the response of the bases list endpoint.
type BaseList struct {
	Bases []KnowledgeBase `json:"bases"`
	Stats BaseStats       `json:"stats"`
}

// NewBase is the create form of a knowledge base.
type NewBase struct {
	Nombre         string `json:"nombre" validate:"required,max=200"`
	Descripcion    string `json:"descripcion"`
	CollectionName string `json:"collection_name" validate:"omitempty,max=63,collection_name"`
}

// Point is one document of a knowledge base.
type Point struct {
	ID             string         `json:"id"`
	KBID           string         `json:"kb_id,omitempty"`
	PageContent    string         `json:"page_content"`
	ContentPreview string         `json:"content_preview,omitempty"`
	Metadata       map[string]any `json:"metadata"`
	Synced         bool           `json:"synced"`
	QdrantID       null.String    `json:"qdrant_id"`
	CreatedAt      null.String    `json:"created_at"`
	UpdatedAt      null.String    `json:"updated_at"`
}

// PointWrite is the body of the create and update point endpoints.
type PointWrite struct {
	PageContent string         `json:"page_content" validate:"required"`
	Metadata    map[string]any `json:"metadata"`
}

// PointInput is one entry of a bulk import, in the endpoint's layout.
type PointInput struct {
	PageContent string         `json:"pageContent"`
	Metadata    map[string]any `json:"metadata"`
}

// PointImportRequest is the body of the bulk import endpoint.
type PointImportRequest struct {
	Points []PointInput `json:"points"`
}

// PointImportResult reports a bulk import.
type PointImportResult struct {
	Message  string   `json:"message"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// SyncResult reports a sync of pending points to the vector store.
type SyncResult struct {
	Message      string          `json:"message"`
	Synced       int             `json:"synced"`
	Errors       int             `json:"errors"`
	ErrorsDetail []string        `json:"errors_detail"`
	TotalPoints  int             `json:"total_points"`
	Cost         json.RawMessage `json:"cost,omitempty"`
}
