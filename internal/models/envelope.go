// Package models holds the wire types exchanged with the CRM backend.
package models

// Envelope is the common header of every backend response.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// PageInfo is the paging metadata of a list response.
type PageInfo struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	PageSize   int `json:"page_size,omitempty"`
}

// MutationResult is returned by create/update/delete endpoints that only
// report a message.
type MutationResult struct {
	Message string `json:"message"`
}

// IDsRequest is the body of bulk endpoints.
type IDsRequest[K comparable] struct {
	IDs []K `json:"ids"`
}
