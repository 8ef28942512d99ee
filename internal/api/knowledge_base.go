package api

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/leadpanel/panelctl/internal/models"
	"github.com/leadpanel/panelctl/internal/validation"
)

const kbBase = "/knowledge_base/api"

// ListBases returns every knowledge base with aggregate stats.
func (c *Client) ListBases(ctx context.Context) (*models.BaseList, error) {
	var resp models.BaseList
	if err := c.get(ctx, "knowledge bases list", kbBase+"/bases/list", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBase fetches one knowledge base.
func (c *Client) GetBase(ctx context.Context, id string) (*models.KnowledgeBase, error) {
	id, err := validation.UUID(id)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Base models.KnowledgeBase `json:"base"`
	}
	if err := c.get(ctx, "knowledge base get", kbBase+"/bases/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Base, nil
}

// CreateBase creates a knowledge base. An empty collection name is derived
// by the backend from the name.
func (c *Client) CreateBase(ctx context.Context, nb models.NewBase) (*models.KnowledgeBase, string, error) {
	nb.Nombre = strings.TrimSpace(nb.Nombre)
	nb.Descripcion = strings.TrimSpace(nb.Descripcion)
	nb.CollectionName = strings.TrimSpace(nb.CollectionName)
	if err := validation.Struct(nb); err != nil {
		return nil, "", err
	}
	var resp struct {
		Message string               `json:"message"`
		Base    models.KnowledgeBase `json:"base"`
	}
	if err := c.post(ctx, "knowledge base create", kbBase+"/bases/create", nb, &resp); err != nil {
		return nil, "", err
	}
	return &resp.Base, resp.Message, nil
}

// DeleteBase removes a knowledge base and its points.
func (c *Client) DeleteBase(ctx context.Context, id string) (string, error) {
	id, err := validation.UUID(id)
	if err != nil {
		return "", err
	}
	var resp models.MutationResult
	if err := c.do(ctx, "knowledge base delete", nethttp.MethodDelete, kbBase+"/bases/"+id, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SyncBase pushes pending points to the vector store.
func (c *Client) SyncBase(ctx context.Context, id string) (*models.SyncResult, error) {
	id, err := validation.UUID(id)
	if err != nil {
		return nil, err
	}
	var resp models.SyncResult
	if err := c.post(ctx, "knowledge base sync", kbBase+"/bases/"+id+"/sync", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Points returns the points collection of one base. The endpoint supports
// search and paging but has a fixed created_at DESC order.
func (c *Client) Points(baseID string) (*Collection[models.Point], error) {
	id, err := validation.UUID(baseID)
	if err != nil {
		return nil, err
	}
	return newCollection[models.Point](c, "knowledge points", kbBase+"/bases/"+id+"/points", "", "points"), nil
}

// CreatePoint adds one point to a base.
func (c *Client) CreatePoint(ctx context.Context, baseID string, w models.PointWrite) (*models.Point, string, error) {
	id, err := validation.UUID(baseID)
	if err != nil {
		return nil, "", err
	}
	w.PageContent = strings.TrimSpace(w.PageContent)
	if err := validation.Struct(w); err != nil {
		return nil, "", err
	}
	if w.Metadata == nil {
		w.Metadata = map[string]any{}
	}
	var resp struct {
		Message string       `json:"message"`
		Point   models.Point `json:"point"`
	}
	if err := c.post(ctx, "knowledge point create", kbBase+"/bases/"+id+"/points/create", w, &resp); err != nil {
		return nil, "", err
	}
	return &resp.Point, resp.Message, nil
}

// ImportPoints bulk-inserts points into a base.
func (c *Client) ImportPoints(ctx context.Context, baseID string, points []models.PointInput) (*models.PointImportResult, error) {
	id, err := validation.UUID(baseID)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("knowledge points import: %w", models.ErrNoPoints)
	}
	var resp models.PointImportResult
	if err := c.post(ctx, "knowledge points import", kbBase+"/bases/"+id+"/points/import", models.PointImportRequest{Points: points}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPoint fetches one point.
func (c *Client) GetPoint(ctx context.Context, id string) (*models.Point, error) {
	id, err := validation.UUID(id)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Point models.Point `json:"point"`
	}
	if err := c.get(ctx, "knowledge point get", kbBase+"/points/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Point, nil
}

// UpdatePoint replaces a point's content and metadata. The point is marked
// unsynced by the backend.
func (c *Client) UpdatePoint(ctx context.Context, id string, w models.PointWrite) (*models.Point, string, error) {
	id, err := validation.UUID(id)
	if err != nil {
		return nil, "", err
	}
	w.PageContent = strings.TrimSpace(w.PageContent)
	if w.PageContent == "" {
		return nil, "", errors.New("invalid input: page_content is required")
	}
	if w.Metadata == nil {
		w.Metadata = map[string]any{}
	}
	var resp struct {
		Message string       `json:"message"`
		Point   models.Point `json:"point"`
	}
	if err := c.do(ctx, "knowledge point update", nethttp.MethodPut, kbBase+"/points/"+id, nil, w, &resp); err != nil {
		return nil, "", err
	}
	return &resp.Point, resp.Message, nil
}

// DeletePoint removes one point.
func (c *Client) DeletePoint(ctx context.Context, id string) (string, error) {
	id, err := validation.UUID(id)
	if err != nil {
		return "", err
	}
	var resp models.MutationResult
	if err := c.do(ctx, "knowledge point delete", nethttp.MethodDelete, kbBase+"/points/"+id, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
