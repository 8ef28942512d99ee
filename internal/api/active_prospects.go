package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/leadpanel/panelctl/internal/models"
	"github.com/leadpanel/panelctl/internal/validation"
)

const activeBase = "/prospectos_activos/api"

// ActiveProspects returns the active prospects collection. Filter values
// come from FilterOptions, not a column-values endpoint.
func (c *Client) ActiveProspects() *Collection[models.ActiveProspect] {
	return newCollection[models.ActiveProspect](c, "active prospects", activeBase+"/list", "", "data")
}

// ActiveStats fetches the per-estado breakdown.
func (c *Client) ActiveStats(ctx context.Context) (*models.ActiveStats, error) {
	var resp struct {
		Stats models.ActiveStats `json:"stats"`
	}
	if err := c.get(ctx, "active prospects stats", activeBase+"/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

// FilterOptions fetches the distinct carreras, planes and estados.
func (c *Client) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	var resp struct {
		Options models.FilterOptions `json:"options"`
	}
	if err := c.get(ctx, "active prospects filter options", activeBase+"/filter-options", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Options, nil
}

// Transcript fetches the conversation held with the lead at telefono.
func (c *Client) Transcript(ctx context.Context, telefono string) (*models.Transcript, error) {
	telefono = strings.TrimSpace(telefono)
	if telefono == "" {
		return nil, errors.New("active prospects messages: telefono is required")
	}
	var resp models.Transcript
	if err := c.get(ctx, "active prospects messages", activeBase+"/mensajes/"+url.PathEscape(telefono), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActivateLeads marks leads as being worked.
func (c *Client) ActivateLeads(ctx context.Context, ids []string) (*models.StateChangeResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("active prospects activate: %w", validation.ErrInvalidID)
	}
	var resp models.StateChangeResult
	if err := c.post(ctx, "active prospects activate", activeBase+"/activar", models.IDsRequest[string]{IDs: ids}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangeState moves leads to estado.
func (c *Client) ChangeState(ctx context.Context, ids []string, estado string) (*models.StateChangeResult, error) {
	req := models.StateChangeRequest{IDs: ids, Estado: strings.TrimSpace(estado)}
	if err := validation.Estado(req.Estado, models.ValidEstados); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var resp models.StateChangeResult
	if err := c.post(ctx, "active prospects change state", activeBase+"/cambiar-estado", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
