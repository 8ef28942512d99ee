package api

import (
	"context"
	"fmt"

	"github.com/leadpanel/panelctl/internal/models"
	"github.com/leadpanel/panelctl/internal/validation"
)

const prospectsBase = "/prospectos/api"

// Prospects returns the raw prospects collection.
func (c *Client) Prospects() *Collection[models.Prospect] {
	return newCollection[models.Prospect](c, "prospects", prospectsBase+"/list", prospectsBase+"/column-values", "data")
}

// ProspectStats fetches the owner and batch breakdown.
func (c *Client) ProspectStats(ctx context.Context) (*models.ProspectStats, error) {
	var resp struct {
		Stats models.ProspectStats `json:"stats"`
	}
	if err := c.get(ctx, "prospects stats", prospectsBase+"/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

// CreateProspect adds one prospect by hand.
func (c *Client) CreateProspect(ctx context.Context, p models.NewProspect) (string, error) {
	if err := validation.Struct(p); err != nil {
		return "", err
	}
	var resp models.MutationResult
	if err := c.post(ctx, "prospects create", prospectsBase+"/create", p, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UploadSpreadsheet sends a CSV/XLSX/XLS file for preview. The backend
// keeps the parsed file in the session until ImportSpreadsheet runs.
func (c *Client) UploadSpreadsheet(ctx context.Context, path string) (*models.UploadPreview, error) {
	if _, err := validation.ValidateSpreadsheet(path); err != nil {
		return nil, err
	}
	var resp models.UploadPreview
	if err := c.upload(ctx, "prospects upload", prospectsBase+"/upload", path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImportSpreadsheet imports the last uploaded file with mapping
// (target field to source column).
func (c *Client) ImportSpreadsheet(ctx context.Context, mapping map[string]string) (*models.ImportResult, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("prospects import: mapping is empty")
	}
	var resp models.ImportResult
	if err := c.post(ctx, "prospects import", prospectsBase+"/import", models.ImportRequest{Mapping: mapping}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActivateProspects promotes prospects to leads.
func (c *Client) ActivateProspects(ctx context.Context, ids []int64) (*models.ActivationResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("prospects activate: %w", validation.ErrInvalidID)
	}
	var resp models.ActivationResult
	if err := c.post(ctx, "prospects activate", prospectsBase+"/activar", models.IDsRequest[int64]{IDs: ids}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
