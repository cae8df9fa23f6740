package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"flatplan/internal/events"
	"flatplan/internal/models"
	"flatplan/internal/transport"
)

// LayoutsClient maps layout operations onto the /layouts/ endpoints.
type LayoutsClient struct {
	transport transport.Transport
	logger    *events.Logger
}

// NewLayoutsClient creates a layouts client.
func NewLayoutsClient(t transport.Transport, logger *events.Logger) *LayoutsClient {
	return &LayoutsClient{
		transport: t,
		logger:    logger.WithField("client", "layouts"),
	}
}

// LayoutFilter holds optional list query parameters.
type LayoutFilter struct {
	Flat *int64
}

func (f LayoutFilter) values() url.Values {
	query := url.Values{}
	if f.Flat != nil {
		query.Set("flat", strconv.FormatInt(*f.Flat, 10))
	}
	return query
}

// List fetches layouts, optionally filtered by owning flat.
func (c *LayoutsClient) List(ctx context.Context, filter LayoutFilter) ([]models.Layout, *models.ListMeta, error) {
	raw, err := c.transport.GetJSON(ctx, "/layouts/", filter.values())
	if err != nil {
		return nil, nil, fmt.Errorf("list layouts: %w", err)
	}

	var layouts []models.Layout
	meta, err := models.NormalizeList(raw, &layouts)
	if err != nil {
		return nil, nil, fmt.Errorf("list layouts: %w", err)
	}
	return layouts, meta, nil
}

// Get fetches one layout.
func (c *LayoutsClient) Get(ctx context.Context, id int64) (*models.Layout, error) {
	raw, err := c.transport.GetJSON(ctx, fmt.Sprintf("/layouts/%d/", id), nil)
	if err != nil {
		return nil, fmt.Errorf("get layout %d: %w", id, err)
	}

	var layout models.Layout
	if err := decode(raw, &layout); err != nil {
		return nil, fmt.Errorf("get layout %d: %w", id, err)
	}
	return &layout, nil
}

// Create creates a layout. The server assigns the id.
func (c *LayoutsClient) Create(ctx context.Context, data models.LayoutCreate) (*models.Layout, error) {
	raw, err := c.transport.PostJSON(ctx, "/layouts/", data)
	if err != nil {
		return nil, fmt.Errorf("create layout: %w", err)
	}

	var layout models.Layout
	if err := decode(raw, &layout); err != nil {
		return nil, fmt.Errorf("create layout: %w", err)
	}
	return &layout, nil
}

// Update replaces a layout.
func (c *LayoutsClient) Update(ctx context.Context, id int64, data models.Layout) (*models.Layout, error) {
	raw, err := c.transport.PutJSON(ctx, fmt.Sprintf("/layouts/%d/", id), data)
	if err != nil {
		return nil, fmt.Errorf("update layout %d: %w", id, err)
	}

	var layout models.Layout
	if err := decode(raw, &layout); err != nil {
		return nil, fmt.Errorf("update layout %d: %w", id, err)
	}
	return &layout, nil
}

// Patch partially updates a layout.
func (c *LayoutsClient) Patch(ctx context.Context, id int64, data models.LayoutPatch) (*models.Layout, error) {
	raw, err := c.transport.PatchJSON(ctx, fmt.Sprintf("/layouts/%d/", id), data)
	if err != nil {
		return nil, fmt.Errorf("patch layout %d: %w", id, err)
	}

	var layout models.Layout
	if err := decode(raw, &layout); err != nil {
		return nil, fmt.Errorf("patch layout %d: %w", id, err)
	}
	return &layout, nil
}

// Delete removes a layout.
func (c *LayoutsClient) Delete(ctx context.Context, id int64) error {
	if err := c.transport.Delete(ctx, fmt.Sprintf("/layouts/%d/", id)); err != nil {
		return fmt.Errorf("delete layout %d: %w", id, err)
	}
	return nil
}

// SetScale sets only the pixel-to-centimeter calibration factor via
// the dedicated endpoint, leaving the rest of the layout untouched.
func (c *LayoutsClient) SetScale(ctx context.Context, id int64, scaleCmPerPx float64) (*models.Layout, error) {
	path := fmt.Sprintf("/layouts/%d/set_scale/", id)

	raw, err := c.transport.PostJSON(ctx, path, map[string]interface{}{
		"scale_cm_per_px": scaleCmPerPx,
	})
	if err != nil {
		return nil, fmt.Errorf("set scale for layout %d: %w", id, err)
	}

	var layout models.Layout
	if err := decode(raw, &layout); err != nil {
		return nil, fmt.Errorf("set scale for layout %d: %w", id, err)
	}
	return &layout, nil
}

// SaveLayoutData persists only the geometry document via the dedicated
// endpoint, distinct from a full layout update.
func (c *LayoutsClient) SaveLayoutData(ctx context.Context, id int64, data models.LayoutData) (*models.Layout, error) {
	path := fmt.Sprintf("/layouts/%d/save_layout_data/", id)

	raw, err := c.transport.PostJSON(ctx, path, map[string]interface{}{
		"layout_data": data,
	})
	if err != nil {
		return nil, fmt.Errorf("save layout data for %d: %w", id, err)
	}

	var layout models.Layout
	if err := decode(raw, &layout); err != nil {
		return nil, fmt.Errorf("save layout data for %d: %w", id, err)
	}
	return &layout, nil
}
