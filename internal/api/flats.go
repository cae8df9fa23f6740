package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"flatplan/internal/events"
	"flatplan/internal/models"
	"flatplan/internal/transport"
)

// FlatsClient maps flat operations onto the /flats/ endpoints.
type FlatsClient struct {
	transport transport.Transport
	logger    *events.Logger
}

// NewFlatsClient creates a flats client.
func NewFlatsClient(t transport.Transport, logger *events.Logger) *FlatsClient {
	return &FlatsClient{
		transport: t,
		logger:    logger.WithField("client", "flats"),
	}
}

// FlatFilter holds optional list query parameters, passed through
// verbatim.
type FlatFilter struct {
	Page   int
	Search string
	Rooms  *int
}

func (f FlatFilter) values() url.Values {
	query := url.Values{}
	if f.Page > 0 {
		query.Set("page", strconv.Itoa(f.Page))
	}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.Rooms != nil {
		query.Set("rooms", strconv.Itoa(*f.Rooms))
	}
	return query
}

// List fetches flats. Meta is nil when the server answered with a bare
// array instead of a pagination envelope.
func (c *FlatsClient) List(ctx context.Context, filter FlatFilter) ([]models.Flat, *models.ListMeta, error) {
	raw, err := c.transport.GetJSON(ctx, "/flats/", filter.values())
	if err != nil {
		return nil, nil, fmt.Errorf("list flats: %w", err)
	}

	var flats []models.Flat
	meta, err := models.NormalizeList(raw, &flats)
	if err != nil {
		return nil, nil, fmt.Errorf("list flats: %w", err)
	}
	return flats, meta, nil
}

// Get fetches one flat.
func (c *FlatsClient) Get(ctx context.Context, id int64) (*models.Flat, error) {
	raw, err := c.transport.GetJSON(ctx, fmt.Sprintf("/flats/%d/", id), nil)
	if err != nil {
		return nil, fmt.Errorf("get flat %d: %w", id, err)
	}

	var flat models.Flat
	if err := decode(raw, &flat); err != nil {
		return nil, fmt.Errorf("get flat %d: %w", id, err)
	}
	return &flat, nil
}

// Create creates a flat.
func (c *FlatsClient) Create(ctx context.Context, data models.FlatCreateUpdate) (*models.Flat, error) {
	raw, err := c.transport.PostJSON(ctx, "/flats/", data)
	if err != nil {
		return nil, fmt.Errorf("create flat: %w", err)
	}

	var flat models.Flat
	if err := decode(raw, &flat); err != nil {
		return nil, fmt.Errorf("create flat: %w", err)
	}
	return &flat, nil
}

// Update replaces a flat.
func (c *FlatsClient) Update(ctx context.Context, id int64, data models.FlatCreateUpdate) (*models.Flat, error) {
	raw, err := c.transport.PutJSON(ctx, fmt.Sprintf("/flats/%d/", id), data)
	if err != nil {
		return nil, fmt.Errorf("update flat %d: %w", id, err)
	}

	var flat models.Flat
	if err := decode(raw, &flat); err != nil {
		return nil, fmt.Errorf("update flat %d: %w", id, err)
	}
	return &flat, nil
}

// Patch partially updates a flat.
func (c *FlatsClient) Patch(ctx context.Context, id int64, data map[string]interface{}) (*models.Flat, error) {
	raw, err := c.transport.PatchJSON(ctx, fmt.Sprintf("/flats/%d/", id), data)
	if err != nil {
		return nil, fmt.Errorf("patch flat %d: %w", id, err)
	}

	var flat models.Flat
	if err := decode(raw, &flat); err != nil {
		return nil, fmt.Errorf("patch flat %d: %w", id, err)
	}
	return &flat, nil
}

// Delete removes a flat.
func (c *FlatsClient) Delete(ctx context.Context, id int64) error {
	if err := c.transport.Delete(ctx, fmt.Sprintf("/flats/%d/", id)); err != nil {
		return fmt.Errorf("delete flat %d: %w", id, err)
	}
	return nil
}

// UploadLayoutImage uploads a floor-plan image for a flat and returns
// the layout the server attached it to.
func (c *FlatsClient) UploadLayoutImage(ctx context.Context, flatID int64, filename string, image io.Reader) (*models.Layout, error) {
	path := fmt.Sprintf("/flats/%d/upload_layout_image/", flatID)

	raw, err := c.transport.PostMultipart(ctx, path, "image", filename, image)
	if err != nil {
		return nil, fmt.Errorf("upload layout image: %w", err)
	}

	var layout models.Layout
	if err := decode(raw, &layout); err != nil {
		return nil, fmt.Errorf("upload layout image: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"flat_id":   flatID,
		"layout_id": layout.ID,
	}).Info("Uploaded layout image")
	return &layout, nil
}
