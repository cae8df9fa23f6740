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

// AnalysisClient consumes the neighborhood analysis endpoints.
type AnalysisClient struct {
	transport transport.Transport
	logger    *events.Logger
}

// NewAnalysisClient creates an analysis client.
func NewAnalysisClient(t transport.Transport, logger *events.Logger) *AnalysisClient {
	return &AnalysisClient{
		transport: t,
		logger:    logger.WithField("client", "analysis"),
	}
}

// AnalyzeLocation requests an analysis for raw coordinates. Results
// for the same coordinates are cached server-side.
func (c *AnalysisClient) AnalyzeLocation(ctx context.Context, req models.AnalyzeLocationRequest) (*models.LocationReport, error) {
	raw, err := c.transport.PostJSON(ctx, "/analysis/analyze-location/", req)
	if err != nil {
		return nil, fmt.Errorf("analyze location: %w", err)
	}

	var report models.LocationReport
	if err := decode(raw, &report); err != nil {
		return nil, fmt.Errorf("analyze location: %w", err)
	}
	return &report, nil
}

// Providers lists supported listing sources.
func (c *AnalysisClient) Providers(ctx context.Context) ([]models.Provider, error) {
	raw, err := c.transport.GetJSON(ctx, "/analysis/providers/", nil)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	var providers []models.Provider
	if _, err := models.NormalizeList(raw, &providers); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return providers, nil
}

// History lists past analyses, newest first.
func (c *AnalysisClient) History(ctx context.Context, page int) ([]models.LocationReport, *models.ListMeta, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	raw, err := c.transport.GetJSON(ctx, "/analysis/history/", query)
	if err != nil {
		return nil, nil, fmt.Errorf("list analysis history: %w", err)
	}

	var reports []models.LocationReport
	meta, err := models.NormalizeList(raw, &reports)
	if err != nil {
		return nil, nil, fmt.Errorf("list analysis history: %w", err)
	}
	return reports, meta, nil
}
