package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatplan/internal/models"
	"flatplan/internal/transport"
	"flatplan/test/testutil"
)

func newAnalysisClient(mock *transport.MockTransport) *AnalysisClient {
	return NewAnalysisClient(mock, testutil.NewTestLogger())
}

func TestAnalyzeLocation(t *testing.T) {
	mock := transport.NewMockTransport()
	mock.AddRawResponse("POST", "/analysis/analyze-location/", `{
		"id": 1,
		"address": "Main St 12",
		"latitude": 52.52,
		"longitude": 13.405,
		"has_precise_location": true,
		"neighborhood_score": 7.5,
		"pros": ["park nearby"],
		"cons": ["noisy road"],
		"checklist": ["check parking"],
		"analysis_radius": 800,
		"created_at": "2024-03-01T10:00:00Z"
	}`)

	report, err := newAnalysisClient(mock).AnalyzeLocation(context.Background(), models.AnalyzeLocationRequest{
		Latitude:  52.52,
		Longitude: 13.405,
		Radius:    800,
	})
	require.NoError(t, err)

	assert.Equal(t, "Main St 12", report.Address)
	require.NotNil(t, report.NeighborhoodScore)
	assert.Equal(t, 7.5, *report.NeighborhoodScore)
	assert.Equal(t, []string{"park nearby"}, report.Pros)

	requests := mock.RequestsFor("POST", "/analysis/analyze-location/")
	require.Len(t, requests, 1)
	payload, err := json.Marshal(requests[0].Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude": 52.52, "longitude": 13.405, "radius": 800}`, string(payload))
}

func TestProviders(t *testing.T) {
	mock := transport.NewMockTransport()
	mock.AddRawResponse("GET", "/analysis/providers/",
		`[{"name": "immoscout", "domain": "immobilienscout24.de", "enabled": true}]`)

	providers, err := newAnalysisClient(mock).Providers(context.Background())
	require.NoError(t, err)

	require.Len(t, providers, 1)
	assert.Equal(t, "immoscout", providers[0].Name)
	assert.True(t, providers[0].Enabled)
}

func TestHistory(t *testing.T) {
	mock := transport.NewMockTransport()
	mock.AddRawResponse("GET", "/analysis/history/",
		`{"count": 12, "next": null, "previous": null, "results": [{"id": 3, "address": "A"}]}`)

	reports, meta, err := newAnalysisClient(mock).History(context.Background(), 2)
	require.NoError(t, err)

	require.NotNil(t, meta)
	assert.Equal(t, 12, meta.Count)
	require.Len(t, reports, 1)

	requests := mock.RequestsFor("GET", "/analysis/history/")
	require.Len(t, requests, 1)
	assert.Equal(t, "2", requests[0].Query.Get("page"))
}
