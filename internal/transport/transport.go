package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/url"

	"flatplan/internal/config"
	"flatplan/internal/events"
)

// Transport issues authenticated requests against the REST API. Paths
// are relative to the configured base URL; absolute http(s) URLs are
// passed through untouched, which the token refresh endpoint relies on.
type Transport interface {
	GetJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	PostJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error)
	PutJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error)
	PatchJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error)
	Delete(ctx context.Context, path string) error

	// PostMultipart uploads a single file field as multipart form data.
	// The multipart content type with boundary is set automatically.
	PostMultipart(ctx context.Context, path, field, filename string, content io.Reader) (json.RawMessage, error)

	// Authentication
	SetToken(token string)
	GetToken() string

	// Lifecycle
	Close() error
}

// New creates a transport instance.
func New(cfg *config.APIConfig, logger *events.Logger) Transport {
	return NewHTTPClient(cfg, logger)
}
