package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http2"

	"flatplan/internal/config"
	"flatplan/internal/events"
	"flatplan/internal/models"
)

// HTTPClient handles HTTP communication with the API.
type HTTPClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *events.Logger

	mu    sync.RWMutex
	token string

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
}

// NewHTTPClient creates an HTTP client.
func NewHTTPClient(cfg *config.APIConfig, logger *events.Logger) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			NextProtos: []string{"h2", "http/1.1"},
		},
	}

	if err := http2.ConfigureTransport(transport); err != nil {
		logger.WithError(err).Warn("Failed to configure HTTP/2")
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Second,
		logger:     logger.WithField("component", "http_client"),
	}
}

// SetToken sets the authentication token.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// GetToken returns the current authentication token.
func (c *HTTPClient) GetToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// GetJSON sends a GET request.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, c.resolveURL(path, query), "", nil)
}

// PostJSON sends a JSON POST request.
func (c *HTTPClient) PostJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := marshalPayload(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, c.resolveURL(path, nil), "application/json", body)
}

// PutJSON sends a JSON PUT request.
func (c *HTTPClient) PutJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := marshalPayload(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPut, c.resolveURL(path, nil), "application/json", body)
}

// PatchJSON sends a JSON PATCH request.
func (c *HTTPClient) PatchJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := marshalPayload(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPatch, c.resolveURL(path, nil), "application/json", body)
}

// Delete sends a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, c.resolveURL(path, nil), "", nil)
	return err
}

// PostMultipart uploads a single file field.
func (c *HTTPClient) PostMultipart(ctx context.Context, path, field, filename string, content io.Reader) (json.RawMessage, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, c.resolveURL(path, nil), writer.FormDataContentType(), buf.Bytes())
}

// Close releases resources.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// do executes one request with retries and decodes error bodies.
func (c *HTTPClient) do(ctx context.Context, method, rawURL, contentType string, body []byte) (json.RawMessage, error) {
	c.logger.WithFields(map[string]interface{}{
		"method": method,
		"url":    rawURL,
		"size":   len(body),
	}).Debug("Sending request")

	var status int
	var respBody []byte

	err := c.retry(ctx, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", uuid.NewString())
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if token := c.GetToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return &retryableError{fmt.Errorf("execute request: %w", err)}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &retryableError{fmt.Errorf("read response: %w", err)}
		}

		if isRetryableStatus(resp.StatusCode) {
			return &retryableError{fmt.Errorf("server error %d: %s", resp.StatusCode, data)}
		}

		status = resp.StatusCode
		respBody = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"method": method,
		"url":    rawURL,
		"status": status,
		"size":   len(respBody),
	}).Debug("Received response")

	if status >= 400 {
		apiErr := &models.APIError{StatusCode: status}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr == nil && apiErr.Detail != "" {
			return nil, apiErr
		}
		return nil, fmt.Errorf("HTTP %d: %s", status, respBody)
	}

	if len(respBody) == 0 {
		return nil, nil
	}
	return respBody, nil
}

// resolveURL joins a path with the base URL. Absolute URLs pass
// through, so endpoints outside the API base remain reachable.
func (c *HTTPClient) resolveURL(path string, query url.Values) string {
	rawURL := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		rawURL = c.baseURL + path
	}
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	return rawURL
}

// retry executes a function with exponential backoff.
func (c *HTTPClient) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(map[string]interface{}{
				"attempt": attempt,
				"delay":   delay,
			}).Debug("Retrying request")

			select {
			case <-time.After(delay):
				delay *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func marshalPayload(payload interface{}) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return body, nil
}
