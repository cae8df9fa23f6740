package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sync"
)

// MockTransport provides a scriptable implementation for testing.
// Responses are keyed by "METHOD path"; unmatched requests fail.
type MockTransport struct {
	mu sync.Mutex

	responses map[string]json.RawMessage
	errors    map[string]error

	// Request tracking
	Requests []MockRequest

	token  string
	closed bool
}

// MockRequest records one issued request.
type MockRequest struct {
	Method   string
	Path     string
	Query    url.Values
	Payload  interface{}
	Field    string
	Filename string
	Content  []byte
}

// NewMockTransport creates a mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[string]json.RawMessage),
		errors:    make(map[string]error),
	}
}

// AddResponse registers a response for a method and path. The value is
// marshaled to JSON once at registration.
func (m *MockTransport) AddResponse(method, path string, response interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(response)
	if err != nil {
		panic(fmt.Sprintf("mock response for %s %s: %v", method, path, err))
	}
	m.responses[method+" "+path] = data
}

// AddRawResponse registers a verbatim JSON response.
func (m *MockTransport) AddRawResponse(method, path, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[method+" "+path] = json.RawMessage(body)
}

// AddError makes a method and path fail with err.
func (m *MockTransport) AddError(method, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[method+" "+path] = err
}

// RequestsFor returns recorded requests matching method and path.
func (m *MockTransport) RequestsFor(method, path string) []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []MockRequest
	for _, r := range m.Requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// RequestCount returns the total number of issued requests.
func (m *MockTransport) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func (m *MockTransport) dispatch(req MockRequest) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	key := req.Method + " " + req.Path
	if err, ok := m.errors[key]; ok {
		return nil, err
	}
	if resp, ok := m.responses[key]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("no mock response for %s", key)
}

// GetJSON mocks HTTP GET.
func (m *MockTransport) GetJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return m.dispatch(MockRequest{Method: "GET", Path: path, Query: query})
}

// PostJSON mocks HTTP POST.
func (m *MockTransport) PostJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	return m.dispatch(MockRequest{Method: "POST", Path: path, Payload: payload})
}

// PutJSON mocks HTTP PUT.
func (m *MockTransport) PutJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	return m.dispatch(MockRequest{Method: "PUT", Path: path, Payload: payload})
}

// PatchJSON mocks HTTP PATCH.
func (m *MockTransport) PatchJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	return m.dispatch(MockRequest{Method: "PATCH", Path: path, Payload: payload})
}

// Delete mocks HTTP DELETE.
func (m *MockTransport) Delete(ctx context.Context, path string) error {
	_, err := m.dispatch(MockRequest{Method: "DELETE", Path: path})
	return err
}

// PostMultipart mocks a multipart upload, capturing the content.
func (m *MockTransport) PostMultipart(ctx context.Context, path, field, filename string, content io.Reader) (json.RawMessage, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	return m.dispatch(MockRequest{
		Method:   "POST",
		Path:     path,
		Field:    field,
		Filename: filename,
		Content:  data,
	})
}

// SetToken mocks token setting.
func (m *MockTransport) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// GetToken returns the current token.
func (m *MockTransport) GetToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Close mocks connection closing.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
