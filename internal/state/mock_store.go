package state

import (
	"sort"
	"sync"
)

// MockStore is an in-memory Store for testing.
type MockStore struct {
	mu     sync.RWMutex
	values map[string]string

	// Error injection
	GetError error
	SetError error

	// Write tracking
	SetCalls []string
}

// NewMockStore creates an in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{values: make(map[string]string)}
}

// Get retrieves a value.
func (m *MockStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetError != nil {
		return "", m.GetError
	}
	value, ok := m.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set writes a value.
func (m *MockStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetError != nil {
		return m.SetError
	}
	m.values[key] = value
	m.SetCalls = append(m.SetCalls, key)
	return nil
}

// Delete removes a key.
func (m *MockStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Keys returns all stored keys, sorted.
func (m *MockStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases resources.
func (m *MockStore) Close() error {
	return nil
}
