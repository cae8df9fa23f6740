package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"flatplan/internal/events"
)

// FileStore implements file-based key-value storage. The whole store
// is one JSON object written atomically on every change.
type FileStore struct {
	path   string
	logger *events.Logger

	mu     sync.RWMutex
	values map[string]string
}

// NewFileStore creates a file-backed store, loading existing values.
func NewFileStore(path string, logger *events.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	s := &FileStore{
		path:   path,
		logger: logger.WithField("component", "file_state_store"),
		values: make(map[string]string),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a value.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set writes a value durably.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.flush()
}

// Delete removes a key.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

// Keys returns all stored keys, sorted.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases resources.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		s.logger.WithError(fmt.Errorf("%w: %v", ErrStoreCorrupt, err)).Warn("State file corrupt, starting empty")
		s.values = make(map[string]string)
		return nil
	}
	return nil
}

// flush writes the store atomically: temp file, fsync, rename.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}

	if file, err := os.Open(tmpPath); err == nil {
		_ = file.Sync()
		file.Close()
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename state file: %w", err)
	}
	return nil
}
