// Package testutil holds shared helpers for package tests.
package testutil

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sync"
	"time"

	"flatplan/internal/config"
	"flatplan/internal/events"
)

// NewTestLogger creates a quiet logger for tests.
func NewTestLogger() *events.Logger {
	return events.NewTestLogger(events.ErrorLevel, io.Discard)
}

// TestConfigWithDir creates a test configuration rooted in dataDir.
func TestConfigWithDir(dataDir string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL:    "https://api.test.local/api",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			UserAgent:  "flatplan-test",
		},
		Storage: config.StorageConfig{
			DataDir:      dataDir,
			StateBackend: "file",
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "json",
			Color:  false,
		},
	}
}

// StatePath returns the file-backed state path for a test data dir.
func StatePath(dataDir string) string {
	return filepath.Join(dataDir, "state.json")
}

// LogEntry is one captured structured log line.
type LogEntry struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
	Error   string `json:"error"`
}

// LogOutput captures JSON log output for assertions.
type LogOutput struct {
	mu      sync.RWMutex
	entries []LogEntry
}

// NewLogOutput creates a log capturer.
func NewLogOutput() *LogOutput {
	return &LogOutput{}
}

// Write implements io.Writer.
func (lo *LogOutput) Write(p []byte) (int, error) {
	var entry LogEntry
	if err := json.Unmarshal(p, &entry); err == nil {
		lo.mu.Lock()
		lo.entries = append(lo.entries, entry)
		lo.mu.Unlock()
	}
	return len(p), nil
}

// Entries returns captured entries.
func (lo *LogOutput) Entries() []LogEntry {
	lo.mu.RLock()
	defer lo.mu.RUnlock()

	out := make([]LogEntry, len(lo.entries))
	copy(out, lo.entries)
	return out
}

// HasMessage reports whether any entry carries the exact message.
func (lo *LogOutput) HasMessage(message string) bool {
	lo.mu.RLock()
	defer lo.mu.RUnlock()

	for _, entry := range lo.entries {
		if entry.Message == message {
			return true
		}
	}
	return false
}
