package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(DebugLevel, &buf)

	logger.WithField("layout_id", 5).Info("Layout saved")

	entry := captureEntry(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Layout saved", entry["msg"])
	assert.Equal(t, float64(5), entry["layout_id"])
	assert.NotEmpty(t, entry["time"])
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(WarnLevel, &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewTestLogger(DebugLevel, &buf)

	derived := base.WithFields(map[string]interface{}{
		"store": "layouts",
		"id":    1,
	})
	derived.WithField("id", 2).Error("boom")

	entry := captureEntry(t, &buf)
	assert.Equal(t, "layouts", entry["store"])
	// Later fields shadow earlier ones.
	assert.Equal(t, float64(2), entry["id"])

	// The base logger is unchanged.
	buf.Reset()
	base.Error("plain")
	entry = captureEntry(t, &buf)
	assert.NotContains(t, entry, "store")
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(DebugLevel, &buf)

	logger.WithError(errors.New("kaboom")).Error("request failed")

	entry := captureEntry(t, &buf)
	assert.Equal(t, "kaboom", entry["error"])

	// Nil errors add nothing.
	buf.Reset()
	logger.WithError(nil).Error("no error field")
	entry = captureEntry(t, &buf)
	assert.NotContains(t, entry, "error")
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		mu:     &sync.Mutex{},
		level:  DebugLevel,
		format: "text",
		output: &buf,
		fields: map[string]interface{}{"b": 2, "a": 1},
	}

	logger.Info("hello")

	line := buf.String()
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "hello")
	// Field order is deterministic.
	assert.Less(t, strings.Index(line, "a=1"), strings.Index(line, "b=2"))
}
