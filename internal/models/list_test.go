package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeList(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		var flats []Flat
		meta, err := NormalizeList(json.RawMessage(`[{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]`), &flats)
		require.NoError(t, err)

		assert.Nil(t, meta)
		require.Len(t, flats, 2)
		assert.Equal(t, "B", flats[1].Name)
	})

	t.Run("pagination envelope", func(t *testing.T) {
		next := "http://example.com/api/flats/?page=2"
		var flats []Flat
		meta, err := NormalizeList(json.RawMessage(`{
			"count": 42,
			"next": "`+next+`",
			"previous": null,
			"results": [{"id": 1, "name": "A"}]
		}`), &flats)
		require.NoError(t, err)

		require.NotNil(t, meta)
		assert.Equal(t, 42, meta.Count)
		require.NotNil(t, meta.Next)
		assert.Equal(t, next, *meta.Next)
		assert.Nil(t, meta.Previous)
		require.Len(t, flats, 1)
	})

	t.Run("unrecognized shape resets to empty", func(t *testing.T) {
		flats := []Flat{{ID: 9}}
		meta, err := NormalizeList(json.RawMessage(`{"detail": "throttled"}`), &flats)
		require.NoError(t, err)

		assert.Nil(t, meta)
		assert.Empty(t, flats)
	})

	t.Run("malformed array fails", func(t *testing.T) {
		var flats []Flat
		_, err := NormalizeList(json.RawMessage(`[{"id": "not-a-number"}]`), &flats)
		assert.Error(t, err)
	})
}
