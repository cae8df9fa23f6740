package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatplan/internal/events"
	"flatplan/test/testutil"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"), testutil.NewTestLogger())
	require.NoError(t, err)
	return store
}

func TestFileStore(t *testing.T) {
	t.Run("get missing key", func(t *testing.T) {
		store := newTestFileStore(t)

		_, err := store.Get("missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		store := newTestFileStore(t)

		require.NoError(t, store.Set(KeyAccessToken, "abc"))

		value, err := store.Get(KeyAccessToken)
		require.NoError(t, err)
		assert.Equal(t, "abc", value)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := newTestFileStore(t)

		require.NoError(t, store.Set("k", "v"))
		require.NoError(t, store.Delete("k"))
		require.NoError(t, store.Delete("k"))

		_, err := store.Get("k")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("keys sorted", func(t *testing.T) {
		store := newTestFileStore(t)

		require.NoError(t, store.Set("b", "2"))
		require.NoError(t, store.Set("a", "1"))

		keys, err := store.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)
	})
}

func TestFileStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	logger := testutil.NewTestLogger()

	store, err := NewFileStore(path, logger)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyRefreshToken, "r1"))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path, logger)
	require.NoError(t, err)

	value, err := reopened.Get(KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "r1", value)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	logs := testutil.NewLogOutput()
	store, err := NewFileStore(path, events.NewTestLogger(events.WarnLevel, logs))
	require.NoError(t, err)

	require.True(t, logs.HasMessage("State file corrupt, starting empty"))
	entries := logs.Entries()
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[0].Error, ErrStoreCorrupt.Error())

	_, err = store.Get(KeyAccessToken)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Writes work again after the corrupt file is replaced.
	require.NoError(t, store.Set(KeyAccessToken, "fresh"))

	value, err := store.Get(KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
}
