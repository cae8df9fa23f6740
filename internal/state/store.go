// Package state persists small pieces of client state (session tokens,
// recovery flags) across runs. It is a deliberate side-channel: the
// in-memory session never reads it after startup, it is written on
// every transition and read once when the client initializes.
package state

import "errors"

// Well-known keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"

	// KeyDynamicReload guards the one-shot reload after a failed
	// dynamic module load. The legacy key name is part of the
	// persisted-state contract shared with the web client.
	KeyDynamicReload = "vuetify:dynamic-reload"
)

// Store is a durable string key-value store.
type Store interface {
	// Get retrieves a value. Missing keys return ErrKeyNotFound.
	Get(key string) (string, error)

	// Set writes a value durably.
	Set(key, value string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys returns all stored keys.
	Keys() ([]string, error)

	// Close releases resources.
	Close() error
}

// Errors
var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrStoreCorrupt = errors.New("state store is corrupt")
)
