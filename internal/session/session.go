// Package session tracks the authenticated user. Session state is an
// explicit machine driven by token presence, not a hardcoded flag:
//
//	Anonymous -> Initializing -> Authenticated | Anonymous
//	Authenticated -> Expired (failed refresh) -> Anonymous (login)
//
// Tokens live in memory; the durable state store is a side-channel
// written on every transition and read once during Initialize.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"flatplan/internal/events"
	"flatplan/internal/models"
	"flatplan/internal/state"
	"flatplan/internal/transport"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusAnonymous Status = iota
	StatusInitializing
	StatusAuthenticated
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Manager handles authentication operations.
type Manager struct {
	transport  transport.Transport
	store      state.Store
	refreshURL string
	logger     *events.Logger

	mu      sync.Mutex
	status  Status
	ready   bool
	user    *models.User
	access  string
	refresh string
}

// NewManager creates a session manager. refreshURL may be absolute;
// the refresh endpoint is not guaranteed to live under the API base.
func NewManager(t transport.Transport, store state.Store, refreshURL string, logger *events.Logger) *Manager {
	return &Manager{
		transport:  t,
		store:      store,
		refreshURL: refreshURL,
		logger:     logger.WithField("service", "session"),
	}
}

// Initialize loads persisted tokens and resolves the initial status.
// It runs at most once; later calls return immediately.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready {
		return nil
	}
	m.status = StatusInitializing

	m.access = m.readKey(state.KeyAccessToken)
	m.refresh = m.readKey(state.KeyRefreshToken)

	if m.access != "" {
		m.transport.SetToken(m.access)
		m.status = StatusAuthenticated
		m.logger.Debug("Restored session from stored tokens")
	} else {
		m.status = StatusAnonymous
	}

	m.ready = true
	return nil
}

// Ready reports whether Initialize has completed.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Status returns the current session status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// IsLoggedIn reports whether the session is authenticated.
func (m *Manager) IsLoggedIn() bool {
	return m.Status() == StatusAuthenticated
}

// User returns the cached profile, nil when not fetched.
func (m *Manager) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Login authenticates with credentials, persists the token pair and
// fetches the user profile.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("email and password required")
	}

	m.logger.WithField("email", email).Info("Logging in")

	raw, err := m.transport.PostJSON(ctx, "/v1/auth/token/", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}

	var pair models.TokenPair
	if err := unmarshal(raw, &pair); err != nil {
		return fmt.Errorf("login response: %w", err)
	}
	if pair.Access == "" {
		return fmt.Errorf("invalid login response: missing access token")
	}

	m.mu.Lock()
	m.access = pair.Access
	m.refresh = pair.Refresh
	m.status = StatusAuthenticated
	m.ready = true
	m.writeKey(state.KeyAccessToken, pair.Access)
	if pair.Refresh != "" {
		m.writeKey(state.KeyRefreshToken, pair.Refresh)
	}
	m.mu.Unlock()

	m.transport.SetToken(pair.Access)

	if _, err := m.FetchUser(ctx); err != nil {
		return fmt.Errorf("fetch profile after login: %w", err)
	}

	m.logger.Info("Login successful")
	return nil
}

// FetchUser retrieves the current user's profile. Without an
// authenticated session it fails up front, issuing no request.
func (m *Manager) FetchUser(ctx context.Context) (*models.User, error) {
	if !m.IsLoggedIn() {
		return nil, models.ErrNotAuthenticated
	}

	raw, err := m.transport.GetJSON(ctx, "/v1/auth/users/me/", nil)
	if err != nil {
		m.logger.WithError(err).Error("Failed to fetch user")
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	var user models.User
	if err := unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("parse user: %w", err)
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	return &user, nil
}

// Logout clears tokens, profile and the transport authorization.
func (m *Manager) Logout() {
	m.logger.Info("Logging out")

	m.mu.Lock()
	m.clearLocked()
	m.status = StatusAnonymous
	m.mu.Unlock()

	m.transport.SetToken("")
}

// TryRefreshToken exchanges the stored refresh token for a new access
// token. Without a refresh token it returns false and issues no
// request. A failed refresh expires the session.
func (m *Manager) TryRefreshToken(ctx context.Context) bool {
	m.mu.Lock()
	refresh := m.refresh
	m.mu.Unlock()

	if refresh == "" {
		return false
	}

	raw, err := m.transport.PostJSON(ctx, m.refreshURL, map[string]string{
		"refresh": refresh,
	})
	if err != nil {
		m.logger.WithError(err).Warn("Token refresh failed")
		m.mu.Lock()
		m.clearLocked()
		m.status = StatusExpired
		m.mu.Unlock()
		m.transport.SetToken("")
		return false
	}

	var pair models.TokenPair
	if err := unmarshal(raw, &pair); err != nil || pair.Access == "" {
		m.logger.Warn("Token refresh returned no access token")
		m.mu.Lock()
		m.clearLocked()
		m.status = StatusExpired
		m.mu.Unlock()
		m.transport.SetToken("")
		return false
	}

	m.mu.Lock()
	m.access = pair.Access
	m.writeKey(state.KeyAccessToken, pair.Access)
	if pair.Refresh != "" {
		m.refresh = pair.Refresh
		m.writeKey(state.KeyRefreshToken, pair.Refresh)
	}
	m.status = StatusAuthenticated
	m.mu.Unlock()

	m.transport.SetToken(pair.Access)
	m.logger.Debug("Token refreshed")
	return true
}

// clearLocked wipes credentials; caller holds the lock.
func (m *Manager) clearLocked() {
	m.access = ""
	m.refresh = ""
	m.user = nil
	m.deleteKey(state.KeyAccessToken)
	m.deleteKey(state.KeyRefreshToken)
}

// Durable store access. Store failures are logged, never fatal: a
// broken state file should not lock the user out of this run.

func (m *Manager) readKey(key string) string {
	value, err := m.store.Get(key)
	if err != nil {
		if !errors.Is(err, state.ErrKeyNotFound) {
			m.logger.WithError(err).WithField("key", key).Warn("Failed to read state")
		}
		return ""
	}
	return value
}

func (m *Manager) writeKey(key, value string) {
	if err := m.store.Set(key, value); err != nil {
		m.logger.WithError(err).WithField("key", key).Warn("Failed to persist state")
	}
}

func (m *Manager) deleteKey(key string) {
	if err := m.store.Delete(key); err != nil {
		m.logger.WithError(err).WithField("key", key).Warn("Failed to clear state")
	}
}

func unmarshal(raw json.RawMessage, v interface{}) error {
	if raw == nil {
		return fmt.Errorf("empty response")
	}
	return json.Unmarshal(raw, v)
}
