package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatplan/internal/session"
	"flatplan/internal/state"
	"flatplan/internal/transport"
	"flatplan/test/testutil"
)

func newTestRouter(t *testing.T) (*Router, *session.Manager, *state.MockStore) {
	t.Helper()

	mock := transport.NewMockTransport()
	store := state.NewMockStore()
	logger := testutil.NewTestLogger()
	sess := session.NewManager(mock, store, "/v1/auth/token/refresh/", logger)
	return New(sess, store, logger), sess, store
}

func authenticate(t *testing.T, sess *session.Manager, store *state.MockStore) {
	t.Helper()

	require.NoError(t, store.Set(state.KeyAccessToken, "tok"))
	require.NoError(t, sess.Initialize(context.Background()))
	require.True(t, sess.IsLoggedIn())
}

func TestResolveGuard(t *testing.T) {
	t.Run("unauthenticated protected route redirects with continuation", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		decision, err := router.Resolve(context.Background(), "/editor/5")
		require.NoError(t, err)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.Equal(t, "/auth/login?next=/editor/5", decision.Target)
	})

	t.Run("continuation keeps the query string", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		decision, err := router.Resolve(context.Background(), "/flats?page=2")
		require.NoError(t, err)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.Equal(t, "/auth/login?next=/flats?page=2", decision.Target)
	})

	t.Run("authenticated navigation proceeds with params", func(t *testing.T) {
		router, sess, store := newTestRouter(t)
		authenticate(t, sess, store)

		decision, err := router.Resolve(context.Background(), "/editor/5")
		require.NoError(t, err)

		assert.Equal(t, DecisionProceed, decision.Kind)
		require.NotNil(t, decision.Route)
		assert.Equal(t, "floorplan-editor", decision.Route.Name)
		assert.Equal(t, "5", decision.Params["id"])
	})

	t.Run("login while authenticated redirects to landing", func(t *testing.T) {
		router, sess, store := newTestRouter(t)
		authenticate(t, sess, store)

		decision, err := router.Resolve(context.Background(), "/auth/login")
		require.NoError(t, err)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.Equal(t, "/", decision.Target)
		assert.True(t, decision.Replace)
	})

	t.Run("login while anonymous proceeds", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		decision, err := router.Resolve(context.Background(), "/auth/login?next=/flats")
		require.NoError(t, err)

		assert.Equal(t, DecisionProceed, decision.Kind)
		assert.Equal(t, "login", decision.Route.Name)
	})

	t.Run("initializes the session on first navigation", func(t *testing.T) {
		router, sess, store := newTestRouter(t)
		require.NoError(t, store.Set(state.KeyAccessToken, "tok"))
		require.False(t, sess.Ready())

		decision, err := router.Resolve(context.Background(), "/flats")
		require.NoError(t, err)

		assert.True(t, sess.Ready())
		assert.Equal(t, DecisionProceed, decision.Kind)
	})

	t.Run("unknown path gets the catch-all", func(t *testing.T) {
		router, sess, store := newTestRouter(t)
		authenticate(t, sess, store)

		decision, err := router.Resolve(context.Background(), "/nope/way/too/deep")
		require.NoError(t, err)

		assert.Equal(t, DecisionProceed, decision.Kind)
		assert.Equal(t, "notfound", decision.Route.Name)
	})
}

func TestMatch(t *testing.T) {
	router, _, _ := newTestRouter(t)

	tests := []struct {
		path string
		name string
	}{
		{"/", "flats-list"},
		{"/flats", "flats-list-alt"},
		{"/flats/12", "flat-detail"},
		{"/layouts", "layouts-list"},
		{"/layouts/3", "layout-detail"},
		{"/editor/3", "floorplan-editor"},
		{"/diagnostics", "diagnostics"},
		{"/debug", "debug"},
		{"/settings", "settings"},
		{"/auth/login", "login"},
		{"/auth/access", "accessDenied"},
		{"/auth/error", "error"},
		{"/unknown", "notfound"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, _ := router.match(tt.path)
			assert.Equal(t, tt.name, route.Name)
		})
	}
}

func TestTitle(t *testing.T) {
	router, _, _ := newTestRouter(t)

	assert.Equal(t, "Layout editor", router.Title("/editor/5"))
	assert.Equal(t, "404", router.Title("/unknown"))
}

func TestHandleLoadError(t *testing.T) {
	moduleErr := errors.New("TypeError: Failed to fetch dynamically imported module: /assets/Editor-abc123.js")

	t.Run("first failure triggers one reload", func(t *testing.T) {
		router, _, store := newTestRouter(t)

		decision := router.HandleLoadError(moduleErr, "/editor/5")

		assert.Equal(t, DecisionReload, decision.Kind)
		assert.Equal(t, "/editor/5", decision.Target)

		flag, err := store.Get(state.KeyDynamicReload)
		require.NoError(t, err)
		assert.Equal(t, "true", flag)
	})

	t.Run("second failure does not loop", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		first := router.HandleLoadError(moduleErr, "/editor/5")
		require.Equal(t, DecisionReload, first.Kind)

		second := router.HandleLoadError(moduleErr, "/editor/5")
		assert.Equal(t, DecisionNone, second.Kind)
	})

	t.Run("unrelated errors are not reloaded", func(t *testing.T) {
		router, _, store := newTestRouter(t)

		decision := router.HandleLoadError(errors.New("connection refused"), "/flats")

		assert.Equal(t, DecisionNone, decision.Kind)
		_, err := store.Get(state.KeyDynamicReload)
		assert.ErrorIs(t, err, state.ErrKeyNotFound)
	})

	t.Run("mark ready arms the next reload", func(t *testing.T) {
		router, _, store := newTestRouter(t)

		require.Equal(t, DecisionReload, router.HandleLoadError(moduleErr, "/editor/5").Kind)
		router.MarkReady()

		_, err := store.Get(state.KeyDynamicReload)
		assert.ErrorIs(t, err, state.ErrKeyNotFound)

		// A later deploy gets its own one-shot reload.
		assert.Equal(t, DecisionReload, router.HandleLoadError(moduleErr, "/editor/5").Kind)
	})
}
