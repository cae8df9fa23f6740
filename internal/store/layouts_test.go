package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatplan/internal/api"
	"flatplan/internal/models"
	"flatplan/internal/transport"
	"flatplan/test/testutil"
)

func newTestLayoutStore() (*LayoutStore, *transport.MockTransport) {
	mock := transport.NewMockTransport()
	client := api.NewLayoutsClient(mock, testutil.NewTestLogger())
	return NewLayoutStore(client, testutil.NewTestLogger()), mock
}

func TestFetchLayouts(t *testing.T) {
	t.Run("success replaces list", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddRawResponse("GET", "/layouts/",
			`[{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]`)

		require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))

		assert.Len(t, store.Layouts(), 2)
		assert.False(t, store.Loading())
		assert.False(t, store.HasError())
	})

	t.Run("failure resets list and records error", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddRawResponse("GET", "/layouts/", `[{"id": 1, "name": "A"}]`)
		require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))
		require.Len(t, store.Layouts(), 1)

		mock.AddError("GET", "/layouts/", assert.AnError)

		err := store.FetchLayouts(context.Background(), api.LayoutFilter{})
		require.Error(t, err)

		assert.Empty(t, store.Layouts())
		assert.True(t, store.HasError())
		assert.Contains(t, store.Err(), "failed to fetch layouts")
		assert.False(t, store.Loading())
	})

	t.Run("next action clears previous error", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddError("GET", "/layouts/", assert.AnError)
		_ = store.FetchLayouts(context.Background(), api.LayoutFilter{})
		require.True(t, store.HasError())

		mock.AddRawResponse("GET", "/layouts/", `[]`)
		require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))

		assert.False(t, store.HasError())
	})
}

func TestFetchLayout(t *testing.T) {
	t.Run("sets current without touching list", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddRawResponse("GET", "/layouts/", `[{"id": 1, "name": "A"}]`)
		require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))

		mock.AddRawResponse("GET", "/layouts/5/", `{"id": 5, "name": "Detail"}`)
		require.NoError(t, store.FetchLayout(context.Background(), 5))

		require.NotNil(t, store.CurrentLayout())
		assert.Equal(t, int64(5), store.CurrentLayoutID())
		assert.Len(t, store.Layouts(), 1)
	})

	t.Run("failure keeps previous selection", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddRawResponse("GET", "/layouts/5/", `{"id": 5, "name": "Detail"}`)
		require.NoError(t, store.FetchLayout(context.Background(), 5))

		mock.AddError("GET", "/layouts/6/", assert.AnError)
		require.Error(t, store.FetchLayout(context.Background(), 6))

		assert.Equal(t, int64(5), store.CurrentLayoutID())
		assert.True(t, store.HasError())
	})
}

func TestCreateLayout(t *testing.T) {
	t.Run("nil document defaults to empty points variant", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddRawResponse("POST", "/layouts/",
			`{"id": 4, "flat": 7, "layout_data": {"walls": [], "points": [], "scale_cm_per_px": null}}`)

		flat := int64(7)
		created, err := store.CreateLayout(context.Background(), &flat, nil)
		require.NoError(t, err)

		// The created layout is appended and selected.
		layouts := store.Layouts()
		require.Len(t, layouts, 1)
		assert.Equal(t, created.ID, layouts[0].ID)
		assert.Equal(t, created.ID, store.CurrentLayoutID())

		requests := mock.RequestsFor("POST", "/layouts/")
		require.Len(t, requests, 1)
		payload, ok := requests[0].Payload.(models.LayoutCreate)
		require.True(t, ok)
		require.NotNil(t, payload.LayoutData)
		assert.Equal(t, models.GeometryPoints, payload.LayoutData.Kind)
		assert.NotNil(t, payload.LayoutData.Walls)
		assert.NotNil(t, payload.LayoutData.Points)
		assert.Nil(t, payload.LayoutData.ScaleCmPerPx)
	})

	t.Run("failure leaves list untouched", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddError("POST", "/layouts/", assert.AnError)

		_, err := store.CreateLayout(context.Background(), nil, nil)
		require.Error(t, err)

		assert.Empty(t, store.Layouts())
		assert.Nil(t, store.CurrentLayout())
		assert.True(t, store.HasError())
	})
}

func TestSaveLayout(t *testing.T) {
	t.Run("no selection is a no-op", func(t *testing.T) {
		store, mock := newTestLayoutStore()

		err := store.SaveLayout(context.Background(), models.DefaultLayoutData(models.GeometryPoints))

		assert.NoError(t, err)
		assert.Zero(t, mock.RequestCount())
		assert.False(t, store.HasError())
	})

	t.Run("updates current and list entry", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddRawResponse("GET", "/layouts/", `[{"id": 5, "name": "A"}, {"id": 6, "name": "B"}]`)
		require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))
		store.SelectLayout(store.Layouts()[0])

		mock.AddRawResponse("POST", "/layouts/5/save_layout_data/",
			`{"id": 5, "name": "A", "layout_data": {"walls": [{"x1": 0, "y1": 0, "x2": 1, "y2": 1}], "points": [], "scale_cm_per_px": null}}`)

		doc := models.DefaultLayoutData(models.GeometryPoints)
		doc.Walls = append(doc.Walls, models.Wall{X2: 1, Y2: 1})
		require.NoError(t, store.SaveLayout(context.Background(), doc))

		current := store.CurrentLayout()
		require.NotNil(t, current)
		assert.Len(t, current.LayoutData.Walls, 1)

		layouts := store.Layouts()
		assert.Len(t, layouts[0].LayoutData.Walls, 1)
		assert.Empty(t, layouts[1].LayoutData.Walls)
	})
}

func TestSetScale(t *testing.T) {
	store, mock := newTestLayoutStore()
	mock.AddRawResponse("GET", "/layouts/", `[{"id": 5, "name": "A"}]`)
	require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))
	store.SelectLayout(store.Layouts()[0])

	mock.AddRawResponse("POST", "/layouts/5/set_scale/", `{"id": 5, "name": "A", "scale_cm_per_px": 0.25}`)

	updated, err := store.SetScale(context.Background(), 5, 0.25)
	require.NoError(t, err)
	require.NotNil(t, updated.ScaleCmPerPx)

	current := store.CurrentLayout()
	require.NotNil(t, current.ScaleCmPerPx)
	assert.Equal(t, 0.25, *current.ScaleCmPerPx)
	require.NotNil(t, store.Layouts()[0].ScaleCmPerPx)
}

func TestDeleteLayout(t *testing.T) {
	t.Run("removes from list and clears selection", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddRawResponse("GET", "/layouts/", `[{"id": 5, "name": "A"}, {"id": 6, "name": "B"}]`)
		require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))
		store.SelectLayout(store.Layouts()[0])

		mock.AddRawResponse("DELETE", "/layouts/5/", `null`)
		require.NoError(t, store.DeleteLayout(context.Background(), 5))

		layouts := store.Layouts()
		require.Len(t, layouts, 1)
		assert.Equal(t, int64(6), layouts[0].ID)
		assert.Nil(t, store.CurrentLayout())
	})

	t.Run("keeps other selection", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddRawResponse("GET", "/layouts/", `[{"id": 5, "name": "A"}, {"id": 6, "name": "B"}]`)
		require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))
		store.SelectLayout(store.Layouts()[1])

		mock.AddRawResponse("DELETE", "/layouts/5/", `null`)
		require.NoError(t, store.DeleteLayout(context.Background(), 5))

		assert.Equal(t, int64(6), store.CurrentLayoutID())
	})

	t.Run("server failure keeps local state", func(t *testing.T) {
		store, mock := newTestLayoutStore()
		mock.AddRawResponse("GET", "/layouts/", `[{"id": 5, "name": "A"}]`)
		require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))
		store.SelectLayout(store.Layouts()[0])

		mock.AddError("DELETE", "/layouts/5/", assert.AnError)
		require.Error(t, store.DeleteLayout(context.Background(), 5))

		assert.Len(t, store.Layouts(), 1)
		assert.Equal(t, int64(5), store.CurrentLayoutID())
		assert.True(t, store.HasError())
	})
}

func TestUpdateLayoutName(t *testing.T) {
	store, mock := newTestLayoutStore()
	mock.AddRawResponse("GET", "/layouts/", `[{"id": 5, "name": "Old"}]`)
	require.NoError(t, store.FetchLayouts(context.Background(), api.LayoutFilter{}))

	mock.AddRawResponse("PATCH", "/layouts/5/", `{"id": 5, "name": "New"}`)

	updated, err := store.UpdateLayoutName(context.Background(), 5, "New")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "New", store.Layouts()[0].Name)
}

func TestClearError(t *testing.T) {
	store, mock := newTestLayoutStore()
	mock.AddError("GET", "/layouts/", assert.AnError)
	_ = store.FetchLayouts(context.Background(), api.LayoutFilter{})
	require.True(t, store.HasError())

	store.ClearError()

	assert.False(t, store.HasError())
	assert.Empty(t, store.Err())
}

func TestEditorState(t *testing.T) {
	store, _ := newTestLayoutStore()

	assert.Equal(t, ModeSelect, store.EditMode())
	assert.Equal(t, 1.0, store.Zoom())
	assert.True(t, store.ShowGrid())
	assert.Equal(t, 50, store.GridSize())

	store.SetEditMode(ModeWall)
	store.SetZoom(2.5)
	store.SetShowGrid(false)
	store.SetGridSize(25)

	assert.Equal(t, ModeWall, store.EditMode())
	assert.Equal(t, 2.5, store.Zoom())
	assert.False(t, store.ShowGrid())
	assert.Equal(t, 25, store.GridSize())
}
