// Package store holds the in-memory caches of server-owned entities.
// A store mirrors the server's state after each confirmed operation;
// there is no optimistic mutation. Overlapping calls are safe but
// last-write-wins by completion order.
package store

import (
	"context"
	"fmt"
	"sync"

	"flatplan/internal/api"
	"flatplan/internal/events"
	"flatplan/internal/models"
)

// EditMode is the floor-plan editor's active tool.
type EditMode string

const (
	ModeSelect EditMode = "select"
	ModeWall   EditMode = "wall"
	ModePoint  EditMode = "point"
	ModeObject EditMode = "object"
	ModeDoor   EditMode = "door"
)

// LayoutStore caches layouts plus the editor's ephemeral UI state.
type LayoutStore struct {
	client *api.LayoutsClient
	logger *events.Logger

	mu      sync.Mutex
	layouts []models.Layout
	current *models.Layout
	loading bool
	lastErr string

	// Editor state
	editMode EditMode
	zoom     float64
	showGrid bool
	gridSize int // 50px on canvas = 5cm real-world at default scale
}

// NewLayoutStore creates a layout store.
func NewLayoutStore(client *api.LayoutsClient, logger *events.Logger) *LayoutStore {
	return &LayoutStore{
		client:   client,
		logger:   logger.WithField("store", "layouts"),
		layouts:  []models.Layout{},
		editMode: ModeSelect,
		zoom:     1,
		showGrid: true,
		gridSize: 50,
	}
}

// begin marks a request in flight and clears the previous error.
func (s *LayoutStore) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.lastErr = ""
}

// finish releases the loading flag. Deferred on every action so the
// flag is held for exactly the request's duration on all exit paths.
func (s *LayoutStore) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// FetchLayouts replaces the cached list with the server's. On failure
// the list resets to empty and the error is recorded.
func (s *LayoutStore) FetchLayouts(ctx context.Context, filter api.LayoutFilter) error {
	s.begin()
	defer s.finish()

	layouts, _, err := s.client.List(ctx, filter)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to fetch layouts: %v", err)
		s.layouts = []models.Layout{}
		s.logger.WithError(err).Error("Fetch layouts failed")
		return err
	}

	if layouts == nil {
		layouts = []models.Layout{}
	}
	s.layouts = layouts
	return nil
}

// FetchLayout replaces the current selection. The list is untouched,
// also on failure.
func (s *LayoutStore) FetchLayout(ctx context.Context, id int64) error {
	s.begin()
	defer s.finish()

	layout, err := s.client.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to fetch layout: %v", err)
		s.logger.WithError(err).WithField("layout_id", id).Error("Fetch layout failed")
		return err
	}

	s.current = layout
	return nil
}

// CreateLayout creates a layout, appends it to the list and selects
// it. A nil document defaults to the empty points-variant document.
func (s *LayoutStore) CreateLayout(ctx context.Context, flatID *int64, data *models.LayoutData) (*models.Layout, error) {
	s.begin()
	defer s.finish()

	payload := models.LayoutCreate{Flat: flatID, LayoutData: data}
	if payload.LayoutData == nil {
		doc := models.DefaultLayoutData(models.GeometryPoints)
		payload.LayoutData = &doc
	}

	created, err := s.client.Create(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to create layout: %v", err)
		s.logger.WithError(err).Error("Create layout failed")
		return nil, err
	}

	s.layouts = append(s.layouts, *created)
	s.current = created
	return created, nil
}

// SaveLayout persists the geometry document of the current selection.
// Without a selection it is a no-op: no request, no state change.
func (s *LayoutStore) SaveLayout(ctx context.Context, data models.LayoutData) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return nil
	}

	s.begin()
	defer s.finish()

	updated, err := s.client.SaveLayoutData(ctx, current.ID, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to save layout: %v", err)
		s.logger.WithError(err).WithField("layout_id", current.ID).Error("Save layout failed")
		return err
	}

	s.applyLocked(updated)
	return nil
}

// UpdateLayoutName renames a layout and patches the cached copies.
func (s *LayoutStore) UpdateLayoutName(ctx context.Context, id int64, name string) (*models.Layout, error) {
	s.begin()
	defer s.finish()

	updated, err := s.client.Patch(ctx, id, models.LayoutPatch{Name: &name})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to rename layout: %v", err)
		s.logger.WithError(err).WithField("layout_id", id).Error("Rename layout failed")
		return nil, err
	}

	s.applyLocked(updated)
	return updated, nil
}

// SetScale persists the calibration factor through the dedicated
// endpoint and patches the cached copies.
func (s *LayoutStore) SetScale(ctx context.Context, id int64, scaleCmPerPx float64) (*models.Layout, error) {
	s.begin()
	defer s.finish()

	updated, err := s.client.SetScale(ctx, id, scaleCmPerPx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to set scale: %v", err)
		s.logger.WithError(err).WithField("layout_id", id).Error("Set scale failed")
		return nil, err
	}

	s.applyLocked(updated)
	return updated, nil
}

// DeleteLayout removes a layout. Local state changes only after the
// server confirmed the deletion.
func (s *LayoutStore) DeleteLayout(ctx context.Context, id int64) error {
	s.begin()
	defer s.finish()

	err := s.client.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to delete layout: %v", err)
		s.logger.WithError(err).WithField("layout_id", id).Error("Delete layout failed")
		return err
	}

	kept := s.layouts[:0]
	for _, l := range s.layouts {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	s.layouts = kept

	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	return nil
}

// SelectLayout sets the current selection locally, no request.
func (s *LayoutStore) SelectLayout(layout models.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &layout
}

// ClearError resets the recorded error.
func (s *LayoutStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// applyLocked writes an updated entity into the current selection and
// the matching list entry, keeping the two consistent by id.
func (s *LayoutStore) applyLocked(updated *models.Layout) {
	if s.current != nil && s.current.ID == updated.ID {
		s.current = updated
	}
	for i := range s.layouts {
		if s.layouts[i].ID == updated.ID {
			s.layouts[i] = *updated
			break
		}
	}
}

// Accessors

// Layouts returns a copy of the cached list.
func (s *LayoutStore) Layouts() []models.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Layout, len(s.layouts))
	copy(out, s.layouts)
	return out
}

// CurrentLayout returns a copy of the selection, nil when none.
func (s *LayoutStore) CurrentLayout() *models.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	layout := *s.current
	return &layout
}

// CurrentLayoutID returns the selected layout's id, 0 when none.
func (s *LayoutStore) CurrentLayoutID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	return s.current.ID
}

// Loading reports whether a request is in flight.
func (s *LayoutStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last failure's message, empty when none.
func (s *LayoutStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// HasError reports whether an error is recorded.
func (s *LayoutStore) HasError() bool {
	return s.Err() != ""
}

// Editor state

// EditMode returns the active editor tool.
func (s *LayoutStore) EditMode() EditMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

// SetEditMode switches the active editor tool.
func (s *LayoutStore) SetEditMode(mode EditMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = mode
}

// Zoom returns the editor zoom factor.
func (s *LayoutStore) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// SetZoom sets the editor zoom factor.
func (s *LayoutStore) SetZoom(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = zoom
}

// ShowGrid reports grid visibility.
func (s *LayoutStore) ShowGrid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showGrid
}

// SetShowGrid toggles grid visibility.
func (s *LayoutStore) SetShowGrid(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showGrid = show
}

// GridSize returns the grid cell size in canvas pixels.
func (s *LayoutStore) GridSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gridSize
}

// SetGridSize sets the grid cell size in canvas pixels.
func (s *LayoutStore) SetGridSize(px int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gridSize = px
}
