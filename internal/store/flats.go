package store

import (
	"context"
	"fmt"
	"io"
	"sync"

	"flatplan/internal/api"
	"flatplan/internal/events"
	"flatplan/internal/models"
)

// FlatStore caches flats and the current selection.
type FlatStore struct {
	client *api.FlatsClient
	logger *events.Logger

	mu      sync.Mutex
	flats   []models.Flat
	count   int
	current *models.Flat
	loading bool
	lastErr string
}

// NewFlatStore creates a flat store.
func NewFlatStore(client *api.FlatsClient, logger *events.Logger) *FlatStore {
	return &FlatStore{
		client: client,
		logger: logger.WithField("store", "flats"),
		flats:  []models.Flat{},
	}
}

func (s *FlatStore) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.lastErr = ""
}

func (s *FlatStore) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// FetchFlats replaces the cached list. Count carries the server-side
// total when the response was paginated, the list length otherwise.
func (s *FlatStore) FetchFlats(ctx context.Context, filter api.FlatFilter) error {
	s.begin()
	defer s.finish()

	flats, meta, err := s.client.List(ctx, filter)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to fetch flats: %v", err)
		s.flats = []models.Flat{}
		s.count = 0
		s.logger.WithError(err).Error("Fetch flats failed")
		return err
	}

	if flats == nil {
		flats = []models.Flat{}
	}
	s.flats = flats
	if meta != nil {
		s.count = meta.Count
	} else {
		s.count = len(flats)
	}
	return nil
}

// FetchFlat replaces the current selection.
func (s *FlatStore) FetchFlat(ctx context.Context, id int64) error {
	s.begin()
	defer s.finish()

	flat, err := s.client.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to fetch flat: %v", err)
		s.logger.WithError(err).WithField("flat_id", id).Error("Fetch flat failed")
		return err
	}

	s.current = flat
	return nil
}

// CreateFlat creates a flat, appends it and selects it.
func (s *FlatStore) CreateFlat(ctx context.Context, data models.FlatCreateUpdate) (*models.Flat, error) {
	s.begin()
	defer s.finish()

	created, err := s.client.Create(ctx, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to create flat: %v", err)
		s.logger.WithError(err).Error("Create flat failed")
		return nil, err
	}

	s.flats = append(s.flats, *created)
	s.count++
	s.current = created
	return created, nil
}

// UpdateFlat replaces a flat server-side and patches the cached
// copies.
func (s *FlatStore) UpdateFlat(ctx context.Context, id int64, data models.FlatCreateUpdate) (*models.Flat, error) {
	s.begin()
	defer s.finish()

	updated, err := s.client.Update(ctx, id, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to update flat: %v", err)
		s.logger.WithError(err).WithField("flat_id", id).Error("Update flat failed")
		return nil, err
	}

	s.applyLocked(updated)
	return updated, nil
}

// DeleteFlat removes a flat after server confirmation.
func (s *FlatStore) DeleteFlat(ctx context.Context, id int64) error {
	s.begin()
	defer s.finish()

	err := s.client.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to delete flat: %v", err)
		s.logger.WithError(err).WithField("flat_id", id).Error("Delete flat failed")
		return err
	}

	kept := s.flats[:0]
	for _, f := range s.flats {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) < len(s.flats) && s.count > 0 {
		s.count--
	}
	s.flats = kept

	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	return nil
}

// UploadLayoutImage uploads a floor-plan image for a flat and attaches
// the returned layout to the cached flat.
func (s *FlatStore) UploadLayoutImage(ctx context.Context, flatID int64, filename string, image io.Reader) (*models.Layout, error) {
	s.begin()
	defer s.finish()

	layout, err := s.client.UploadLayoutImage(ctx, flatID, filename, image)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = fmt.Sprintf("failed to upload layout image: %v", err)
		s.logger.WithError(err).WithField("flat_id", flatID).Error("Upload layout image failed")
		return nil, err
	}

	if s.current != nil && s.current.ID == flatID {
		s.current.Layout = layout
	}
	for i := range s.flats {
		if s.flats[i].ID == flatID {
			s.flats[i].Layout = layout
			break
		}
	}
	return layout, nil
}

// SelectFlat sets the current selection locally, no request.
func (s *FlatStore) SelectFlat(flat models.Flat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &flat
}

// ClearError resets the recorded error.
func (s *FlatStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

func (s *FlatStore) applyLocked(updated *models.Flat) {
	if s.current != nil && s.current.ID == updated.ID {
		s.current = updated
	}
	for i := range s.flats {
		if s.flats[i].ID == updated.ID {
			s.flats[i] = *updated
			break
		}
	}
}

// Accessors

// Flats returns a copy of the cached list.
func (s *FlatStore) Flats() []models.Flat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Flat, len(s.flats))
	copy(out, s.flats)
	return out
}

// Count returns the server-side total from the last list fetch.
func (s *FlatStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// CurrentFlat returns a copy of the selection, nil when none.
func (s *FlatStore) CurrentFlat() *models.Flat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	flat := *s.current
	return &flat
}

// Loading reports whether a request is in flight.
func (s *FlatStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last failure's message, empty when none.
func (s *FlatStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// HasError reports whether an error is recorded.
func (s *FlatStore) HasError() bool {
	return s.Err() != ""
}
