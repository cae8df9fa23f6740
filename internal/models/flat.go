package models

// Flat is a residential unit record. Timestamps are opaque ISO strings
// from the server and are not parsed client-side.
type Flat struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	AreaSqm     *float64 `json:"area_sqm"`
	Rooms       *int     `json:"rooms"`
	Description string   `json:"description"`
	Layout      *Layout  `json:"layout"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// FlatCreateUpdate is the create/update payload for a flat.
type FlatCreateUpdate struct {
	Name        string   `json:"name"`
	Address     string   `json:"address,omitempty"`
	AreaSqm     *float64 `json:"area_sqm,omitempty"`
	Rooms       *int     `json:"rooms,omitempty"`
	Description string   `json:"description,omitempty"`
}
