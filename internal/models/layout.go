package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GeometryKind tags the shape of a layout's geometry document.
type GeometryKind string

const (
	// GeometryPoints documents carry walls, calibration points and a
	// scale factor.
	GeometryPoints GeometryKind = "points"

	// GeometryRects documents carry walls, rectangular objects and
	// doors.
	GeometryRects GeometryKind = "rects"
)

// Wall is a line segment in canvas pixel coordinates.
type Wall struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Point is a named calibration point.
type Point struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Object is a rectangular furniture or fixture marker.
type Object struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
	Type string  `json:"type"`
}

// Door is a door opening.
type Door struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LayoutData is the geometry document of a floor plan. The document is
// open: keys this client does not know about are kept in Extra and
// written back verbatim, so older and newer editors can share layouts.
//
// Kind is client-side only and never serialized; on the wire the two
// variants are distinguished by which collections they carry.
type LayoutData struct {
	Kind GeometryKind

	Walls []Wall

	// Kind == GeometryPoints
	Points       []Point
	ScaleCmPerPx *float64

	// Kind == GeometryRects
	Objects []Object
	Doors   []Door

	Extra map[string]json.RawMessage
}

// DefaultLayoutData returns the empty document for a geometry kind.
func DefaultLayoutData(kind GeometryKind) LayoutData {
	switch kind {
	case GeometryRects:
		return LayoutData{
			Kind:    GeometryRects,
			Walls:   []Wall{},
			Objects: []Object{},
			Doors:   []Door{},
		}
	default:
		return LayoutData{
			Kind:   GeometryPoints,
			Walls:  []Wall{},
			Points: []Point{},
		}
	}
}

// MarshalJSON writes the variant-shaped wire document. Empty
// collections serialize as [] and a missing scale as null, matching
// what the editor persists.
func (d LayoutData) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(d.Extra)+4)
	for k, v := range d.Extra {
		doc[k] = v
	}

	walls := d.Walls
	if walls == nil {
		walls = []Wall{}
	}
	doc["walls"] = walls

	switch d.kind() {
	case GeometryRects:
		objects := d.Objects
		if objects == nil {
			objects = []Object{}
		}
		doors := d.Doors
		if doors == nil {
			doors = []Door{}
		}
		doc["objects"] = objects
		doc["doors"] = doors
		// A rects document may still carry a calibration factor, for
		// example after an image upload. Only the points variant owes
		// the key an explicit null.
		if d.ScaleCmPerPx != nil {
			doc["scale_cm_per_px"] = d.ScaleCmPerPx
		}
	default:
		points := d.Points
		if points == nil {
			points = []Point{}
		}
		doc["points"] = points
		doc["scale_cm_per_px"] = d.ScaleCmPerPx
	}

	return json.Marshal(doc)
}

// UnmarshalJSON reads either document variant and infers Kind from the
// collections present. Unknown keys are preserved.
func (d *LayoutData) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		*d = LayoutData{}
		return nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse layout data: %w", err)
	}

	out := LayoutData{}

	take := func(key string, v interface{}) error {
		raw, ok := doc[key]
		if !ok {
			return nil
		}
		delete(doc, key)
		if string(raw) == "null" {
			return nil
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("parse layout data %s: %w", key, err)
		}
		return nil
	}

	if err := take("walls", &out.Walls); err != nil {
		return err
	}
	if err := take("points", &out.Points); err != nil {
		return err
	}
	if err := take("objects", &out.Objects); err != nil {
		return err
	}
	if err := take("doors", &out.Doors); err != nil {
		return err
	}

	if raw, ok := doc["scale_cm_per_px"]; ok {
		delete(doc, "scale_cm_per_px")
		if string(raw) != "null" {
			var scale float64
			if err := json.Unmarshal(raw, &scale); err != nil {
				return fmt.Errorf("parse layout data scale_cm_per_px: %w", err)
			}
			out.ScaleCmPerPx = &scale
		}
	}

	if len(doc) > 0 {
		out.Extra = doc
	}

	if out.Objects != nil || out.Doors != nil {
		out.Kind = GeometryRects
	} else {
		out.Kind = GeometryPoints
	}

	*d = out
	return nil
}

func (d LayoutData) kind() GeometryKind {
	if d.Kind != "" {
		return d.Kind
	}
	if d.Objects != nil || d.Doors != nil {
		return GeometryRects
	}
	return GeometryPoints
}

// Layout is a floor-plan record. Flat is the optional owning flat;
// standalone layouts have none. The id is server-assigned, the client
// never fabricates one.
type Layout struct {
	ID           int64      `json:"id"`
	Flat         *int64     `json:"flat"`
	Name         string     `json:"name,omitempty"`
	Image        *string    `json:"image"`
	ScaleCmPerPx *float64   `json:"scale_cm_per_px"`
	LayoutData   LayoutData `json:"layout_data"`
	CreatedAt    string     `json:"created_at"`
	UpdatedAt    string     `json:"updated_at"`
}

// LayoutCreate is the POST /layouts/ payload.
type LayoutCreate struct {
	Flat       *int64      `json:"flat"`
	Name       string      `json:"name,omitempty"`
	LayoutData *LayoutData `json:"layout_data,omitempty"`
}

// LayoutPatch is a partial layout update.
type LayoutPatch struct {
	Name       *string     `json:"name,omitempty"`
	Flat       *int64      `json:"flat,omitempty"`
	LayoutData *LayoutData `json:"layout_data,omitempty"`
}
