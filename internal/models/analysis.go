package models

// LocationReport is a neighborhood analysis result for a property
// location.
type LocationReport struct {
	ID                 int64    `json:"id"`
	URL                string   `json:"url,omitempty"`
	Title              string   `json:"title,omitempty"`
	Address            string   `json:"address"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	HasPreciseLocation bool     `json:"has_precise_location"`
	NeighborhoodScore  *float64 `json:"neighborhood_score"`
	Pros               []string `json:"pros"`
	Cons               []string `json:"cons"`
	Checklist          []string `json:"checklist"`
	AnalysisRadius     int      `json:"analysis_radius"`
	SourceProvider     string   `json:"source_provider,omitempty"`
	CreatedAt          string   `json:"created_at"`
}

// AnalyzeLocationRequest asks for an analysis of raw coordinates.
type AnalyzeLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
	Radius    int     `json:"radius,omitempty"`
	Profile   string  `json:"profile,omitempty"`
}

// Provider describes a supported listing source.
type Provider struct {
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	Enabled bool   `json:"enabled"`
}
