package types

import "time"

// SearchRequest carries the user-supplied inputs for one search run.
// It is immutable once a run starts.
type SearchRequest struct {
	Location     string  `json:"location" binding:"required"`       // Free-text place name, e.g. "Madrid, Spain".
	Date         string  `json:"date" binding:"required"`           // ISO date (YYYY-MM-DD).
	DurationHrs  float64 `json:"duration_hours" binding:"required"` // Planned activity duration, > 0.
	ChildAges    []int   `json:"child_ages" binding:"required"`     // Non-empty set of children's ages.
	Instructions string  `json:"instructions,omitempty"`            // Optional free-text instructions for the AI.
}

// ResolvedLocation is the normalized output of the geocoding step.
// Produced once per run; never mutated.
type ResolvedLocation struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"` // ISO-3166 alpha-2.
}

// Label returns the display label used in the assembled Context.
func (r ResolvedLocation) Label() string {
	if r.Country == "" {
		return r.Name
	}
	return r.Name + ", " + r.Country
}

// SearchDurationSample records one observed end-to-end search latency.
// Used only by the progress heuristic, never by correctness logic.
type SearchDurationSample struct {
	DurationMs int64     `json:"duration_ms"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
}
