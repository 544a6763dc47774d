package types

// HolidayFact describes one public holiday discovered for the search date window.
type HolidayFact struct {
	Name      string `json:"name"`
	LocalName string `json:"local_name,omitempty"`
	Date      string `json:"date"` // ISO date.
}

// FestivalFact describes a festival or local event near the resolved location.
type FestivalFact struct {
	Name       string   `json:"name"`
	URL        string   `json:"url,omitempty"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
