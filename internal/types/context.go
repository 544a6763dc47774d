package types

// Context is the single immutable payload sent to the recommendation backend.
// Once constructed it is never mutated; retries reuse the same Context so a
// retried request is byte-identical to the first attempt.
type Context struct {
	Location        string          `json:"location"` // Display label, e.g. "Madrid, Spain".
	Date            string          `json:"date"`
	DurationHrs     float64         `json:"duration_hours"`
	ChildAges       []int           `json:"child_ages"`
	Weather         WeatherSnapshot `json:"weather"`
	IsPublicHoliday bool            `json:"is_public_holiday"`
	Holidays        []HolidayFact   `json:"holidays,omitempty"`
	Festivals       []FestivalFact  `json:"festivals,omitempty"`
	Instructions    string          `json:"instructions,omitempty"`
}
