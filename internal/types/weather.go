package types

// WeatherSnapshot holds daily weather figures for the search date.
// Every field is independently nullable: partial provider data is valid
// and must never fail a run.
type WeatherSnapshot struct {
	TempMinC         *float64 `json:"temp_min_c,omitempty"`
	TempMaxC         *float64 `json:"temp_max_c,omitempty"`
	PrecipitationPct *float64 `json:"precipitation_probability_pct,omitempty"`
	WindMaxKmh       *float64 `json:"wind_max_kmh,omitempty"`
}

// IsEmpty reports whether no field carries data.
func (w WeatherSnapshot) IsEmpty() bool {
	return w.TempMinC == nil && w.TempMaxC == nil && w.PrecipitationPct == nil && w.WindMaxKmh == nil
}
