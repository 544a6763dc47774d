package types

import "strings"

// ActivityCategory is the fixed category enumeration for recommended activities.
type ActivityCategory string

const (
	CategoryOutdoor    ActivityCategory = "outdoor"
	CategoryIndoor     ActivityCategory = "indoor"
	CategoryMuseum     ActivityCategory = "museum"
	CategoryPlayground ActivityCategory = "playground"
	CategorySports     ActivityCategory = "sports"
	CategoryWater      ActivityCategory = "water"
	CategoryNature     ActivityCategory = "nature"
	CategoryCultural   ActivityCategory = "cultural"
	CategoryEvent      ActivityCategory = "event"
	CategoryOther      ActivityCategory = "other"
)

// AllowedCategories lists every valid category, in the order the backend
// expects them in the allowed-category enumeration string.
var AllowedCategories = []ActivityCategory{
	CategoryOutdoor, CategoryIndoor, CategoryMuseum, CategoryPlayground,
	CategorySports, CategoryWater, CategoryNature, CategoryCultural,
	CategoryEvent, CategoryOther,
}

// AllowedCategoriesString renders the enumeration for the backend request.
func AllowedCategoriesString() string {
	parts := make([]string, len(AllowedCategories))
	for i, c := range AllowedCategories {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// IsValidCategory reports whether c is part of the fixed enumeration.
func IsValidCategory(c ActivityCategory) bool {
	for _, v := range AllowedCategories {
		if v == c {
			return true
		}
	}
	return false
}

// WeatherFit classifies how well an activity suits the forecast weather.
type WeatherFit string

const (
	WeatherFitGood WeatherFit = "good"
	WeatherFitOk   WeatherFit = "ok"
	WeatherFitBad  WeatherFit = "bad"
)

// IsValidWeatherFit reports whether f is one of good/ok/bad.
func IsValidWeatherFit(f WeatherFit) bool {
	return f == WeatherFitGood || f == WeatherFitOk || f == WeatherFitBad
}

// Activity is one validated recommendation. After validation, Title and
// Description are never empty; an activity that cannot be repaired to satisfy
// that is dropped from the result.
type Activity struct {
	Title        string           `json:"title"`
	Category     ActivityCategory `json:"category"`
	Description  string           `json:"description"`
	SuitableAges string           `json:"suitable_ages"`
	DurationHrs  float64          `json:"duration_hours"`
	Address      string           `json:"address,omitempty"`
	Latitude     *float64         `json:"latitude,omitempty"`
	Longitude    *float64         `json:"longitude,omitempty"`
	BookingURL   string           `json:"booking_url,omitempty"`
	Free         *bool            `json:"free,omitempty"`
	WeatherFit   WeatherFit       `json:"weather_fit"`
	Notes        string           `json:"notes,omitempty"`
	Evidence     []string         `json:"evidence,omitempty"` // Source URLs backing the recommendation.
}

// WebSource is an optional citation returned alongside the activities.
type WebSource struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// RecommendationResult is the validated output of one recommendation call.
type RecommendationResult struct {
	Activities []Activity  `json:"activities"`
	WebSources []WebSource `json:"web_sources,omitempty"`
	AiProvider string      `json:"ai_provider,omitempty"`
	AiModel    string      `json:"ai_model,omitempty"`
}
