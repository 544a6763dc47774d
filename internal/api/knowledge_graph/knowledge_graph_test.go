package knowledgeGraph

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointWKT(t *testing.T) {
	tests := []struct {
		name  string
		input string
		lat   float64
		lon   float64
		ok    bool
	}{
		{"valid point", "Point(-3.7038 40.4168)", 40.4168, -3.7038, true},
		{"with whitespace", "  Point(-3.7038 40.4168)  ", 40.4168, -3.7038, true},
		{"missing prefix", "(-3.7038 40.4168)", 0, 0, false},
		{"one coordinate", "Point(40.4168)", 0, 0, false},
		{"non-numeric", "Point(east north)", 0, 0, false},
		{"empty", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, ok := parsePointWKT(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.lat, lat)
				assert.Equal(t, tt.lon, lon)
			}
		})
	}
}

func TestHaversineKm(t *testing.T) {
	// Madrid to Barcelona, roughly 505 km.
	d := HaversineKm(40.4168, -3.7038, 41.3874, 2.1686)
	assert.InDelta(t, 505, d, 10)

	// Same point is zero distance.
	assert.Zero(t, HaversineKm(40.4168, -3.7038, 40.4168, -3.7038))
}

func TestTruncateToDate(t *testing.T) {
	assert.Equal(t, "2026-09-12", truncateToDate("2026-09-12T00:00:00Z"))
	assert.Equal(t, "2026-09-12", truncateToDate("2026-09-12"))
	assert.Equal(t, "", truncateToDate("not a date at all"))
	assert.Equal(t, "", truncateToDate(""))
}

func TestWindowBounds(t *testing.T) {
	from, to, err := windowBounds("2026-09-12")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-05", from)
	assert.Equal(t, "2026-09-19", to)

	_, _, err = windowBounds("next friday")
	assert.Error(t, err)
}

const sparqlFestivalBody = `{
	"results": {
		"bindings": [
			{
				"eventLabel": {"type": "literal", "value": "Autumn Fair"},
				"coord": {"type": "literal", "value": "Point(-3.70 40.42)"},
				"startDate": {"type": "literal", "value": "2026-09-10T00:00:00Z"},
				"article": {"type": "uri", "value": "https://example.org/fair"}
			},
			{
				"eventLabel": {"type": "literal", "value": "Distant Fest"}
			}
		]
	}
}`

func TestQueryFestivalsNear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.Form.Get("query"), "wikibase:around")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(sparqlFestivalBody))
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	festivals, err := service.QueryFestivalsNear(context.Background(), 40.4168, -3.7038, 60, "2026-09-12")

	require.NoError(t, err)
	require.Len(t, festivals, 2)

	assert.Equal(t, "Autumn Fair", festivals[0].Name)
	assert.Equal(t, "2026-09-10", festivals[0].StartDate)
	assert.Equal(t, "https://example.org/fair", festivals[0].URL)
	require.NotNil(t, festivals[0].DistanceKm)
	assert.Less(t, *festivals[0].DistanceKm, 1.0)

	// Entries without coordinates have no distance.
	assert.Nil(t, festivals[1].DistanceKm)
}

func TestQueryEventsWindow_SplitsByKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(`{
			"results": {
				"bindings": [
					{
						"eventLabel": {"type": "literal", "value": "National Day"},
						"kind": {"type": "literal", "value": "holiday"},
						"date": {"type": "literal", "value": "2026-10-12T00:00:00Z"}
					},
					{
						"eventLabel": {"type": "literal", "value": "Harvest Festival"},
						"kind": {"type": "literal", "value": "festival"},
						"coord": {"type": "literal", "value": "Point(-3.70 40.42)"}
					}
				]
			}
		}`))
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	holidays, festivals, err := service.QueryEventsWindow(context.Background(), "es", 40.4168, -3.7038, 60, "2026-10-12")

	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "National Day", holidays[0].Name)
	assert.Equal(t, "2026-10-12", holidays[0].Date)

	require.Len(t, festivals, 1)
	assert.Equal(t, "Harvest Festival", festivals[0].Name)
}

func TestQueryFestivalsNear_ServerErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	_, err := service.QueryFestivalsNear(context.Background(), 40.4168, -3.7038, 60, "2026-09-12")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
