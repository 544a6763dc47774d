package weather

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

const forecastBody = `{
	"daily": {
		"time": ["2026-09-12"],
		"temperature_2m_min": [14.2],
		"temperature_2m_max": [27.8],
		"precipitation_probability_max": [10],
		"wind_speed_10m_max": [18.5]
	}
}`

func TestGetSnapshot_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "2026-09-12", r.URL.Query().Get("start_date"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(forecastBody))
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	snapshot := service.GetSnapshot(context.Background(), 40.4168, -3.7038, "2026-09-12")

	require.False(t, snapshot.IsEmpty())
	assert.Equal(t, 14.2, *snapshot.TempMinC)
	assert.Equal(t, 27.8, *snapshot.TempMaxC)
	assert.Equal(t, 10.0, *snapshot.PrecipitationPct)
	assert.Equal(t, 18.5, *snapshot.WindMaxKmh)
}

func TestGetSnapshot_SecondCallServedFromCache(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(forecastBody))
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	first := service.GetSnapshot(context.Background(), 40.4168, -3.7038, "2026-09-12")
	second := service.GetSnapshot(context.Background(), 40.4168, -3.7038, "2026-09-12")

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	// A different date misses the cache.
	service.GetSnapshot(context.Background(), 40.4168, -3.7038, "2026-09-13")
	assert.Equal(t, 2, calls)
}

func TestGetSnapshot_FailureDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	snapshot := service.GetSnapshot(context.Background(), 40.4168, -3.7038, "2026-09-12")

	assert.True(t, snapshot.IsEmpty())
}

func TestGetSnapshot_PartialDataIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"daily": {
				"time": ["2026-09-12"],
				"temperature_2m_min": [null],
				"temperature_2m_max": [27.8],
				"precipitation_probability_max": [null],
				"wind_speed_10m_max": [null]
			}
		}`))
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	snapshot := service.GetSnapshot(context.Background(), 40.4168, -3.7038, "2026-09-12")

	assert.False(t, snapshot.IsEmpty())
	assert.Nil(t, snapshot.TempMinC)
	assert.Equal(t, 27.8, *snapshot.TempMaxC)
}

func TestGetSnapshot_DateMissingFromForecastIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(forecastBody))
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	snapshot := service.GetSnapshot(context.Background(), 40.4168, -3.7038, "2027-01-01")

	assert.True(t, snapshot.IsEmpty())
}
