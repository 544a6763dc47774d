package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-family-activity-search/internal/api/festivals"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/geocoding"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/holidays"
	knowledgeGraph "github.com/FACorreiaa/go-family-activity-search/internal/api/knowledge_graph"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/recommendation"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/run"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/weather"
	api "github.com/FACorreiaa/go-family-activity-search/internal/router"
	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// stubProviders hosts fake upstream services for the full pipeline.
type stubProviders struct {
	geocoding      *httptest.Server
	weather        *httptest.Server
	calendar       *httptest.Server
	sparql         *httptest.Server
	enhanced       *httptest.Server
	recommendation *httptest.Server
}

func newStubProviders(t *testing.T) *stubProviders {
	t.Helper()
	s := &stubProviders{}

	s.geocoding = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"name": "Madrid", "latitude": 40.4168, "longitude": -3.7038, "country": "Spain", "country_code": "ES"}]}`))
	}))
	s.weather = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("start_date")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"daily": {"time": [%q], "temperature_2m_min": [14.2], "temperature_2m_max": [27.8], "precipitation_probability_max": [10], "wind_speed_10m_max": [18.5]}}`, date)
	}))
	s.calendar = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"date": "2026-09-12", "localName": "Día de Prueba", "name": "Test Day"}]`))
	}))
	s.sparql = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(`{"results": {"bindings": []}}`))
	}))
	s.enhanced = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"holidays": []}`))
	}))
	s.recommendation = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"activities": [
				{"title": "Retiro Park", "description": "Rowboats and playgrounds.", "category": "outdoor", "weather_fit": "good", "duration_hours": 3},
				{"title": "Science Museum", "description": "Hands-on exhibits.", "category": "museum", "weather_fit": "ok"}
			],
			"ai_provider": "gemini",
			"ai_model": "gemini-2.0-flash"
		}`))
	}))

	t.Cleanup(func() {
		s.geocoding.Close()
		s.weather.Close()
		s.calendar.Close()
		s.sparql.Close()
		s.enhanced.Close()
		s.recommendation.Close()
	})
	return s
}

func newTestServer(t *testing.T, s *stubProviders) *httptest.Server {
	t.Helper()
	logger := slog.Default()
	timeout := 5 * time.Second

	knowledgeSvc := knowledgeGraph.NewServiceImpl(s.sparql.URL, timeout, logger)
	holidaySvc := holidays.NewServiceImpl(
		holidays.NewCalendarClient(s.calendar.URL, timeout, logger),
		knowledgeSvc,
		holidays.NewEnhancedClient(s.enhanced.URL, timeout, logger),
		nil,
		logger,
	)

	durations := run.NewDurationHistory()
	controller := run.NewController(
		geocoding.NewServiceImpl(s.geocoding.URL, timeout, logger),
		weather.NewServiceImpl(s.weather.URL, timeout, logger),
		holidaySvc,
		festivals.NewServiceImpl(knowledgeSvc, 10, logger),
		recommendation.NewInvokerImpl(s.recommendation.URL, timeout, 2, 10*time.Millisecond, durations, logger),
		recommendation.NewValidatorImpl(logger),
		nil,
		durations,
		run.Options{
			FestivalRadiusKm:    60,
			SuccessDisplayDelay: 200 * time.Millisecond,
			ErrorDisplayDelay:   200 * time.Millisecond,
		},
		logger,
	)

	router := api.SetupRouter(&api.Config{RunHandler: run.NewHandler(controller, logger)})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func startSearch(t *testing.T, baseURL string) uuid.UUID {
	t.Helper()
	body := `{"location": "Madrid, Spain", "date": "2026-09-12", "duration_hours": 4, "child_ages": [4, 7]}`
	resp, err := http.Post(baseURL+"/api/v1/search", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var payload struct {
		RunID uuid.UUID `json:"run_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload.RunID
}

func pollSnapshot(t *testing.T, baseURL string, runID uuid.UUID) (types.RunSnapshot, int) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("%s/api/v1/search/%s", baseURL, runID))
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap types.RunSnapshot
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	}
	return snap, resp.StatusCode
}

func TestSearchPipeline_EndToEnd(t *testing.T) {
	stubs := newStubProviders(t)
	server := newTestServer(t, stubs)

	runID := startSearch(t, server.URL)

	var final types.RunSnapshot
	require.Eventually(t, func() bool {
		snap, code := pollSnapshot(t, server.URL, runID)
		if code != http.StatusOK {
			return false
		}
		final = snap
		return snap.State == types.RunStateComplete
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 100, final.Progress)
	require.NotNil(t, final.Result)
	require.Len(t, final.Result.Activities, 2)
	assert.Equal(t, "Retiro Park", final.Result.Activities[0].Title)
	assert.Equal(t, "gemini-2.0-flash", final.Result.AiModel)

	// After the display window the controller is idle and ready for a new run.
	require.Eventually(t, func() bool {
		resp, err := http.Get(server.URL + "/api/v1/search")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var snap types.RunSnapshot
		if json.NewDecoder(resp.Body).Decode(&snap) != nil {
			return false
		}
		return snap.State == types.RunStateIdle
	}, 5*time.Second, 20*time.Millisecond)
}

func TestSearchPipeline_ConcurrentStartRejected(t *testing.T) {
	stubs := newStubProviders(t)

	// Make the recommendation backend slow enough that the run stays active.
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"activities": [{"title": "Zoo", "description": "Animals."}]}`))
	}))
	defer slow.Close()
	defer close(release)
	stubs.recommendation = slow

	server := newTestServer(t, stubs)
	runID := startSearch(t, server.URL)

	body := `{"location": "Madrid, Spain", "date": "2026-09-12", "duration_hours": 4, "child_ages": [4, 7]}`
	resp, err := http.Post(server.URL+"/api/v1/search", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Cancel and verify the controller returns to idle.
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/search/%s", server.URL, runID), nil)
	require.NoError(t, err)
	cancelResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer cancelResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, cancelResp.StatusCode)

	_, code := pollSnapshot(t, server.URL, runID)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSearchPipeline_GeocodeFailureSurfacesError(t *testing.T) {
	stubs := newStubProviders(t)

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	}))
	defer empty.Close()
	stubs.geocoding = empty

	server := newTestServer(t, stubs)
	runID := startSearch(t, server.URL)

	var final types.RunSnapshot
	require.Eventually(t, func() bool {
		snap, code := pollSnapshot(t, server.URL, runID)
		if code != http.StatusOK {
			return false
		}
		final = snap
		return snap.State == types.RunStateFailed
	}, 5*time.Second, 20*time.Millisecond)

	assert.Contains(t, final.Error, "couldn't find that location")
	assert.Nil(t, final.Result)
}
