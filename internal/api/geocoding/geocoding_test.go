package geocoding

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

func TestResolve_PicksBestCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Madrid, Spain", r.URL.Query().Get("name"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [
			{"name": "Madrid", "latitude": 40.4168, "longitude": -3.7038, "country": "Spain", "country_code": "ES"},
			{"name": "Madrid", "latitude": 41.9, "longitude": -93.8, "country": "United States", "country_code": "US"}
		]}`))
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	loc, err := service.Resolve(context.Background(), "Madrid, Spain")

	require.NoError(t, err)
	assert.Equal(t, "Madrid", loc.Name)
	assert.Equal(t, "ES", loc.CountryCode)
	assert.Equal(t, 40.4168, loc.Latitude)
	assert.Equal(t, "Madrid, Spain", loc.Label())
}

func TestResolve_ZeroCandidatesIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	_, err := service.Resolve(context.Background(), "Atlantis")

	require.Error(t, err)
	var notFound *types.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Atlantis", notFound.Query)
}

func TestResolve_ServerErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	_, err := service.Resolve(context.Background(), "Madrid")

	require.Error(t, err)
	var transport *types.TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestResolve_NetworkFailureIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	service := NewServiceImpl(server.URL, time.Second, slog.Default())
	_, err := service.Resolve(context.Background(), "Madrid")

	require.Error(t, err)
	var transport *types.TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestResolve_MalformedBodyIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	service := NewServiceImpl(server.URL, 5*time.Second, slog.Default())
	_, err := service.Resolve(context.Background(), "Madrid")

	require.Error(t, err)
	var transport *types.TransportError
	assert.ErrorAs(t, err, &transport)
}
