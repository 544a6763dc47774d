package holidays

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

func TestPublicHolidays_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PublicHolidays/2026/ES", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date": "2026-10-12", "localName": "Fiesta Nacional de España", "name": "National Day"},
			{"date": "2026-12-25", "localName": "Navidad", "name": "Christmas Day"}
		]`))
	}))
	defer server.Close()

	client := NewCalendarClient(server.URL, 5*time.Second, slog.Default())
	facts, err := client.PublicHolidays(context.Background(), "es", 2026)

	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, "National Day", facts[0].Name)
	assert.Equal(t, "Fiesta Nacional de España", facts[0].LocalName)
	assert.Equal(t, "2026-10-12", facts[0].Date)
}

func TestPublicHolidays_NoContentMeansEmptyNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewCalendarClient(server.URL, 5*time.Second, slog.Default())
	facts, err := client.PublicHolidays(context.Background(), "XK", 2026)

	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestPublicHolidays_ServerErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewCalendarClient(server.URL, 5*time.Second, slog.Default())
	_, err := client.PublicHolidays(context.Background(), "ES", 2026)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestPublicHolidays_MalformedBodyPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer server.Close()

	client := NewCalendarClient(server.URL, 5*time.Second, slog.Default())
	_, err := client.PublicHolidays(context.Background(), "ES", 2026)

	assert.Error(t, err)
}
