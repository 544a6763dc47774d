package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service resolves free-text place names into normalized coordinates.
// It performs no retries; retry policy belongs to the run controller.
type Service interface {
	Resolve(ctx context.Context, location string) (*types.ResolvedLocation, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func NewServiceImpl(baseURL string, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type geocodeCandidate struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
}

type geocodeResponse struct {
	Results []geocodeCandidate `json:"results"`
}

// Resolve returns the first (best-scored) candidate for the location text.
// Zero candidates yield a NotFoundError; network or non-2xx failures yield a
// TransportError.
func (s *ServiceImpl) Resolve(ctx context.Context, location string) (*types.ResolvedLocation, error) {
	ctx, span := otel.Tracer("GeocodingService").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("location.query", location),
	))
	defer span.End()

	reqURL := fmt.Sprintf("%s/search?name=%s&count=5&language=en&format=json",
		s.baseURL, url.QueryEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, &types.TransportError{Op: "geocoding", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
		span.RecordError(err)
		return nil, &types.TransportError{Op: "geocoding", Err: err}
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.RecordError(err)
		return nil, &types.TransportError{Op: "geocoding decode", Err: err}
	}

	if len(payload.Results) == 0 {
		s.logger.WarnContext(ctx, "No geocoding candidates found", slog.String("query", location))
		return nil, &types.NotFoundError{Query: location}
	}

	best := payload.Results[0]
	resolved := &types.ResolvedLocation{
		Latitude:    best.Latitude,
		Longitude:   best.Longitude,
		Name:        best.Name,
		Country:     best.Country,
		CountryCode: best.CountryCode,
	}

	span.SetAttributes(attribute.String("location.resolved", resolved.Label()))
	span.SetStatus(codes.Ok, "Location resolved")
	return resolved, nil
}
