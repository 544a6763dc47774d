package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the best-effort weather gatherer. Failures degrade to an
// all-null snapshot; weather unavailability must never block a run.
type Service interface {
	GetSnapshot(ctx context.Context, lat, lon float64, date string) types.WeatherSnapshot
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	cache   *cache.Cache
}

func NewServiceImpl(baseURL string, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		cache:   cache.New(6*time.Hour, 1*time.Hour),
	}
}

func snapshotCacheKey(lat, lon float64, date string) string {
	return fmt.Sprintf("weather:%.4f:%.4f:%s", lat, lon, date)
}

type forecastResponse struct {
	Daily struct {
		Time                        []string   `json:"time"`
		TemperatureMin              []*float64 `json:"temperature_2m_min"`
		TemperatureMax              []*float64 `json:"temperature_2m_max"`
		PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
		WindSpeedMax                []*float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

// GetSnapshot returns the daily forecast for the date, consulting the
// per-location/per-date cache first. Any error returns an empty snapshot
// and logs a warning.
func (s *ServiceImpl) GetSnapshot(ctx context.Context, lat, lon float64, date string) types.WeatherSnapshot {
	ctx, span := otel.Tracer("WeatherService").Start(ctx, "GetSnapshot")
	defer span.End()

	key := snapshotCacheKey(lat, lon, date)
	span.SetAttributes(attribute.String("cache.key", key))
	if cached, found := s.cache.Get(key); found {
		if snapshot, ok := cached.(types.WeatherSnapshot); ok {
			span.SetStatus(codes.Ok, "Weather snapshot served from cache")
			return snapshot
		}
	}

	snapshot, err := s.fetchDaily(ctx, lat, lon, date)
	if err != nil {
		s.logger.WarnContext(ctx, "Weather lookup failed, degrading to empty snapshot",
			slog.Float64("lat", lat), slog.Float64("lon", lon), slog.String("date", date),
			slog.Any("error", err))
		span.RecordError(err)
		return types.WeatherSnapshot{}
	}

	s.cache.Set(key, snapshot, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "Weather snapshot fetched")
	return snapshot
}

func (s *ServiceImpl) fetchDaily(ctx context.Context, lat, lon float64, date string) (types.WeatherSnapshot, error) {
	reqURL := fmt.Sprintf(
		"%s/forecast?latitude=%.4f&longitude=%.4f&daily=temperature_2m_min,temperature_2m_max,precipitation_probability_max,wind_speed_10m_max&start_date=%s&end_date=%s&timezone=auto",
		s.baseURL, lat, lon, date, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.WeatherSnapshot{}, fmt.Errorf("weather provider returned status %d", resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("failed to decode weather response: %w", err)
	}

	// Fields are independently nullable; a partially filled day is still valid.
	var snapshot types.WeatherSnapshot
	for i, day := range payload.Daily.Time {
		if day != date {
			continue
		}
		if i < len(payload.Daily.TemperatureMin) {
			snapshot.TempMinC = payload.Daily.TemperatureMin[i]
		}
		if i < len(payload.Daily.TemperatureMax) {
			snapshot.TempMaxC = payload.Daily.TemperatureMax[i]
		}
		if i < len(payload.Daily.PrecipitationProbabilityMax) {
			snapshot.PrecipitationPct = payload.Daily.PrecipitationProbabilityMax[i]
		}
		if i < len(payload.Daily.WindSpeedMax) {
			snapshot.WindMaxKmh = payload.Daily.WindSpeedMax[i]
		}
		break
	}
	return snapshot, nil
}
