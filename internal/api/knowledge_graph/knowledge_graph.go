package knowledgeGraph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service queries a SPARQL endpoint for holiday and festival candidates
// around a date and location.
type Service interface {
	// QueryEventsWindow combines country-tagged holidays and location-radius
	// festivals in one request, scoped to a ±7 day window around date.
	QueryEventsWindow(ctx context.Context, countryCode string, lat, lon, radiusKm float64, date string) ([]types.HolidayFact, []types.FestivalFact, error)
	// QueryFestivalsNear returns festivals within radiusKm of the location
	// inside a ±7 day window around date.
	QueryFestivalsNear(ctx context.Context, lat, lon, radiusKm float64, date string) ([]types.FestivalFact, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
}

func NewServiceImpl(endpoint string, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

const eventWindowDays = 7

func windowBounds(date string) (string, string, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	from := day.AddDate(0, 0, -eventWindowDays).Format("2006-01-02")
	to := day.AddDate(0, 0, eventWindowDays).Format("2006-01-02")
	return from, to, nil
}

func buildEventsWindowQuery(countryCode string, lat, lon, radiusKm float64, from, to string) string {
	return fmt.Sprintf(`SELECT ?event ?eventLabel ?kind ?date ?startDate ?endDate ?coord ?article WHERE {
  {
    ?event wdt:P31/wdt:P279* wd:Q1197685 .
    ?event wdt:P17 ?country .
    ?country wdt:P297 "%s" .
    ?event wdt:P837|wdt:P585 ?date .
    BIND("holiday" AS ?kind)
  } UNION {
    ?event wdt:P31/wdt:P279* wd:Q132241 .
    ?event wdt:P625 ?coord .
    OPTIONAL { ?event wdt:P580 ?startDate . }
    OPTIONAL { ?event wdt:P582 ?endDate . }
    OPTIONAL { ?event wdt:P856 ?article . }
    SERVICE wikibase:around {
      ?event wdt:P625 ?coord .
      bd:serviceParam wikibase:center "Point(%f %f)"^^geo:wktLiteral .
      bd:serviceParam wikibase:radius "%f" .
    }
    BIND("festival" AS ?kind)
  }
  FILTER(!BOUND(?date) || (?date >= "%sT00:00:00Z"^^xsd:dateTime && ?date <= "%sT23:59:59Z"^^xsd:dateTime))
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en" . }
} LIMIT 50`, strings.ToUpper(countryCode), lon, lat, radiusKm, from, to)
}

func buildFestivalsNearQuery(lat, lon, radiusKm float64, from, to string) string {
	return fmt.Sprintf(`SELECT ?event ?eventLabel ?startDate ?endDate ?coord ?article WHERE {
  ?event wdt:P31/wdt:P279* wd:Q132241 .
  ?event wdt:P625 ?coord .
  OPTIONAL { ?event wdt:P580 ?startDate . }
  OPTIONAL { ?event wdt:P582 ?endDate . }
  OPTIONAL { ?event wdt:P856 ?article . }
  SERVICE wikibase:around {
    ?event wdt:P625 ?coord .
    bd:serviceParam wikibase:center "Point(%f %f)"^^geo:wktLiteral .
    bd:serviceParam wikibase:radius "%f" .
  }
  FILTER(!BOUND(?startDate) || (?startDate <= "%sT23:59:59Z"^^xsd:dateTime && (!BOUND(?endDate) || ?endDate >= "%sT00:00:00Z"^^xsd:dateTime)))
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en" . }
} LIMIT 50`, lon, lat, radiusKm, to, from)
}

func (s *ServiceImpl) QueryEventsWindow(ctx context.Context, countryCode string, lat, lon, radiusKm float64, date string) ([]types.HolidayFact, []types.FestivalFact, error) {
	ctx, span := otel.Tracer("KnowledgeGraphService").Start(ctx, "QueryEventsWindow")
	defer span.End()
	span.SetAttributes(attribute.String("country_code", countryCode), attribute.String("date", date))

	from, to, err := windowBounds(date)
	if err != nil {
		return nil, nil, err
	}

	bindings, err := s.execute(ctx, buildEventsWindowQuery(countryCode, lat, lon, radiusKm, from, to))
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	var holidays []types.HolidayFact
	var festivals []types.FestivalFact
	for _, b := range bindings {
		switch b["kind"].Value {
		case "festival":
			festivals = append(festivals, bindingToFestival(b, lat, lon))
		default:
			holidays = append(holidays, types.HolidayFact{
				Name:      b["eventLabel"].Value,
				LocalName: b["eventLabel"].Value,
				Date:      truncateToDate(b["date"].Value),
			})
		}
	}

	span.SetAttributes(attribute.Int("holidays.count", len(holidays)), attribute.Int("festivals.count", len(festivals)))
	span.SetStatus(codes.Ok, "Knowledge graph window query done")
	return holidays, festivals, nil
}

func (s *ServiceImpl) QueryFestivalsNear(ctx context.Context, lat, lon, radiusKm float64, date string) ([]types.FestivalFact, error) {
	ctx, span := otel.Tracer("KnowledgeGraphService").Start(ctx, "QueryFestivalsNear")
	defer span.End()

	from, to, err := windowBounds(date)
	if err != nil {
		return nil, err
	}

	bindings, err := s.execute(ctx, buildFestivalsNearQuery(lat, lon, radiusKm, from, to))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	festivals := make([]types.FestivalFact, 0, len(bindings))
	for _, b := range bindings {
		festivals = append(festivals, bindingToFestival(b, lat, lon))
	}

	span.SetAttributes(attribute.Int("festivals.count", len(festivals)))
	span.SetStatus(codes.Ok, "Festival query done")
	return festivals, nil
}

func (s *ServiceImpl) execute(ctx context.Context, query string) ([]map[string]sparqlValue, error) {
	form := url.Values{}
	form.Set("query", query)
	form.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build sparql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sparql endpoint returned status %d", resp.StatusCode)
	}

	var payload sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode sparql response: %w", err)
	}
	return payload.Results.Bindings, nil
}

func bindingToFestival(b map[string]sparqlValue, originLat, originLon float64) types.FestivalFact {
	fact := types.FestivalFact{
		Name:      b["eventLabel"].Value,
		URL:       b["article"].Value,
		StartDate: truncateToDate(b["startDate"].Value),
		EndDate:   truncateToDate(b["endDate"].Value),
	}
	if lat, lon, ok := parsePointWKT(b["coord"].Value); ok {
		d := HaversineKm(originLat, originLon, lat, lon)
		fact.DistanceKm = &d
	}
	return fact
}

// parsePointWKT parses "Point(lon lat)" literals.
func parsePointWKT(wkt string) (lat, lon float64, ok bool) {
	wkt = strings.TrimSpace(wkt)
	if !strings.HasPrefix(wkt, "Point(") || !strings.HasSuffix(wkt, ")") {
		return 0, 0, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(wkt, "Point("), ")")
	parts := strings.Fields(inner)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lonV, err1 := strconv.ParseFloat(parts[0], 64)
	latV, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return latV, lonV, true
}

func truncateToDate(v string) string {
	if len(v) >= 10 {
		if _, err := time.Parse("2006-01-02", v[:10]); err == nil {
			return v[:10]
		}
	}
	return ""
}

// HaversineKm computes the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
