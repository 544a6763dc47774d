package holidays

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	knowledgeGraph "github.com/FACorreiaa/go-family-activity-search/internal/api/knowledge_graph"
	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// holidayMatchWindowDays is how far a discovered holiday may sit from the
// target date and still count as "on this date". Locale and calendar-system
// skew between providers makes exact-date matching too strict.
const holidayMatchWindowDays = 3

// Result is the best-effort output of the holiday gatherer. All-empty with
// IsPublicHoliday=false is a valid outcome when every stage fails.
type Result struct {
	IsPublicHoliday bool
	Holidays        []types.HolidayFact
	Festivals       []types.FestivalFact
}

// CalendarProvider is the primary holiday-calendar source (country + year).
// A "no content" reply is an empty slice with a nil error, distinct from failure.
type CalendarProvider interface {
	PublicHolidays(ctx context.Context, countryCode string, year int) ([]types.HolidayFact, error)
}

// EnhancedProvider is the secondary server-side holiday endpoint using
// keyword/heuristic detection.
type EnhancedProvider interface {
	DetectHolidays(ctx context.Context, loc types.ResolvedLocation, date string) ([]types.HolidayFact, error)
}

// EventDiscoverer is the generative-AI last-resort discovery source.
type EventDiscoverer interface {
	DiscoverEvents(ctx context.Context, loc types.ResolvedLocation, date string) ([]DiscoveredEvent, error)
}

// DiscoveredEvent is a raw AI-discovered event prior to classification.
type DiscoveredEvent struct {
	Name string `json:"name"`
	Date string `json:"date"`
	URL  string `json:"url,omitempty"`
}

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service runs the holiday fallback chain. Every stage failure is caught,
// logged, and treated as empty; holiday unavailability never blocks a run.
type Service interface {
	Gather(ctx context.Context, loc types.ResolvedLocation, date string, festivalRadiusKm float64) Result
}

type ServiceImpl struct {
	logger     *slog.Logger
	calendar   CalendarProvider
	knowledge  knowledgeGraph.Service
	enhanced   EnhancedProvider
	discoverer EventDiscoverer
}

func NewServiceImpl(calendar CalendarProvider, knowledge knowledgeGraph.Service, enhanced EnhancedProvider, discoverer EventDiscoverer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		calendar:   calendar,
		knowledge:  knowledge,
		enhanced:   enhanced,
		discoverer: discoverer,
	}
}

// Gather walks the fallback chain in strict priority order and returns the
// first non-empty result. Countries with known-poor primary coverage skip
// straight to the enhanced and AI tiers.
func (s *ServiceImpl) Gather(ctx context.Context, loc types.ResolvedLocation, date string, festivalRadiusKm float64) Result {
	ctx, span := otel.Tracer("HolidayService").Start(ctx, "Gather")
	defer span.End()
	span.SetAttributes(attribute.String("country_code", loc.CountryCode), attribute.String("date", date))

	if !IsPoorCoverageCountry(loc.CountryCode) {
		if res, ok := s.fromCalendar(ctx, loc, date); ok {
			span.SetStatus(codes.Ok, "Resolved via calendar provider")
			return res
		}
		if res, ok := s.fromKnowledgeGraph(ctx, loc, date, festivalRadiusKm); ok {
			span.SetStatus(codes.Ok, "Resolved via knowledge graph")
			return res
		}
	} else {
		s.logger.InfoContext(ctx, "Country has poor primary holiday coverage, skipping to enhanced tier",
			slog.String("country_code", loc.CountryCode))
	}

	if res, ok := s.fromEnhanced(ctx, loc, date); ok {
		span.SetStatus(codes.Ok, "Resolved via enhanced endpoint")
		return res
	}
	if res, ok := s.fromDiscovery(ctx, loc, date); ok {
		span.SetStatus(codes.Ok, "Resolved via AI discovery")
		return res
	}

	span.SetStatus(codes.Ok, "All stages empty")
	return Result{}
}

func (s *ServiceImpl) fromCalendar(ctx context.Context, loc types.ResolvedLocation, date string) (Result, bool) {
	all, err := s.fetchCalendarYears(ctx, loc.CountryCode, date)
	if err != nil {
		s.logger.WarnContext(ctx, "Calendar provider failed, falling through",
			slog.String("country_code", loc.CountryCode), slog.Any("error", err))
		return Result{}, false
	}
	matched := filterWithinWindow(all, date, holidayMatchWindowDays)
	if len(matched) == 0 {
		return Result{}, false
	}
	return Result{
		IsPublicHoliday: anyWithinWindow(matched, date, holidayMatchWindowDays),
		Holidays:        matched,
	}, true
}

// fetchCalendarYears fetches the target year, plus the adjacent year when the
// ±3 day match window crosses a year boundary.
func (s *ServiceImpl) fetchCalendarYears(ctx context.Context, countryCode, date string) ([]types.HolidayFact, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, err
	}

	all, err := s.calendar.PublicHolidays(ctx, countryCode, day.Year())
	if err != nil {
		return nil, err
	}

	lower := day.AddDate(0, 0, -holidayMatchWindowDays)
	upper := day.AddDate(0, 0, holidayMatchWindowDays)
	for _, adjacent := range []int{lower.Year(), upper.Year()} {
		if adjacent == day.Year() {
			continue
		}
		extra, err := s.calendar.PublicHolidays(ctx, countryCode, adjacent)
		if err != nil {
			s.logger.WarnContext(ctx, "Adjacent-year calendar fetch failed", slog.Int("year", adjacent), slog.Any("error", err))
			continue
		}
		all = append(all, extra...)
	}
	return all, nil
}

func (s *ServiceImpl) fromKnowledgeGraph(ctx context.Context, loc types.ResolvedLocation, date string, radiusKm float64) (Result, bool) {
	holidaysFound, festivals, err := s.knowledge.QueryEventsWindow(ctx, loc.CountryCode, loc.Latitude, loc.Longitude, radiusKm, date)
	if err != nil {
		s.logger.WarnContext(ctx, "Knowledge graph query failed, falling through", slog.Any("error", err))
		return Result{}, false
	}
	matched := filterWithinWindow(holidaysFound, date, holidayMatchWindowDays)
	if len(matched) == 0 && len(festivals) == 0 {
		return Result{}, false
	}
	return Result{
		IsPublicHoliday: anyWithinWindow(matched, date, holidayMatchWindowDays),
		Holidays:        matched,
		Festivals:       festivals,
	}, true
}

func (s *ServiceImpl) fromEnhanced(ctx context.Context, loc types.ResolvedLocation, date string) (Result, bool) {
	detected, err := s.enhanced.DetectHolidays(ctx, loc, date)
	if err != nil {
		s.logger.WarnContext(ctx, "Enhanced holiday endpoint failed, falling through", slog.Any("error", err))
		return Result{}, false
	}
	matched := filterWithinWindow(detected, date, holidayMatchWindowDays)
	if len(matched) == 0 {
		return Result{}, false
	}
	return Result{
		IsPublicHoliday: true,
		Holidays:        matched,
	}, true
}

func (s *ServiceImpl) fromDiscovery(ctx context.Context, loc types.ResolvedLocation, date string) (Result, bool) {
	if s.discoverer == nil {
		// AI tier is optional when no API key is configured.
		return Result{}, false
	}
	events, err := s.discoverer.DiscoverEvents(ctx, loc, date)
	if err != nil {
		s.logger.WarnContext(ctx, "AI event discovery failed, treating as empty", slog.Any("error", err))
		return Result{}, false
	}
	classified := ClassifyEvents(events, date)
	if len(classified.Holidays) == 0 && len(classified.Festivals) == 0 {
		return Result{}, false
	}
	return Result{
		IsPublicHoliday: len(classified.Holidays) > 0,
		Holidays:        classified.Holidays,
		Festivals:       classified.Festivals,
	}, true
}

func filterWithinWindow(facts []types.HolidayFact, target string, windowDays int) []types.HolidayFact {
	var out []types.HolidayFact
	for _, f := range facts {
		if withinDays(f.Date, target, windowDays) {
			out = append(out, f)
		}
	}
	return out
}

func anyWithinWindow(facts []types.HolidayFact, target string, windowDays int) bool {
	for _, f := range facts {
		if withinDays(f.Date, target, windowDays) {
			return true
		}
	}
	return false
}

func withinDays(date, target string, windowDays int) bool {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	t, err := time.Parse("2006-01-02", target)
	if err != nil {
		return false
	}
	diff := d.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(windowDays)*24*time.Hour
}
