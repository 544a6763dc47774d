package festivals

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	knowledgeGraph "github.com/FACorreiaa/go-family-activity-search/internal/api/knowledge_graph"
	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the best-effort nearby-festival gatherer.
type Service interface {
	Gather(ctx context.Context, lat, lon, radiusKm float64, date string) []types.FestivalFact
}

type ServiceImpl struct {
	logger    *slog.Logger
	knowledge knowledgeGraph.Service
	limit     int
}

func NewServiceImpl(knowledge knowledgeGraph.Service, limit int, logger *slog.Logger) *ServiceImpl {
	if limit <= 0 {
		limit = 10
	}
	return &ServiceImpl{
		logger:    logger,
		knowledge: knowledge,
		limit:     limit,
	}
}

// Gather queries the knowledge graph within the radius and a ±7 day window,
// sorts by distance then date-presence, and caps the list. Failures degrade
// to an empty list.
func (s *ServiceImpl) Gather(ctx context.Context, lat, lon, radiusKm float64, date string) []types.FestivalFact {
	ctx, span := otel.Tracer("FestivalService").Start(ctx, "Gather")
	defer span.End()

	found, err := s.knowledge.QueryFestivalsNear(ctx, lat, lon, radiusKm, date)
	if err != nil {
		s.logger.WarnContext(ctx, "Festival lookup failed, degrading to empty list", slog.Any("error", err))
		span.RecordError(err)
		return nil
	}

	sortFestivals(found)
	if len(found) > s.limit {
		found = found[:s.limit]
	}

	span.SetAttributes(attribute.Int("festivals.count", len(found)))
	span.SetStatus(codes.Ok, "Festivals gathered")
	return found
}

// sortFestivals orders by known distance ascending, then prefers entries that
// carry dates over ones that do not.
func sortFestivals(facts []types.FestivalFact) {
	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		switch {
		case a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm:
			return *a.DistanceKm < *b.DistanceKm
		case a.DistanceKm != nil && b.DistanceKm == nil:
			return true
		case a.DistanceKm == nil && b.DistanceKm != nil:
			return false
		}
		aDated := a.StartDate != "" || a.EndDate != ""
		bDated := b.StartDate != "" || b.EndDate != ""
		return aDated && !bDated
	})
}
