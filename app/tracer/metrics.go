package tracer

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	searchRunsTotal            metric.Int64Counter
	searchRunDurationSeconds   metric.Float64Histogram
	recommendationRetriesTotal metric.Int64Counter

	metricsOnce sync.Once
)

// InitializeMetrics sets up the application's metric instruments. Call this
// during startup, after the global meter provider is configured.
func InitializeMetrics() {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("family-activity-search")
		var err error

		searchRunsTotal, err = meter.Int64Counter(
			"search_runs_total",
			metric.WithDescription("Total number of completed search runs, by outcome"),
			metric.WithUnit("{run}"),
		)
		if err != nil {
			log.Fatalf("Failed to create search_runs_total counter: %v", err)
		}

		searchRunDurationSeconds, err = meter.Float64Histogram(
			"search_run_duration_seconds",
			metric.WithDescription("End-to-end duration of search runs in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Failed to create search_run_duration_seconds histogram: %v", err)
		}

		recommendationRetriesTotal, err = meter.Int64Counter(
			"recommendation_retries_total",
			metric.WithDescription("Total number of recommendation invocation retries"),
			metric.WithUnit("{retry}"),
		)
		if err != nil {
			log.Fatalf("Failed to create recommendation_retries_total counter: %v", err)
		}
	})
}

// RecordRunOutcome counts a finished run and its duration, labeled by outcome
// (complete, failed, cancelled).
func RecordRunOutcome(ctx context.Context, outcome string, seconds float64) {
	if searchRunsTotal == nil || searchRunDurationSeconds == nil {
		return // metrics not initialized (tests)
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	searchRunsTotal.Add(ctx, 1, attrs)
	searchRunDurationSeconds.Record(ctx, seconds, attrs)
}

// RecordRecommendationRetry counts one retry of the recommendation backend.
func RecordRecommendationRetry(ctx context.Context) {
	if recommendationRetriesTotal == nil {
		return
	}
	recommendationRetriesTotal.Add(ctx, 1)
}
