package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const walksMeterName = "walkcast.walkplan"

// WalkMetrics records walk planning outcomes through the global OpenTelemetry
// meter provider. A nil *WalkMetrics is valid and records nothing.
type WalkMetrics struct {
	plans          metric.Int64Counter
	planDuration   metric.Float64Histogram
	geocodeLookups metric.Int64Counter
}

// NewWalkMetrics registers the walk planning instruments.
func NewWalkMetrics() (*WalkMetrics, error) {
	meter := otel.Meter(walksMeterName)

	plans, err := meter.Int64Counter(
		"walkcast_plans_total",
		metric.WithDescription("Walk plan submissions by outcome"),
		metric.WithUnit("{plan}"),
	)
	if err != nil {
		return nil, err
	}

	planDuration, err := meter.Float64Histogram(
		"walkcast_plan_duration_seconds",
		metric.WithDescription("End to end walk plan latency including upstream calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	geocodeLookups, err := meter.Int64Counter(
		"walkcast_geocode_lookups_total",
		metric.WithDescription("Geocoding lookups split by cache result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &WalkMetrics{
		plans:          plans,
		planDuration:   planDuration,
		geocodeLookups: geocodeLookups,
	}, nil
}

// RecordPlan counts a finished submission. outcome is "ok" or an error code.
func (m *WalkMetrics) RecordPlan(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.plans.Add(ctx, 1, attrs)
	m.planDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordGeocodeLookup counts a geocoding lookup and whether the cache served it.
func (m *WalkMetrics) RecordGeocodeLookup(ctx context.Context, cacheHit bool) {
	if m == nil {
		return
	}
	m.geocodeLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cache_hit", cacheHit)))
}
