package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PlatformMetrics groups the domain-level instruments recorded by the
// application services. All methods are safe on a disabled provider.
type PlatformMetrics struct {
	signups            metric.Int64Counter
	signins            metric.Int64Counter
	subscriptionEvents metric.Int64Counter
	cacheHits          metric.Int64Counter
	cacheMisses        metric.Int64Counter
	tasksEnqueued      metric.Int64Counter
	requestDuration    metric.Float64Histogram
}

// NewPlatformMetrics registers the domain instruments on the given provider.
func NewPlatformMetrics(mp *MeterProvider) (*PlatformMetrics, error) {
	meter := mp.Meter("github.com/appsnxt/platform")

	signups, err := meter.Int64Counter("platform.auth.signups",
		metric.WithDescription("Completed account signups"))
	if err != nil {
		return nil, fmt.Errorf("create signups counter: %w", err)
	}
	signins, err := meter.Int64Counter("platform.auth.signins",
		metric.WithDescription("Successful password sign-ins"))
	if err != nil {
		return nil, fmt.Errorf("create signins counter: %w", err)
	}
	subEvents, err := meter.Int64Counter("platform.billing.subscription_events",
		metric.WithDescription("Subscription lifecycle transitions by type"))
	if err != nil {
		return nil, fmt.Errorf("create subscription events counter: %w", err)
	}
	hits, err := meter.Int64Counter("platform.catalog.cache_hits",
		metric.WithDescription("Catalog cache hits"))
	if err != nil {
		return nil, fmt.Errorf("create cache hits counter: %w", err)
	}
	misses, err := meter.Int64Counter("platform.catalog.cache_misses",
		metric.WithDescription("Catalog cache misses"))
	if err != nil {
		return nil, fmt.Errorf("create cache misses counter: %w", err)
	}
	tasks, err := meter.Int64Counter("platform.tasks.enqueued",
		metric.WithDescription("Background tasks pushed to the queue by type"))
	if err != nil {
		return nil, fmt.Errorf("create tasks counter: %w", err)
	}
	duration, err := meter.Float64Histogram("platform.http.request_duration",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10))
	if err != nil {
		return nil, fmt.Errorf("create request duration histogram: %w", err)
	}

	return &PlatformMetrics{
		signups:            signups,
		signins:            signins,
		subscriptionEvents: subEvents,
		cacheHits:          hits,
		cacheMisses:        misses,
		tasksEnqueued:      tasks,
		requestDuration:    duration,
	}, nil
}

// RecordSignup increments the signup counter.
func (m *PlatformMetrics) RecordSignup(ctx context.Context) {
	m.signups.Add(ctx, 1)
}

// RecordSignin increments the sign-in counter.
func (m *PlatformMetrics) RecordSignin(ctx context.Context) {
	m.signins.Add(ctx, 1)
}

// RecordSubscriptionEvent counts a subscription transition, labeled by the
// event type (created, plan_changed, canceled, reactivated).
func (m *PlatformMetrics) RecordSubscriptionEvent(ctx context.Context, eventType string) {
	m.subscriptionEvents.Add(ctx, 1,
		metric.WithAttributes(attribute.String("event_type", eventType)))
}

// RecordCacheHit counts a catalog cache hit for the given key kind.
func (m *PlatformMetrics) RecordCacheHit(ctx context.Context, kind string) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordCacheMiss counts a catalog cache miss for the given key kind.
func (m *PlatformMetrics) RecordCacheMiss(ctx context.Context, kind string) {
	m.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordTaskEnqueued counts a background task handed to the queue.
func (m *PlatformMetrics) RecordTaskEnqueued(ctx context.Context, taskType string) {
	m.tasksEnqueued.Add(ctx, 1,
		metric.WithAttributes(attribute.String("task_type", taskType)))
}

// RecordRequestDuration records one HTTP request observation.
func (m *PlatformMetrics) RecordRequestDuration(ctx context.Context, seconds float64, method, route string, status int) {
	m.requestDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}
