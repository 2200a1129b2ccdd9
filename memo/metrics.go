package memo

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instruments holds the per-cache metric instruments. A nil *instruments is
// valid and records nothing.
type instruments struct {
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	stores    metric.Int64Counter
	computeMS metric.Float64Histogram
	attrs     metric.MeasurementOption
}

// newInstruments creates the instruments for one cache. Returns (nil, nil)
// when no meter is configured.
func newInstruments(meter metric.Meter, name string) (*instruments, error) {
	if meter == nil {
		return nil, nil
	}

	hits, err := meter.Int64Counter(
		"memo.cache.hits",
		metric.WithDescription("Calls served from the cache"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"memo.cache.misses",
		metric.WithDescription("Calls that missed the cache"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	stores, err := meter.Int64Counter(
		"memo.cache.stores",
		metric.WithDescription("Outcomes stored into the cache"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	computeMS, err := meter.Float64Histogram(
		"memo.compute.duration_ms",
		metric.WithDescription("Wrapped computation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{
		hits:      hits,
		misses:    misses,
		stores:    stores,
		computeMS: computeMS,
		attrs:     metric.WithAttributes(attribute.String("cache.name", name)),
	}, nil
}

func (m *instruments) hit(ctx context.Context) {
	if m == nil {
		return
	}
	m.hits.Add(ctx, 1, m.attrs)
}

func (m *instruments) miss(ctx context.Context) {
	if m == nil {
		return
	}
	m.misses.Add(ctx, 1, m.attrs)
}

func (m *instruments) stored(ctx context.Context) {
	if m == nil {
		return
	}
	m.stores.Add(ctx, 1, m.attrs)
}

func (m *instruments) computed(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.computeMS.Record(ctx, float64(d)/float64(time.Millisecond), m.attrs)
}
