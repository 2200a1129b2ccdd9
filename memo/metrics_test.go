package memo

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *instruments) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	ins, err := newInstruments(mp.Meter("test"), "TEST_METRICS")
	if err != nil {
		t.Fatalf("newInstruments: %v", err)
	}
	return reader, ins
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("metric %s not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s: expected Sum[int64], got %T", name, m.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatalf("metric %s: no data points", name)
	}
	return sum.DataPoints[0].Value
}

func TestInstruments_CountersAndHistogram(t *testing.T) {
	reader, ins := newTestMeter(t)
	ctx := context.Background()

	ins.hit(ctx)
	ins.hit(ctx)
	ins.miss(ctx)
	ins.stored(ctx)
	ins.computed(ctx, 0)

	rm := collect(t, reader)

	if got := counterValue(t, rm, "memo.cache.hits"); got != 2 {
		t.Errorf("memo.cache.hits = %d, want 2", got)
	}
	if got := counterValue(t, rm, "memo.cache.misses"); got != 1 {
		t.Errorf("memo.cache.misses = %d, want 1", got)
	}
	if got := counterValue(t, rm, "memo.cache.stores"); got != 1 {
		t.Errorf("memo.cache.stores = %d, want 1", got)
	}

	hist := findMetric(rm, "memo.compute.duration_ms")
	if hist == nil {
		t.Fatal("memo.compute.duration_ms metric not found")
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", hist.Data)
	}
	if len(h.DataPoints) == 0 || h.DataPoints[0].Count != 1 {
		t.Error("expected one recorded computation duration")
	}
}

func TestInstruments_CacheNameAttribute(t *testing.T) {
	reader, ins := newTestMeter(t)
	ins.hit(context.Background())

	rm := collect(t, reader)
	m := findMetric(rm, "memo.cache.hits")
	if m == nil {
		t.Fatal("memo.cache.hits metric not found")
	}
	sum := m.Data.(metricdata.Sum[int64])
	want := attribute.String("cache.name", "TEST_METRICS")
	if v, ok := sum.DataPoints[0].Attributes.Value(want.Key); !ok || v.AsString() != "TEST_METRICS" {
		t.Errorf("data point missing %v attribute", want)
	}
}

func TestInstruments_NilRecordsNothing(t *testing.T) {
	// A cache built without a meter carries nil instruments; every recording
	// method must be a no-op rather than a nil dereference.
	var ins *instruments
	ctx := context.Background()
	ins.hit(ctx)
	ins.miss(ctx)
	ins.stored(ctx)
	ins.computed(ctx, 0)
}

func TestCall_RecordsHitAndMiss(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	name := "TEST_METERED_CALL"
	f, err := New(
		func(_ context.Context, a int) int { return a },
		WithName[int, string, int](name),
		WithMeter[int, string, int](mp.Meter("test")),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { unregister(name) })

	ctx := context.Background()
	f.Call(ctx, 1) // miss + store
	f.Call(ctx, 1) // hit

	rm := collect(t, reader)
	if got := counterValue(t, rm, "memo.cache.misses"); got != 1 {
		t.Errorf("memo.cache.misses = %d, want 1", got)
	}
	if got := counterValue(t, rm, "memo.cache.hits"); got != 1 {
		t.Errorf("memo.cache.hits = %d, want 1", got)
	}
	if got := counterValue(t, rm, "memo.cache.stores"); got != 1 {
		t.Errorf("memo.cache.stores = %d, want 1", got)
	}
}
