package manager

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordingMeter hands out counters that remember their totals per attribute set.
type recordingMeter struct {
	metricnoop.Meter

	mu       sync.Mutex
	counters map[string]*recordingCounter
}

func newRecordingMeter() *recordingMeter {
	return &recordingMeter{counters: make(map[string]*recordingCounter)}
}

func (m *recordingMeter) Int64Counter(name string, _ ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &recordingCounter{totals: make(map[attribute.Distinct]int64), sets: make(map[attribute.Distinct]attribute.Set)}
	m.counters[name] = c
	return c, nil
}

func (m *recordingMeter) total(name string) int64 {
	m.mu.Lock()
	c := m.counters[name]
	m.mu.Unlock()
	if c == nil {
		return 0
	}
	return c.sum()
}

func (m *recordingMeter) totalFor(name, kind string) int64 {
	m.mu.Lock()
	c := m.counters[name]
	m.mu.Unlock()
	if c == nil {
		return 0
	}
	return c.sumWhere(attribute.String("kind", kind))
}

type recordingCounter struct {
	metricnoop.Int64Counter

	mu     sync.Mutex
	totals map[attribute.Distinct]int64
	sets   map[attribute.Distinct]attribute.Set
}

func (c *recordingCounter) Add(_ context.Context, incr int64, opts ...metric.AddOption) {
	set := metric.NewAddConfig(opts).Attributes()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totals[set.Equivalent()] += incr
	c.sets[set.Equivalent()] = set
}

func (c *recordingCounter) sum() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, v := range c.totals {
		total += v
	}
	return total
}

func (c *recordingCounter) sumWhere(kv attribute.KeyValue) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for key, set := range c.sets {
		if v, ok := set.Value(kv.Key); ok && v.Emit() == kv.Value.Emit() {
			total += c.totals[key]
		}
	}
	return total
}

// newSpanRecorder returns a recorder and the tracer feeding it.
func newSpanRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
	})
	return recorder, tp
}

func spanNamed(recorder *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}
