package manager

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/zero-day-ai/flowgraph/registry"
)

// instrumentationName names the tracer and meter created from global-less defaults.
const instrumentationName = "github.com/zero-day-ai/flowgraph/manager"

// Option configures a manager.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	registries *registry.Registries
}

// WithLogger sets the structured logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used for per-operation spans. The default is a noop tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithMeter sets the meter for the instance counters. The default is a noop meter.
func WithMeter(meter metric.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithRegistries makes managers reject instances whose type is not registered. For
// relations the endpoint entity types must also match the relation type.
func WithRegistries(regs registry.Registries) Option {
	return func(o *options) {
		o.registries = &regs
	}
}

// telemetry bundles the logger, tracer and counters shared by all managers.
type telemetry struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	created metric.Int64Counter
	deleted metric.Int64Counter
}

func newOptions(opts []Option) (*options, *telemetry, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.tracer == nil {
		o.tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	if o.meter == nil {
		o.meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}

	t := &telemetry{logger: o.logger, tracer: o.tracer}
	var err error
	t.created, err = o.meter.Int64Counter(
		"flowgraph.instances.created",
		metric.WithDescription("Number of instances created"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create created counter: %w", err)
	}
	t.deleted, err = o.meter.Int64Counter(
		"flowgraph.instances.deleted",
		metric.WithDescription("Number of instances deleted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create deleted counter: %w", err)
	}
	return o, t, nil
}

func (t *telemetry) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// end records err on the span, if any, and ends it.
func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *telemetry) countCreated(ctx context.Context, kind, namespace, typeName string) {
	t.created.Add(ctx, 1, metric.WithAttributes(instanceAttrs(kind, namespace, typeName)...))
}

func (t *telemetry) countDeleted(ctx context.Context, kind, namespace, typeName string) {
	t.deleted.Add(ctx, 1, metric.WithAttributes(instanceAttrs(kind, namespace, typeName)...))
}

func instanceAttrs(kind, namespace, typeName string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("namespace", namespace),
		attribute.String("type_name", typeName),
	}
}
