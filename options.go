package flowgraph

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/registry"
)

// Option configures a Platform.
type Option func(*platformConfig)

// platformConfig holds the collaborators injected into Open.
type platformConfig struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	store      graph.Store
	registries *registry.Registries
}

// WithLogger sets a custom logger for the platform and its managers.
// If not provided, log output is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *platformConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for the instance managers.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *platformConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for the instance counters.
func WithMeter(meter metric.Meter) Option {
	return func(c *platformConfig) {
		c.meter = meter
	}
}

// WithStore uses store instead of the configured store backend. The platform
// closes it on Close.
func WithStore(store graph.Store) Option {
	return func(c *platformConfig) {
		c.store = store
	}
}

// WithRegistries uses regs instead of the configured registry backend.
func WithRegistries(regs registry.Registries) Option {
	return func(c *platformConfig) {
		c.registries = &regs
	}
}
