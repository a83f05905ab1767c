// Package component defines the lifecycle contracts shared by framework modules.
// It is the lowest layer and imports no other framework package.
package component

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Component lifecycle: Init -> Start -> Stop
type Component interface {
	// Name is the unique component identifier
	Name() string

	// DependsOn lists component names that must be initialised first.
	// An "optional:" prefix marks a soft dependency.
	DependsOn() []string

	// Init reads configuration and creates resources without serving
	Init(ctx context.Context, loader ConfigLoader) error

	Start(ctx context.Context) error

	// Stop releases resources; must be safe to call more than once
	Stop(ctx context.Context) error
}

// ConfigLoader is the configuration view handed to components
type ConfigLoader interface {
	Get(key string) any

	// Unmarshal decodes the section at key into v
	Unmarshal(key string, v any) error

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	IsSet(key string) bool
}

// MetricsProvider is implemented by components that expose otel instruments
type MetricsProvider interface {
	// MetricsName is the short meter name ("event")
	MetricsName() string

	RegisterMetrics(meter metric.Meter) error

	IsMetricsEnabled() bool
}

// Component names
const (
	ComponentConfig    = "config"
	ComponentLogger    = "logger"
	ComponentDatabase  = "database"
	ComponentTelemetry = "telemetry"
	ComponentEvent     = "event"
	ComponentHealth    = "health"
)

// HealthChecker reports whether a resource is usable
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthCheckProvider is implemented by components that can be health checked.
// HealthChecker returns nil while the component is disabled.
type HealthCheckProvider interface {
	HealthChecker() HealthChecker
}
