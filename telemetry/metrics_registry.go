package telemetry

import (
	"fmt"
	"sync"

	"github.com/KOMKZ/go-yogan-classevent/component"
	"github.com/KOMKZ/go-yogan-classevent/logger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MetricsRegistry hands each MetricsProvider its own meter ("<namespace>/<name>")
type MetricsRegistry struct {
	mu            sync.Mutex
	meterProvider metric.MeterProvider
	namespace     string
	providers     map[string]component.MetricsProvider
	logger        *logger.CtxZapLogger
}

// MetricsRegistryOption configures a MetricsRegistry
type MetricsRegistryOption func(*MetricsRegistry)

// WithNamespace sets the meter name prefix (default "yogan")
func WithNamespace(namespace string) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.namespace = namespace
	}
}

// WithRegistryLogger sets the registry logger
func WithRegistryLogger(l *logger.CtxZapLogger) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.logger = l
	}
}

// NewMetricsRegistry creates a registry on mp
func NewMetricsRegistry(mp metric.MeterProvider, opts ...MetricsRegistryOption) *MetricsRegistry {
	r := &MetricsRegistry{
		meterProvider: mp,
		namespace:     "yogan",
		providers:     make(map[string]component.MetricsProvider),
		logger:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register calls provider.RegisterMetrics with a dedicated meter.
// Disabled providers are skipped; duplicate names are rejected.
func (r *MetricsRegistry) Register(provider component.MetricsProvider) error {
	if provider == nil {
		return fmt.Errorf("metrics provider is nil")
	}
	if !provider.IsMetricsEnabled() {
		r.logger.Debug("metrics disabled for provider", zap.String("provider", provider.MetricsName()))
		return nil
	}

	name := provider.MetricsName()
	if name == "" {
		return fmt.Errorf("metrics provider name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("metrics provider %q already registered", name)
	}
	if err := provider.RegisterMetrics(r.meterProvider.Meter(r.namespace + "/" + name)); err != nil {
		return fmt.Errorf("register metrics for %q: %w", name, err)
	}
	r.providers[name] = provider
	r.logger.Debug("metrics provider registered", zap.String("provider", name))
	return nil
}

// Has reports whether a provider with name is registered
func (r *MetricsRegistry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.providers[name]
	return ok
}
