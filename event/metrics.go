package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsConfig holds configuration for event metrics
type MetricsConfig struct {
	Enabled bool
}

// Metrics implements component.MetricsProvider for trigger instrumentation
type Metrics struct {
	config     MetricsConfig
	meter      metric.Meter
	registered atomic.Bool
	mu         sync.Mutex

	triggered   metric.Int64Counter     // triggers that found a binding list
	invocations metric.Int64Counter     // handler calls
	handled     metric.Int64Counter     // triggers stopped by a handler
	errors      metric.Int64Counter     // triggers aborted by a handler error
	duration    metric.Float64Histogram // trigger duration
}

// NewMetrics creates an event metrics provider
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{config: cfg}
}

// MetricsName returns the metrics group name
func (m *Metrics) MetricsName() string {
	return "event"
}

// IsMetricsEnabled returns whether metrics collection is enabled
func (m *Metrics) IsMetricsEnabled() bool {
	return m.config.Enabled
}

// RegisterMetrics registers all event instruments with the meter
func (m *Metrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered.Load() {
		return nil
	}

	m.meter = meter
	var err error

	m.triggered, err = meter.Int64Counter(
		"event_triggered_total",
		metric.WithDescription("Total number of event triggers with bound handlers"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.invocations, err = meter.Int64Counter(
		"event_handler_invocations_total",
		metric.WithDescription("Total number of handler invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	m.handled, err = meter.Int64Counter(
		"event_handled_total",
		metric.WithDescription("Total number of triggers stopped by a handler"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.errors, err = meter.Int64Counter(
		"event_trigger_errors_total",
		metric.WithDescription("Total number of triggers aborted by a handler error"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.duration, err = meter.Float64Histogram(
		"event_trigger_duration_seconds",
		metric.WithDescription("Event trigger duration distribution"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.registered.Store(true)
	return nil
}

// RecordTrigger records one completed trigger
func (m *Metrics) RecordTrigger(ctx context.Context, name string, invoked int, handled bool, err error, duration time.Duration) {
	if !m.registered.Load() {
		return
	}

	attrs := metric.WithAttributes(attribute.String("event", name))

	m.triggered.Add(ctx, 1, attrs)
	m.duration.Record(ctx, duration.Seconds(), attrs)
	if invoked > 0 {
		m.invocations.Add(ctx, int64(invoked), attrs)
	}
	if handled {
		m.handled.Add(ctx, 1, attrs)
	}
	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// IsRegistered returns whether metrics have been registered
func (m *Metrics) IsRegistered() bool {
	return m.registered.Load()
}
