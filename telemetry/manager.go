// Package telemetry owns the otel trace and metric providers used by framework modules.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/KOMKZ/go-yogan-classevent/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Manager builds sdk providers from Config. Until Start succeeds (or when
// telemetry is disabled) it hands out noop providers.
type Manager struct {
	cfg    Config
	out    io.Writer
	logger *logger.CtxZapLogger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	metrics *MetricsRegistry
}

// Option configures a Manager
type Option func(*Manager)

// WithWriter sets the destination of the stdout exporters (default os.Stdout)
func WithWriter(w io.Writer) Option {
	return func(m *Manager) {
		m.out = w
	}
}

// WithLogger sets the manager logger
func WithLogger(l *logger.CtxZapLogger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a manager; call Start to build exporters
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		out:    os.Stdout,
		logger: logger.GetLogger("yogan"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start creates exporters and providers and installs them as the otel globals
func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled || m.cfg.Exporter == ExporterNoop {
		m.logger.DebugCtx(ctx, "telemetry disabled, using noop providers")
		return nil
	}
	if err := m.cfg.Validate(); err != nil {
		return fmt.Errorf("telemetry config: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", m.cfg.ServiceName))

	spanExporter, err := m.spanExporter(ctx)
	if err != nil {
		return err
	}
	metricExporter, err := m.metricExporter(ctx)
	if err != nil {
		_ = spanExporter.Shutdown(ctx)
		return err
	}

	m.tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	m.mp = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	m.metrics = nil
	otel.SetTracerProvider(m.tp)
	otel.SetMeterProvider(m.mp)

	m.logger.InfoCtx(ctx, "telemetry started",
		zap.String("exporter", m.cfg.Exporter),
		zap.String("service", m.cfg.ServiceName))
	return nil
}

func (m *Manager) spanExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch m.cfg.Exporter {
	case ExporterStdout:
		opts := []stdouttrace.Option{stdouttrace.WithWriter(m.out)}
		if m.cfg.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(m.cfg.Endpoint)}
		if m.cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", m.cfg.Exporter)
	}
}

func (m *Manager) metricExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	switch m.cfg.Exporter {
	case ExporterStdout:
		opts := []stdoutmetric.Option{stdoutmetric.WithWriter(m.out)}
		if m.cfg.PrettyPrint {
			opts = append(opts, stdoutmetric.WithPrettyPrint())
		}
		return stdoutmetric.New(opts...)
	case ExporterOTLP:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(m.cfg.Endpoint)}
		if m.cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", m.cfg.Exporter)
	}
}

// TracerProvider returns the sdk provider, or a noop one before Start
func (m *Manager) TracerProvider() trace.TracerProvider {
	if m.tp == nil {
		return tracenoop.NewTracerProvider()
	}
	return m.tp
}

// MeterProvider returns the sdk provider, or a noop one before Start
func (m *Manager) MeterProvider() metric.MeterProvider {
	if m.mp == nil {
		return metricnoop.NewMeterProvider()
	}
	return m.mp
}

// Tracer is a shortcut for TracerProvider().Tracer(name)
func (m *Manager) Tracer(name string) trace.Tracer {
	return m.TracerProvider().Tracer(name)
}

// Metrics returns the registry bound to the current meter provider
func (m *Manager) Metrics() *MetricsRegistry {
	if m.metrics == nil {
		m.metrics = NewMetricsRegistry(m.MeterProvider(), WithRegistryLogger(m.logger))
	}
	return m.metrics
}

// Shutdown flushes and stops both providers
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	if m.tp != nil {
		errs = append(errs, m.tp.Shutdown(ctx))
		m.tp = nil
	}
	if m.mp != nil {
		errs = append(errs, m.mp.Shutdown(ctx))
		m.mp = nil
	}
	return errors.Join(errs...)
}
