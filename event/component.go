package event

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-classevent/component"
	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/KOMKZ/go-yogan-classevent/telemetry"
	"github.com/KOMKZ/go-yogan-classevent/validator"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Component owns the application's event registry
type Component struct {
	resolver Resolver
	options  []Option
	registry *Registry
	metrics  *Metrics
	logger   *logger.CtxZapLogger
	config   Config
}

// NewComponent creates the event component. resolver resolves the type
// names used by configured bindings and [type, method] handlers; opts are
// passed to NewRegistry.
func NewComponent(resolver Resolver, opts ...Option) *Component {
	return &Component{resolver: resolver, options: opts}
}

// Name returns the component name
func (c *Component) Name() string {
	return component.ComponentEvent
}

// DependsOn returns the components that must be initialised first
func (c *Component) DependsOn() []string {
	return []string{
		component.ComponentConfig,
		component.ComponentLogger,
		"optional:" + component.ComponentTelemetry,
	}
}

// Init loads the "event" section, builds the registry and attaches the
// configured bindings
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	c.logger = logger.GetLogger("yogan")
	c.logger.DebugCtx(ctx, "initializing event component")

	c.config = DefaultConfig()
	if err := loader.Unmarshal("event", &c.config); err != nil {
		c.logger.DebugCtx(ctx, "using default event config", zap.Error(err))
	}
	if err := validator.Validate(c.config); err != nil {
		return fmt.Errorf("event config: %w", err)
	}

	if !c.config.Enabled {
		c.logger.InfoCtx(ctx, "event component disabled")
		return nil
	}

	opts := []Option{
		WithResolver(c.resolver),
		WithLogger(c.logger),
		WithPoolSize(c.config.PoolSize),
	}
	if c.config.Metrics {
		c.metrics = NewMetrics(MetricsConfig{Enabled: true})
		if err := telemetry.NewMetricsRegistry(otel.GetMeterProvider()).Register(c.metrics); err != nil {
			return fmt.Errorf("register event metrics: %w", err)
		}
		opts = append(opts, WithMetrics(c.metrics))
	}
	if c.config.LogDispatch || c.logger.GetZapLogger().Core().Enabled(zapcore.DebugLevel) {
		opts = append(opts, WithInterceptor(LoggingInterceptor(c.logger)))
	}
	c.registry = NewRegistry(append(opts, c.options...)...)

	for i, b := range c.config.Bindings {
		if err := c.attach(b); err != nil {
			return fmt.Errorf("event binding #%d (%s on %s): %w", i, b.Event, b.Type, err)
		}
	}

	c.logger.InfoCtx(ctx, "event component initialized",
		zap.Int("pool_size", c.config.PoolSize),
		zap.Int("bindings", len(c.config.Bindings)))
	return nil
}

func (c *Component) attach(b BindingConfig) error {
	resolver := c.registry.Resolver()
	if resolver == nil {
		return ErrUnknownType.
			WithMsgf("cannot resolve type %q: no resolver configured", b.Type).
			WithData("type", b.Type)
	}
	t, err := resolver.Resolve(b.Type)
	if err != nil {
		return err
	}
	opts := []AttachOption{WithData(b.Data)}
	if b.Prepend {
		opts = append(opts, WithPrepend())
	}
	return c.registry.Attach(b.Event, t, b.Handler, opts...)
}

// Start is a no-op; the registry is usable after Init
func (c *Component) Start(ctx context.Context) error {
	return nil
}

// Stop closes the registry's async worker pool
func (c *Component) Stop(ctx context.Context) error {
	if c.registry != nil {
		c.registry.Close()
		c.logger.InfoCtx(ctx, "event component stopped")
	}
	return nil
}

// Shutdown lets a DI container stop the component
func (c *Component) Shutdown(ctx context.Context) error {
	return c.Stop(ctx)
}

// HealthChecker returns nil until Init or when disabled
func (c *Component) HealthChecker() component.HealthChecker {
	if c.registry == nil {
		return nil
	}
	return NewHealthChecker(c.registry)
}

// Registry returns the event registry, nil until Init or when disabled
func (c *Component) Registry() *Registry {
	return c.registry
}

// Config returns the loaded configuration
func (c *Component) Config() Config {
	return c.config
}

// Metrics returns the metrics provider, nil when metrics are off
func (c *Component) Metrics() *Metrics {
	return c.metrics
}

// IsEnabled reports whether the component built a registry
func (c *Component) IsEnabled() bool {
	return c.config.Enabled && c.registry != nil
}
