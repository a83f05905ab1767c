package health

import (
	"context"
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-classevent/component"
	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/KOMKZ/go-yogan-classevent/validator"
	"go.uber.org/zap"
)

// Component owns an Aggregator fed by HealthCheckProviders
type Component struct {
	config     Config
	providers  []component.HealthCheckProvider
	aggregator *Aggregator
	logger     *logger.CtxZapLogger
}

// NewComponent creates the health component. Providers are asked for their
// checker at Start, after they have been initialised.
func NewComponent(providers ...component.HealthCheckProvider) *Component {
	return &Component{
		providers: providers,
		logger:    logger.GetLogger("yogan"),
	}
}

func (c *Component) Name() string {
	return component.ComponentHealth
}

func (c *Component) DependsOn() []string {
	return []string{
		component.ComponentConfig,
		component.ComponentLogger,
		"optional:" + component.ComponentEvent,
		"optional:" + component.ComponentDatabase,
	}
}

// Init reads the "health" section
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	c.config = DefaultConfig()
	if loader.IsSet("health") {
		if err := loader.Unmarshal("health", &c.config); err != nil {
			return fmt.Errorf("read health config: %w", err)
		}
	}
	if err := validator.Validate(c.config); err != nil {
		return fmt.Errorf("health config: %w", err)
	}
	if !c.config.Enabled {
		c.logger.InfoCtx(ctx, "health check disabled")
		return nil
	}
	c.aggregator = NewAggregator(c.config.Timeout)
	return nil
}

// Start registers the checker of every enabled provider
func (c *Component) Start(ctx context.Context) error {
	if c.aggregator == nil {
		return nil
	}
	for _, p := range c.providers {
		checker := p.HealthChecker()
		if checker == nil {
			continue
		}
		c.aggregator.Register(checker)
		c.logger.DebugCtx(ctx, "health checker registered", zap.String("name", checker.Name()))
	}
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	return nil
}

// Aggregator is nil until Init or when disabled
func (c *Component) Aggregator() *Aggregator {
	return c.aggregator
}

func (c *Component) IsEnabled() bool {
	return c.config.Enabled
}

// Check runs the aggregator. A disabled component reports healthy.
func (c *Component) Check(ctx context.Context) *Response {
	if c.aggregator == nil {
		return &Response{
			Status:    StatusHealthy,
			Timestamp: time.Now(),
			Checks:    map[string]CheckResult{},
			Metadata:  map[string]any{"enabled": false},
		}
	}
	return c.aggregator.Check(ctx)
}
