package database

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-classevent/component"
	"github.com/KOMKZ/go-yogan-classevent/logger"
)

// Component opens the connections listed under database.connections
type Component struct {
	options []ManagerOption
	manager *Manager
	logger  *logger.CtxZapLogger
}

// NewComponent creates the database component; opts are passed to NewManager
func NewComponent(opts ...ManagerOption) *Component {
	return &Component{options: opts}
}

// Name returns the component name
func (c *Component) Name() string {
	return component.ComponentDatabase
}

// DependsOn returns the components that must be initialised first
func (c *Component) DependsOn() []string {
	return []string{
		component.ComponentConfig,
		component.ComponentLogger,
		"optional:" + component.ComponentEvent,
		"optional:" + component.ComponentTelemetry,
	}
}

// Init reads database.connections and opens them. No connections is not an error.
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	c.logger = logger.GetLogger("yogan")

	var configs map[string]Config
	if err := loader.Unmarshal("database.connections", &configs); err != nil {
		return fmt.Errorf("read database config: %w", err)
	}
	if len(configs) == 0 {
		c.logger.DebugCtx(ctx, "no database configured")
		return nil
	}

	opts := append([]ManagerOption{WithLogger(c.logger)}, c.options...)
	manager, err := NewManager(configs, opts...)
	if err != nil {
		return err
	}
	c.manager = manager
	c.logger.DebugCtx(ctx, "database component initialized")
	return nil
}

// Start is a no-op
func (c *Component) Start(ctx context.Context) error {
	return nil
}

// Stop closes the connections
func (c *Component) Stop(ctx context.Context) error {
	if c.manager != nil {
		return c.manager.Close()
	}
	return nil
}

// HealthChecker returns nil when nothing is configured
func (c *Component) HealthChecker() component.HealthChecker {
	if c.manager == nil {
		return nil
	}
	return NewHealthChecker(c.manager, 0)
}

// Manager returns the connection manager, nil when nothing is configured
func (c *Component) Manager() *Manager {
	return c.manager
}
