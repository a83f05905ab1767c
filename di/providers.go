package di

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-classevent/component"
	"github.com/KOMKZ/go-yogan-classevent/config"
	"github.com/KOMKZ/go-yogan-classevent/database"
	"github.com/KOMKZ/go-yogan-classevent/event"
	"github.com/KOMKZ/go-yogan-classevent/health"
	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/KOMKZ/go-yogan-classevent/telemetry"
	"github.com/KOMKZ/go-yogan-classevent/typesys"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigOptions selects the configuration sources
type ConfigOptions struct {
	ConfigPath string // directory holding config.yaml and <APP_ENV>.yaml
	EnvPrefix  string // environment variable prefix, empty disables env overrides
	Defaults   map[string]any
}

// ProvideConfigLoader builds the config.Loader; it has no dependencies
func ProvideConfigLoader(opts ConfigOptions) func(do.Injector) (*config.Loader, error) {
	return func(i do.Injector) (*config.Loader, error) {
		if opts.ConfigPath == "" {
			opts.ConfigPath = "./configs"
		}
		return config.NewLoaderBuilder().
			WithConfigPath(opts.ConfigPath).
			WithEnvPrefix(opts.EnvPrefix).
			WithDefaults(opts.Defaults).
			Build()
	}
}

// ProvideLoggerManager builds the logger manager from the "logger" section,
// falling back to defaults when the section is missing or unreadable
func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return logger.NewManager(logger.DefaultManagerConfig()), nil
	}

	cfg := logger.DefaultManagerConfig()
	if err := loader.Unmarshal("logger", &cfg); err != nil {
		return logger.NewManager(logger.DefaultManagerConfig()), nil
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("logger config: %w", err)
	}
	return logger.NewManager(cfg), nil
}

// ProvideCtxLogger returns a provider of the named module logger
func ProvideCtxLogger(moduleName string) func(do.Injector) (*logger.CtxZapLogger, error) {
	return func(i do.Injector) (*logger.CtxZapLogger, error) {
		mgr, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return logger.GetLogger(moduleName), nil
		}
		return mgr.GetLogger(moduleName), nil
	}
}

// ProvideNamespace returns a provider of the class namespace. define, when
// set, declares the application's classes before anything resolves them.
func ProvideNamespace(define func(ns *typesys.Namespace) error) func(do.Injector) (*typesys.Namespace, error) {
	return func(i do.Injector) (*typesys.Namespace, error) {
		ns := typesys.NewNamespace()
		if define != nil {
			if err := define(ns); err != nil {
				return nil, fmt.Errorf("define types: %w", err)
			}
		}
		return ns, nil
	}
}

// ProvideTelemetryManager builds and starts telemetry from the "telemetry" section
func ProvideTelemetryManager(i do.Injector) (*telemetry.Manager, error) {
	log := do.MustInvoke[*logger.CtxZapLogger](i)

	cfg := telemetry.DefaultConfig()
	if loader, err := do.Invoke[*config.Loader](i); err == nil {
		if err := loader.Unmarshal("telemetry", &cfg); err != nil {
			return nil, fmt.Errorf("telemetry config: %w", err)
		}
	}

	m := telemetry.NewManager(cfg, telemetry.WithLogger(log))
	if err := m.Start(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

// ProvideEventComponent initialises the event component against the
// namespace. Spans are recorded when telemetry is available.
func ProvideEventComponent(i do.Injector) (*event.Component, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}
	ns, err := do.Invoke[*typesys.Namespace](i)
	if err != nil {
		return nil, err
	}

	opts := []event.Option{event.WithTypeOf(ns.TypeOf)}
	if tm, err := do.Invoke[*telemetry.Manager](i); err == nil {
		opts = append(opts, event.WithTracer(tm.Tracer("github.com/KOMKZ/go-yogan-classevent/event")))
	}

	c := event.NewComponent(ns, opts...)
	if err := c.Init(context.Background(), loader); err != nil {
		return nil, err
	}
	if err := c.Start(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// ProvideEventRegistry returns the component's registry; it fails when
// the event component is disabled
func ProvideEventRegistry(i do.Injector) (*event.Registry, error) {
	c, err := do.Invoke[*event.Component](i)
	if err != nil {
		return nil, err
	}
	if !c.IsEnabled() {
		return nil, fmt.Errorf("event component is disabled")
	}
	return c.Registry(), nil
}

// ProvideDatabaseManager opens database.connections. Model lifecycle events
// are wired when the event registry is available; database.async_events
// names the ones dispatched on the worker pool. It returns a nil manager
// when no connection is configured.
func ProvideDatabaseManager(i do.Injector) (*database.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	var configs map[string]database.Config
	if err := loader.Unmarshal("database.connections", &configs); err != nil {
		return nil, fmt.Errorf("read database config: %w", err)
	}
	if len(configs) == 0 {
		return nil, nil
	}

	log := do.MustInvoke[*logger.CtxZapLogger](i)
	opts := []database.ManagerOption{database.WithLogger(log)}
	if registry, err := do.Invoke[*event.Registry](i); err == nil {
		ns := do.MustInvoke[*typesys.Namespace](i)
		var async []string
		if err := loader.Unmarshal("database.async_events", &async); err != nil {
			return nil, fmt.Errorf("read database.async_events: %w", err)
		}
		opts = append(opts, database.WithEventHooks(registry, ns.TypeOf, database.WithAsyncEvents(async...)))
	} else {
		log.Debug("database opened without event hooks", zap.Error(err))
	}
	if tm, err := do.Invoke[*telemetry.Manager](i); err == nil {
		opts = append(opts, database.WithTracerProvider(tm.TracerProvider()))
	}
	return database.NewManager(configs, opts...)
}

// ProvideDefaultDB returns the "main" connection
func ProvideDefaultDB(i do.Injector) (*gorm.DB, error) {
	mgr, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	if mgr == nil {
		return nil, fmt.Errorf("no database configured")
	}
	return mgr.Lookup("main")
}

// checkerProvider adapts a plain checker to component.HealthCheckProvider
type checkerProvider struct {
	checker component.HealthChecker
}

func (p checkerProvider) HealthChecker() component.HealthChecker { return p.checker }

// ProvideHealthComponent aggregates the event registry and database checks
func ProvideHealthComponent(i do.Injector) (*health.Component, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	var providers []component.HealthCheckProvider
	if c, err := do.Invoke[*event.Component](i); err == nil {
		providers = append(providers, c)
	}
	if mgr, err := do.Invoke[*database.Manager](i); err == nil && mgr != nil {
		providers = append(providers, checkerProvider{checker: database.NewHealthChecker(mgr, 0)})
	}

	c := health.NewComponent(providers...)
	if err := c.Init(context.Background(), loader); err != nil {
		return nil, err
	}
	if err := c.Start(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}
