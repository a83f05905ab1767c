package di

import (
	"github.com/KOMKZ/go-yogan-classevent/typesys"
	"github.com/samber/do/v2"
)

// RegisterCoreProviders registers every framework provider, by dependency layer
func RegisterCoreProviders(injector *do.RootScope, opts ConfigOptions, define func(ns *typesys.Namespace) error) {
	// Layer 0: config
	do.Provide(injector, ProvideConfigLoader(opts))

	// Layer 1: logger, telemetry, classes
	do.Provide(injector, ProvideLoggerManager)
	do.Provide(injector, ProvideCtxLogger("yogan"))
	do.Provide(injector, ProvideTelemetryManager)
	do.Provide(injector, ProvideNamespace(define))

	// Layer 2: events
	do.Provide(injector, ProvideEventComponent)
	do.Provide(injector, ProvideEventRegistry)

	// Layer 3: storage
	do.Provide(injector, ProvideDatabaseManager)
	do.Provide(injector, ProvideDefaultDB)

	// Layer 4: health
	do.Provide(injector, ProvideHealthComponent)
}
