// Package di wires the framework modules into a samber/do container.
//
// Providers are lazy: a module is built the first time something invokes it.
// Call StartCoreComponents to build the event registry and the database
// connections up front.
package di

import "github.com/samber/do/v2"

// Injector is the container interface
type Injector = do.Injector

// RootScope is the root container
type RootScope = do.RootScope

// New creates a root container
var New = do.New
