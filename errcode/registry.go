package errcode

import (
	"fmt"
	"sync"
)

// Registry guards against two modules claiming the same code
type Registry struct {
	mu     sync.RWMutex
	codes  map[int]string // code -> module:msgKey
	locked bool
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty code registry
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

// Register records err in the global registry and returns it unchanged.
// Intended for package-level sentinel declarations.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register panics when the code is already taken by a different module:msgKey
// or the registry is locked. Re-registering the same pair is a no-op.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		panic(fmt.Sprintf("errcode registry is locked, cannot register %d", err.Code()))
	}

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok {
		if existing != key {
			panic(fmt.Sprintf("error code conflict: %d already registered as %s, cannot register as %s",
				err.Code(), existing, key))
		}
		return err
	}

	r.codes[err.Code()] = key
	return err
}

// Lock refuses further registrations
func (r *Registry) Lock() {
	r.mu.Lock()
	r.locked = true
	r.mu.Unlock()
}

// Lookup returns the module:msgKey recorded for code
func (r *Registry) Lookup(code int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.codes[code]
	return key, ok
}

// Count returns the number of registered codes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Lookup queries the global registry
func Lookup(code int) (string, bool) {
	return globalRegistry.Lookup(code)
}
