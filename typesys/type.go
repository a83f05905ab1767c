// Package typesys provides named classes with single inheritance and
// inherited method tables, the type handles used by the event registry.
package typesys

import (
	"sync"

	"github.com/KOMKZ/go-yogan-classevent/event"
)

// Type is a named class. The zero parent marks a root class.
type Type struct {
	name   string
	parent *Type

	mu      sync.RWMutex
	methods map[string]event.Callback
}

func newType(name string, parent *Type) *Type {
	return &Type{name: name, parent: parent, methods: make(map[string]event.Callback)}
}

// Name returns the class name
func (t *Type) Name() string {
	return t.name
}

// Parent implements event.TypeHandle; a nil *Type has no parent
func (t *Type) Parent() event.TypeHandle {
	if t == nil || t.parent == nil {
		return nil
	}
	return t.parent
}

// Base returns the parent class, nil for a root
func (t *Type) Base() *Type {
	if t == nil {
		return nil
	}
	return t.parent
}

// Define adds or replaces a method on t and returns t for chaining.
// Subclasses inherit it unless they define the same name.
func (t *Type) Define(name string, cb event.Callback) *Type {
	t.mu.Lock()
	t.methods[name] = cb
	t.mu.Unlock()
	return t
}

// Method looks name up on t, then on its ancestors
func (t *Type) Method(name string) (event.Callback, bool) {
	for c := t; c != nil; c = c.parent {
		c.mu.RLock()
		cb, ok := c.methods[name]
		c.mu.RUnlock()
		if ok {
			return cb, true
		}
	}
	return nil, false
}

// IsSubtypeOf reports whether t is other or descends from it
func (t *Type) IsSubtypeOf(other *Type) bool {
	for c := t; c != nil; c = c.parent {
		if c == other {
			return true
		}
	}
	return false
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}
