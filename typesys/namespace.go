package typesys

import (
	"reflect"
	"sync"

	"github.com/KOMKZ/go-yogan-classevent/event"
)

// Namespace owns a set of classes by name and maps Go struct types to them.
// It implements event.Resolver; TypeOf is suitable for event.WithTypeOf.
type Namespace struct {
	mu    sync.RWMutex
	types map[string]*Type
	bound map[reflect.Type]*Type
}

// NewNamespace creates an empty namespace
func NewNamespace() *Namespace {
	return &Namespace{
		types: make(map[string]*Type),
		bound: make(map[reflect.Type]*Type),
	}
}

// Define creates a class. parent is nil for a root and must otherwise
// belong to this namespace.
func (n *Namespace) Define(name string, parent *Type) (*Type, error) {
	if name == "" {
		return nil, ErrInvalidDefinition.WithMsgf("type name is empty")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.types[name]; exists {
		return nil, ErrTypeExists.WithMsgf("type %q already defined", name).WithData("type", name)
	}
	if parent != nil && n.types[parent.name] != parent {
		return nil, ErrInvalidDefinition.
			WithMsgf("parent %q of %q is not defined in this namespace", parent.name, name)
	}
	t := newType(name, parent)
	n.types[name] = t
	return t, nil
}

// MustDefine is Define that panics on error
func (n *Namespace) MustDefine(name string, parent *Type) *Type {
	t, err := n.Define(name, parent)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the class named name
func (n *Namespace) Lookup(name string) (*Type, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	t, ok := n.types[name]
	return t, ok
}

// Resolve implements event.Resolver
func (n *Namespace) Resolve(name string) (event.TypeHandle, error) {
	t, ok := n.Lookup(name)
	if !ok {
		return nil, event.ErrUnknownType.
			WithMsgf("unknown type %q", name).
			WithData("type", name)
	}
	return t, nil
}

// Bind makes values of sample's Go type (or pointers to it) instances of t
func (n *Namespace) Bind(t *Type, sample any) error {
	if t == nil {
		return ErrInvalidDefinition.WithMsgf("cannot bind to a nil type")
	}
	rt := indirectType(reflect.TypeOf(sample))
	if rt == nil {
		return ErrInvalidDefinition.WithMsgf("cannot bind %q to a nil sample", t.name)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.types[t.name] != t {
		return ErrInvalidDefinition.WithMsgf("type %q is not defined in this namespace", t.name)
	}
	if prev, ok := n.bound[rt]; ok && prev != t {
		return ErrTypeExists.
			WithMsgf("%s is already bound to %q", rt, prev.name).
			WithData("type", prev.name)
	}
	n.bound[rt] = t
	return nil
}

// TypeOf returns the class of v: its ClassType when v is an event.Instance,
// otherwise the class its Go type is bound to
func (n *Namespace) TypeOf(v any) (event.TypeHandle, bool) {
	if inst, ok := v.(event.Instance); ok {
		if t := inst.ClassType(); t != nil {
			return t, true
		}
	}
	t, ok := n.ClassOf(v)
	if !ok {
		return nil, false
	}
	return t, true
}

// ClassOf returns the class bound to v's Go type
func (n *Namespace) ClassOf(v any) (*Type, bool) {
	rt := indirectType(reflect.TypeOf(v))
	if rt == nil {
		return nil, false
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	t, ok := n.bound[rt]
	return t, ok
}

func indirectType(rt reflect.Type) reflect.Type {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}
