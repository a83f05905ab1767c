package event

import "reflect"

// TypeHandle identifies a class in a single-inheritance chain.
// Parent returns nil (an untyped nil interface) for the root.
// Handles are compared with ==, so implementations must be comparable;
// pointer types are the usual choice.
type TypeHandle interface {
	Parent() TypeHandle
}

// Instance is an object that knows its runtime class
type Instance interface {
	ClassType() TypeHandle
}

// Resolver turns a type name into a handle (the namespace resolver).
// Unknown names fail with ErrUnknownType.
type Resolver interface {
	Resolve(name string) (TypeHandle, error)
}

// MethodSet is implemented by handler contexts that expose named callbacks,
// typically type handles carrying a method table.
type MethodSet interface {
	Method(name string) (Callback, bool)
}

// TypeOfFunc maps an arbitrary value to its class, used for trigger targets
// that implement neither TypeHandle nor Instance.
type TypeOfFunc func(v any) (TypeHandle, bool)

// ancestry calls fn for t and each of its ancestors until fn returns false
func ancestry(t TypeHandle, fn func(level TypeHandle) bool) {
	for level := t; !isNilHandle(level); level = level.Parent() {
		if !fn(level) {
			return
		}
	}
}

// isNilHandle reports whether t is nil or an interface holding a nil pointer
// (or other nil reference)
func isNilHandle(t TypeHandle) bool {
	return isNilValue(t)
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
