package event

import (
	"context"
	"fmt"
	"reflect"
)

// Callback is the canonical handler signature. receiver is the handler's
// Context, nil for a free function normalized without a default context.
type Callback func(ctx context.Context, receiver any, e *Event) error

// Handler is a normalized handler: a callback plus the receiver it runs on
type Handler struct {
	Context  any
	Callback Callback
}

// SameCallback reports whether h and other run the same function.
// Identity is the function's code pointer; contexts are not compared.
// A closure is only reliably matched by the value that was attached.
func (h *Handler) SameCallback(other *Handler) bool {
	if h == nil || other == nil {
		return h == other
	}
	return callbackID(h.Callback) == callbackID(other.Callback)
}

func (h *Handler) invoke(ctx context.Context, e *Event) error {
	return h.Callback(ctx, h.Context, e)
}

func callbackID(cb Callback) uintptr {
	if cb == nil {
		return 0
	}
	return reflect.ValueOf(cb).Pointer()
}

type specKind uint8

const (
	specNormalized specKind = iota + 1
	specBound
	specStatic
	specMethod
	specFunc
)

// HandlerSpec is one of the accepted handler representations, resolved into
// a Handler at registration time. Build one with Normalized, Bound, Static,
// Method or Func.
type HandlerSpec struct {
	kind     specKind
	handler  *Handler
	fn       Callback
	context  any
	typeName string
	method   string
}

// Normalized wraps an already normalized handler; it is used unchanged
func Normalized(h *Handler) HandlerSpec {
	return HandlerSpec{kind: specNormalized, handler: h}
}

// Bound runs fn with receiver as its context
func Bound(fn Callback, receiver any) HandlerSpec {
	return HandlerSpec{kind: specBound, fn: fn, context: receiver}
}

// Static resolves typeName through the namespace resolver and runs the
// resolved type's method with the type itself as receiver
func Static(typeName, method string) HandlerSpec {
	return HandlerSpec{kind: specStatic, typeName: typeName, method: method}
}

// Method runs the named method of the type the handler is attached to
func Method(name string) HandlerSpec {
	return HandlerSpec{kind: specMethod, method: name}
}

// Func runs a free function with the default context of the attach or
// detach call as receiver, nil when there is none
func Func(fn Callback) HandlerSpec {
	return HandlerSpec{kind: specFunc, fn: fn}
}

func (s HandlerSpec) String() string {
	switch s.kind {
	case specNormalized:
		return "normalized handler"
	case specBound:
		return fmt.Sprintf("bound handler on %T", s.context)
	case specStatic:
		return fmt.Sprintf("[%s, %s]", s.typeName, s.method)
	case specMethod:
		return fmt.Sprintf("method %q", s.method)
	case specFunc:
		return "func handler"
	default:
		return "empty handler spec"
	}
}

// Normalize converts any accepted handler representation into a Handler.
//
// Accepted, in priority order:
//   - *Handler, Handler, or a map with "callback" and "context" keys
//   - [callable, object] as []any
//   - [typeName, methodName] as []string, [2]string, []any, or a map with
//     "type" and "method" keys
//   - a method name string, looked up on defaultContext
//   - a Callback or a plain func with the Callback signature, run with
//     defaultContext as receiver
//   - a HandlerSpec built by one of the constructors
//
// nil (including nil pointers) yields (nil, nil): "no handler".
// Other shapes fail with ErrMalformedHandler; resolver errors are returned
// unchanged.
func Normalize(raw any, defaultContext any, resolver Resolver) (*Handler, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case *Handler:
		if v == nil {
			return nil, nil
		}
		return Normalized(v).resolve(raw, defaultContext, resolver)
	case Handler:
		return Normalized(&v).resolve(raw, defaultContext, resolver)
	case HandlerSpec:
		return v.resolve(raw, defaultContext, resolver)
	case *HandlerSpec:
		if v == nil {
			return nil, nil
		}
		return v.resolve(raw, defaultContext, resolver)
	case string:
		return Method(v).resolve(raw, defaultContext, resolver)
	case [2]string:
		return Static(v[0], v[1]).resolve(raw, defaultContext, resolver)
	case []string:
		if len(v) == 2 {
			return Static(v[0], v[1]).resolve(raw, defaultContext, resolver)
		}
	case []any:
		if len(v) == 2 {
			if spec, ok := pairSpec(v[0], v[1]); ok {
				return spec.resolve(raw, defaultContext, resolver)
			}
		}
	case map[string]any:
		if spec, ok := mapSpec(v); ok {
			return spec.resolve(raw, defaultContext, resolver)
		}
	default:
		if fn, ok := asCallback(raw); ok {
			return Func(fn).resolve(raw, defaultContext, resolver)
		}
	}
	return nil, malformed(raw, "unsupported handler shape")
}

func (s HandlerSpec) resolve(raw any, defaultContext any, resolver Resolver) (*Handler, error) {
	switch s.kind {
	case specNormalized:
		if s.handler == nil {
			return nil, nil
		}
		if s.handler.Callback == nil {
			return nil, malformed(raw, "nil callback")
		}
		return s.handler, nil

	case specBound:
		if s.fn == nil {
			return nil, malformed(raw, "nil callback")
		}
		if s.context == nil {
			return nil, malformed(raw, "nil context")
		}
		return &Handler{Context: s.context, Callback: s.fn}, nil

	case specStatic:
		if s.typeName == "" || s.method == "" {
			return nil, malformed(raw, "type and method names are required")
		}
		if resolver == nil {
			return nil, ErrUnknownType.
				WithMsgf("cannot resolve type %q: no resolver configured", s.typeName).
				WithData("type", s.typeName)
		}
		t, err := resolver.Resolve(s.typeName)
		if err != nil {
			return nil, err
		}
		cb, ok := lookupMethod(t, s.method)
		if !ok {
			return nil, malformed(raw, fmt.Sprintf("type %q has no method %q", s.typeName, s.method))
		}
		return &Handler{Context: t, Callback: cb}, nil

	case specMethod:
		if s.method == "" {
			return nil, malformed(raw, "empty method name")
		}
		if defaultContext == nil {
			return nil, malformed(raw, "no default context for method name")
		}
		cb, ok := lookupMethod(defaultContext, s.method)
		if !ok {
			return nil, malformed(raw, fmt.Sprintf("%v has no method %q", defaultContext, s.method))
		}
		return &Handler{Context: defaultContext, Callback: cb}, nil

	case specFunc:
		if s.fn == nil {
			return nil, malformed(raw, "nil callback")
		}
		return &Handler{Context: defaultContext, Callback: s.fn}, nil
	}
	return nil, malformed(raw, "empty handler spec")
}

func pairSpec(first, second any) (HandlerSpec, bool) {
	if typeName, ok := first.(string); ok {
		if method, ok := second.(string); ok {
			return Static(typeName, method), true
		}
		return HandlerSpec{}, false
	}
	fn, ok := asCallback(first)
	if !ok || second == nil {
		return HandlerSpec{}, false
	}
	if _, isString := second.(string); isString {
		return HandlerSpec{}, false
	}
	return Bound(fn, second), true
}

func mapSpec(m map[string]any) (HandlerSpec, bool) {
	if cbRaw, ok := m["callback"]; ok {
		if _, hasContext := m["context"]; !hasContext {
			return HandlerSpec{}, false
		}
		fn, ok := asCallback(cbRaw)
		if !ok {
			return HandlerSpec{}, false
		}
		return Normalized(&Handler{Context: m["context"], Callback: fn}), true
	}
	typeName, okType := m["type"].(string)
	method, okMethod := m["method"].(string)
	if okType && okMethod {
		return Static(typeName, method), true
	}
	return HandlerSpec{}, false
}

func asCallback(v any) (Callback, bool) {
	switch fn := v.(type) {
	case Callback:
		return fn, fn != nil
	case func(context.Context, any, *Event) error:
		return Callback(fn), fn != nil
	}
	return nil, false
}

func lookupMethod(target any, name string) (Callback, bool) {
	ms, ok := target.(MethodSet)
	if !ok {
		return nil, false
	}
	cb, ok := ms.Method(name)
	return cb, ok && cb != nil
}

func malformed(raw any, reason string) error {
	desc := describe(raw)
	return ErrMalformedHandler.
		WithMsgf("malformed event handler %s: %s", desc, reason).
		WithData("handler", desc)
}

func describe(raw any) string {
	var s string
	switch v := raw.(type) {
	case nil:
		s = "<nil>"
	case HandlerSpec:
		s = v.String()
	case *HandlerSpec:
		s = v.String()
	default:
		s = fmt.Sprintf("%T(%v)", raw, raw)
	}
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}
