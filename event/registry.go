package event

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Binding is one handler attached to a type for an event name
type Binding struct {
	Type    TypeHandle
	Handler *Handler
	Data    any
}

// Registry stores class-level bindings keyed by event name and dispatches
// triggers through the type hierarchy.
//
// All methods are safe for concurrent use. The lock is never held while a
// handler runs, so handlers may call back into the registry.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string][]Binding

	resolver     Resolver
	typeOf       TypeOfFunc
	interceptors []Interceptor
	logger       *logger.CtxZapLogger
	metrics      *Metrics
	tracer       trace.Tracer

	poolSize int
	poolOnce sync.Once
	pool     *ants.Pool
	poolErr  error
	closed   atomic.Bool
}

const defaultPoolSize = 100

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		bindings: make(map[string][]Binding),
		logger:   logger.GetLogger("yogan"),
		poolSize: defaultPoolSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolver returns the namespace resolver, nil when none is configured
func (r *Registry) Resolver() Resolver {
	return r.resolver
}

// Use appends an interceptor
func (r *Registry) Use(interceptor Interceptor) {
	if interceptor == nil {
		return
	}
	r.mu.Lock()
	r.interceptors = append(r.interceptors, interceptor)
	r.mu.Unlock()
}

// Attach binds raw to t for the event name.
//
// raw is normalized with t as default context. By default a type is bound
// at most once per event: attaching again is a silent no-op. WithPrepend
// always inserts at the front.
func (r *Registry) Attach(name string, t TypeHandle, raw any, opts ...AttachOption) error {
	if isNilHandle(t) {
		return ErrInvalidTarget.
			WithMsgf("cannot attach %q: nil type", name).
			WithData("event", name)
	}
	h, err := Normalize(raw, t, r.resolver)
	if err != nil {
		return err
	}
	if h == nil {
		return malformed(raw, "nil handler cannot be attached")
	}

	var o attachOptions
	for _, opt := range opts {
		opt(&o)
	}
	b := Binding{Type: t, Handler: h, Data: o.data}

	r.mu.Lock()
	list := r.bindings[name]
	added := true
	switch {
	case o.prepend:
		next := make([]Binding, 0, len(list)+1)
		next = append(next, b)
		r.bindings[name] = append(next, list...)
	case hasType(list, t):
		added = false
	default:
		r.bindings[name] = append(list, b)
	}
	r.mu.Unlock()

	r.logger.Debug("event handler attached",
		zap.String("event", name),
		zap.String("type", typeName(t)),
		zap.Bool("prepend", o.prepend),
		zap.Bool("added", added))
	return nil
}

// Detach removes the bindings of t for the event name. A nil raw removes
// all of them; otherwise only bindings with the same callback are removed.
// It reports whether anything was removed.
func (r *Registry) Detach(name string, t TypeHandle, raw any) (bool, error) {
	var h *Handler
	if raw != nil {
		var err error
		if h, err = Normalize(raw, t, r.resolver); err != nil {
			return false, err
		}
	}

	r.mu.Lock()
	list, ok := r.bindings[name]
	if !ok {
		r.mu.Unlock()
		return false, nil
	}
	kept := make([]Binding, 0, len(list))
	for _, b := range list {
		if b.Type == t && (h == nil || b.Handler.SameCallback(h)) {
			continue
		}
		kept = append(kept, b)
	}
	removed := len(list) - len(kept)
	if len(kept) == 0 {
		delete(r.bindings, name)
	} else if removed > 0 {
		r.bindings[name] = kept
	}
	r.mu.Unlock()

	if removed > 0 {
		r.logger.Debug("event handler detached",
			zap.String("event", name),
			zap.String("type", typeName(t)),
			zap.Int("removed", removed))
	}
	return removed > 0, nil
}

// HasHandlers reports whether a trigger of name on t (or an instance of t)
// would find at least one binding on t or its ancestors
func (r *Registry) HasHandlers(name string, t TypeHandle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.bindings[name]
	if len(list) == 0 {
		return false
	}
	found := false
	ancestry(t, func(level TypeHandle) bool {
		found = hasType(list, level)
		return !found
	})
	return found
}

func (r *Registry) hasList(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bindings[name]
	return ok
}

// snapshot copies the bindings of one level, in list order
func (r *Registry) snapshot(name string, level TypeHandle) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Binding
	for _, b := range r.bindings[name] {
		if b.Type == level {
			out = append(out, b)
		}
	}
	return out
}

func (r *Registry) interceptorChain() []Interceptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.interceptors) == 0 {
		return nil
	}
	out := make([]Interceptor, len(r.interceptors))
	copy(out, r.interceptors)
	return out
}

func hasType(list []Binding, t TypeHandle) bool {
	for _, b := range list {
		if b.Type == t {
			return true
		}
	}
	return false
}

func typeName(t TypeHandle) string {
	if s, ok := t.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", t)
}
