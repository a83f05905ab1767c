package event

import (
	"context"
	"sync"

	"github.com/KOMKZ/go-yogan-classevent/logger"
)

// testType is a minimal class: a name, a parent and its own method table
type testType struct {
	name    string
	parent  *testType
	methods map[string]Callback
}

func newTestType(name string, parent *testType) *testType {
	return &testType{name: name, parent: parent, methods: make(map[string]Callback)}
}

func (t *testType) Parent() TypeHandle {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

func (t *testType) Method(name string) (Callback, bool) {
	cb, ok := t.methods[name]
	return cb, ok
}

func (t *testType) String() string { return t.name }

type testObject struct {
	class *testType
	label string
}

func (o *testObject) ClassType() TypeHandle {
	if o.class == nil {
		return nil
	}
	return o.class
}

type testResolver map[string]*testType

func (r testResolver) Resolve(name string) (TypeHandle, error) {
	t, ok := r[name]
	if !ok {
		return nil, ErrUnknownType.WithMsgf("unknown type %q", name)
	}
	return t, nil
}

// hierarchy is Model <- User <- Admin
type hierarchy struct {
	model, user, admin *testType
	resolver           testResolver
}

func newHierarchy() *hierarchy {
	model := newTestType("Model", nil)
	user := newTestType("User", model)
	admin := newTestType("Admin", user)
	return &hierarchy{
		model: model, user: user, admin: admin,
		resolver: testResolver{"Model": model, "User": user, "Admin": admin},
	}
}

// recorder collects handler labels in call order
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(label string) {
	r.mu.Lock()
	r.calls = append(r.calls, label)
	r.mu.Unlock()
}

func (r *recorder) handler(label string) Callback {
	return func(ctx context.Context, receiver any, e *Event) error {
		r.add(label)
		return nil
	}
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func newTestRegistry(opts ...Option) *Registry {
	return NewRegistry(append([]Option{WithLogger(logger.NewNop())}, opts...)...)
}
