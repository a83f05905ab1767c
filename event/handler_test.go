package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, receiver any, e *Event) error { return nil }

func other(ctx context.Context, receiver any, e *Event) error { return nil }

func TestNormalize_Nil(t *testing.T) {
	h, err := Normalize(nil, nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, h)

	h, err = Normalize((*Handler)(nil), nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, h)
}

func TestNormalize_HandlerPassesThrough(t *testing.T) {
	in := &Handler{Context: "ctx", Callback: noop}
	h, err := Normalize(in, nil, nil)
	require.NoError(t, err)
	assert.Same(t, in, h)

	h, err = Normalize(Handler{Context: "ctx", Callback: noop}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ctx", h.Context)
	assert.True(t, h.SameCallback(in))
}

func TestNormalize_FuncUsesDefaultContext(t *testing.T) {
	h, err := Normalize(noop, "supplied", nil)
	require.NoError(t, err)
	assert.Equal(t, "supplied", h.Context)

	types := newHierarchy()
	h, err = Normalize(Func(noop), types.model, nil)
	require.NoError(t, err)
	assert.Same(t, types.model, h.Context)
}

func TestNormalize_FuncWithoutDefaultContext(t *testing.T) {
	h, err := Normalize(Callback(noop), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, h.Context)

	h, err = Normalize(Func(noop), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, h.Context)
}

func TestNormalize_BoundPair(t *testing.T) {
	obj := &testObject{label: "auditor"}
	h, err := Normalize([]any{noop, obj}, nil, nil)
	require.NoError(t, err)
	assert.Same(t, obj, h.Context)

	h, err = Normalize(Bound(noop, obj), nil, nil)
	require.NoError(t, err)
	assert.Same(t, obj, h.Context)

	h, err = Normalize(map[string]any{"callback": noop, "context": obj}, nil, nil)
	require.NoError(t, err)
	assert.Same(t, obj, h.Context)
}

func TestNormalize_StaticPair(t *testing.T) {
	types := newHierarchy()
	types.model.methods["audit"] = noop

	forms := []any{
		[]any{"Model", "audit"},
		[]string{"Model", "audit"},
		[2]string{"Model", "audit"},
		map[string]any{"type": "Model", "method": "audit"},
		Static("Model", "audit"),
	}
	for _, raw := range forms {
		h, err := Normalize(raw, nil, types.resolver)
		require.NoError(t, err, "%v", raw)
		assert.Same(t, types.model, h.Context)
		assert.True(t, h.SameCallback(&Handler{Callback: noop}))
	}
}

func TestNormalize_StaticUnknownType(t *testing.T) {
	types := newHierarchy()

	_, err := Normalize([]string{"Ghost", "audit"}, nil, types.resolver)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = Normalize([]string{"Model", "audit"}, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestNormalize_StaticUnknownMethod(t *testing.T) {
	types := newHierarchy()
	_, err := Normalize([]string{"Model", "missing"}, nil, types.resolver)
	assert.ErrorIs(t, err, ErrMalformedHandler)
}

func TestNormalize_MethodName(t *testing.T) {
	types := newHierarchy()
	types.user.methods["beforeSave"] = noop

	h, err := Normalize("beforeSave", types.user, nil)
	require.NoError(t, err)
	assert.Same(t, types.user, h.Context)

	h, err = Normalize(Method("beforeSave"), types.user, nil)
	require.NoError(t, err)
	assert.Same(t, types.user, h.Context)

	_, err = Normalize("beforeSave", nil, nil)
	assert.ErrorIs(t, err, ErrMalformedHandler)

	_, err = Normalize("missing", types.user, nil)
	assert.ErrorIs(t, err, ErrMalformedHandler)
}

func TestNormalize_Malformed(t *testing.T) {
	cases := map[string]any{
		"int":            42,
		"triple":         []any{"a", "b", "c"},
		"empty map":      map[string]any{},
		"callback only":  map[string]any{"callback": noop},
		"wrong func":     func() {},
		"pair nil ctx":   []any{noop, nil},
		"empty spec":     HandlerSpec{},
		"bound nil func": Bound(nil, "ctx"),
		"nil callback":   &Handler{Context: "ctx"},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			h, err := Normalize(raw, nil, nil)
			assert.Nil(t, h)
			assert.ErrorIs(t, err, ErrMalformedHandler)
		})
	}
}

func TestHandler_SameCallback(t *testing.T) {
	a := &Handler{Callback: noop}
	b := &Handler{Context: "different", Callback: noop}
	c := &Handler{Callback: other}

	assert.True(t, a.SameCallback(b))
	assert.False(t, a.SameCallback(c))
	assert.False(t, a.SameCallback(nil))
}

func TestHandlerSpec_String(t *testing.T) {
	assert.Equal(t, "[Model, audit]", Static("Model", "audit").String())
	assert.Equal(t, `method "audit"`, Method("audit").String())
	assert.Equal(t, "empty handler spec", HandlerSpec{}.String())
}
