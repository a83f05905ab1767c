package errcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(80, 1, "event", "error.event.malformed_handler", "malformed handler")

	assert.Equal(t, 800001, err.Code())
	assert.Equal(t, "event", err.Module())
	assert.Equal(t, "error.event.malformed_handler", err.MsgKey())
	assert.Equal(t, "malformed handler", err.Error())
	assert.Empty(t, err.Data())
}

func TestLayeredError_DerivedCopiesKeepIdentity(t *testing.T) {
	base := New(80, 2, "event", "error.event.unknown_type", "unknown type")

	derived := base.WithMsgf("unknown type %q", "User").WithData("type", "User")

	assert.True(t, errors.Is(derived, base))
	assert.Equal(t, "unknown type \"User\"", derived.Error())
	assert.Equal(t, "User", derived.Data()["type"])
	assert.Empty(t, base.Data(), "base must not be mutated")
	assert.Equal(t, "unknown type", base.Message())
}

func TestLayeredError_Wrap(t *testing.T) {
	cause := errors.New("boom")
	base := New(80, 3, "event", "error.event.invalid_target", "invalid target")

	wrapped := base.Wrap(cause)
	assert.Equal(t, "invalid target: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, base)
	assert.Same(t, base, base.Wrap(nil))

	var le *LayeredError
	require.True(t, errors.As(wrapped, &le))
	assert.Equal(t, 800003, le.Code())
}

func TestLayeredError_IsDifferentCode(t *testing.T) {
	a := New(80, 1, "event", "a", "a")
	b := New(80, 2, "event", "b", "b")
	assert.False(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, errors.New("a")))
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	err := New(90, 1, "demo", "error.demo.one", "one")

	assert.Same(t, err, r.Register(err))
	assert.NotPanics(t, func() { r.Register(err) }, "same key twice is idempotent")
	assert.Equal(t, 1, r.Count())

	key, ok := r.Lookup(900001)
	require.True(t, ok)
	assert.Equal(t, "demo:error.demo.one", key)

	assert.Panics(t, func() {
		r.Register(New(90, 1, "other", "error.other.one", "clash"))
	})
}

func TestRegistry_Lock(t *testing.T) {
	r := NewRegistry()
	r.Lock()
	assert.Panics(t, func() {
		r.Register(New(90, 2, "demo", "error.demo.two", "two"))
	})
}
