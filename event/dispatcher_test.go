package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrigger_WalksUpTheHierarchy(t *testing.T) {
	types := newHierarchy()
	rec := &recorder{}
	r := newTestRegistry()

	require.NoError(t, r.Attach("beforeSave", types.model, rec.handler("model")))
	require.NoError(t, r.Attach("beforeSave", types.user, rec.handler("user")))
	require.NoError(t, r.Attach("beforeSave", types.user, rec.handler("user-first"), WithPrepend()))

	admin := &testObject{class: types.admin}
	require.NoError(t, r.Trigger(context.Background(), admin, "beforeSave", nil))

	assert.Equal(t, []string{"user-first", "user", "model"}, rec.list())
}

func TestTrigger_DoesNotFanOutDownward(t *testing.T) {
	types := newHierarchy()
	rec := &recorder{}
	r := newTestRegistry()

	require.NoError(t, r.Attach("beforeSave", types.model, rec.handler("model")))
	require.NoError(t, r.Attach("beforeSave", types.user, rec.handler("user")))

	require.NoError(t, r.Trigger(context.Background(), types.model, "beforeSave", nil))
	assert.Equal(t, []string{"model"}, rec.list())
}

func TestTrigger_NoBindingsIsNoop(t *testing.T) {
	r := newTestRegistry()

	assert.NoError(t, r.Trigger(context.Background(), nil, "beforeSave", nil))
	assert.NoError(t, r.Trigger(context.Background(), struct{}{}, "beforeSave", nil))
}

func TestTrigger_FreshRecordDefaults(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry()
	user := &testObject{class: types.user}

	var seen *Event
	require.NoError(t, r.Attach("beforeSave", types.user, func(ctx context.Context, receiver any, e *Event) error {
		seen = e
		return nil
	}))
	require.NoError(t, r.Trigger(context.Background(), user, "beforeSave", nil))

	require.NotNil(t, seen)
	assert.Equal(t, "beforeSave", seen.Name)
	assert.Same(t, user, seen.Sender)
	assert.False(t, seen.Handled)
	assert.Nil(t, seen.Data)
	assert.NotNil(t, seen.Params)
	assert.Empty(t, seen.Params)
}

func TestTrigger_ClassLevelLeavesSenderUnset(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry()

	var sender any = "unset"
	require.NoError(t, r.Attach("boot", types.model, func(ctx context.Context, receiver any, e *Event) error {
		sender = e.Sender
		assert.Same(t, types.model, receiver)
		return nil
	}))
	require.NoError(t, r.Trigger(context.Background(), types.user, "boot", nil))
	assert.Nil(t, sender)
}

func TestTrigger_ReusedRecordIsReset(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry()
	user := &testObject{class: types.user}
	preset := &testObject{class: types.model, label: "preset"}

	calls := 0
	require.NoError(t, r.Attach("afterSave", types.user, func(ctx context.Context, receiver any, e *Event) error {
		calls++
		assert.False(t, e.Handled)
		assert.Equal(t, "afterSave", e.Name)
		return nil
	}))

	e := NewEvent(map[string]any{"id": 7})
	e.Name = "stale"
	e.Handled = true
	e.Sender = preset

	require.NoError(t, r.Trigger(context.Background(), user, "afterSave", e))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "afterSave", e.Name)
	assert.Same(t, preset, e.Sender)
	assert.Equal(t, 7, e.Params["id"])
}

func TestTrigger_HandledStopsTheWalk(t *testing.T) {
	types := newHierarchy()
	rec := &recorder{}
	r := newTestRegistry()

	require.NoError(t, r.Attach("beforeDelete", types.model, rec.handler("model")))
	require.NoError(t, r.Attach("beforeDelete", types.user, rec.handler("user-second")))
	require.NoError(t, r.Attach("beforeDelete", types.user, func(ctx context.Context, receiver any, e *Event) error {
		e.StopPropagation()
		return nil
	}, WithPrepend()))

	e := NewEvent(nil)
	require.NoError(t, r.Trigger(context.Background(), types.admin, "beforeDelete", e))
	assert.True(t, e.Handled)
	assert.Empty(t, rec.list())
}

func TestTrigger_StopPropagationError(t *testing.T) {
	types := newHierarchy()
	rec := &recorder{}
	r := newTestRegistry()

	require.NoError(t, r.Attach("beforeDelete", types.model, rec.handler("model")))
	require.NoError(t, r.Attach("beforeDelete", types.user, func(ctx context.Context, receiver any, e *Event) error {
		return ErrStopPropagation
	}))

	e := NewEvent(nil)
	assert.NoError(t, r.Trigger(context.Background(), types.user, "beforeDelete", e))
	assert.True(t, e.Handled)
	assert.Empty(t, rec.list())
}

func TestTrigger_HandlerErrorAborts(t *testing.T) {
	types := newHierarchy()
	rec := &recorder{}
	r := newTestRegistry()
	errBoom := errors.New("boom")

	require.NoError(t, r.Attach("beforeSave", types.model, rec.handler("model")))
	require.NoError(t, r.Attach("beforeSave", types.user, func(ctx context.Context, receiver any, e *Event) error {
		return errBoom
	}))

	err := r.Trigger(context.Background(), types.user, "beforeSave", nil)
	assert.Same(t, errBoom, err)
	assert.Empty(t, rec.list())
}

func TestTrigger_DataPerBinding(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry()

	var seen []any
	capture := func(ctx context.Context, receiver any, e *Event) error {
		seen = append(seen, e.Data)
		return nil
	}
	require.NoError(t, r.Attach("afterFind", types.user, capture, WithData("user-data")))
	require.NoError(t, r.Attach("afterFind", types.model, capture))

	require.NoError(t, r.Trigger(context.Background(), types.user, "afterFind", nil))
	assert.Equal(t, []any{"user-data", nil}, seen)
}

func TestTrigger_InvalidTarget(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry()
	require.NoError(t, r.Attach("beforeSave", types.model, handlerA))

	assert.ErrorIs(t, r.Trigger(context.Background(), nil, "beforeSave", nil), ErrInvalidTarget)
	assert.ErrorIs(t, r.Trigger(context.Background(), struct{}{}, "beforeSave", nil), ErrInvalidTarget)
	assert.ErrorIs(t, r.Trigger(context.Background(), &testObject{}, "beforeSave", nil), ErrInvalidTarget)

	var missingType *testType
	var missingObject *testObject
	assert.ErrorIs(t, r.Trigger(context.Background(), missingType, "beforeSave", nil), ErrInvalidTarget)
	assert.ErrorIs(t, r.Trigger(context.Background(), missingObject, "beforeSave", nil), ErrInvalidTarget)
}

type plainModel struct{ ID int }

func TestTrigger_TypeOfLookup(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry(WithTypeOf(func(v any) (TypeHandle, bool) {
		if _, ok := v.(*plainModel); ok {
			return types.user, true
		}
		return nil, false
	}))

	var sender any
	require.NoError(t, r.Attach("beforeSave", types.model, func(ctx context.Context, receiver any, e *Event) error {
		sender = e.Sender
		return nil
	}))

	m := &plainModel{ID: 1}
	require.NoError(t, r.Trigger(context.Background(), m, "beforeSave", nil))
	assert.Same(t, m, sender)

	assert.ErrorIs(t, r.Trigger(context.Background(), plainModel{}, "beforeSave", nil), ErrInvalidTarget)
}

func TestTrigger_AttachDuringDispatchAffectsNextLevelOnly(t *testing.T) {
	types := newHierarchy()
	rec := &recorder{}
	r := newTestRegistry()

	attached := false
	require.NoError(t, r.Attach("beforeSave", types.user, func(ctx context.Context, receiver any, e *Event) error {
		if !attached {
			attached = true
			require.NoError(t, r.Attach("beforeSave", types.user, rec.handler("late-user"), WithPrepend()))
			require.NoError(t, r.Attach("beforeSave", types.model, rec.handler("late-model")))
		}
		return nil
	}))

	require.NoError(t, r.Trigger(context.Background(), types.user, "beforeSave", nil))
	assert.Equal(t, []string{"late-model"}, rec.list())

	require.NoError(t, r.Trigger(context.Background(), types.user, "beforeSave", nil))
	assert.Equal(t, []string{"late-model", "late-user", "late-model"}, rec.list())
}

func countCall(ctx context.Context, receiver any, e *Event) error {
	*receiver.(*int)++
	return nil
}

func TestTrigger_DetachDuringDispatchKeepsLevelSnapshot(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry()

	calls := 0
	require.NoError(t, r.Attach("beforeSave", types.user, Bound(countCall, &calls)))
	require.NoError(t, r.Attach("beforeSave", types.user, func(ctx context.Context, receiver any, e *Event) error {
		_, err := r.Detach("beforeSave", types.user, countCall)
		return err
	}, WithPrepend()))

	require.NoError(t, r.Trigger(context.Background(), types.user, "beforeSave", nil))
	assert.Equal(t, 1, calls)
	assert.Len(t, r.bindingsOf("beforeSave"), 1)

	require.NoError(t, r.Trigger(context.Background(), types.user, "beforeSave", nil))
	assert.Equal(t, 1, calls)
}

func TestTrigger_ReentrantTrigger(t *testing.T) {
	types := newHierarchy()
	rec := &recorder{}
	r := newTestRegistry()

	require.NoError(t, r.Attach("afterSave", types.model, rec.handler("audit")))
	require.NoError(t, r.Attach("beforeSave", types.user, func(ctx context.Context, receiver any, e *Event) error {
		return r.Trigger(ctx, types.user, "afterSave", nil)
	}))

	require.NoError(t, r.Trigger(context.Background(), types.user, "beforeSave", nil))
	assert.Equal(t, []string{"audit"}, rec.list())
}

func TestTrigger_PanicPropagates(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry()
	require.NoError(t, r.Attach("beforeSave", types.user, func(ctx context.Context, receiver any, e *Event) error {
		panic("handler bug")
	}))

	assert.PanicsWithValue(t, "handler bug", func() {
		_ = r.Trigger(context.Background(), types.user, "beforeSave", nil)
	})

	// the registry stays usable
	assert.True(t, r.HasHandlers("beforeSave", types.user))
}
