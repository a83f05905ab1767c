package event

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInterceptor_Order(t *testing.T) {
	types := newHierarchy()
	rec := &recorder{}
	wrap := func(label string) Interceptor {
		return func(ctx context.Context, name string, e *Event, next Next) error {
			rec.add(label + ":in")
			err := next(ctx, name, e)
			rec.add(label + ":out")
			return err
		}
	}

	r := newTestRegistry(WithInterceptor(wrap("outer")))
	r.Use(wrap("inner"))
	require.NoError(t, r.Attach("beforeSave", types.user, rec.handler("handler")))

	require.NoError(t, r.Trigger(context.Background(), types.user, "beforeSave", nil))
	assert.Equal(t, []string{"outer:in", "inner:in", "handler", "inner:out", "outer:out"}, rec.list())
}

func TestInterceptor_CanSkip(t *testing.T) {
	types := newHierarchy()
	rec := &recorder{}
	r := newTestRegistry(WithInterceptor(func(ctx context.Context, name string, e *Event, next Next) error {
		if name == "muted" {
			return nil
		}
		return next(ctx, name, e)
	}))
	require.NoError(t, r.Attach("muted", types.user, rec.handler("muted")))
	require.NoError(t, r.Attach("loud", types.user, rec.handler("loud")))

	require.NoError(t, r.Trigger(context.Background(), types.user, "muted", nil))
	require.NoError(t, r.Trigger(context.Background(), types.user, "loud", nil))
	assert.Equal(t, []string{"loud"}, rec.list())
}

func TestInterceptor_NotCalledWithoutBindings(t *testing.T) {
	called := false
	r := newTestRegistry(WithInterceptor(func(ctx context.Context, name string, e *Event, next Next) error {
		called = true
		return next(ctx, name, e)
	}))

	require.NoError(t, r.Trigger(context.Background(), newHierarchy().user, "beforeSave", nil))
	assert.False(t, called)
}

func TestLoggingInterceptor(t *testing.T) {
	types := newHierarchy()
	log, logs := logger.NewObservedLogger("event", zapcore.DebugLevel)
	r := newTestRegistry(WithInterceptor(LoggingInterceptor(log)))

	errDenied := errors.New("denied")
	require.NoError(t, r.Attach("beforeSave", types.user, stopHandler))
	require.NoError(t, r.Attach("beforeDelete", types.user, func(ctx context.Context, receiver any, e *Event) error {
		return errDenied
	}))

	require.NoError(t, r.Trigger(context.Background(), &testObject{class: types.user}, "beforeSave", nil))
	assert.ErrorIs(t, r.Trigger(context.Background(), types.user, "beforeDelete", nil), errDenied)

	assert.Equal(t, 2, logs.FilterMessage("event triggered").Len())
	assert.Equal(t, 1, logs.FilterMessage("event handled").Len())

	failed := logs.FilterMessage("event trigger failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, "beforeDelete", failed[0].ContextMap()["event"])
}

func stopHandler(ctx context.Context, receiver any, e *Event) error {
	return ErrStopPropagation
}
