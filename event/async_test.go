package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

type ctxKey string

func TestTriggerAsync_RunsHandlers(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry(WithPoolSize(2))
	defer r.Close()

	done := make(chan *Event, 1)
	require.NoError(t, r.Attach("afterSave", types.model, func(ctx context.Context, receiver any, e *Event) error {
		assert.Equal(t, "req-1", ctx.Value(ctxKey("request")))
		assert.NoError(t, ctx.Err())
		done <- e
		return nil
	}))

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey("request"), "req-1"))
	cancel()

	user := &testObject{class: types.user}
	r.TriggerAsync(ctx, user, "afterSave", nil)

	select {
	case e := <-done:
		assert.Equal(t, "afterSave", e.Name)
		assert.Same(t, user, e.Sender)
	case <-time.After(time.Second):
		t.Fatal("async handler did not run")
	}
}

func TestTriggerAsync_LogsErrorsAndPanics(t *testing.T) {
	types := newHierarchy()
	log, logs := logger.NewObservedLogger("yogan", zapcore.DebugLevel)
	r := NewRegistry(WithLogger(log))
	defer r.Close()

	require.NoError(t, r.Attach("fails", types.user, func(ctx context.Context, receiver any, e *Event) error {
		return errors.New("denied")
	}))
	require.NoError(t, r.Attach("panics", types.user, func(ctx context.Context, receiver any, e *Event) error {
		panic("handler bug")
	}))

	r.TriggerAsync(context.Background(), types.user, "fails", nil)
	r.TriggerAsync(context.Background(), types.user, "panics", nil)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("async event trigger failed").Len() == 1 &&
			logs.FilterMessage("async event handler panicked").Len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestTriggerAsync_DroppedAfterClose(t *testing.T) {
	types := newHierarchy()
	log, logs := logger.NewObservedLogger("yogan", zapcore.DebugLevel)
	r := NewRegistry(WithLogger(log))

	var calls atomic.Int32
	require.NoError(t, r.Attach("afterSave", types.user, func(ctx context.Context, receiver any, e *Event) error {
		calls.Add(1)
		return nil
	}))

	r.Close()
	r.Close()
	r.TriggerAsync(context.Background(), types.user, "afterSave", nil)

	assert.Equal(t, 1, logs.FilterMessage("registry closed, async trigger dropped").Len())
	assert.Equal(t, int32(0), calls.Load())

	// synchronous dispatch is unaffected
	require.NoError(t, r.Trigger(context.Background(), types.user, "afterSave", nil))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_ConcurrentAttachAndTrigger(t *testing.T) {
	types := newHierarchy()
	r := newTestRegistry()

	var calls atomic.Int64
	count := func(ctx context.Context, receiver any, e *Event) error {
		calls.Add(1)
		return nil
	}
	require.NoError(t, r.Attach("beforeSave", types.model, count))

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("custom-%d", i)
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				if err := r.Attach(name, types.user, count, WithPrepend()); err != nil {
					return err
				}
				if _, err := r.Detach(name, types.user, count); err != nil {
					return err
				}
			}
			return nil
		})
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				if err := r.Trigger(context.Background(), &testObject{class: types.admin}, "beforeSave", nil); err != nil {
					return err
				}
				r.HasHandlers(name, types.admin)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(800), calls.Load())
	assert.True(t, r.HasHandlers("beforeSave", types.admin))
}
