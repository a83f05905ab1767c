package event

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Trigger dispatches the event name on target.
//
// target is a TypeHandle (class-level trigger) or an instance: a value
// implementing Instance, or one known to the WithTypeOf lookup. Handlers
// bound to the target's type run first, in binding order, then those of
// each ancestor. The walk stops once e.Handled is set. A handler error
// aborts the walk and is returned as is.
//
// e may be nil; a fresh record is created. A reused record has its Name
// and Handled reset. Handlers are called synchronously on the caller's
// goroutine and panics are not recovered.
func (r *Registry) Trigger(ctx context.Context, target any, name string, e *Event) error {
	if !r.hasList(name) {
		return nil
	}
	if e == nil {
		e = NewEvent(nil)
	}
	e.Handled = false
	e.Name = name

	start, instance, err := r.resolveTarget(target)
	if err != nil {
		return err
	}
	if instance && e.Sender == nil {
		e.Sender = target
	}

	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.Start(ctx, "event.trigger "+name,
			trace.WithAttributes(attribute.String("event.name", name)))
		defer span.End()
	}

	begin := time.Now()
	invoked := 0
	walk := func(ctx context.Context, name string, e *Event) error {
		n, err := r.walk(ctx, start, name, e)
		invoked += n
		return err
	}

	if chain := r.interceptorChain(); len(chain) > 0 {
		err = buildChain(chain, walk)(ctx, name, e)
	} else {
		err = walk(ctx, name, e)
	}

	if r.metrics != nil {
		r.metrics.RecordTrigger(ctx, name, invoked, e.Handled, err, time.Since(begin))
	}
	if span != nil {
		span.SetAttributes(
			attribute.Int("event.invocations", invoked),
			attribute.Bool("event.handled", e.Handled))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	return err
}

func (r *Registry) walk(ctx context.Context, start TypeHandle, name string, e *Event) (int, error) {
	invoked := 0
	for level := start; !isNilHandle(level); level = level.Parent() {
		for _, b := range r.snapshot(name, level) {
			e.Data = b.Data
			err := b.Handler.invoke(ctx, e)
			invoked++
			if errors.Is(err, ErrStopPropagation) {
				e.Handled = true
				err = nil
			}
			if err != nil {
				return invoked, err
			}
			if e.Handled {
				return invoked, nil
			}
		}
	}
	return invoked, nil
}

// resolveTarget returns the start type and whether target is an instance
func (r *Registry) resolveTarget(target any) (TypeHandle, bool, error) {
	if isNilValue(target) {
		return nil, false, ErrInvalidTarget.WithMsgf("invalid event target: nil %T", target)
	}
	switch v := target.(type) {
	case TypeHandle:
		return v, false, nil
	case Instance:
		if t := v.ClassType(); !isNilHandle(t) {
			return t, true, nil
		}
		return nil, false, ErrInvalidTarget.
			WithMsgf("invalid event target: %T has no class type", target)
	}
	if r.typeOf != nil {
		if t, ok := r.typeOf(target); ok && !isNilHandle(t) {
			return t, true, nil
		}
	}
	return nil, false, ErrInvalidTarget.
		WithMsgf("invalid event target: %T is neither a type nor an instance", target)
}

// TriggerAsync runs Trigger on a worker pool. Errors and panics are logged.
// The context keeps its values but not its cancellation.
func (r *Registry) TriggerAsync(ctx context.Context, target any, name string, e *Event) {
	if r.closed.Load() {
		r.logger.WarnCtx(ctx, "registry closed, async trigger dropped", zap.String("event", name))
		return
	}
	pool, err := r.asyncPool()
	if err != nil {
		r.logger.ErrorCtx(ctx, "event worker pool unavailable",
			zap.String("event", name),
			zap.Error(err))
		return
	}

	asyncCtx := context.WithoutCancel(ctx)
	if err := pool.Submit(func() { r.runAsync(asyncCtx, target, name, e) }); err != nil {
		r.logger.ErrorCtx(ctx, "async event submit failed",
			zap.String("event", name),
			zap.Error(err))
	}
}

func (r *Registry) runAsync(ctx context.Context, target any, name string, e *Event) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorCtx(ctx, "async event handler panicked",
				zap.String("event", name),
				zap.Any("panic", p))
		}
	}()
	if err := r.Trigger(ctx, target, name, e); err != nil {
		r.logger.ErrorCtx(ctx, "async event trigger failed",
			zap.String("event", name),
			zap.Error(err))
	}
}

func (r *Registry) asyncPool() (*ants.Pool, error) {
	r.poolOnce.Do(func() {
		r.pool, r.poolErr = ants.NewPool(r.poolSize)
	})
	if r.pool == nil && r.poolErr == nil {
		return nil, ants.ErrPoolClosed
	}
	return r.pool, r.poolErr
}

// Closed reports whether Close has been called
func (r *Registry) Closed() bool {
	return r.closed.Load()
}

// Close releases the async worker pool. Later async triggers are dropped;
// synchronous Trigger keeps working.
func (r *Registry) Close() {
	if r.closed.Swap(true) {
		return
	}
	// Settles poolOnce so no pool can be created after Close.
	r.poolOnce.Do(func() {})
	if r.pool != nil {
		r.pool.Release()
	}
	r.logger.Debug("event registry closed")
}
