package event

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-classevent/logger"
	"go.uber.org/zap"
)

// Next continues to the next interceptor or, innermost, the hierarchy walk
type Next func(ctx context.Context, name string, e *Event) error

// Interceptor wraps a whole trigger. It may observe, decorate or skip it;
// interceptors run in registration order, outermost first.
type Interceptor func(ctx context.Context, name string, e *Event, next Next) error

// LoggingInterceptor logs every trigger at debug level and failures at warn level
func LoggingInterceptor(log *logger.CtxZapLogger) Interceptor {
	return func(ctx context.Context, name string, e *Event, next Next) error {
		sender := "<nil>"
		if e.Sender != nil {
			sender = fmt.Sprintf("%T", e.Sender)
		}
		log.DebugCtx(ctx, "event triggered",
			zap.String("event", name),
			zap.String("sender", sender))

		err := next(ctx, name, e)
		if err != nil {
			log.WarnCtx(ctx, "event trigger failed",
				zap.String("event", name),
				zap.Error(err))
			return err
		}
		if e.Handled {
			log.DebugCtx(ctx, "event handled", zap.String("event", name))
		}
		return nil
	}
}

func buildChain(interceptors []Interceptor, inner Next) Next {
	handler := inner
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		next := handler
		handler = func(ctx context.Context, name string, e *Event) error {
			return interceptor(ctx, name, e, next)
		}
	}
	return handler
}
