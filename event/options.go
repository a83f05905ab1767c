package event

import (
	"github.com/KOMKZ/go-yogan-classevent/logger"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Registry
type Option func(*Registry)

// WithResolver sets the namespace resolver used by [typeName, method] handlers
func WithResolver(resolver Resolver) Option {
	return func(r *Registry) {
		r.resolver = resolver
	}
}

// WithTypeOf lets Trigger accept plain values (for example gorm models)
// whose class is known to fn
func WithTypeOf(fn TypeOfFunc) Option {
	return func(r *Registry) {
		r.typeOf = fn
	}
}

// WithLogger sets the registry logger
func WithLogger(l *logger.CtxZapLogger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records trigger metrics; m must be registered on a meter
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithTracer wraps every trigger in a span
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		r.tracer = tracer
	}
}

// WithPoolSize sets the worker pool size used by TriggerAsync
func WithPoolSize(size int) Option {
	return func(r *Registry) {
		if size > 0 {
			r.poolSize = size
		}
	}
}

// WithInterceptor registers a trigger interceptor
func WithInterceptor(interceptor Interceptor) Option {
	return func(r *Registry) {
		if interceptor != nil {
			r.interceptors = append(r.interceptors, interceptor)
		}
	}
}

type attachOptions struct {
	data    any
	prepend bool
}

// AttachOption configures a single Attach call
type AttachOption func(*attachOptions)

// WithData sets the value handlers see as Event.Data
func WithData(data any) AttachOption {
	return func(o *attachOptions) {
		o.data = data
	}
}

// WithPrepend inserts the binding ahead of existing ones, even when the
// type already has a binding for the event
func WithPrepend() AttachOption {
	return func(o *attachOptions) {
		o.prepend = true
	}
}
