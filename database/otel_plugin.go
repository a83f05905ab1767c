package database

import (
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	instrumentationName = "github.com/KOMKZ/go-yogan-classevent/database"
	spanInstanceKey     = "otel:span"
)

// OtelPlugin wraps gorm operations in client spans
type OtelPlugin struct {
	tracer    trace.Tracer
	traceSQL  bool
	sqlMaxLen int
}

// NewOtelPlugin creates the plugin; a nil provider uses the global one
func NewOtelPlugin(tp trace.TracerProvider) *OtelPlugin {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OtelPlugin{tracer: tp.Tracer(instrumentationName), sqlMaxLen: 1000}
}

// WithTraceSQL records the statement text on spans
func (p *OtelPlugin) WithTraceSQL(enabled bool, maxLen int) *OtelPlugin {
	p.traceSQL = enabled
	if maxLen > 0 {
		p.sqlMaxLen = maxLen
	}
	return p
}

// Name implements gorm.Plugin
func (p *OtelPlugin) Name() string {
	return "otel"
}

// Initialize registers span callbacks around each operation
func (p *OtelPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().Before("gorm:before_create").Register("otel:before_create", p.before("create")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:after_create").Register("otel:after_create", p.after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:before_update").Register("otel:before_update", p.before("update")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:after_update").Register("otel:after_update", p.after); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:before_delete").Register("otel:before_delete", p.before("delete")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:after_delete").Register("otel:after_delete", p.after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("query")); err != nil {
		return err
	}
	return cb.Query().After("gorm:after_query").Register("otel:after_query", p.after)
}

func (p *OtelPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		name := "gorm." + operation
		if table := db.Statement.Table; table != "" {
			name += " " + table
		}
		ctx, span := p.tracer.Start(db.Statement.Context, name,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", db.Dialector.Name()),
				attribute.String("db.operation", operation),
			))
		db.Statement.Context = ctx
		db.InstanceSet(spanInstanceKey, span)
	}
}

func (p *OtelPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(spanInstanceKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if table := db.Statement.Table; table != "" {
		span.SetAttributes(attribute.String("db.table", table))
	}
	if p.traceSQL {
		if sql := strings.TrimSpace(db.Statement.SQL.String()); sql != "" {
			if len(sql) > p.sqlMaxLen {
				sql = sql[:p.sqlMaxLen] + "..."
			}
			span.SetAttributes(attribute.String("db.statement", sql))
		}
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}
}
