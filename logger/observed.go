package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewObservedLogger records entries in memory for assertions in tests.
// The returned logger behaves like a manager-built one with default config.
func NewObservedLogger(module string, level zapcore.Level) (*CtxZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	cfg := DefaultManagerConfig()
	return &CtxZapLogger{
		base:   zap.New(core).With(zap.String("module", module)),
		module: module,
		config: &cfg,
	}, logs
}
