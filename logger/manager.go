package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager creates and caches one CtxZapLogger per module
type Manager struct {
	cfg     ManagerConfig
	mu      sync.RWMutex
	loggers map[string]*CtxZapLogger
	writers []*lumberjack.Logger
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// NewManager creates an independent manager; zero fields take defaults
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		cfg:     cfg,
		loggers: make(map[string]*CtxZapLogger),
	}
}

// InitManager installs the global manager (first call wins)
func InitManager(cfg ManagerConfig) {
	managerOnce.Do(func() {
		globalManager = NewManager(cfg)
	})
}

// Config returns the effective configuration
func (m *Manager) Config() ManagerConfig {
	return m.cfg
}

// GetLogger returns the logger bound to moduleName, creating it on first use.
// Every entry carries a module field.
func (m *Manager) GetLogger(moduleName string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[moduleName]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[moduleName]; ok {
		return l
	}

	base := m.build(moduleName).
		With(zap.String("module", moduleName)).
		WithOptions(zap.AddCallerSkip(1))

	l := &CtxZapLogger{base: base, module: moduleName, config: &m.cfg}
	m.loggers[moduleName] = l
	return l
}

func (m *Manager) build(moduleName string) *zap.Logger {
	encoder := newEncoder(m.cfg.Encoding)
	level := ParseLevel(m.cfg.Level)

	var cores []zapcore.Core
	if m.cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}
	if m.cfg.EnableFile {
		w := m.fileWriter(moduleName)
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(w), level))
	}

	var opts []zap.Option
	if m.cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

// fileWriter must be called with m.mu held
func (m *Manager) fileWriter(moduleName string) *lumberjack.Logger {
	dir := filepath.Join(m.cfg.BaseLogDir, moduleName)
	_ = os.MkdirAll(dir, 0o755)

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, moduleName+".log"),
		MaxSize:    m.cfg.MaxSize,
		MaxBackups: m.cfg.MaxBackups,
		MaxAge:     m.cfg.MaxAge,
		Compress:   m.cfg.Compress,
		LocalTime:  true,
	}
	m.writers = append(m.writers, w)
	return w
}

// CloseAll flushes every logger and closes rotated files
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.loggers {
		_ = l.base.Sync()
	}
	for _, w := range m.writers {
		_ = w.Close()
	}
	m.loggers = make(map[string]*CtxZapLogger)
	m.writers = nil
}

func newEncoder(encoding string) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if encoding == "console" {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

// GetLogger returns a module logger from the global manager,
// initialising it with defaults when nobody called InitManager.
func GetLogger(moduleName string) *CtxZapLogger {
	InitManager(DefaultManagerConfig())
	return globalManager.GetLogger(moduleName)
}

// CloseAll closes the global manager
func CloseAll() {
	if globalManager == nil {
		return
	}
	globalManager.CloseAll()
}

// MustValidate panics on an invalid configuration; used at process start
func MustValidate(cfg ManagerConfig) {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("logger config: %v", err))
	}
}
