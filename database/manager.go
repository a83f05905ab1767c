package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-classevent/event"
	"github.com/KOMKZ/go-yogan-classevent/logger"
	"github.com/KOMKZ/go-yogan-classevent/validator"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Manager holds the named gorm connections
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*gorm.DB
	configs   map[string]Config

	logger         *logger.CtxZapLogger
	hooks          *HookPlugin
	tracerProvider trace.TracerProvider
	plugins        []gorm.Plugin
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithLogger sets the manager logger; SQL logs go through it too
func WithLogger(l *logger.CtxZapLogger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithEventHooks installs a HookPlugin on every connection
func WithEventHooks(registry *event.Registry, typeOf event.TypeOfFunc, opts ...HookOption) ManagerOption {
	return func(m *Manager) {
		if registry != nil && typeOf != nil {
			m.hooks = NewHookPlugin(registry, typeOf, opts...)
		}
	}
}

// WithTracerProvider sets the provider used by connections with trace enabled
func WithTracerProvider(tp trace.TracerProvider) ManagerOption {
	return func(m *Manager) {
		m.tracerProvider = tp
	}
}

// WithPlugin installs an extra gorm plugin on every connection
func WithPlugin(p gorm.Plugin) ManagerOption {
	return func(m *Manager) {
		if p != nil {
			m.plugins = append(m.plugins, p)
		}
	}
}

// NewManager validates configs and opens every connection
func NewManager(configs map[string]Config, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		instances: make(map[string]*gorm.DB),
		configs:   make(map[string]Config),
		logger:    logger.GetLogger("yogan"),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, name := range sortedNames(configs) {
		cfg := configs[name]
		cfg.ApplyDefaults()
		if err := validator.Validate(cfg); err != nil {
			m.closeAll()
			return nil, ErrInvalidConfig.
				WithMsgf("invalid database config %q", name).
				WithData("connection", name).
				Wrap(err)
		}

		db, err := m.open(cfg)
		if err != nil {
			m.closeAll()
			return nil, ErrConnectionFailed.
				WithMsgf("open database %q: %v", name, err).
				WithData("connection", name).
				Wrap(err)
		}

		m.instances[name] = db
		m.configs[name] = cfg
		m.logger.Debug("database connected",
			zap.String("name", name),
			zap.String("driver", cfg.Driver))
	}
	return m, nil
}

func (m *Manager) open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(m.logger, cfg),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	plugins := make([]gorm.Plugin, 0, len(m.plugins)+2)
	if cfg.Trace {
		plugins = append(plugins, NewOtelPlugin(m.tracerProvider).WithTraceSQL(cfg.TraceSQL, cfg.TraceSQLMaxLen))
	}
	if m.hooks != nil {
		plugins = append(plugins, m.hooks)
	}
	plugins = append(plugins, m.plugins...)
	for _, p := range plugins {
		if err := db.Use(p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("use plugin %s: %w", p.Name(), err)
		}
	}
	return db, nil
}

// DB returns the named connection, nil when not configured.
// A nil Manager, as handed out when nothing is configured, has no connections.
func (m *Manager) DB(name string) *gorm.DB {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// Lookup returns the named connection or ErrUnknownConnection
func (m *Manager) Lookup(name string) (*gorm.DB, error) {
	if db := m.DB(name); db != nil {
		return db, nil
	}
	return nil, ErrUnknownConnection.
		WithMsgf("database connection %q is not configured", name).
		WithData("connection", name)
}

// Names returns the configured connection names, sorted
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedNames(m.instances)
}

// Ping checks every connection
func (m *Manager) Ping(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range sortedNames(m.instances) {
		sqlDB, err := m.instances[name].DB()
		if err != nil {
			return fmt.Errorf("get sql.DB for %s: %w", name, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return ErrConnectionFailed.WithMsgf("ping database %q: %v", name, err).Wrap(err)
		}
	}
	return nil
}

// Close closes every connection; it is safe on a nil Manager
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeAll()
	return nil
}

// Shutdown implements do.Shutdowner for the DI container
func (m *Manager) Shutdown() error {
	return m.Close()
}

func (m *Manager) closeAll() {
	for name, db := range m.instances {
		sqlDB, err := db.DB()
		if err != nil {
			m.logger.Error("get sql.DB failed", zap.String("name", name), zap.Error(err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			m.logger.Error("close database failed", zap.String("name", name), zap.Error(err))
			continue
		}
		m.logger.Debug("database closed", zap.String("name", name))
	}
	m.instances = make(map[string]*gorm.DB)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
