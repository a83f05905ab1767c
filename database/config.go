// Package database opens gorm connections and turns model lifecycle
// callbacks into class-level events.
package database

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Supported drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is one entry of database.connections
type Config struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	EnableLog       bool          `mapstructure:"enable_log"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	EnableAudit     bool          `mapstructure:"enable_audit"` // log every statement at debug level

	// Trace installs the OpenTelemetry plugin; TraceSQL adds the statement to spans
	Trace          bool `mapstructure:"trace"`
	TraceSQL       bool `mapstructure:"trace_sql"`
	TraceSQLMaxLen int  `mapstructure:"trace_sql_max_len"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Driver:          DriverMySQL,
		MaxOpenConns:    100,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		EnableLog:       true,
		SlowThreshold:   200 * time.Millisecond,
		TraceSQLMaxLen:  1000,
	}
}

// ApplyDefaults fills zero fields
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Driver == "" {
		c.Driver = d.Driver
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = d.MaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = d.MaxIdleConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = d.ConnMaxLifetime
	}
	if c.SlowThreshold <= 0 {
		c.SlowThreshold = d.SlowThreshold
	}
	if c.TraceSQLMaxLen <= 0 {
		c.TraceSQLMaxLen = d.TraceSQLMaxLen
	}
}

// Validate checks the connection settings
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(DriverMySQL, DriverPostgres, DriverSQLite)),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.MaxOpenConns, validation.Min(0)),
		validation.Field(&c.MaxIdleConns, validation.Min(0)),
	)
}
