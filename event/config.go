package event

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is the "event" configuration section
type Config struct {
	Enabled  bool `mapstructure:"enabled"`
	PoolSize int  `mapstructure:"pool_size"`
	Metrics  bool `mapstructure:"metrics"`
	// LogDispatch logs every trigger; it is on whenever the logger is at debug level
	LogDispatch bool            `mapstructure:"log_dispatch"`
	Bindings    []BindingConfig `mapstructure:"bindings"`
}

// BindingConfig declares a binding attached when the component starts.
// Handler takes any form Normalize accepts that can be written in a config
// file: a method name, a [type, method] pair or a {type, method} map.
type BindingConfig struct {
	Event   string `mapstructure:"event"`
	Type    string `mapstructure:"type"`
	Handler any    `mapstructure:"handler"`
	Prepend bool   `mapstructure:"prepend"`
	Data    any    `mapstructure:"data"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		PoolSize: defaultPoolSize,
	}
}

// Validate checks the section
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PoolSize, validation.Min(1)),
		validation.Field(&c.Bindings),
	)
}

// Validate checks one declared binding
func (b BindingConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Event, validation.Required),
		validation.Field(&b.Type, validation.Required),
		validation.Field(&b.Handler, validation.Required),
	)
}
