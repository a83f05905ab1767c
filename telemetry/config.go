package telemetry

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Exporter kinds
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterNoop   = "noop"
)

// Config is the "telemetry" section
type Config struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Exporter    string `mapstructure:"exporter"` // stdout | otlp | noop
	Endpoint    string `mapstructure:"endpoint"` // otlp only, host:port
	Insecure    bool   `mapstructure:"insecure"`
	PrettyPrint bool   `mapstructure:"pretty_print"`
}

// DefaultConfig disables export
func DefaultConfig() Config {
	return Config{
		ServiceName: "yogan-classevent",
		Exporter:    ExporterNoop,
	}
}

// Validate implements validator.Validatable
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServiceName, validation.Required),
		validation.Field(&c.Exporter, validation.Required,
			validation.In(ExporterStdout, ExporterOTLP, ExporterNoop)),
		validation.Field(&c.Endpoint,
			validation.When(c.Exporter == ExporterOTLP, validation.Required)),
	)
}
