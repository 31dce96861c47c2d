package logger

import corelogger "github.com/kilianp07/relplan/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

// Config selects the minimum level emitted by loggers returned from New.
type Config struct {
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// SetDefaults fills an empty level with "info".
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// New returns a Logger for the given component. The output format is chosen
// from the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
