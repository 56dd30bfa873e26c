package config

import "timesheetbot/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // optional extra output path
}

// Options converts to the logging package's options.
func (c LoggingConfig) Options() logging.Options {
	return logging.Options{Level: c.Level, Format: c.Format, File: c.File}
}
