// Package logging builds the process-wide zap logger and hands out per-category children.
// Every component logs under one of the categories below so a run can be followed end to end.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config loading
	CategoryPortal   Category = "portal"   // Sign-on, report page, table discovery
	CategoryBrowser  Category = "browser"  // Chrome lifecycle
	CategoryNotify   Category = "notify"   // LINE delivery
	CategoryPipeline Category = "pipeline" // Run orchestration and outcomes
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	File   string // optional; appended to alongside stderr
}

// ParseLevel maps a level name to a zap level. Unknown names mean info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// New builds a logger writing to stderr and, when opts.File is set, to that file too.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(opts.Format, "json") {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		cfg.Development = false
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// For returns the child logger for category. A nil parent yields a no-op logger.
func For(parent *zap.Logger, category Category) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.Named(string(category))
}

// Timer helps measure operation duration
type Timer struct {
	log   *zap.Logger
	op    string
	start time.Time
}

// StartTimer begins timing an operation
func StartTimer(log *zap.Logger, operation string) *Timer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Timer{log: log, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.log.Debug(t.op+" completed", zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		t.log.Warn(t.op+" was slow", zap.Duration("elapsed", elapsed), zap.Duration("threshold", threshold))
	} else {
		t.log.Debug(t.op+" completed", zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
