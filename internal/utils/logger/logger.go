package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.SugaredLogger

// Init sets the global Zap logger once.
func Init(z *zap.SugaredLogger) { global = z }

// Logger returns the process-wide sugared logger. It must return a non-nil
// *SugaredLogger, so before Init it falls back to a no-op logger.
func Logger() *zap.SugaredLogger {
	if global == nil {
		return zap.NewNop().Sugar()
	}
	return global
}

// InitForLevel builds a console logger at the requested level and installs it
// as the global logger. Level names follow zap ("debug", "info", "warn",
// "error"); an empty level means "info".
func InitForLevel(level string) error {
	if level == "" {
		level = "info"
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.DisableStacktrace = true

	z, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	Init(z.Sugar())
	return nil
}
