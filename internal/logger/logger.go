// Package logger builds the process-wide zap logger from configuration.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/segyhp/banquito/internal/config"
)

// New builds a zap logger using LOG_LEVEL and LOG_FORMAT
func New(cfg config.LoggingConfig, opts ...zap.Option) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		zapConfig.Encoding = "json"
	case "console", "text":
		zapConfig.Encoding = "console"
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.Format)
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.LevelKey = "log_level"
	zapConfig.EncoderConfig.MessageKey = "message"
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.StacktraceKey = ""
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapConfig.OutputPaths = []string{"stdout"}

	return zapConfig.Build(opts...)
}

// ParseLevel maps a LOG_LEVEL string onto a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "panic":
		return zap.PanicLevel
	default:
		return zap.InfoLevel
	}
}

// Must is New for main packages. A logger that cannot be built is fatal.
func Must(cfg config.LoggingConfig, opts ...zap.Option) *zap.Logger {
	log, err := New(cfg, opts...)
	if err != nil {
		zap.NewExample(opts...).Fatal("failed to build logger", zap.Error(err))
		return nil
	}
	zap.ReplaceGlobals(log)
	return log
}
