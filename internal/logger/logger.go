// Package logger owns the process-wide zap logger and its otelzap wrapper.
package logger

import (
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// DefaultConfig returns the production zap config. Logs go to stderr; stdout
// carries command output.
func DefaultConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.Encoding = "json"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// InitializeWithConfig builds the global logger and installs it for both zap
// and otelzap, so otelzap.Ctx(ctx) logs through it.
func InitializeWithConfig(cfg zap.Config) error {
	built, err := cfg.Build()
	if err != nil {
		return err
	}
	log = built
	zap.ReplaceGlobals(log)
	otelzap.ReplaceGlobals(otelzap.New(log))
	return nil
}

// Configure applies a level name and encoding on top of DefaultConfig.
func Configure(level, encoding string) error {
	cfg := DefaultConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if encoding != "" {
		cfg.Encoding = encoding
	}
	if encoding == "console" {
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return InitializeWithConfig(cfg)
}

// L returns the global logger, building the default one on first use.
func L() *zap.Logger {
	if log == nil {
		if err := InitializeWithConfig(DefaultConfig()); err != nil {
			log = zap.NewNop()
		}
	}
	return log
}

// Sync flushes buffered entries. Call it before exiting.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
