// Package logger provides structured logging using Zap.
package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	level = zap.NewAtomicLevel()
	once  sync.Once
)

// Init initializes the global logger for the given environment:
//
//	production  JSON to stderr, info and above
//	cli         plain messages to stderr, warnings and above
//	test        discards everything
//	otherwise   colored console output, debug and above
func Init(env string) {
	once.Do(func() {
		var cfg zap.Config

		switch env {
		case "test":
			sugar = zap.NewNop().Sugar()
			return
		case "production":
			cfg = zap.NewProductionConfig()
			level.SetLevel(zapcore.InfoLevel)
		case "cli":
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.TimeKey = ""
			cfg.EncoderConfig.CallerKey = ""
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			cfg.DisableStacktrace = true
			level.SetLevel(zapcore.WarnLevel)
		default:
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			level.SetLevel(zapcore.DebugLevel)
		}
		cfg.Level = level

		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// SetLevel changes the minimum level at runtime. An empty name keeps the
// level chosen by Init.
func SetLevel(name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	return level.UnmarshalText([]byte(strings.ToLower(name)))
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Named returns a child of the global logger scoped to a component,
// e.g. "cloud" or "coordinator".
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
