package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RootLogger is the process wide base logger. Components derive their own
// loggers from it with zap fields attached.
var RootLogger = newRootLogger()

func newRootLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl := os.Getenv(ED_LOG_LEVEL); len(lvl) > 0 {
		var parsed zapcore.Level
		if err := parsed.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
