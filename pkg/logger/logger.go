package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stocksy/config"
)

// New builds a zap logger from the logger section of the config.
// Unknown levels fall back to info.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Encoding == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true

	return zc.Build()
}
