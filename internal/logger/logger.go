package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger. Production environments get JSON output,
// everything else gets the development console encoder.
func New(level, environment string) (*zap.Logger, error) {
	var config zap.Config
	if strings.EqualFold(environment, "production") {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config.Build()
}

// parseLevel falls back to info for unknown levels.
func parseLevel(level string) zapcore.Level {
	if strings.EqualFold(level, "warning") {
		level = "warn"
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}
