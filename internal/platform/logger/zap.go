// File: internal/platform/logger/zap.go
package logger

import (
	"strings"

	"nujum_backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New initializes a new Zap logger based on the application configuration.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	// Set log level
	logLevel := strings.ToLower(cfg.LogLevel)
	level := zapcore.InfoLevel // Default level
	switch logLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	case "dpanic":
		level = zapcore.DPanicLevel
	case "panic":
		level = zapcore.PanicLevel
	case "fatal":
		level = zapcore.FatalLevel
	}

	if cfg.GinMode == "release" {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else { // "debug" or "test"
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)

	// Output format from config
	logFormat := strings.ToLower(cfg.LogFormat)
	if logFormat == "json" {
		zapConfig.Encoding = "json"
	} else {
		zapConfig.Encoding = "console"
	}

	return zapConfig.Build()
}
