package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the production zap logger at the given level name
// ("debug", "info", "warn", "error"). Unknown names fall back to info.
func NewLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	return config.Build()
}
