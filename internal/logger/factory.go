package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

// Environment variables read by NewFromEnv.
const (
	EnvMode   = "FPSVIEW_ENV"
	EnvLevel  = "FPSVIEW_LOG_LEVEL"
	EnvFormat = "FPSVIEW_LOG_FORMAT"
)

// NewFromEnv creates a logger based on environment variables
func NewFromEnv() (Logger, error) {
	return NewZapLogger(ConfigFromEnv(DefaultConfig()))
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &ZapLogger{zap: zap.NewNop()}
}

// ConfigFromEnv overlays environment settings on base.
func ConfigFromEnv(base Config) Config {
	cfg := base

	if strings.ToLower(os.Getenv(EnvMode)) == "development" {
		cfg = DevelopmentConfig()
	}

	if level := os.Getenv(EnvLevel); level != "" {
		cfg.Level = level
	}

	if format := os.Getenv(EnvFormat); format != "" {
		cfg.Format = format
	}

	return cfg
}
