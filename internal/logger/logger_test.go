package logger

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Levels(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	logger := &ZapLogger{zap: zap.New(core)}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	logs := recorded.All()
	if len(logs) != 4 {
		t.Fatalf("Expected 4 logs, got %d", len(logs))
	}

	expected := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, entry := range logs {
		if entry.Level != expected[i] {
			t.Errorf("Log %d: expected level %v, got %v", i, expected[i], entry.Level)
		}
	}
}

func TestZapLogger_Fields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := &ZapLogger{zap: zap.New(core)}

	logger.Info("pose",
		F("frame", "base_link"),
		F("seq", 42),
		F("yaw", 1.5),
		F("found", true),
		F("age", time.Second),
		F("err", errors.New("boom")),
	)

	logs := recorded.All()
	if len(logs) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(logs))
	}
	ctx := logs[0].ContextMap()
	if ctx["frame"] != "base_link" {
		t.Errorf("Expected frame=base_link, got %v", ctx["frame"])
	}
	if ctx["seq"] != int64(42) {
		t.Errorf("Expected seq=42, got %v", ctx["seq"])
	}
	if ctx["yaw"] != 1.5 {
		t.Errorf("Expected yaw=1.5, got %v", ctx["yaw"])
	}
	if ctx["found"] != true {
		t.Errorf("Expected found=true, got %v", ctx["found"])
	}
	if ctx["err"] != "boom" {
		t.Errorf("Expected err=boom, got %v", ctx["err"])
	}
}

func TestComponent(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := Component(&ZapLogger{zap: zap.New(core)}, "feed")

	logger.Info("started")

	logs := recorded.All()
	if len(logs) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(logs))
	}
	if got := logs[0].ContextMap()["component"]; got != "feed" {
		t.Errorf("Expected component=feed, got %v", got)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvMode, "development")
	t.Setenv(EnvLevel, "warn")
	t.Setenv(EnvFormat, "json")

	cfg := ConfigFromEnv(DefaultConfig())
	if !cfg.Development {
		t.Error("Expected development mode")
	}
	if cfg.Level != "warn" {
		t.Errorf("Expected level warn, got %s", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Expected format json, got %s", cfg.Format)
	}
}

func TestNewZapLogger_BadLevelFallsBackToInfo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	logger, err := NewZapLogger(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if logger.zap.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Debug should be disabled at the fallback level")
	}
	if !logger.zap.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Info should be enabled at the fallback level")
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("dropped", F("k", "v"))
	if l.With(F("a", 1)) == nil {
		t.Error("With should return a logger")
	}
}
