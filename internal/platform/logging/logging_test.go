package logging

import (
	"testing"

	"go.uber.org/zap"

	"leaveflow/internal/platform/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zap.AtomicLevel{
		"debug":   zap.NewAtomicLevelAt(zap.DebugLevel),
		"WARN":    zap.NewAtomicLevelAt(zap.WarnLevel),
		"error":   zap.NewAtomicLevelAt(zap.ErrorLevel),
		"":        zap.NewAtomicLevelAt(zap.InfoLevel),
		"verbose": zap.NewAtomicLevelAt(zap.InfoLevel),
	}
	for raw, want := range cases {
		if got := parseLevel(raw); got != want.Level() {
			t.Fatalf("parseLevel(%q) = %v, want %v", raw, got, want.Level())
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	logger, err := New(config.Config{Environment: "production", LogLevel: "warn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if logger.Core().Enabled(zap.InfoLevel) {
		t.Fatal("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zap.WarnLevel) {
		t.Fatal("warn should be enabled")
	}
}
