package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestGetReturnsUsableLogger(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log := Get()
	if log == nil {
		t.Fatal("Expected Get to return a logger")
	}
	// Event constructors must be callable on the returned logger.
	if ev := log.Info(); ev == nil {
		t.Error("Expected Info to return an event")
	}
}

func TestHelpersDoNotPanic(t *testing.T) {
	Info("info message", map[string]any{"key": "value"})
	Warn("warn message", nil)
	Error("error message", nil, map[string]any{"key": "value"})
	Debug("debug message", nil)
}

func TestSetLevelFallsBackToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetLevel("debug")
	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %s", got)
	}

	SetLevel("not-a-level")
	if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
		t.Errorf("Expected fallback to info level, got %s", got)
	}
}
