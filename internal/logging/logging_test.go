package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		log, err := New(tc.level)
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", tc.level, err)
		}
		if !log.Core().Enabled(tc.want) {
			t.Errorf("New(%q): level %v not enabled", tc.level, tc.want)
		}
		if tc.want > zapcore.DebugLevel && log.Core().Enabled(tc.want-1) {
			t.Errorf("New(%q): level %v unexpectedly enabled", tc.level, tc.want-1)
		}
	}
}

func TestNewOff(t *testing.T) {
	for _, level := range []string{"off", "silent"} {
		log, err := New(level)
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", level, err)
		}
		if log.Core().Enabled(zapcore.ErrorLevel) {
			t.Errorf("New(%q): expected no-op logger, error level is enabled", level)
		}
	}
}

func TestNewUnknownLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Fatal("New(\"loud\") expected error, got nil")
	}
}
