package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "test")

	logger.Debug("hidden %d", 1)
	logger.Info("shown %d", 2)
	logger.Warn("warned")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at INFO level: %q", out)
	}
	if !strings.Contains(out, "[INFO] test: shown 2") {
		t.Errorf("expected info line, got %q", out)
	}
	if !strings.Contains(out, "[WARN] test: warned") {
		t.Errorf("expected warn line, got %q", out)
	}
}

func TestWithPrefixSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, "root")
	child := parent.WithPrefix("child")

	parent.SetLevel(LevelDebug)
	child.Debug("visible")

	if !strings.Contains(buf.String(), "[DEBUG] child: visible") {
		t.Errorf("child did not follow parent level: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing")
	if logger.Level() >= LevelError {
		t.Errorf("discard logger should be below error level, got %d", logger.Level())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		ok       bool
	}{
		{"debug", LevelDebug, true},
		{" WARN ", LevelWarn, true},
		{"Error", LevelError, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, ok := ParseLevel(tt.input)
			if level != tt.expected || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.input, level, ok, tt.expected, tt.ok)
			}
		})
	}
}
