package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{"WARN", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}

	if ValidLevel("trace") {
		t.Error("ValidLevel(trace) should be false")
	}
	if !ValidLevel("Warn") {
		t.Error("ValidLevel(Warn) should be true")
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Prefix: "test"})

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("shown %d", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("unexpected output below level: %q", out)
	}
	if !strings.Contains(out, "[WARN] test: shown 1") {
		t.Errorf("missing warn line: %q", out)
	}
}

func TestLogger_FieldsAreSortedAndShared(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Level: LevelInfo, Output: &buf})
	child := root.WithComponent("fsm").WithField("a", 1)

	root.SetLevel(LevelError)
	child.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("child should follow root level, got %q", buf.String())
	}

	root.SetLevel(LevelDebug)
	child.Debug("kept")
	if !strings.Contains(buf.String(), "kept {a=1, component=fsm}") {
		t.Errorf("fields not rendered in order: %q", buf.String())
	}
}

func TestLogger_Disable(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})
	l.Disable()
	l.Error("nothing")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
	l.Enable()
	l.Error("something")
	if buf.Len() == 0 {
		t.Error("enabled logger wrote nothing")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("discarded")

	var nilLogger *Logger
	nilLogger.Info("no panic")
}
