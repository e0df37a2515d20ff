package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	tests := []struct {
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{log.InfoLevel, func(l *log.Logger) { l.Info("loaded family") }, true},
		{log.InfoLevel, func(l *log.Logger) { l.Debug("layout start") }, false},
		{log.DebugLevel, func(l *log.Logger) { l.Debug("layout start") }, true},
		{log.WarnLevel, func(l *log.Logger) { l.Info("loaded family") }, false},
		{log.WarnLevel, func(l *log.Logger) { l.Warn("dangling reference") }, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		tt.emit(newLogger(&buf, tt.level))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("level %s: wrote output = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("ready")
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("line %q does not start with a HH:MM:SS.ms timestamp", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Loaded 6 people")

	out := buf.String()
	if !strings.Contains(out, "Loaded 6 people") {
		t.Errorf("output %q lacks the message", out)
	}
	if !regexp.MustCompile(`\(\d+m?s\)`).MatchString(out) {
		t.Errorf("output %q lacks the elapsed time", out)
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	//nolint:staticcheck // a nil parent is accepted
	if got := loggerFromContext(withLogger(nil, custom)); got != custom {
		t.Error("logger lost with a nil parent context")
	}
	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext did not return the attached logger")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext without a logger should fall back to log.Default()")
	}
}
