package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/rook-computer/socialcard/internal/config"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
		{"warn at error level", log.ErrorLevel, func(l *log.Logger) { l.Warn("test") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield log.Default()")
	}
	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("attached logger not returned")
	}
}

func TestComponentLoggerField(t *testing.T) {
	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, log.InfoLevel))
	componentLogger(ctx).Warnf("editor", "canvas %dx%d", 10, 20)
	out := buf.String()
	if !strings.Contains(out, "canvas 10x20") || !strings.Contains(out, "component=editor") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigFromContext(t *testing.T) {
	if got := configFromContext(context.Background()); got.Listen != config.Default().Listen {
		t.Errorf("default listen = %q", got.Listen)
	}
	cfg := config.Default()
	cfg.Listen = ":9999"
	if got := configFromContext(withConfig(context.Background(), cfg)); got.Listen != ":9999" {
		t.Errorf("listen = %q, want :9999", got.Listen)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered card.png")
	if !strings.Contains(buf.String(), "Rendered card.png (") {
		t.Errorf("output = %q", buf.String())
	}
}
