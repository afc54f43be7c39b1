package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPretty(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Writer: buf, Format: "pretty", Level: level, NoColor: true})
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", Level: slog.LevelInfo})
	log.Info("graph built", "vertices", 12)

	assert.Contains(t, buf.String(), `"msg":"graph built"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"vertices":12`)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Writer: &buf, Environment: tt.environment}).Info("test")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"test"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		" info ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPrettyHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := newPretty(&buf, slog.LevelDebug)

	log.Debug("resolved title", "query", "cowboy bebop", "id", "1")

	line := buf.String()
	assert.Contains(t, line, "DBG resolved title")
	assert.Contains(t, line, `query="cowboy bebop"`)
	assert.Contains(t, line, "id=1")
	assert.NotContains(t, line, "\033[", "no color codes when disabled")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := newPretty(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN shown")
}

func TestPrettyHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newPretty(&buf, slog.LevelInfo)

	log.With("build_id", "b1").WithGroup("graph").Info("stats", "vertices", 3, slog.Group("skipped", "dangling", 2))

	line := buf.String()
	assert.Contains(t, line, "build_id=b1")
	assert.Contains(t, line, "graph.vertices=3")
	assert.Contains(t, line, "graph.skipped.dangling=2")
}

func TestPrettyHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Format: "pretty"}).Error("boom")
	assert.Contains(t, buf.String(), colorRed)
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := newPretty(&buf, slog.LevelInfo)

	log.Component("watcher").WithField("path", "/data/catalog.db").WithError(errors.New("gone")).Info("reload failed")

	line := buf.String()
	assert.Contains(t, line, "component=watcher")
	assert.Contains(t, line, "path=/data/catalog.db")
	assert.Contains(t, line, "error=gone")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("nothing") })
}
