package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		" warn": slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		assert.NilError(t, err)
		assert.Equal(t, got, want)
	}

	_, err := ParseLevel("loud")
	assert.ErrorContains(t, err, "loud")
}

func TestSetupLoggerConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := SetupLogger(Options{Level: slog.LevelWarn, Writer: &buf})
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", slog.String("table", "people"))

	out := buf.String()
	assert.Assert(t, !strings.Contains(out, "hidden"))
	assert.Assert(t, strings.Contains(out, "msg=shown"))
	assert.Assert(t, strings.Contains(out, "table=people"))
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := slog.New(h).With(slog.String("op", "find"))

	logger.Debug("probe")
	logger.Error("failed")

	assert.Assert(t, strings.Contains(a.String(), "msg=probe"))
	assert.Assert(t, strings.Contains(a.String(), "op=find"))
	assert.Assert(t, !strings.Contains(b.String(), "probe"))
	assert.Assert(t, strings.Contains(b.String(), "msg=failed"))
}
