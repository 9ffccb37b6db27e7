package contextutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Error("LoggerFromContext() without logger should return slog.Default()")
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)
	if got := LoggerFromContext(ctx); got != logger {
		t.Error("LoggerFromContext() should return the stored logger")
	}

	ctx = context.WithValue(context.Background(), loggerKey, "not a logger")
	if got := LoggerFromContext(ctx); got != slog.Default() {
		t.Error("LoggerFromContext() with wrong type should return slog.Default()")
	}
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithAttrs(WithLogger(context.Background(), logger), "run_id", "abc")

	LoggerFromContext(ctx).Info("stage")
	if !strings.Contains(buf.String(), "run_id=abc") {
		t.Errorf("log output %q missing run_id", buf.String())
	}
}
