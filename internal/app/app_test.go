package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"deviation-analyzer/internal/config"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNew_WithRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "runs.db")

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = a.Close() }()

	if a.DB == nil {
		t.Fatal("New() should open the run-log database")
	}
	if a.Service == nil || a.Ollama == nil {
		t.Error("New() left dependencies unset")
	}
	if a.Defaults.ModelName != cfg.LLMModelName {
		t.Errorf("Defaults.ModelName = %q, want %q", a.Defaults.ModelName, cfg.LLMModelName)
	}

	runs, err := a.Service.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("ListRuns() = %d runs, want 0", len(runs))
	}
}

func TestNew_WithoutRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = ""

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.DB != nil {
		t.Error("New() should not open a database when DBPath is empty")
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := a.Service.ListRuns(context.Background(), 0); err == nil {
		t.Error("ListRuns() should fail when the run log is disabled")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(string) bool
	}{
		{
			name:   "json",
			format: "json",
			check:  func(s string) bool { return strings.HasPrefix(s, "{") && strings.Contains(s, `"msg":"hello"`) },
		},
		{
			name:   "text",
			format: "text",
			check:  func(s string) bool { return strings.Contains(s, "msg=hello") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.LogFormat = tt.format

			var buf bytes.Buffer
			NewLogger(cfg, &buf).Info("hello")

			if !tt.check(buf.String()) {
				t.Errorf("NewLogger() output = %q", buf.String())
			}
		})
	}
}

func TestNewLogger_Level(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = slog.LevelWarn

	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("NewLogger() output = %q", buf.String())
	}
}
