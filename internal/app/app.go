// Package app is the composition root shared by the HTTP and MCP binaries.
// It creates concrete implementations and injects them; no business logic
// lives here.
package app

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"deviation-analyzer/internal/analysis"
	"deviation-analyzer/internal/config"
	"deviation-analyzer/internal/embedding"
	"deviation-analyzer/internal/llm"
	"deviation-analyzer/internal/provider"
	"deviation-analyzer/internal/report"
	"deviation-analyzer/internal/service"
	"deviation-analyzer/internal/storage"
	"deviation-analyzer/internal/textnorm"
)

// App holds the wired dependencies.
type App struct {
	Defaults provider.Defaults
	// DB is nil when the run log is disabled.
	DB      *sql.DB
	Service service.AnalyzeService
	Ollama  *llm.OllamaProbe
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// New wires the analysis stack from cfg. Close must be called on shutdown.
func New(cfg *config.Config) (*App, error) {
	defaults := provider.DefaultsFromConfig(cfg)

	var db *sql.DB
	var runs service.RunStore
	if cfg.DBPath != "" {
		var err error
		db, err = storage.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := storage.Migrate(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		runs = storage.NewRunRepo(db)
		slog.Info("Run log initialized", "path", cfg.DBPath)
	} else {
		slog.Info("Run log disabled")
	}

	embedder := embedding.NewService(defaults, textnorm.NewEnglish(), cfg.LLMTimeout)
	gateway := llm.NewGateway(defaults, cfg.LLMTimeout)

	turns := analysis.NewTurnAnalyzer(embedder, gateway)
	aggregator := analysis.NewAggregator(turns, cfg.TurnConcurrency)
	pipeline := report.NewPipeline(aggregator, gateway)

	return &App{
		Defaults: defaults,
		DB:       db,
		Service:  service.NewAnalyzeService(pipeline, runs),
		Ollama:   llm.NewOllamaProbe(cfg.OllamaBaseURL, cfg.LLMTimeout),
	}, nil
}

// Close releases the database, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
