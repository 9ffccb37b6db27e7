package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_run_store.go -package=mocks deviation-analyzer/internal/service RunStore
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_runner.go -package=mocks deviation-analyzer/internal/service Runner
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_analyze_service.go -package=mocks -mock_names=AnalyzeService=MockAnalyzeService deviation-analyzer/internal/service AnalyzeService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"deviation-analyzer/internal/analysis"
	"deviation-analyzer/internal/contextutil"
	"deviation-analyzer/internal/provider"
	"deviation-analyzer/internal/report"
	"deviation-analyzer/internal/storage"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// RunStore persists the analysis-run log.
// This interface is defined from the service layer's perspective (consumer-first).
type RunStore interface {
	Create(ctx context.Context, run storage.Run) error
	Finish(ctx context.Context, id string, out storage.RunOutcome) error
	GetByID(ctx context.Context, id string) (storage.Run, error)
	ListRecent(ctx context.Context, limit int) ([]storage.Run, error)
}

// Runner executes the report pipeline.
type Runner interface {
	Run(ctx context.Context, conv []analysis.Message, rc provider.RuntimeConfig) <-chan report.Event
}

// AnalyzeRequest is the pipeline input: a conversation plus optional
// per-request provider overrides.
type AnalyzeRequest struct {
	Conversation []analysis.Message `json:"conversation"`
	provider.RuntimeConfig
}

// AnalyzeService runs analyses and exposes the run log.
type AnalyzeService interface {
	// Analyze validates req and starts a run. The returned stream follows
	// the pipeline protocol; cancel ctx to abandon it.
	Analyze(ctx context.Context, req AnalyzeRequest) (<-chan report.Event, error)
	// GetRun returns a single logged run.
	GetRun(ctx context.Context, id string) (storage.Run, error)
	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
}

type analyzeService struct {
	runner Runner
	runs   RunStore
}

// NewAnalyzeService creates a new AnalyzeService. runs may be nil, in which
// case nothing is logged and run queries return ErrRunLogDisabled.
func NewAnalyzeService(runner Runner, runs RunStore) AnalyzeService {
	return &analyzeService{
		runner: runner,
		runs:   runs,
	}
}

// ValidateAnalyzeRequest checks the request shape before any provider call.
func ValidateAnalyzeRequest(req AnalyzeRequest) error {
	if len(req.Conversation) == 0 {
		return invalid("conversation", "is required")
	}
	for i, msg := range req.Conversation {
		if msg.Role == "" {
			return invalid(fmt.Sprintf("conversation[%d].role", i), "is required")
		}
	}
	if _, err := provider.ParseLLMType(req.LLMType); err != nil {
		return invalid("llm_type", "%v", err)
	}
	if _, err := provider.ParseEmbeddingProvider(req.EmbeddingProvider); err != nil {
		return invalid("embedding_provider", "%v", err)
	}
	return nil
}

// Analyze validates req, logs the run and starts the pipeline.
func (s *analyzeService) Analyze(ctx context.Context, req AnalyzeRequest) (<-chan report.Event, error) {
	if err := ValidateAnalyzeRequest(req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid analyze request", "error", err)
		return nil, err
	}

	runID := uuid.NewString()
	ctx = contextutil.WithAttrs(ctx, "run_id", runID)
	logger := contextutil.LoggerFromContext(ctx)

	logger.InfoContext(ctx, "analysis started",
		"messages", len(req.Conversation),
		"llm_type", req.LLMType,
		"embedding_provider", req.EmbeddingProvider,
	)

	logged := s.startRun(ctx, runID, req)

	events := s.runner.Run(ctx, req.Conversation, req.RuntimeConfig)
	out := make(chan report.Event)
	go func() {
		defer close(out)
		terminal := forward(ctx, events, out)
		if logged {
			s.finishRun(ctx, logger, runID, terminal)
		}
	}()
	return out, nil
}

// forward copies events to out until the pipeline closes its stream and
// returns the terminal event, if one arrived. Events are dropped once ctx is
// done; the pipeline closes promptly after cancellation.
func forward(ctx context.Context, events <-chan report.Event, out chan<- report.Event) *report.Event {
	var terminal *report.Event
	for ev := range events {
		if ev.Terminal() {
			e := ev
			terminal = &e
		}
		select {
		case out <- ev:
		case <-ctx.Done():
		}
	}
	return terminal
}

func (s *analyzeService) startRun(ctx context.Context, id string, req AnalyzeRequest) bool {
	if s.runs == nil {
		return false
	}
	err := s.runs.Create(ctx, storage.Run{
		ID:                id,
		Status:            storage.RunRunning,
		MessageCount:      len(req.Conversation),
		LLMType:           req.LLMType,
		EmbeddingProvider: req.EmbeddingProvider,
		ModelName:         req.ModelName,
	})
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to record run", "error", err)
		return false
	}
	return true
}

func (s *analyzeService) finishRun(ctx context.Context, logger *slog.Logger, id string, terminal *report.Event) {
	out := outcomeFor(terminal)
	if out.Status == storage.RunCancelled && ctx.Err() != nil {
		out.Error = ctx.Err().Error()
	}

	// The request context is usually done by now.
	if err := s.runs.Finish(context.WithoutCancel(ctx), id, out); err != nil {
		logger.ErrorContext(ctx, "failed to finish run", "error", err)
		return
	}
	logger.InfoContext(ctx, "analysis finished", "status", out.Status)
}

// outcomeFor converts the terminal event of a run into its log record.
// A nil event means the stream closed early.
func outcomeFor(terminal *report.Event) storage.RunOutcome {
	if terminal == nil {
		return storage.RunOutcome{Status: storage.RunCancelled, Error: "stream closed before completion"}
	}

	out := storage.RunOutcome{Status: storage.RunSucceeded}
	if terminal.Kind == report.EventError {
		out.Status = storage.RunFailed
		out.Error = terminal.Message
	}

	res := terminal.Result
	if res == nil {
		return out
	}
	if res.Analysis != nil {
		m := res.Analysis.Metrics
		avg, maxDev := m.AverageDeviationScore, m.MaxDeviationScore
		out.TurnCount = m.TurnCount
		out.AverageDeviation = &avg
		out.MaxDeviation = &maxDev
		out.DeviationTrend = string(m.DeviationTrend)
	}
	if data, err := json.Marshal(res.Insights.Insights); err == nil {
		out.Insights = string(data)
	}
	out.InsightsDegraded = res.Insights.Degraded()
	out.MissingSections = res.MissingSections
	out.Report = res.Report
	return out
}

// GetRun returns a single logged run.
func (s *analyzeService) GetRun(ctx context.Context, id string) (storage.Run, error) {
	if s.runs == nil {
		return storage.Run{}, ErrRunLogDisabled
	}
	if id == "" {
		return storage.Run{}, invalid("id", "is required")
	}

	run, err := s.runs.GetByID(ctx, id)
	if errors.Is(err, storage.ErrRunNotFound) {
		return storage.Run{}, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to get run", "run_id", id, "error", err)
		return storage.Run{}, WrapError(err, "failed to get run")
	}
	return run, nil
}

// ListRuns returns the most recent runs. limit <= 0 selects the default and
// larger values are capped.
func (s *analyzeService) ListRuns(ctx context.Context, limit int) ([]storage.Run, error) {
	if s.runs == nil {
		return nil, ErrRunLogDisabled
	}
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list runs", "error", err)
		return nil, WrapError(err, "failed to list runs")
	}
	return runs, nil
}
