// Package report runs the staged analysis pipeline: metrics, transcript
// summary, insight extraction and the final expert report.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"deviation-analyzer/internal/analysis"
	"deviation-analyzer/internal/contextutil"
	"deviation-analyzer/internal/llm"
	"deviation-analyzer/internal/provider"
)

const llmTemperature = 0.1

// ConversationAnalyzer computes turn and conversation metrics.
type ConversationAnalyzer interface {
	AnalyzeConversation(ctx context.Context, conv []analysis.Message, rc provider.RuntimeConfig) (analysis.ConversationAnalysis, error)
}

// Result is everything a run produced. Fields after a failed stage are zero.
type Result struct {
	Analysis        *analysis.ConversationAnalysis
	Summary         string
	Insights        InsightResult
	Report          string
	MissingSections []string
}

// Pipeline turns a conversation into an expert report, one stage at a time.
type Pipeline struct {
	analyzer ConversationAnalyzer
	chat     analysis.ChatCompleter
	sections *SectionParser
}

// NewPipeline creates a Pipeline.
func NewPipeline(analyzer ConversationAnalyzer, chat analysis.ChatCompleter) *Pipeline {
	return &Pipeline{
		analyzer: analyzer,
		chat:     chat,
		sections: NewSectionParser(),
	}
}

// Run starts the pipeline and returns its event stream. Each status event
// is sent before its stage's work. The stream ends with one final_output or
// one error event, then closes. If ctx is cancelled the producer stops
// before its next call and closes the channel without further events, so
// consumers that stop reading must cancel ctx.
func (p *Pipeline) Run(ctx context.Context, conv []analysis.Message, rc provider.RuntimeConfig) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		p.run(ctx, conv, rc, events)
	}()
	return events
}

func (p *Pipeline) run(ctx context.Context, conv []analysis.Message, rc provider.RuntimeConfig, events chan<- Event) {
	logger := contextutil.LoggerFromContext(ctx)
	res := &Result{}

	// emit reports false when the consumer is gone.
	emit := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}
	stage := func(status string) bool {
		if ctx.Err() != nil {
			return false
		}
		logger.InfoContext(ctx, "pipeline stage", "stage", status)
		return emit(statusEvent(status))
	}
	fail := func(stageName string, err error) {
		if ctx.Err() != nil {
			logger.InfoContext(ctx, "pipeline cancelled", "stage", stageName)
			return
		}
		logger.ErrorContext(ctx, "pipeline failed", "stage", stageName, "error", err)
		emit(Event{Kind: EventError, Message: err.Error(), Result: res})
	}

	if !stage(StatusEmbedding) {
		return
	}
	ca, err := p.analyzer.AnalyzeConversation(ctx, conv, rc)
	if err != nil {
		fail("embedding", err)
		return
	}
	res.Analysis = &ca

	if !stage(StatusDeviations) {
		return
	}
	transcript := BuildTranscript(conv)

	if !stage(StatusSummarizing) {
		return
	}
	summary, err := p.summarize(ctx, transcript, rc)
	if err != nil {
		fail("summary", err)
		return
	}
	res.Summary = summary

	if !stage(StatusInsights) {
		return
	}
	res.Insights = p.extractInsights(ctx, transcript, rc)
	if res.Insights.Degraded() {
		if ctx.Err() != nil {
			return
		}
		logger.WarnContext(ctx, "insight extraction degraded", "error", res.Insights.Err)
	}

	if !stage(StatusReport) {
		return
	}
	report, err := p.generateReport(ctx, summary, ca.Metrics, rc)
	if err != nil {
		fail("report", err)
		return
	}
	res.Report = report

	res.MissingSections = p.sections.MissingSections(report)
	if len(res.MissingSections) > 0 {
		logger.WarnContext(ctx, "report is missing sections", "missing", res.MissingSections)
	}

	logger.InfoContext(ctx, "pipeline finished", "report_length", len(report))
	emit(Event{Kind: EventFinal, Message: report, Result: res})
}

func (p *Pipeline) summarize(ctx context.Context, transcript string, rc provider.RuntimeConfig) (string, error) {
	reply, err := p.chat.Complete(ctx, rc, []llm.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: transcript},
	}, llm.ChatParams{Temperature: llm.Temperature(llmTemperature)})
	if err != nil {
		return "", fmt.Errorf("failed to summarize conversation: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// extractInsights never fails; errors are carried in the result.
func (p *Pipeline) extractInsights(ctx context.Context, transcript string, rc provider.RuntimeConfig) InsightResult {
	reply, err := p.chat.Complete(ctx, rc, []llm.Message{
		{Role: "user", Content: fmt.Sprintf(insightsPrompt, transcript)},
	}, llm.ChatParams{Temperature: llm.Temperature(llmTemperature), JSONMode: true})
	if err != nil {
		return InsightResult{Err: fmt.Errorf("insights request failed: %w", err)}
	}
	return ParseInsights(reply)
}

func (p *Pipeline) generateReport(ctx context.Context, summary string, metrics analysis.ConversationMetrics, rc provider.RuntimeConfig) (string, error) {
	metricsJSON, err := json.MarshalIndent(metrics.Numeric(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode metrics: %w", err)
	}

	reply, err := p.chat.Complete(ctx, rc, []llm.Message{
		{Role: "system", Content: reportSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(reportUserTemplate, summary, metricsJSON)},
	}, llm.ChatParams{Temperature: llm.Temperature(llmTemperature)})
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
