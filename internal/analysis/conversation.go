package analysis

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"deviation-analyzer/internal/contextutil"
	"deviation-analyzer/internal/provider"
)

// ErrNoTurnPairs is returned when a conversation has no user message
// directly followed by a model message.
var ErrNoTurnPairs = errors.New("no user->model turn pairs in conversation")

// AggregationError reports that conversation metrics could not be computed.
type AggregationError struct {
	MessageCount int
	Err          error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("cannot aggregate conversation of %d messages: %v", e.MessageCount, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// Pairs extracts adjacent user->model pairs in order. A user message not
// immediately followed by a model message is skipped.
func Pairs(conv []Message) []TurnPair {
	var pairs []TurnPair
	for i := 0; i+1 < len(conv); i++ {
		if conv[i].Role == RoleUser && conv[i+1].Role == RoleModel {
			pairs = append(pairs, TurnPair{User: conv[i].Content, Model: conv[i+1].Content})
		}
	}
	return pairs
}

// Aggregator analyzes every turn of a conversation and summarizes them.
type Aggregator struct {
	turns       *TurnAnalyzer
	concurrency int
}

// NewAggregator creates an Aggregator that analyzes up to concurrency turns
// at once. Values below 1 mean sequential.
func NewAggregator(turns *TurnAnalyzer, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{turns: turns, concurrency: concurrency}
}

// AnalyzeConversation scores every turn pair and aggregates the results.
// Turn results keep pair order regardless of concurrency. A conversation
// without pairs fails with *AggregationError before any external call.
func (a *Aggregator) AnalyzeConversation(ctx context.Context, conv []Message, rc provider.RuntimeConfig) (ConversationAnalysis, error) {
	logger := contextutil.LoggerFromContext(ctx)

	pairs := Pairs(conv)
	if len(pairs) == 0 {
		return ConversationAnalysis{}, &AggregationError{MessageCount: len(conv), Err: ErrNoTurnPairs}
	}

	logger.DebugContext(ctx, "analyzing turns", "pairs", len(pairs), "concurrency", a.concurrency)

	results := make([]TurnResult, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, p := range pairs {
		g.Go(func() error {
			res, err := a.turns.AnalyzeTurn(gctx, p.User, p.Model, rc)
			if err != nil {
				return fmt.Errorf("turn %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ConversationAnalysis{}, err
	}

	metrics, err := Aggregate(results)
	if err != nil {
		return ConversationAnalysis{}, err
	}
	logger.InfoContext(ctx, "conversation analyzed",
		"turn_count", metrics.TurnCount,
		"average_deviation", metrics.AverageDeviationScore,
		"trend", metrics.DeviationTrend)

	return ConversationAnalysis{Turns: results, Metrics: metrics}, nil
}

// Aggregate computes means, the maximum deviation and the trend over
// results. Empty results fail with *AggregationError.
func Aggregate(results []TurnResult) (ConversationMetrics, error) {
	if len(results) == 0 {
		return ConversationMetrics{}, &AggregationError{Err: ErrNoTurnPairs}
	}

	var sumSem, sumExp, sumDev float64
	maxDev := results[0].DeviationScore
	for _, r := range results {
		sumSem += r.SemanticAlignment
		sumExp += r.ExpectationAlignment
		sumDev += r.DeviationScore
		if r.DeviationScore > maxDev {
			maxDev = r.DeviationScore
		}
	}
	n := float64(len(results))

	return ConversationMetrics{
		AverageSemanticAlignment:    sumSem / n,
		AverageExpectationAlignment: sumExp / n,
		AverageDeviationScore:       sumDev / n,
		MaxDeviationScore:           maxDev,
		DeviationTrend:              ClassifyTrend(results),
		TurnCount:                   len(results),
	}, nil
}

// ClassifyTrend compares the last turn's deviation with the first's.
func ClassifyTrend(results []TurnResult) Trend {
	if len(results) > 0 && results[len(results)-1].DeviationScore > results[0].DeviationScore {
		return TrendIncreasing
	}
	return TrendStableOrDecreasing
}
