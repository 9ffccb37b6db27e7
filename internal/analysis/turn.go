// Package analysis scores how far model replies drift from what the user
// asked for, turn by turn and over a whole conversation.
package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"deviation-analyzer/internal/embedding"
	"deviation-analyzer/internal/llm"
	"deviation-analyzer/internal/provider"
)

const (
	semanticWeight    = 0.4
	expectationWeight = 0.4
	complexityWeight  = 0.2
	// complexityScale maps a words-per-sentence gap onto roughly [0, 1].
	complexityScale = 50.0

	expectationTemperature = 0.1
)

const expectationPrompt = `Abstract the following user message into a structured expectation description.
Return short structured description only.

User message:
%s`

// TurnAnalyzer scores a single user/model exchange.
type TurnAnalyzer struct {
	embedder Embedder
	chat     ChatCompleter
}

// NewTurnAnalyzer creates a TurnAnalyzer.
func NewTurnAnalyzer(embedder Embedder, chat ChatCompleter) *TurnAnalyzer {
	return &TurnAnalyzer{embedder: embedder, chat: chat}
}

// AnalyzeTurn embeds both messages, infers the user's expectation with one
// LLM call and combines the similarities and the complexity gap into a
// deviation score. Chat and hosted embedding failures are returned.
func (a *TurnAnalyzer) AnalyzeTurn(ctx context.Context, userMsg, modelMsg string, rc provider.RuntimeConfig) (TurnResult, error) {
	userEmb, err := a.embedder.Embed(ctx, userMsg, rc)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to embed user message: %w", err)
	}
	modelEmb, err := a.embedder.Embed(ctx, modelMsg, rc)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to embed model message: %w", err)
	}

	semantic, err := embedding.Cosine(userEmb, modelEmb)
	if err != nil {
		return TurnResult{}, err
	}

	expectation, err := a.inferExpectation(ctx, userMsg, rc)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to infer expectation: %w", err)
	}
	expectationEmb, err := a.embedder.Embed(ctx, expectation, rc)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to embed expectation: %w", err)
	}

	expectationAlignment, err := embedding.Cosine(expectationEmb, modelEmb)
	if err != nil {
		return TurnResult{}, err
	}

	gap := math.Abs(ComplexityScore(userMsg) - ComplexityScore(modelMsg))

	return TurnResult{
		SemanticAlignment:    semantic,
		ExpectationAlignment: expectationAlignment,
		ComplexityGap:        gap,
		DeviationScore:       DeviationScore(semantic, expectationAlignment, gap),
	}, nil
}

func (a *TurnAnalyzer) inferExpectation(ctx context.Context, userMsg string, rc provider.RuntimeConfig) (string, error) {
	messages := []llm.Message{
		{Role: "user", Content: fmt.Sprintf(expectationPrompt, userMsg)},
	}
	reply, err := a.chat.Complete(ctx, rc, messages, llm.ChatParams{
		Temperature: llm.Temperature(expectationTemperature),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// ComplexityScore is the number of whitespace-separated words divided by
// the number of sentence terminators ('.', '?', '!') plus one.
func ComplexityScore(text string) float64 {
	words := len(strings.Fields(text))
	sentences := strings.Count(text, ".") + strings.Count(text, "?") + strings.Count(text, "!")
	return float64(words) / float64(sentences+1)
}

// DeviationScore combines the two alignments and the complexity gap.
// It is not clamped: large gaps push it above 1.
func DeviationScore(semantic, expectation, gap float64) float64 {
	return (1-semantic)*semanticWeight +
		(1-expectation)*expectationWeight +
		(gap/complexityScale)*complexityWeight
}
