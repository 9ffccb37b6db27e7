// Package embedding turns text into vectors through the provider selected
// for a request, and compares vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"deviation-analyzer/internal/contextutil"
	"deviation-analyzer/internal/llm"
	"deviation-analyzer/internal/provider"
	"deviation-analyzer/internal/textnorm"
)

// ErrDimensionMismatch is returned by Cosine for vectors of different
// non-zero length.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Backend embeds a single text with the given model.
type Backend interface {
	Embed(ctx context.Context, model, text string) ([]float64, error)
}

// BackendFactory builds the backend for a resolved target.
type BackendFactory func(target provider.EmbeddingTarget) Backend

// Service embeds text for the analysis pipeline.
type Service struct {
	defaults   provider.Defaults
	normalizer textnorm.Normalizer
	newBackend BackendFactory
}

// NewService creates an embedding service that reaches providers over HTTP.
func NewService(defaults provider.Defaults, normalizer textnorm.Normalizer, timeout time.Duration) *Service {
	return NewServiceWithFactory(defaults, normalizer, HTTPBackends(timeout))
}

// NewServiceWithFactory creates an embedding service with a custom backend
// factory.
func NewServiceWithFactory(defaults provider.Defaults, normalizer textnorm.Normalizer, factory BackendFactory) *Service {
	if normalizer == nil {
		normalizer = textnorm.NewEnglish()
	}
	return &Service{
		defaults:   defaults,
		normalizer: normalizer,
		newBackend: factory,
	}
}

// HTTPBackends returns the factory used in production: the Ollama native
// API for local, openai-go for hosted providers.
func HTTPBackends(timeout time.Duration) BackendFactory {
	return func(target provider.EmbeddingTarget) Backend {
		switch target.Provider {
		case provider.EmbeddingOpenAI, provider.EmbeddingNvidia:
			return llm.NewHostedEmbeddingsClient(target.BaseURL, target.APIKey, timeout)
		case provider.EmbeddingLocal:
			return llm.NewOllamaEmbeddingsClient(target.BaseURL, timeout)
		}
		return llm.NewOllamaEmbeddingsClient(target.BaseURL, timeout)
	}
}

// Embed normalizes text and embeds it with the provider chosen by rc.
// Hosted provider failures are returned. Local failures are logged and
// yield a zero vector of the default dimension.
func (s *Service) Embed(ctx context.Context, text string, rc provider.RuntimeConfig) ([]float64, error) {
	logger := contextutil.LoggerFromContext(ctx)

	target, err := s.defaults.ResolveEmbedding(rc)
	if err != nil {
		return nil, err
	}

	clean := s.normalizer.Normalize(text)
	if clean == "" {
		clean = text
	}

	vec, err := s.newBackend(target).Embed(ctx, target.Model, clean)
	if err == nil {
		return vec, nil
	}

	if target.Provider != provider.EmbeddingLocal {
		return nil, fmt.Errorf("%s embedding failed: %w", target.Provider, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	logger.WarnContext(ctx, "local embedding failed, using zero vector",
		"model", target.Model,
		"url", target.BaseURL,
		"dimension", s.defaults.EmbeddingDimension,
		"error", err)
	return make([]float64, s.defaults.EmbeddingDimension), nil
}

// Cosine returns the cosine similarity of a and b. It is 0 when either
// vector is all zeros.
func Cosine(a, b []float64) (float64, error) {
	normA := norm(a)
	normB := norm(b)
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (normA * normB), nil
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
