package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// HostedEmbeddingsClient calls an OpenAI-format /embeddings endpoint
// (OpenAI, NVIDIA) through the openai-go SDK.
type HostedEmbeddingsClient struct {
	client openai.Client
}

// NewHostedEmbeddingsClient creates a client for the API root baseURL.
func NewHostedEmbeddingsClient(baseURL, apiKey string, timeout time.Duration) *HostedEmbeddingsClient {
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &HostedEmbeddingsClient{client: openai.NewClient(opts...)}
}

// Embed returns the embedding of text under model.
func (c *HostedEmbeddingsClient) Embed(ctx context.Context, model, text string) ([]float64, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model:          openai.EmbeddingModel(model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}

	response, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(response.Data) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}

	return response.Data[0].Embedding, nil
}
