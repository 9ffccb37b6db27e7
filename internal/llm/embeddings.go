package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaEmbeddingsClient calls Ollama's native /api/embeddings endpoint.
type OllamaEmbeddingsClient struct {
	BaseURL string
	client  *http.Client
}

// NewOllamaEmbeddingsClient creates a client for the Ollama server at baseURL
// (without the /api suffix).
func NewOllamaEmbeddingsClient(baseURL string, timeout time.Duration) *OllamaEmbeddingsClient {
	return &OllamaEmbeddingsClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// OllamaEmbeddingsRequest represents the request payload for /api/embeddings.
type OllamaEmbeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// OllamaEmbeddingsResponse represents the response from /api/embeddings.
type OllamaEmbeddingsResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding of text under model.
func (c *OllamaEmbeddingsClient) Embed(ctx context.Context, model, text string) ([]float64, error) {
	url := fmt.Sprintf("%s/api/embeddings", c.BaseURL)

	body, err := json.Marshal(OllamaEmbeddingsRequest{Model: model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embResp OllamaEmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(embResp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	return embResp.Embedding, nil
}
