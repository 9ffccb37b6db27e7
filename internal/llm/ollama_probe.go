package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaProbe checks an Ollama server through its /api/tags endpoint.
type OllamaProbe struct {
	baseURL string
	client  *http.Client
}

// NewOllamaProbe creates a probe for the Ollama server at baseURL.
func NewOllamaProbe(baseURL string, timeout time.Duration) *OllamaProbe {
	return &OllamaProbe{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// OllamaModel is one entry of the /api/tags listing.
type OllamaModel struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

// OllamaTagsResponse represents the response from /api/tags.
type OllamaTagsResponse struct {
	Models []OllamaModel `json:"models"`
}

// ListModels returns the names of the models the server has pulled.
func (p *OllamaProbe) ListModels(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/api/tags", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach ollama: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var tags OllamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		names = append(names, name)
	}
	return names, nil
}

// HasModel reports whether modelName has been pulled. A name without a tag
// matches its ":latest" variant.
func (p *OllamaProbe) HasModel(ctx context.Context, modelName string) (bool, error) {
	names, err := p.ListModels(ctx)
	if err != nil {
		return false, err
	}

	want := modelName
	if !strings.Contains(want, ":") {
		want += ":latest"
	}
	for _, name := range names {
		if name == modelName || name == want {
			return true, nil
		}
	}
	return false, nil
}
