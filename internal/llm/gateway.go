package llm

import (
	"context"
	"time"

	"deviation-analyzer/internal/provider"
)

// Gateway resolves the chat endpoint for every request and sends the
// completion through a fresh Client. No client state outlives a call.
type Gateway struct {
	defaults provider.Defaults
	timeout  time.Duration
}

// NewGateway creates a Gateway over the process defaults.
func NewGateway(defaults provider.Defaults, timeout time.Duration) *Gateway {
	return &Gateway{defaults: defaults, timeout: timeout}
}

// Complete sends messages to the endpoint and model resolved from rc.
func (g *Gateway) Complete(ctx context.Context, rc provider.RuntimeConfig, messages []Message, params ChatParams) (string, error) {
	endpoint, err := g.defaults.ResolveClient(rc)
	if err != nil {
		return "", err
	}
	client := NewClient(endpoint.BaseURL, endpoint.APIKey, g.defaults.ResolveModelName(rc), g.timeout)
	return client.ChatWithMessages(ctx, messages, params)
}
