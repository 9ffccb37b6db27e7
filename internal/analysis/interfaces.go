package analysis

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks deviation-analyzer/internal/analysis Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_completer.go -package=mocks deviation-analyzer/internal/analysis ChatCompleter

import (
	"context"

	"deviation-analyzer/internal/llm"
	"deviation-analyzer/internal/provider"
)

// Embedder turns text into a vector using the provider selected by rc.
type Embedder interface {
	Embed(ctx context.Context, text string, rc provider.RuntimeConfig) ([]float64, error)
}

// ChatCompleter sends a chat completion to the endpoint resolved from rc.
type ChatCompleter interface {
	Complete(ctx context.Context, rc provider.RuntimeConfig, messages []llm.Message, params llm.ChatParams) (string, error)
}
