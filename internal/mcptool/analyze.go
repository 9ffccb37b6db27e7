// Package mcptool exposes conversation analysis as MCP tools.
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"deviation-analyzer/internal/analysis"
	"deviation-analyzer/internal/contextutil"
	"deviation-analyzer/internal/provider"
	"deviation-analyzer/internal/report"
	"deviation-analyzer/internal/service"
)

// AnalyzeTool handles the analyze_conversation MCP tool.
type AnalyzeTool struct {
	service service.AnalyzeService
}

// NewAnalyzeTool creates an AnalyzeTool.
func NewAnalyzeTool(svc service.AnalyzeService) *AnalyzeTool {
	return &AnalyzeTool{service: svc}
}

// Definition returns the MCP tool definition for analyze_conversation.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_conversation",
		mcp.WithDescription(
			"Measure how far an AI model's replies drifted from what the user asked for. "+
				"Returns an expert markdown report with deviation analysis, vector similarity analysis, "+
				"the inferred user intent and a reconstructed prompt.",
		),
		mcp.WithString("conversation",
			mcp.Required(),
			mcp.Description(`JSON array of messages: [{"role":"user","content":"..."},{"role":"model","content":"..."}]`),
		),
		mcp.WithString("llm_type",
			mcp.Description("Chat provider: nvidia, openai, gemini, deepseek or local"),
		),
		mcp.WithString("api_key",
			mcp.Description("API key for the chat provider"),
		),
		mcp.WithString("base_url",
			mcp.Description("OpenAI-compatible base URL; overrides llm_type"),
		),
		mcp.WithString("model_name",
			mcp.Description("Chat model name"),
		),
		mcp.WithString("embedding_provider",
			mcp.Description("Embedding provider: local (default), openai or nvidia"),
		),
		mcp.WithString("embedding_model",
			mcp.Description("Embedding model name"),
		),
		mcp.WithString("embedding_api_key",
			mcp.Description("API key for a hosted embedding provider"),
		),
		mcp.WithString("ollama_url",
			mcp.Description("Ollama base URL for local providers"),
		),
	)
}

// Handle processes the analyze_conversation tool call. The pipeline's
// progress statuses are dropped; only the final report is returned.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conv, err := conversationArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	areq := service.AnalyzeRequest{
		Conversation: conv,
		RuntimeConfig: provider.RuntimeConfig{
			LLMType:           req.GetString("llm_type", ""),
			APIKey:            req.GetString("api_key", ""),
			BaseURL:           req.GetString("base_url", ""),
			ModelName:         req.GetString("model_name", ""),
			EmbeddingProvider: req.GetString("embedding_provider", ""),
			EmbeddingModel:    req.GetString("embedding_model", ""),
			EmbeddingAPIKey:   req.GetString("embedding_api_key", ""),
			OllamaURL:         req.GetString("ollama_url", ""),
		},
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := t.service.Analyze(ctx, areq)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			return mcp.NewToolResultError(fmt.Sprintf("'%s' %s", vErr.Field, vErr.Message)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	for ev := range events {
		switch ev.Kind {
		case report.EventFinal:
			return mcp.NewToolResultText(ev.Message), nil
		case report.EventError:
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %s", ev.Message)), nil
		default:
			contextutil.LoggerFromContext(ctx).DebugContext(ctx, "analysis progress", "status", ev.Message)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mcp.NewToolResultError("analysis did not complete"), nil
}

// conversationArg accepts the conversation as a JSON string or as an
// already-decoded array.
func conversationArg(req mcp.CallToolRequest) ([]analysis.Message, error) {
	raw, ok := req.GetArguments()["conversation"]
	if !ok || raw == nil {
		return nil, errors.New("'conversation' is required")
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, errors.New("'conversation' is required")
		}
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("'conversation' is not valid JSON: %w", err)
		}
		data = b
	}

	var conv []analysis.Message
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("'conversation' must be a JSON array of {role, content} objects: %w", err)
	}
	return conv, nil
}
