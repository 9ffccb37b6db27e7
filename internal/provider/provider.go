// Package provider resolves which chat and embedding endpoints a request
// talks to. Request values are layered over process-wide Defaults.
package provider

import (
	"errors"
	"fmt"
	"strings"

	"deviation-analyzer/internal/config"
)

var (
	// ErrUnknownLLMType is returned when llm_type names no known provider.
	ErrUnknownLLMType = errors.New("unknown llm type")
	// ErrUnknownEmbeddingProvider is returned when embedding_provider names no known provider.
	ErrUnknownEmbeddingProvider = errors.New("unknown embedding provider")
	// ErrNoEndpoint is returned when no chat base URL could be resolved.
	ErrNoEndpoint = errors.New("no chat endpoint configured")
)

// placeholderAPIKey is sent when no key is configured. OpenAI-compatible
// local servers accept any bearer token.
const placeholderAPIKey = "dummy"

// LLMType selects the chat provider.
type LLMType string

const (
	LLMTypeNone     LLMType = ""
	LLMTypeNvidia   LLMType = "nvidia"
	LLMTypeOpenAI   LLMType = "openai"
	LLMTypeGemini   LLMType = "gemini"
	LLMTypeDeepseek LLMType = "deepseek"
	LLMTypeLocal    LLMType = "local"
)

// ParseLLMType maps a request string to an LLMType. Matching is case
// insensitive; "gpt" and "ollama" are aliases of openai and local.
func ParseLLMType(s string) (LLMType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return LLMTypeNone, nil
	case "nvidia":
		return LLMTypeNvidia, nil
	case "openai", "gpt":
		return LLMTypeOpenAI, nil
	case "gemini":
		return LLMTypeGemini, nil
	case "deepseek":
		return LLMTypeDeepseek, nil
	case "local", "ollama":
		return LLMTypeLocal, nil
	default:
		return LLMTypeNone, fmt.Errorf("%w: %q", ErrUnknownLLMType, s)
	}
}

// EmbeddingProvider selects the embedding backend.
type EmbeddingProvider string

const (
	EmbeddingLocal  EmbeddingProvider = "local"
	EmbeddingOpenAI EmbeddingProvider = "openai"
	EmbeddingNvidia EmbeddingProvider = "nvidia"
)

// ParseEmbeddingProvider maps a request string to an EmbeddingProvider.
// The empty string and "ollama" mean local.
func ParseEmbeddingProvider(s string) (EmbeddingProvider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local", "ollama":
		return EmbeddingLocal, nil
	case "openai":
		return EmbeddingOpenAI, nil
	case "nvidia":
		return EmbeddingNvidia, nil
	default:
		return EmbeddingLocal, fmt.Errorf("%w: %q", ErrUnknownEmbeddingProvider, s)
	}
}

const (
	nvidiaBaseURL   = "https://integrate.api.nvidia.com/v1"
	openAIBaseURL   = "https://api.openai.com/v1"
	geminiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/openai/"
	deepseekBaseURL = "https://api.deepseek.com/v1"
)

// RuntimeConfig is the per-request override bag. Empty fields fall back
// to provider or process defaults.
type RuntimeConfig struct {
	EmbeddingModel    string `json:"embedding_model,omitempty"`
	EmbeddingProvider string `json:"embedding_provider,omitempty"`
	EmbeddingAPIKey   string `json:"embedding_api_key,omitempty"`
	LLMType           string `json:"llm_type,omitempty"`
	APIKey            string `json:"api_key,omitempty"`
	BaseURL           string `json:"base_url,omitempty"`
	ModelName         string `json:"model_name,omitempty"`
	OllamaURL         string `json:"ollama_url,omitempty"`
}

// Validate checks that the provider strings parse.
func (rc RuntimeConfig) Validate() error {
	if _, err := ParseLLMType(rc.LLMType); err != nil {
		return err
	}
	if _, err := ParseEmbeddingProvider(rc.EmbeddingProvider); err != nil {
		return err
	}
	return nil
}

// Defaults holds the process-wide values. Build it once at startup and
// pass it by value.
type Defaults struct {
	BaseURL            string
	APIKey             string
	ModelName          string
	OllamaURL          string
	EmbeddingModel     string
	EmbeddingDimension int
}

// DefaultsFromConfig builds Defaults from the loaded configuration.
func DefaultsFromConfig(cfg *config.Config) Defaults {
	return Defaults{
		BaseURL:            cfg.LLMBaseURL,
		APIKey:             cfg.LLMAPIKey,
		ModelName:          cfg.LLMModelName,
		OllamaURL:          cfg.OllamaBaseURL,
		EmbeddingModel:     cfg.EmbeddingModelName,
		EmbeddingDimension: cfg.EmbeddingDimension,
	}
}

// Endpoint is a resolved OpenAI-compatible chat endpoint.
type Endpoint struct {
	BaseURL string
	APIKey  string
}

// ResolveClient picks the chat endpoint for a request.
// Base URL precedence: rc.BaseURL, then the llm_type table, then the
// process default. API key: rc.APIKey, then the process default, then a
// placeholder.
func (d Defaults) ResolveClient(rc RuntimeConfig) (Endpoint, error) {
	llmType, err := ParseLLMType(rc.LLMType)
	if err != nil {
		return Endpoint{}, err
	}

	baseURL := d.BaseURL
	switch {
	case rc.BaseURL != "":
		baseURL = rc.BaseURL
	case llmType != LLMTypeNone:
		baseURL = d.baseURLFor(llmType, rc)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return Endpoint{}, ErrNoEndpoint
	}

	apiKey := rc.APIKey
	if apiKey == "" {
		apiKey = d.APIKey
	}
	if apiKey == "" {
		apiKey = placeholderAPIKey
	}

	return Endpoint{BaseURL: baseURL, APIKey: apiKey}, nil
}

func (d Defaults) baseURLFor(t LLMType, rc RuntimeConfig) string {
	switch t {
	case LLMTypeNvidia:
		return nvidiaBaseURL
	case LLMTypeOpenAI:
		return openAIBaseURL
	case LLMTypeGemini:
		return geminiBaseURL
	case LLMTypeDeepseek:
		return deepseekBaseURL
	case LLMTypeLocal:
		return ensureV1(d.OllamaURLFor(rc))
	case LLMTypeNone:
		return d.BaseURL
	}
	return d.BaseURL
}

// ResolveModelName returns rc.ModelName or the process default.
func (d Defaults) ResolveModelName(rc RuntimeConfig) string {
	if rc.ModelName != "" {
		return rc.ModelName
	}
	return d.ModelName
}

// OllamaURLFor returns rc.OllamaURL or the process default Ollama URL.
func (d Defaults) OllamaURLFor(rc RuntimeConfig) string {
	if rc.OllamaURL != "" {
		return rc.OllamaURL
	}
	return d.OllamaURL
}

func ensureV1(url string) string {
	url = strings.TrimRight(url, "/")
	if url == "" || strings.HasSuffix(url, "/v1") {
		return url
	}
	return url + "/v1"
}

// EmbeddingTarget is a resolved embedding backend.
type EmbeddingTarget struct {
	Provider EmbeddingProvider
	// BaseURL is the Ollama root for local, or the OpenAI-compatible API root.
	BaseURL string
	Model   string
	APIKey  string
}

// ResolveEmbedding picks the embedding backend and model for a request.
func (d Defaults) ResolveEmbedding(rc RuntimeConfig) (EmbeddingTarget, error) {
	p, err := ParseEmbeddingProvider(rc.EmbeddingProvider)
	if err != nil {
		return EmbeddingTarget{}, err
	}

	target := EmbeddingTarget{Provider: p, Model: rc.EmbeddingModel, APIKey: rc.EmbeddingAPIKey}
	switch p {
	case EmbeddingOpenAI:
		target.BaseURL = openAIBaseURL
		if target.Model == "" {
			target.Model = "text-embedding-3-small"
		}
	case EmbeddingNvidia:
		target.BaseURL = nvidiaBaseURL
		if target.Model == "" {
			target.Model = "nvidia/nv-embed-v1"
		}
	case EmbeddingLocal:
		target.BaseURL = strings.TrimRight(d.OllamaURLFor(rc), "/")
		if target.Model == "" {
			target.Model = d.EmbeddingModel
		}
	}
	return target, nil
}
