package handlers

import (
	"net/http"
	"strings"

	"deviation-analyzer/internal/provider"
)

// ConfigResponse describes the process-wide provider defaults.
type ConfigResponse struct {
	ModelName  string `json:"model_name"`
	EmbedModel string `json:"embed_model"`
	APISource  string `json:"api_source"`
	OllamaURL  string `json:"ollama_url"`
}

// ConfigHandler serves GET /config. Secrets are never included.
type ConfigHandler struct {
	defaults provider.Defaults
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(defaults provider.Defaults) *ConfigHandler {
	return &ConfigHandler{defaults: defaults}
}

func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, ConfigResponse{
		ModelName:  h.defaults.ModelName,
		EmbedModel: h.defaults.EmbeddingModel,
		APISource:  APISource(h.defaults.BaseURL, h.defaults.APIKey),
		OllamaURL:  h.defaults.OllamaURL,
	})
}

// APISource labels the default chat endpoint. A configured key means the
// NVIDIA endpoint; otherwise the base URL is matched by host name.
func APISource(baseURL, apiKey string) string {
	switch {
	case apiKey != "":
		return "NVIDIA API"
	case strings.Contains(baseURL, "openai"):
		return "OpenAI API"
	case strings.Contains(baseURL, "deepseek"):
		return "Deepseek API"
	case baseURL != "":
		return "Custom/Other API"
	default:
		return "Unknown"
	}
}
