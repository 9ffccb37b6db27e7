package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deviation-analyzer/internal/provider"
)

func TestGateway_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer req-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "req-model" {
			t.Errorf("model = %q, want req-model", req.Model)
		}
		_ = json.NewEncoder(w).Encode(chatReply("ok"))
	}))
	defer server.Close()

	gw := NewGateway(provider.Defaults{BaseURL: "http://unused/v1", ModelName: "default-model"}, time.Second)
	rc := provider.RuntimeConfig{BaseURL: server.URL + "/v1", APIKey: "req-key", ModelName: "req-model"}

	got, err := gw.Complete(context.Background(), rc, []Message{{Role: "user", Content: "hi"}}, ChatParams{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q, want ok", got)
	}
}

func TestGateway_Complete_LocalType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer dummy" {
			t.Errorf("Authorization = %q, want placeholder", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode(chatReply("local"))
	}))
	defer server.Close()

	gw := NewGateway(provider.Defaults{ModelName: "llama3"}, time.Second)
	got, err := gw.Complete(context.Background(), provider.RuntimeConfig{LLMType: "ollama", OllamaURL: server.URL},
		[]Message{{Role: "user", Content: "hi"}}, ChatParams{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "local" {
		t.Errorf("Complete() = %q, want local", got)
	}
}

func TestGateway_Complete_NoEndpoint(t *testing.T) {
	gw := NewGateway(provider.Defaults{}, time.Second)
	_, err := gw.Complete(context.Background(), provider.RuntimeConfig{}, nil, ChatParams{})
	if !errors.Is(err, provider.ErrNoEndpoint) {
		t.Errorf("Complete() error = %v, want ErrNoEndpoint", err)
	}
}
