package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOllamaEmbeddingsClient(t *testing.T) {
	client := NewOllamaEmbeddingsClient("http://localhost:11434/", 0)
	if client == nil {
		t.Fatal("NewOllamaEmbeddingsClient() returned nil")
	}
	if client.BaseURL != "http://localhost:11434" {
		t.Errorf("NewOllamaEmbeddingsClient() BaseURL = %v, want http://localhost:11434", client.BaseURL)
	}
}

func TestOllamaEmbeddingsClient_Embed(t *testing.T) {
	tests := []struct {
		name       string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantErr    bool
		wantLen    int
	}{
		{
			name: "successful embedding",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/api/embeddings" {
					t.Errorf("expected /api/embeddings, got %s", r.URL.Path)
				}
				var req OllamaEmbeddingsRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.Model != "nomic" || req.Prompt != "hello" {
					t.Errorf("unexpected request %+v", req)
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(OllamaEmbeddingsResponse{Embedding: []float64{0.1, 0.2, 0.3}})
			},
			wantLen: 3,
		},
		{
			name: "server error",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"model not found"}`))
			},
			wantErr: true,
		},
		{
			name: "empty embedding",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"embedding":[]}`))
			},
			wantErr: true,
		},
		{
			name: "invalid json",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("invalid json"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewOllamaEmbeddingsClient(server.URL, 0)
			vec, err := client.Embed(context.Background(), "nomic", "hello")

			if tt.wantErr {
				if err == nil {
					t.Errorf("Embed() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Embed() unexpected error: %v", err)
				return
			}

			if len(vec) != tt.wantLen {
				t.Errorf("Embed() returned %d dims, want %d", len(vec), tt.wantLen)
			}
		})
	}
}

func TestHostedEmbeddingsClient_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hosted-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) != 1 || req.Input[0] != "hello" || req.Model != "text-embedding-3-small" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",` +
			`"data":[{"object":"embedding","index":0,"embedding":[0.5,0.25]}],` +
			`"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer server.Close()

	client := NewHostedEmbeddingsClient(server.URL+"/v1", "hosted-key", 0)
	vec, err := client.Embed(context.Background(), "text-embedding-3-small", "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 || vec[1] != 0.25 {
		t.Errorf("Embed() = %v, want [0.5 0.25]", vec)
	}
}

func TestHostedEmbeddingsClient_Embed_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewHostedEmbeddingsClient(server.URL+"/v1", "wrong", 0)
	if _, err := client.Embed(context.Background(), "m", "hello"); err == nil {
		t.Error("Embed() expected error, got nil")
	}
}
