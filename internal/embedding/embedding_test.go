package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deviation-analyzer/internal/llm"
	"deviation-analyzer/internal/provider"
	"deviation-analyzer/internal/textnorm"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeBackend struct {
	gotModel string
	gotText  string
	vec      []float64
	err      error
}

func (f *fakeBackend) Embed(ctx context.Context, model, text string) ([]float64, error) {
	f.gotModel = model
	f.gotText = text
	return f.vec, f.err
}

func defaults(ollamaURL string) provider.Defaults {
	return provider.Defaults{
		BaseURL:            "http://llm/v1",
		ModelName:          "m",
		OllamaURL:          ollamaURL,
		EmbeddingModel:     "nomic-embed-text:latest",
		EmbeddingDimension: 768,
	}
}

func TestService_Embed_NormalizesText(t *testing.T) {
	backend := &fakeBackend{vec: []float64{1, 2}}
	svc := NewServiceWithFactory(defaults("http://ollama"), textnorm.NewEnglish(), func(provider.EmbeddingTarget) Backend {
		return backend
	})

	if _, err := svc.Embed(context.Background(), "The cats are running", provider.RuntimeConfig{}); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if backend.gotText != "cat run" {
		t.Errorf("backend text = %q, want %q", backend.gotText, "cat run")
	}
	if backend.gotModel != "nomic-embed-text:latest" {
		t.Errorf("backend model = %q, want default", backend.gotModel)
	}
}

func TestService_Embed_FallsBackToRawText(t *testing.T) {
	backend := &fakeBackend{vec: []float64{1}}
	svc := NewServiceWithFactory(defaults("http://ollama"), nil, func(provider.EmbeddingTarget) Backend {
		return backend
	})

	if _, err := svc.Embed(context.Background(), "Is it?", provider.RuntimeConfig{}); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if backend.gotText != "Is it?" {
		t.Errorf("backend text = %q, want raw text", backend.gotText)
	}
}

func TestService_Embed_LocalFailureYieldsZeroVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model not loaded"))
	}))
	defer server.Close()

	svc := NewService(defaults(server.URL), nil, time.Second)
	vec, err := svc.Embed(context.Background(), "hello world", provider.RuntimeConfig{})
	if err != nil {
		t.Fatalf("Embed() error = %v, want zero-vector fallback", err)
	}
	if len(vec) != 768 {
		t.Fatalf("Embed() returned %d dims, want 768", len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("Embed() vec[%d] = %v, want 0", i, v)
		}
	}

	sim, err := Cosine(vec, []float64{1, 2, 3})
	if err != nil || sim != 0 {
		t.Errorf("Cosine(zero, x) = %v, %v; want 0, nil", sim, err)
	}
}

func TestService_Embed_LocalUnreachableYieldsZeroVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	d := defaults(url)
	d.EmbeddingDimension = 16
	svc := NewService(d, nil, time.Second)

	vec, err := svc.Embed(context.Background(), "hello", provider.RuntimeConfig{})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 16 {
		t.Errorf("Embed() returned %d dims, want 16", len(vec))
	}
}

func TestService_Embed_LocalUsesRequestOverrides(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req llm.OllamaEmbeddingsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "mxbai-embed-large" {
			t.Errorf("model = %q, want mxbai-embed-large", req.Model)
		}
		_ = json.NewEncoder(w).Encode(llm.OllamaEmbeddingsResponse{Embedding: []float64{0.3, 0.4}})
	}))
	defer server.Close()

	svc := NewService(defaults("http://unused"), nil, time.Second)
	vec, err := svc.Embed(context.Background(), "hello", provider.RuntimeConfig{
		OllamaURL:      server.URL,
		EmbeddingModel: "mxbai-embed-large",
	})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("Embed() = %v, want 2 dims", vec)
	}
}

func TestService_Embed_HostedFailurePropagates(t *testing.T) {
	backend := &fakeBackend{err: errors.New("401 unauthorized")}
	var gotTarget provider.EmbeddingTarget
	svc := NewServiceWithFactory(defaults("http://ollama"), nil, func(target provider.EmbeddingTarget) Backend {
		gotTarget = target
		return backend
	})

	_, err := svc.Embed(context.Background(), "hello", provider.RuntimeConfig{
		EmbeddingProvider: "openai",
		EmbeddingAPIKey:   "sk-test",
	})
	if err == nil {
		t.Fatal("Embed() expected error for hosted failure")
	}
	if gotTarget.Provider != provider.EmbeddingOpenAI || gotTarget.APIKey != "sk-test" {
		t.Errorf("target = %+v", gotTarget)
	}
	if backend.gotModel != "text-embedding-3-small" {
		t.Errorf("model = %q, want text-embedding-3-small", backend.gotModel)
	}
}

func TestService_Embed_UnknownProvider(t *testing.T) {
	svc := NewServiceWithFactory(defaults("http://ollama"), nil, func(provider.EmbeddingTarget) Backend {
		t.Error("backend should not be built")
		return &fakeBackend{}
	})

	_, err := svc.Embed(context.Background(), "hello", provider.RuntimeConfig{EmbeddingProvider: "cohere"})
	if !errors.Is(err, provider.ErrUnknownEmbeddingProvider) {
		t.Errorf("Embed() error = %v, want ErrUnknownEmbeddingProvider", err)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float64
		want    float64
		wantErr bool
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 1}, b: []float64{-1, -1}, want: -1},
		{name: "zero left", a: []float64{0, 0, 0}, b: []float64{1, 2, 3}, want: 0},
		{name: "zero right with different dims", a: []float64{1, 2}, b: make([]float64, 768), want: 0},
		{name: "dimension mismatch", a: []float64{1, 2}, b: []float64{1, 2, 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrDimensionMismatch) {
					t.Errorf("Cosine() error = %v, want ErrDimensionMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Cosine() unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}
