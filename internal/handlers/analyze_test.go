package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"deviation-analyzer/internal/analysis"
	"deviation-analyzer/internal/report"
	"deviation-analyzer/internal/service"
	"deviation-analyzer/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stream returns a closed channel holding events.
func stream(events ...report.Event) <-chan report.Event {
	ch := make(chan report.Event, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}

func statusEvents() []report.Event {
	return []report.Event{
		{Kind: report.EventStatus, Message: report.StatusEmbedding},
		{Kind: report.EventStatus, Message: report.StatusDeviations},
		{Kind: report.EventStatus, Message: report.StatusSummarizing},
		{Kind: report.EventStatus, Message: report.StatusInsights},
		{Kind: report.EventStatus, Message: report.StatusReport},
	}
}

const analyzeBody = `{"conversation":[{"role":"user","content":"Hi"},{"role":"model","content":"Hello"}],"llm_type":"openai"}`

// decodeLines parses an ndjson body into generic objects.
func decodeLines(t *testing.T, body string) []map[string]string {
	t.Helper()
	var out []map[string]string
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var obj map[string]string
		if err := json.Unmarshal(line, &obj); err != nil {
			t.Fatalf("invalid ndjson line %q: %v", line, err)
		}
		out = append(out, obj)
	}
	return out
}

func TestNewAnalyzeHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockAnalyzeService(ctrl)
	handler := NewAnalyzeHandler(mockService)

	if handler == nil {
		t.Fatal("NewAnalyzeHandler() returned nil")
	}
	if handler.analyzeService != mockService {
		t.Error("NewAnalyzeHandler() analyzeService not set correctly")
	}
}

func TestAnalyzeHandler_Stream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockAnalyzeService(ctrl)
	events := append(statusEvents(), report.Event{Kind: report.EventFinal, Message: "## Deviation Analysis & more"})
	mockService.EXPECT().
		Analyze(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req service.AnalyzeRequest) (<-chan report.Event, error) {
			if len(req.Conversation) != 2 || req.Conversation[0].Role != analysis.RoleUser {
				t.Errorf("Analyze() conversation = %+v", req.Conversation)
			}
			if req.LLMType != "openai" {
				t.Errorf("Analyze() llm_type = %q, want openai", req.LLMType)
			}
			return stream(events...), nil
		})

	handler := NewAnalyzeHandler(mockService)
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(analyzeBody))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("Content-Type = %q, want application/x-ndjson", ct)
	}
	if !strings.Contains(w.Body.String(), "Preprocessing & Embedding...") {
		t.Error("stream should not HTML-escape status text")
	}

	lines := decodeLines(t, w.Body.String())
	if len(lines) != 6 {
		t.Fatalf("stream has %d lines, want 6", len(lines))
	}
	for i, line := range lines[:5] {
		if line["status"] != events[i].Message || len(line) != 1 {
			t.Errorf("line %d = %v, want status %q", i, line, events[i].Message)
		}
	}
	if lines[5]["final_output"] != "## Deviation Analysis & more" {
		t.Errorf("last line = %v, want final_output", lines[5])
	}
}

func TestAnalyzeHandler_StreamError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockAnalyzeService(ctrl)
	mockService.EXPECT().
		Analyze(gomock.Any(), gomock.Any()).
		Return(stream(
			report.Event{Kind: report.EventStatus, Message: report.StatusEmbedding},
			report.Event{Kind: report.EventError, Message: "bad status 401: unauthorized"},
		), nil)

	handler := NewAnalyzeHandler(mockService)
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(analyzeBody))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %d, want 200", w.Code)
	}
	lines := decodeLines(t, w.Body.String())
	if len(lines) != 2 {
		t.Fatalf("stream has %d lines, want 2", len(lines))
	}
	if lines[1]["error"] != "bad status 401: unauthorized" {
		t.Errorf("last line = %v, want error", lines[1])
	}
}

func TestAnalyzeHandler_Sync(t *testing.T) {
	tests := []struct {
		name       string
		events     []report.Event
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name:       "final output",
			events:     append(statusEvents(), report.Event{Kind: report.EventFinal, Message: "## User Intent & Expectation"}),
			wantStatus: http.StatusOK,
			wantKey:    "final_output",
			wantValue:  "## User Intent & Expectation",
		},
		{
			name: "pipeline error",
			events: []report.Event{
				{Kind: report.EventStatus, Message: report.StatusEmbedding},
				{Kind: report.EventError, Message: "embedding failed"},
			},
			wantStatus: http.StatusInternalServerError,
			wantKey:    "error",
			wantValue:  "embedding failed",
		},
		{
			name:       "no terminal event",
			events:     statusEvents()[:2],
			wantStatus: http.StatusInternalServerError,
			wantKey:    "error",
			wantValue:  "Analysis did not complete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockAnalyzeService(ctrl)
			mockService.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(stream(tt.events...), nil)

			handler := NewAnalyzeHandler(mockService)
			req := httptest.NewRequest(http.MethodPost, "/analyze?stream=false", strings.NewReader(analyzeBody))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			raw := w.Body.String()
			if !strings.Contains(raw, tt.wantValue) {
				t.Errorf("body %s should contain %q unescaped", raw, tt.wantValue)
			}
			var body map[string]string
			if err := json.Unmarshal([]byte(raw), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if len(body) != 1 || body[tt.wantKey] != tt.wantValue {
				t.Errorf("body = %v, want {%q: %q}", body, tt.wantKey, tt.wantValue)
			}
		})
	}
}

func TestAnalyzeHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		mockSetup  func(*mocks.MockAnalyzeService)
		wantStatus int
		wantError  string
	}{
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			mockSetup:  func(m *mocks.MockAnalyzeService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid JSON body",
			method:     http.MethodPost,
			body:       "invalid json",
			mockSetup:  func(m *mocks.MockAnalyzeService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
		{
			name:   "validation error",
			method: http.MethodPost,
			body:   `{"conversation":[]}`,
			mockSetup: func(m *mocks.MockAnalyzeService) {
				m.EXPECT().
					Analyze(gomock.Any(), gomock.Any()).
					Return(nil, &service.ValidationError{Field: "conversation", Message: "is required"})
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Validation error: validation error on field conversation: is required",
		},
		{
			name:   "unexpected error",
			method: http.MethodPost,
			body:   analyzeBody,
			mockSetup: func(m *mocks.MockAnalyzeService) {
				m.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to start analysis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockAnalyzeService(ctrl)
			tt.mockSetup(mockService)

			handler := NewAnalyzeHandler(mockService)
			req := httptest.NewRequest(tt.method, "/analyze", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantError == "" {
				return
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}
