package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"deviation-analyzer/internal/contextutil"
	"deviation-analyzer/internal/report"
	"deviation-analyzer/internal/service"
)

const ndjsonContentType = "application/x-ndjson"

// AnalyzeHandler handles HTTP requests for conversation analysis.
type AnalyzeHandler struct {
	analyzeService service.AnalyzeService
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analyzeService service.AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzeService: analyzeService,
	}
}

// ServeHTTP handles POST /analyze.
//
// By default the response is an ndjson stream of {"status"} objects ending
// in exactly one {"final_output"} or {"error"} object. With ?stream=false the
// stream is drained server-side and only the terminal object is returned,
// with status 200 for a report and 500 for a failed run.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req service.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stream := r.URL.Query().Get("stream") != "false"

	var flusher http.Flusher
	if stream {
		var ok bool
		flusher, ok = w.(http.Flusher)
		if !ok {
			logger.ErrorContext(ctx, "streaming not supported by response writer")
			writeError(w, http.StatusInternalServerError, "Streaming not supported")
			return
		}
	}

	// Stops the pipeline if the client goes away or a write fails.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := h.analyzeService.Analyze(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to start analysis")
		return
	}

	if !stream {
		h.writeSync(ctx, w, events)
		return
	}

	w.Header().Set("Content-Type", ndjsonContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	enc := newEncoder(w)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			logger.WarnContext(ctx, "failed to write event, stopping analysis", "error", err)
			return
		}
		flusher.Flush()
	}
}

// writeSync waits for the terminal event and writes it as the whole response.
func (h *AnalyzeHandler) writeSync(ctx context.Context, w http.ResponseWriter, events <-chan report.Event) {
	for ev := range events {
		switch ev.Kind {
		case report.EventFinal:
			writeJSON(ctx, w, http.StatusOK, ev)
			return
		case report.EventError:
			writeJSON(ctx, w, http.StatusInternalServerError, ev)
			return
		}
	}

	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "analysis ended without a result")
	writeError(w, http.StatusInternalServerError, "Analysis did not complete")
}
