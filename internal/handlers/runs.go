package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"deviation-analyzer/internal/contextutil"
	"deviation-analyzer/internal/service"
	"deviation-analyzer/internal/storage"
)

// RunsHandler serves the analysis-run log.
type RunsHandler struct {
	analyzeService service.AnalyzeService
}

// NewRunsHandler creates a new RunsHandler.
func NewRunsHandler(analyzeService service.AnalyzeService) *RunsHandler {
	return &RunsHandler{analyzeService: analyzeService}
}

// RunListResponse is the GET /api/runs body.
type RunListResponse struct {
	Runs []storage.Run `json:"runs"`
}

// List handles GET /api/runs?limit=N.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid limit", "limit", v)
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := h.analyzeService.ListRuns(ctx, limit)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list runs")
		return
	}
	writeJSON(ctx, w, http.StatusOK, RunListResponse{Runs: runs})
}

// Get handles GET /api/runs/{id}.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	run, err := h.analyzeService.GetRun(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get run")
		return
	}
	writeJSON(ctx, w, http.StatusOK, run)
}
