package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"deviation-analyzer/internal/contextutil"
)

// DBPinger reports whether the run-log database is reachable.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// ModelChecker reports whether a model is available on the local
// embedding server.
type ModelChecker interface {
	HasModel(ctx context.Context, modelName string) (bool, error)
}

// StatusResponse is the GET / liveness body.
type StatusResponse struct {
	Status string `json:"status"`
}

// Root handles GET / with a static liveness message.
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, StatusResponse{Status: "Backend is running"})
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	db                 DBPinger
	ollama             ModelChecker
	embeddingModel     string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the run
// log is disabled; ollama may be nil when no local probe is configured.
func NewHealthHandler(db DBPinger, ollama ModelChecker, embeddingModel string) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		ollama:             ollama,
		embeddingModel:     embeddingModel,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles GET /api/health.
//
// An unreachable run-log database is unhealthy (503). A missing local
// embedding model only degrades the service (200), since requests may use
// hosted providers instead.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	status := "healthy"
	httpStatus := http.StatusOK

	dbStatus := h.checkDatabase(checkCtx, logger)
	checks["database"] = dbStatus
	if dbStatus == "error" {
		issues = append(issues, "database_unavailable")
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	ollamaStatus := h.checkOllama(checkCtx, logger)
	checks["ollama"] = ollamaStatus
	if ollamaStatus != "ok" && ollamaStatus != "disabled" {
		issues = append(issues, "ollama_"+ollamaStatus)
		if status == "healthy" {
			status = "degraded"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}
	writeJSON(ctx, w, httpStatus, response)
}

// checkDatabase returns "ok", "error" or "disabled".
func (h *HealthHandler) checkDatabase(ctx context.Context, logger *slog.Logger) string {
	if h.db == nil {
		return "disabled"
	}
	if err := h.db.PingContext(ctx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		return "error"
	}
	return "ok"
}

// checkOllama returns "ok", "unreachable", "model_missing" or "disabled".
func (h *HealthHandler) checkOllama(ctx context.Context, logger *slog.Logger) string {
	if h.ollama == nil {
		return "disabled"
	}
	found, err := h.ollama.HasModel(ctx, h.embeddingModel)
	if err != nil {
		logger.WarnContext(ctx, "ollama health check failed", "error", err)
		return "unreachable"
	}
	if !found {
		logger.WarnContext(ctx, "embedding model not available on ollama", "model", h.embeddingModel)
		return "model_missing"
	}
	return "ok"
}
