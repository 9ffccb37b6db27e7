package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"deviation-analyzer/internal/handlers"
	"deviation-analyzer/internal/provider"
	"deviation-analyzer/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	AnalyzeService service.AnalyzeService
	Defaults       provider.Defaults
	// DB is nil when the run log is disabled.
	DB     handlers.DBPinger
	Ollama handlers.ModelChecker
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	analyzeHandler := handlers.NewAnalyzeHandler(deps.AnalyzeService)
	runsHandler := handlers.NewRunsHandler(deps.AnalyzeService)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Ollama, deps.Defaults.EmbeddingModel)
	configHandler := handlers.NewConfigHandler(deps.Defaults)

	r.Get("/", handlers.Root)
	r.Method(http.MethodGet, "/config", configHandler)
	r.Method(http.MethodPost, "/analyze", analyzeHandler)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)
	})

	return r
}
