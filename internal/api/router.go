package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/wardrive-core/internal/survey"
)

// healthCheckTimeout bounds each component check on /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/formats", s.handleFormats)
		r.Post("/convert", s.handleConvert)

		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)

		r.Route("/networks", func(r chi.Router) {
			r.Get("/", s.handleListNetworks)
			r.Get("/{bssid}", s.handleGetNetwork)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	return r
}

// handleHealth reports the server version and the state of each optional
// component. Any unhealthy component turns the response into a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	components := make(map[string]string, len(s.health))

	for name, checker := range s.health {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := checker.HealthCheck(ctx)
		cancel()
		if err != nil {
			components[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}

// FormatsResponse lists what the converter understands.
type FormatsResponse struct {
	Known      []survey.Format `json:"known"`
	Extractors []survey.Format `json:"extractors"`
	Extensions []string        `json:"extensions"`
	Columns    []string        `json:"columns"`
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	known := survey.KnownFormats()
	sort.Slice(known, func(i, j int) bool { return known[i] < known[j] })

	writeJSON(w, http.StatusOK, FormatsResponse{
		Known:      known,
		Extractors: s.converter.Registry().Formats(),
		Extensions: survey.SupportedExtensions(),
		Columns:    survey.CanonicalFields(),
	})
}
