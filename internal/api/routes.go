package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/slateworks/lessonforge/internal/metrics"
)

// NewRouter creates a new router with all routes configured. The API is
// consumed by browser clients, hence the permissive CORS policy.
func NewRouter(h *Handler, m *metrics.Collector) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(m.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/content", func(r chi.Router) {
			r.Post("/", h.CreateContent)
			r.Get("/", h.ListContent)
			r.Get("/{id}", h.GetContent)
			r.Patch("/{id}", h.UpdateContent)
			r.Delete("/{id}", h.DeleteContent)
		})

		r.Route("/suggestions", func(r chi.Router) {
			r.Post("/", h.CreateSuggestion)
			r.Get("/", h.ListSuggestions)
			r.Delete("/{id}", h.DeleteSuggestion)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/suggestions", h.GenerateSuggestions)
			r.Post("/content", h.GenerateContent)
		})
	})

	return r
}
