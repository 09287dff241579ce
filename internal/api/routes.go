package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shineum/contact-relay/internal/metrics"
)

// NewRouter wires the relay endpoints and middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMetrics)

	// Browser CORS is open to every origin; the send endpoint applies its
	// own Origin/Referer allow-list.
	if h.cfg.HTTP.CORSEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/", h.Home)
	r.Get("/health", h.Health)
	r.Get("/test", h.Test)
	r.Post("/send-email", h.SendEmail)
	r.Handle("/metrics", metrics.Handler())

	return r
}
