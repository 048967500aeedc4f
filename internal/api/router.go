package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/capture"
	"github.com/starford/ansuz/internal/routing"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *capture.Service, rules *routing.Snapshot, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, rules)

	r := chi.NewRouter()

	// Health stays reachable without a token.
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		r.Post("/capture", h.Capture)
		r.Post("/route", h.Route)
		r.Get("/rules", h.Rules)

		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
