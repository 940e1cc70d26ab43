/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for external dashboards

ROUTES:
  /                          Overall ranking (cached)
  /candidates/{id}           Candidate detail (cached)
  /political_parties/{name}  Party detail (cached)
  /vote                      Vote form (GET) / ballot submission (POST)
  /initialize                Full reset (ledger votes, counters, cache)
  /admin/cache/purge         View-cache purge only
  /metrics                   Prometheus metrics

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// Reporting views
	r.Get("/", h.Index)
	r.Get("/candidates/{id}", h.Candidate)
	r.Get("/political_parties/{name}", h.Party)

	// Voting
	r.Get("/vote", h.VoteForm)
	r.Post("/vote", h.CastVote)

	// Administrative
	r.Get("/initialize", h.Initialize)
	r.Post("/admin/cache/purge", h.PurgeCache)

	// Observability
	r.Handle("/metrics", promhttp.Handler())

	return r
}
