/**
 * @description
 * This file sets up the HTTP router for the core service. It defines the API
 * endpoints, associates them with their handlers, and applies the standard
 * middleware plus admin authentication on the administrative group.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes creates and returns the router for the core service.
func Routes(h *Handlers, adminSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Read endpoints consumed by the web front end.
	r.Post("/recommendations", h.RecommendHandler)
	r.Get("/points/{userID}", h.PointAccountHandler)

	// Administrative endpoints, behind the shared-secret token gate.
	r.Group(func(r chi.Router) {
		r.Use(AdminAuthMiddleware(adminSecret))

		r.Post("/admin/collect/{source}", h.CollectSourceHandler)
		r.Post("/admin/collect/run-all", h.RunAllHandler)
		r.Get("/admin/sources/status", h.SourceStatusHandler)
		r.Post("/admin/missions/evaluate", h.EvaluateMissionsHandler)
		r.Post("/admin/points/adjust", h.AdjustPointsHandler)
	})

	return r
}
