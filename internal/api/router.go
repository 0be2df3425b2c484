// Package api exposes the brand, tracking and user services over HTTP.
//
// Every response uses the {success, data, message} envelope.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router. workflows, when non-nil, is mounted at
// /api/inngest for the Inngest executor.
func NewRouter(h *Handler, cfg MiddlewareConfig, workflows http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg))

	r.Get("/api/health", h.Health)

	if workflows != nil {
		r.Handle("/api/inngest", workflows)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(cfg))

		r.Route("/user", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
		})

		r.Route("/brand", func(r chi.Router) {
			r.Post("/analyze", h.AnalyzeBrand)
			r.Post("/save", h.SaveBrand)
			r.Get("/user/{userEmail}", h.GetUserBrands)
			r.Get("/{brandId}", h.GetBrand)
		})

		r.Route("/tracking", func(r chi.Router) {
			r.Post("/generate-report", h.GenerateReport)
			r.Get("/generate-report/{brandId}", h.GenerateReport)
			r.Post("/generate-report-async", h.GenerateReportAsync)
			r.Post("/save-report", h.SaveReport)
			r.Get("/reports/{brandId}", h.GetBrandReports)
			r.Post("/reports/{reportId}/recompute", h.RecomputeReport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	return r
}
