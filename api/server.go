/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Recoverer:  Panic recovery (500 instead of crash)
  2. RequestID:  Unique ID per request for tracing
  3. requestLogger: Structured request logging via logrus
  4. CORS:       Cross-origin requests for the frontend
  5. auth.Middleware: JWT enforcement on /api (except /api/auth/login)

ROUTE GROUPS:
  /health               Liveness probe (public)
  /api/auth/*           Login, current user, user admin
  /api/employees        Tenant snapshot pass-through
  /api/divisions        Tenant snapshot pass-through
  /api/events           Tenant snapshot pass-through (date window)
  /api/stats/*          Derived statistics
  /api/calendar/*       Month grid
  /api/days             Filtered day->events map
  /api/export/*         XLSX report

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware)

			r.Get("/auth/me", h.CurrentUser)
			r.Get("/auth/users", h.ListUsers)

			r.Get("/employees", h.ListEmployees)
			r.Get("/divisions", h.ListDivisions)
			r.Get("/events", h.ListEvents)

			r.Route("/stats", func(r chi.Router) {
				r.Get("/employees", h.EmployeeStats)
				r.Get("/divisions", h.DivisionStats)
				r.Get("/breakdown", h.CategoryBreakdown)
				r.Get("/busiest-days", h.BusiestDays)
				r.Get("/coverage-gaps", h.CoverageGaps)
			})

			r.Get("/calendar/{year}/{month}", h.Calendar)
			r.Get("/days", h.FilteredDays)
			r.Get("/export/stats.xlsx", h.ExportStats)
		})
	})

	return r
}

// requestLogger logs method, path, status and duration per request.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
