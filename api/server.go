/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend
  5. Auth:       Bearer token on every route except register/login

ROUTE GROUPS:
  /api/auth/*               Register, login, current user
  /api/departments          Department directory
  /api/vacation-balance/*   Balances
  /api/vacation-requests/*  Request lifecycle
  /api/reports/*            HR reports
  /api/calendar/*           Department calendar
  /api/demo/*               Demo data (dev mode only)

SEE ALSO:
  - handlers.go: Handler, auth, departments, balances
  - requests.go: Vacation request handlers
  - reports.go: Report and calendar handlers
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSOptions configures allowed origins. AllowAny wins over Origins.
type CORSOptions struct {
	Origins  []string
	AllowAny bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, co CORSOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(co)))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/auth/me", h.Me)

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.ListDepartments)
				r.Post("/", h.CreateDepartment)
			})

			r.Route("/vacation-balance", func(r chi.Router) {
				r.Get("/my", h.GetMyBalance)
				r.Get("/{userID}", h.GetUserBalance)
				r.Put("/{userID}", h.UpdateUserBalance)
			})

			r.Route("/vacation-requests", func(r chi.Router) {
				r.Post("/", h.CreateVacationRequest)
				r.Get("/my", h.ListMyRequests)
				r.Get("/department", h.ListDepartmentRequests)
				r.Get("/all", h.ListAllRequests)
				r.Post("/check-overlap", h.CheckOverlap)
				r.Get("/{id}", h.GetVacationRequest)
				r.Put("/{id}", h.DecideVacationRequest)
				r.Post("/{id}/cancel", h.CancelVacationRequest)
				r.Get("/{id}/history", h.GetRequestHistory)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/vacations", h.VacationReport)
				r.Get("/export-csv", h.ExportCSV)
				r.Get("/balances", h.BalanceReport)
			})

			r.Get("/calendar/department", h.DepartmentCalendar)

			if h.DevMode {
				r.Route("/demo", func(r chi.Router) {
					r.Post("/seed", h.LoadDemoData)
					r.Post("/reset", h.ResetDatabase)
				})
			}
		})
	})

	return r
}

func corsOptions(co CORSOptions) cors.Options {
	opts := cors.Options{
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}
	if co.AllowAny || len(co.Origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
		return opts
	}
	opts.AllowedOrigins = co.Origins
	opts.AllowCredentials = true
	return opts
}
