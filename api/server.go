/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. CORS:       Cross-origin requests for the frontend
  2. httplog:    Structured request logging (ECS schema, slog)
  3. RequestID:  Unique ID per request for tracing
  4. Recoverer:  Panic recovery (500 instead of crash)

AUTHENTICATION:
  /api/auth/register, /api/auth/login and /api/health are public.
  Everything else passes jwtauth.Verifier (Bearer header or "jwt"
  cookie) and Authenticator. Role checks are applied per route group.

ROUTE GROUPS:
  /api/auth/*             Registration, login, profile
  /api/employees/*        Employees and balances
  /api/leave-requests/*   Request lifecycle and reports
  /api/paid-leave/*       Paid-leave grants
  /api/public-holidays/*  Holiday calendar
  /api/analytics/*        Statistics
  /api/test/email         Test email (admin)

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Authenticator and role checks
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries router settings that do not belong to handlers.
type RouterConfig struct {
	CORSOrigins []string
	// Logger receives request logs; nil writes ECS JSON to stdout.
	Logger *slog.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logFormat := httplog.SchemaECS.Concise(false)
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			ReplaceAttr: logFormat.ReplaceAttr,
		})).With(slog.String("app", "leave-engine"))
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	// Middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Public auth routes
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.Auth.Issuer.JWTAuth()))
			r.Use(Authenticator)

			r.Get("/auth/profile", h.Profile)
			r.Get("/policy", h.GetPolicy)

			// Employee routes
			r.Route("/employees", func(r chi.Router) {
				r.With(RequirePrivileged).Get("/", h.ListEmployees)
				r.Get("/me/balances", h.GetMyBalances)
				r.Get("/{id}/balances", h.GetBalances)
			})

			// Leave request routes
			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", h.CreateLeaveRequest)
				r.Get("/", h.ListMyLeaveRequests)
				r.With(RequirePrivileged).Get("/all", h.ListAllLeaveRequests)

				r.Route("/reports", func(r chi.Router) {
					r.Use(RequirePrivileged)
					r.Get("/leave-report", h.LeaveReportExcel)
					r.Get("/leave-report-pdf", h.LeaveReportPDF)
					r.Get("/balance-report", h.BalanceReportExcel)
					r.Get("/balance-report-pdf", h.BalanceReportPDF)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetLeaveRequest)
					r.Patch("/", h.UpdateLeaveRequest)
					r.With(RequirePrivileged).Patch("/approve", h.ApproveLeaveRequest)
					r.With(RequirePrivileged).Patch("/reject", h.RejectLeaveRequest)
					r.Patch("/cancel", h.CancelLeaveRequest)
					r.With(RequireAdmin).Delete("/", h.DeleteLeaveRequest)
				})
			})

			// Paid leave routes
			r.Route("/paid-leave", func(r chi.Router) {
				r.With(RequirePrivileged).Post("/", h.GrantPaidLeave)
				r.With(RequirePrivileged).Get("/", h.ListGrants)
				r.Get("/my", h.ListMyGrants)
				r.Get("/employee/{id}", h.ListEmployeeGrants)
				r.Get("/stats/{id}", h.GrantStats)
				r.Get("/{id}", h.GetGrant)
				r.Patch("/{id}", h.UpdateGrant)
				r.Delete("/{id}", h.DeleteGrant)
			})

			// Public holiday routes
			r.Route("/public-holidays", func(r chi.Router) {
				r.Get("/", h.ListHolidays)
				r.Get("/countries", h.ListCountries)
				r.With(RequirePrivileged).Get("/fetch/{country}/{year}", h.FetchHolidays)
				r.With(RequireAdmin).Post("/", h.CreateHoliday)
				r.Get("/{id}", h.GetHoliday)
				r.With(RequireAdmin).Patch("/{id}", h.UpdateHoliday)
				r.With(RequireAdmin).Delete("/{id}", h.DeleteHoliday)
			})

			// Analytics routes
			r.With(RequirePrivileged).Get("/analytics", h.Analytics)
			r.Get("/analytics/employee", h.EmployeeAnalytics)

			r.With(RequireAdmin).Post("/test/email", h.SendTestEmail)
		})
	})

	return r
}
