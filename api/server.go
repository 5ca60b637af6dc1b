/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the admin frontend
  5. Metrics:    Request counters by route pattern
  6. Actor:      Bearer token (or dev headers) on /api only

ROUTE GROUPS:
  /api/employees/*      Directory, DTR submission, pay period summaries
  /api/attendance/*     DTR maintenance
  /api/payrolls/*       Payroll runs
  /api/students         Student directory
  /api/enrollments/*    Tuition balances
  /api/payments/*       Payments and receipts
  /healthz              Dependency probes
  /metrics              Prometheus scrape endpoint

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions carries the settings the router needs from configuration.
type RouterOptions struct {
	CORSOrigins   []string
	JWTIssuer     string
	JWTSigningKey string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-ID", "X-Actor-Name"},
		AllowCredentials: true,
	}))
	r.Use(h.Metrics.Middleware)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(ActorMiddleware(opts.JWTIssuer, opts.JWTSigningKey))

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Post("/{id}/attendance", h.SubmitAttendance)
			r.Get("/{id}/attendance", h.ListAttendance)
			r.Get("/{id}/pay-periods", h.GetPayPeriods)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/{id}", h.GetAttendance)
			r.Put("/{id}", h.UpdateAttendance)
			r.Delete("/{id}", h.DeleteAttendance)
		})

		r.Route("/payrolls", func(r chi.Router) {
			r.Get("/", h.ListPayrolls)
			r.Post("/", h.RunPayroll)
			r.Post("/preview", h.PreviewPayroll)
			r.Get("/{id}", h.GetPayroll)
			r.Put("/{id}", h.UpdatePayroll)
			r.Delete("/{id}", h.DeletePayroll)
		})

		r.Route("/students", func(r chi.Router) {
			r.Get("/", h.ListStudents)
			r.Post("/", h.CreateStudent)
		})

		r.Route("/enrollments", func(r chi.Router) {
			r.Post("/", h.CreateEnrollment)
			r.Get("/{id}", h.GetEnrollment)
			r.Get("/{id}/payments", h.ListEnrollmentPayments)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", h.RecordPayment)
			r.Post("/documents", h.RecordDocumentPayment)
			r.Get("/{id}/receipt", h.GetReceipt)
			r.Delete("/{id}", h.ReversePayment)
		})
	})

	return r
}
