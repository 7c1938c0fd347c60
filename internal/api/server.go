// Package api wires the HTTP surface: router, middleware, and handlers.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/taskflowhq/taskflow-api/internal/api/handler"
	"github.com/taskflowhq/taskflow-api/internal/auth"
	"github.com/taskflowhq/taskflow-api/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and
// routes. All /api routes are rate limited; everything except health and
// login also requires a bearer session token.
func NewRouter(h *handler.Handler, sessions *auth.Sessions, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	// Root + health + login (no session required)
	r.Get("/", h.Root)
	r.Get("/api/health", h.HealthCheck)
	r.Post("/api/login", h.Login)

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(sessions))

		r.Post("/api/send-notification", h.SendNotification)
		r.Post("/api/send-topic-notification", h.SendTopicNotification)
		r.Post("/api/notify-task-assignment", h.NotifyTaskAssignment)
		r.Post("/api/send-bulk-notifications", h.SendBulkNotifications)

		r.Post("/api/analytics/event", h.RecordEvent)
		r.Get("/api/analytics/user-summary", h.UserSummary)

		r.Route("/api/users/{userID}/preferences", func(r chi.Router) {
			r.Get("/", h.GetPreferences)
			r.Put("/", h.UpdatePreferences)
		})

		r.Route("/api/scheduled-tasks", func(r chi.Router) {
			r.Post("/", h.CreateScheduledTask)
			r.Get("/", h.ListScheduledTasks)
			r.Delete("/{taskID}", h.DeleteScheduledTask)
			r.Post("/{taskID}/pause", h.PauseScheduledTask)
			r.Post("/{taskID}/resume", h.ResumeScheduledTask)
		})
	})

	return r
}
