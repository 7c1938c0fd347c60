// Package handler provides HTTP handlers for all API endpoints. Handlers
// validate the request, call the owning service, and map classified errors
// to HTTP statuses via respond.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/taskflowhq/taskflow-api/internal/analytics"
	"github.com/taskflowhq/taskflow-api/internal/api/respond"
	"github.com/taskflowhq/taskflow-api/internal/auth"
	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/notifications"
	"github.com/taskflowhq/taskflow-api/internal/preferences"
	"github.com/taskflowhq/taskflow-api/internal/tasks"
)

// defaultTitle is applied when a send request omits the title field.
const defaultTitle = "TaskFlow Notification"

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	cfg        *config.Config
	dispatcher *notifications.Dispatcher
	activity   *analytics.Log
	prefs      *preferences.Store
	tasks      *tasks.Store
	sessions   *auth.Sessions
	verifier   auth.Verifier
	log        *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(
	cfg *config.Config,
	dispatcher *notifications.Dispatcher,
	activity *analytics.Log,
	prefs *preferences.Store,
	taskStore *tasks.Store,
	sessions *auth.Sessions,
	verifier auth.Verifier,
	log *slog.Logger,
) *Handler {
	return &Handler{
		cfg:        cfg,
		dispatcher: dispatcher,
		activity:   activity,
		prefs:      prefs,
		tasks:      taskStore,
		sessions:   sessions,
		verifier:   verifier,
		log:        log,
	}
}

// Root serves the service banner at /.
// @Summary Service banner
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "TaskFlow backend is running",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
