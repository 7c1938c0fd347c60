package handler

import (
	"encoding/json"
	"net/http"

	"github.com/taskflowhq/taskflow-api/internal/api/respond"
)

type eventRequest struct {
	UserID    string         `json:"userId"`
	EventType string         `json:"eventType"`
	EventData map[string]any `json:"eventData"`
}

// RecordEvent appends a user activity event.
// @Summary Record analytics event
// @Tags analytics
// @Accept json
// @Produce json
// @Param request body eventRequest true "Event"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/analytics/event [post]
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == "" || req.EventType == "" {
		respond.ErrorMsg(w, http.StatusBadRequest, "userId and eventType are required")
		return
	}

	eventID := h.activity.Record(req.UserID, req.EventType, req.EventData)
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "eventId": eventID})
}

// UserSummary returns the activity rollup for a user over a sliding window.
// @Summary User activity summary
// @Tags analytics
// @Produce json
// @Param userId query string true "User id"
// @Param period query string false "daily, weekly, or monthly" default(weekly)
// @Success 200 {object} analytics.Summary
// @Failure 400 {object} map[string]string
// @Router /api/analytics/user-summary [get]
func (h *Handler) UserSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respond.ErrorMsg(w, http.StatusBadRequest, "userId is required")
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "weekly"
	}

	respond.JSON(w, http.StatusOK, h.activity.Summarize(userID, period))
}
