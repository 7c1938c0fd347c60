package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskflowhq/taskflow-api/internal/api/respond"
	"github.com/taskflowhq/taskflow-api/internal/preferences"
)

// GetPreferences returns a user's notification preferences, materializing
// defaults on first access.
// @Summary Get user preferences
// @Tags preferences
// @Produce json
// @Param userID path string true "User id"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{userID}/preferences [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	respond.JSON(w, http.StatusOK, map[string]any{
		"userId":      userID,
		"preferences": h.prefs.Get(userID),
	})
}

type updatePreferencesRequest struct {
	Preferences preferences.Preferences `json:"preferences"`
}

// UpdatePreferences merges a partial preference update into the stored set.
// @Summary Update user preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Param userID path string true "User id"
// @Param request body updatePreferencesRequest true "Partial preferences"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{userID}/preferences [put]
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req updatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	h.prefs.Update(userID, req.Preferences)
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Preferences updated successfully",
	})
}
