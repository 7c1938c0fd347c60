package handler

import (
	"encoding/json"
	"net/http"

	"github.com/taskflowhq/taskflow-api/internal/api/respond"
)

type loginRequest struct {
	FirebaseToken string `json:"firebase_token"`
}

// Login exchanges a Firebase ID token for a session access token.
// @Summary Login
// @Description Verifies a Firebase ID token and returns a session access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Firebase token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.FirebaseToken == "" {
		respond.ErrorMsg(w, http.StatusBadRequest, "Firebase token is required")
		return
	}

	userID, err := h.verifier.VerifyIDToken(r.Context(), req.FirebaseToken)
	if err != nil {
		respond.Error(w, err, h.log)
		return
	}

	accessToken, err := h.sessions.Issue(userID)
	if err != nil {
		respond.Error(w, err, h.log)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"access_token": accessToken,
		"user_id":      userID,
	})
}
