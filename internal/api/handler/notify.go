package handler

import (
	"encoding/json"
	"net/http"

	"github.com/taskflowhq/taskflow-api/internal/api/respond"
)

type sendRequest struct {
	Token string            `json:"token"`
	Topic string            `json:"topic"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// SendNotification pushes a notification to a single device.
// @Summary Send notification
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body sendRequest true "Notification"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/send-notification [post]
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Token == "" {
		respond.ErrorMsg(w, http.StatusBadRequest, "Device token is required")
		return
	}
	if req.Title == "" {
		req.Title = defaultTitle
	}

	messageID, err := h.dispatcher.SendToUser(r.Context(), req.Token, req.Title, req.Body, req.Data)
	if err != nil {
		respond.Error(w, err, h.log)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message_id": messageID})
}

// SendTopicNotification pushes a notification to a topic.
// @Summary Send topic notification
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body sendRequest true "Notification"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/send-topic-notification [post]
func (h *Handler) SendTopicNotification(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Topic == "" {
		respond.ErrorMsg(w, http.StatusBadRequest, "Topic is required")
		return
	}
	if req.Title == "" {
		req.Title = defaultTitle
	}

	messageID, err := h.dispatcher.SendToTopic(r.Context(), req.Topic, req.Title, req.Body, req.Data)
	if err != nil {
		respond.Error(w, err, h.log)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message_id": messageID})
}

type taskAssignmentRequest struct {
	AssigneeToken string `json:"assigneeToken"`
	TaskTitle     string `json:"taskTitle"`
	ProjectName   string `json:"projectName"`
	DueDate       string `json:"dueDate"`
	UserID        string `json:"userId"`
}

// NotifyTaskAssignment pushes a task-assignment notification, gated by the
// assignee's preferences.
// @Summary Notify task assignment
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body taskAssignmentRequest true "Assignment"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/notify-task-assignment [post]
func (h *Handler) NotifyTaskAssignment(w http.ResponseWriter, r *http.Request) {
	var req taskAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.AssigneeToken == "" || req.TaskTitle == "" || req.ProjectName == "" {
		respond.ErrorMsg(w, http.StatusBadRequest, "assigneeToken, taskTitle, and projectName are required")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "default_user"
	}
	if !h.prefs.ShouldSend(userID, "task_assignment") {
		respond.JSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Notification suppressed by user preferences",
		})
		return
	}

	messageID, err := h.dispatcher.SendTaskAssignment(r.Context(), req.AssigneeToken, req.TaskTitle, req.ProjectName, req.DueDate)
	if err != nil {
		respond.Error(w, err, h.log)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message_id": messageID})
}

type bulkRequest struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
}

// SendBulkNotifications multicasts a notification to many devices.
// @Summary Send bulk notifications
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body bulkRequest true "Bulk notification"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/send-bulk-notifications [post]
func (h *Handler) SendBulkNotifications(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(req.Tokens) == 0 {
		respond.ErrorMsg(w, http.StatusBadRequest, "Tokens are required")
		return
	}
	if req.Title == "" {
		req.Title = defaultTitle
	}

	result, err := h.dispatcher.SendBulk(r.Context(), req.Tokens, req.Title, req.Body, req.Data)
	if err != nil {
		respond.Error(w, err, h.log)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}
