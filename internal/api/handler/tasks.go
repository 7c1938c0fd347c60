package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskflowhq/taskflow-api/internal/api/respond"
	"github.com/taskflowhq/taskflow-api/internal/tasks"
)

// CreateScheduledTask registers a new scheduled task and its backing job.
// @Summary Create scheduled task
// @Tags scheduled-tasks
// @Accept json
// @Produce json
// @Param request body tasks.CreateRequest true "Task definition"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/scheduled-tasks [post]
func (h *Handler) CreateScheduledTask(w http.ResponseWriter, r *http.Request) {
	var req tasks.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	task, err := h.tasks.Create(req)
	if err != nil {
		respond.Error(w, err, h.log)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"taskId":  task.TaskID,
	})
}

// ListScheduledTasks returns all scheduled tasks in creation order.
// @Summary List scheduled tasks
// @Tags scheduled-tasks
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/scheduled-tasks [get]
func (h *Handler) ListScheduledTasks(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{"tasks": h.tasks.List()})
}

// DeleteScheduledTask removes a task and its backing job.
// @Summary Delete scheduled task
// @Tags scheduled-tasks
// @Produce json
// @Param taskID path string true "Task id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/scheduled-tasks/{taskID} [delete]
func (h *Handler) DeleteScheduledTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	if err := h.tasks.Delete(taskID); err != nil {
		respond.Error(w, err, h.log)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Task deleted successfully",
	})
}

// PauseScheduledTask suspends a task's firings without discarding it.
// @Summary Pause scheduled task
// @Tags scheduled-tasks
// @Produce json
// @Param taskID path string true "Task id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/scheduled-tasks/{taskID}/pause [post]
func (h *Handler) PauseScheduledTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	if err := h.tasks.Pause(taskID); err != nil {
		respond.Error(w, err, h.log)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "enabled": false})
}

// ResumeScheduledTask re-enables a paused task on its original schedule.
// @Summary Resume scheduled task
// @Tags scheduled-tasks
// @Produce json
// @Param taskID path string true "Task id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/scheduled-tasks/{taskID}/resume [post]
func (h *Handler) ResumeScheduledTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	if err := h.tasks.Resume(taskID); err != nil {
		respond.Error(w, err, h.log)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "enabled": true})
}
