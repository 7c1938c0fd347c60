// Package tasks maps user-facing scheduled tasks (daily summaries, weekly
// reports, custom cron jobs) onto registry jobs.
//
// Task records live in an in-memory map — a placeholder for a future
// database. The registry owns job lifetimes; a task holds its job id for
// lookup only.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/taskflowhq/taskflow-api/internal/apperr"
	"github.com/taskflowhq/taskflow-api/internal/scheduler"
)

// Supported task types.
const (
	TypeDailySummary = "daily_summary"
	TypeWeeklyReport = "weekly_report"
	TypeCustom       = "custom"
)

// Topics the built-in task callbacks publish to.
const (
	topicDailySummary = "daily-summary"
	topicWeeklyReport = "weekly-reports"
)

// Registry is the job-registry surface the store depends on.
type Registry interface {
	Add(trigger scheduler.Trigger, callback func()) (string, error)
	Remove(jobID string) error
	Pause(jobID string) error
	Resume(jobID string) error
}

// Notifier delivers the reminder a fired task produces.
type Notifier interface {
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) (string, error)
}

// Task is a user-facing scheduled action backed by exactly one registry job.
type Task struct {
	TaskID      string         `json:"taskId"`
	TaskType    string         `json:"taskType"`
	Schedule    string         `json:"schedule,omitempty"`
	Parameters  map[string]any `json:"parameters"`
	Description string         `json:"description"`
	Enabled     bool           `json:"enabled"`
	CreatedAt   time.Time      `json:"createdAt"`
	JobID       string         `json:"jobId"`
}

// CreateRequest is the payload for Create.
type CreateRequest struct {
	TaskType    string         `json:"taskType"`
	Schedule    string         `json:"schedule"`
	Parameters  map[string]any `json:"parameters"`
	Description string         `json:"description"`
}

// Store owns task records and their one-to-one registry jobs.
type Store struct {
	mu       sync.Mutex
	registry Registry
	notifier Notifier
	log      *slog.Logger
	seq      int
	tasks    map[string]*Task
	order    []string
}

// NewStore creates an empty task store.
func NewStore(registry Registry, notifier Notifier, log *slog.Logger) *Store {
	return &Store{
		registry: registry,
		notifier: notifier,
		log:      log,
		tasks:    make(map[string]*Task),
	}
}

// Create validates the request, registers the matching job, and stores the
// task record. Trigger-construction failures propagate as InvalidTrigger.
func (s *Store) Create(req CreateRequest) (*Task, error) {
	if req.Parameters == nil {
		req.Parameters = map[string]any{}
	}

	s.mu.Lock()
	s.seq++
	taskID := fmt.Sprintf("scheduled_task_%d", s.seq)
	s.mu.Unlock()

	trigger, err := buildTrigger(req)
	if err != nil {
		return nil, err
	}

	jobID, err := s.registry.Add(trigger, s.callback(taskID, req.TaskType))
	if err != nil {
		return nil, err
	}

	task := &Task{
		TaskID:      taskID,
		TaskType:    req.TaskType,
		Schedule:    req.Schedule,
		Parameters:  req.Parameters,
		Description: req.Description,
		Enabled:     true,
		CreatedAt:   time.Now().UTC(),
		JobID:       jobID,
	}

	s.mu.Lock()
	s.tasks[taskID] = task
	s.order = append(s.order, taskID)
	s.mu.Unlock()

	s.log.Info("created scheduled task", "task_id", taskID, "task_type", req.TaskType, "job_id", jobID)
	return task, nil
}

// List returns a snapshot of all tasks in creation order.
func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, 0, len(s.order))
	for _, id := range s.order {
		if t, ok := s.tasks[id]; ok {
			out = append(out, *t)
		}
	}
	return out
}

// Delete removes the underlying job first, then the task record. If job
// removal fails the record is kept, so no task ever references a dead job
// silently.
func (s *Store) Delete(taskID string) error {
	s.mu.Lock()
	task, ok := s.tasks[taskID]
	s.mu.Unlock()
	if !ok {
		return apperr.Newf(apperr.NotFound, "task %s not found", taskID)
	}

	if err := s.registry.Remove(task.JobID); err != nil {
		return fmt.Errorf("remove job for task %s: %w", taskID, err)
	}

	s.mu.Lock()
	delete(s.tasks, taskID)
	for i, id := range s.order {
		if id == taskID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.log.Info("deleted scheduled task", "task_id", taskID)
	return nil
}

// Pause disables the task's job. The record's enabled flag flips only after
// the registry call succeeds.
func (s *Store) Pause(taskID string) error {
	return s.setEnabled(taskID, false)
}

// Resume re-enables the task's job.
func (s *Store) Resume(taskID string) error {
	return s.setEnabled(taskID, true)
}

func (s *Store) setEnabled(taskID string, enabled bool) error {
	s.mu.Lock()
	task, ok := s.tasks[taskID]
	s.mu.Unlock()
	if !ok {
		return apperr.Newf(apperr.NotFound, "task %s not found", taskID)
	}

	var err error
	if enabled {
		err = s.registry.Resume(task.JobID)
	} else {
		err = s.registry.Pause(task.JobID)
	}
	if err != nil {
		return fmt.Errorf("toggle job for task %s: %w", taskID, err)
	}

	s.mu.Lock()
	task.Enabled = enabled
	s.mu.Unlock()

	s.log.Info("scheduled task state changed", "task_id", taskID, "enabled", enabled)
	return nil
}

// callback builds the action a fired task performs. Delivery errors are
// logged, never propagated — a failed reminder must not disturb the schedule.
func (s *Store) callback(taskID, taskType string) func() {
	return func() {
		s.log.Info("running scheduled task", "task_id", taskID, "task_type", taskType)

		var topic, title, body string
		switch taskType {
		case TypeDailySummary:
			topic, title, body = topicDailySummary, "Daily Summary", "Your daily task summary is ready"
		case TypeWeeklyReport:
			topic, title, body = topicWeeklyReport, "Weekly Report", "Your weekly productivity report is ready"
		default:
			// Custom tasks carry no built-in delivery action.
			return
		}

		if _, err := s.notifier.SendToTopic(context.Background(), topic, title, body, map[string]string{"task_id": taskID}); err != nil {
			s.log.Error("scheduled task delivery failed", "task_id", taskID, "error", err)
		}
	}
}

// buildTrigger translates task-type parameters into a trigger.
func buildTrigger(req CreateRequest) (scheduler.Trigger, error) {
	p := req.Parameters
	switch req.TaskType {
	case TypeDailySummary:
		return scheduler.DailyAt(
			intParam(p, "hour", 9),
			intParam(p, "minute", 0),
			strParam(p, "timezone", "UTC"),
		), nil

	case TypeWeeklyReport:
		weekday, err := parseWeekday(strParam(p, "dayOfWeek", "mon"))
		if err != nil {
			return scheduler.Trigger{}, err
		}
		return scheduler.WeeklyAt(
			weekday,
			intParam(p, "hour", 9),
			intParam(p, "minute", 0),
			strParam(p, "timezone", "UTC"),
		), nil

	case TypeCustom:
		return scheduler.CronExpr(req.Schedule, strParam(p, "timezone", "UTC")), nil

	default:
		return scheduler.Trigger{}, apperr.Newf(apperr.Validation, "unsupported task type %q", req.TaskType)
	}
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	if len(s) >= 3 {
		if wd, ok := weekdays[strings.ToLower(s)[:3]]; ok {
			return wd, nil
		}
	}
	return 0, apperr.Newf(apperr.InvalidTrigger, "invalid day of week %q", s)
}

// intParam reads an integer parameter, tolerating the float64 JSON decoding
// produces.
func intParam(p map[string]any, key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func strParam(p map[string]any, key, fallback string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
