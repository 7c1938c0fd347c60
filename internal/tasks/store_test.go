package tasks

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/taskflowhq/taskflow-api/internal/apperr"
	"github.com/taskflowhq/taskflow-api/internal/scheduler"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeRegistry records registered jobs without a real cron runner.
type fakeRegistry struct {
	seq       int
	jobs      map[string]scheduler.Trigger
	callbacks map[string]func()
	paused    map[string]bool
	removeErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		jobs:      map[string]scheduler.Trigger{},
		callbacks: map[string]func(){},
		paused:    map[string]bool{},
	}
}

func (f *fakeRegistry) Add(trigger scheduler.Trigger, callback func()) (string, error) {
	// Validate the way the real registry does.
	if err := trigger.Validate(); err != nil {
		return "", err
	}
	f.seq++
	id := string(rune('a' + f.seq - 1))
	f.jobs[id] = trigger
	f.callbacks[id] = callback
	return id, nil
}

func (f *fakeRegistry) Remove(jobID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	if _, ok := f.jobs[jobID]; !ok {
		return apperr.Newf(apperr.NotFound, "job %s not found", jobID)
	}
	delete(f.jobs, jobID)
	return nil
}

func (f *fakeRegistry) Pause(jobID string) error {
	if _, ok := f.jobs[jobID]; !ok {
		return apperr.Newf(apperr.NotFound, "job %s not found", jobID)
	}
	f.paused[jobID] = true
	return nil
}

func (f *fakeRegistry) Resume(jobID string) error {
	if _, ok := f.jobs[jobID]; !ok {
		return apperr.Newf(apperr.NotFound, "job %s not found", jobID)
	}
	f.paused[jobID] = false
	return nil
}

type fakeNotifier struct {
	topics []string
	err    error
}

func (f *fakeNotifier) SendToTopic(_ context.Context, topic, _, _ string, _ map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.topics = append(f.topics, topic)
	return "msg-1", nil
}

func TestCreateDailySummary(t *testing.T) {
	t.Parallel()
	reg := newFakeRegistry()
	s := NewStore(reg, &fakeNotifier{}, discardLogger())

	task, err := s.Create(CreateRequest{
		TaskType:    TypeDailySummary,
		Parameters:  map[string]any{"hour": float64(9), "minute": float64(0), "timezone": "UTC"},
		Description: "morning digest",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.TaskID != "scheduled_task_1" {
		t.Fatalf("task id = %s, want scheduled_task_1", task.TaskID)
	}
	if !task.Enabled {
		t.Fatal("new task must be enabled")
	}

	trigger, ok := reg.jobs[task.JobID]
	if !ok {
		t.Fatalf("no job registered for %s", task.JobID)
	}
	want := scheduler.DailyAt(9, 0, "UTC")
	if trigger != want {
		t.Fatalf("trigger = %+v, want %+v", trigger, want)
	}
}

func TestCreateDefaults(t *testing.T) {
	t.Parallel()
	reg := newFakeRegistry()
	s := NewStore(reg, &fakeNotifier{}, discardLogger())

	daily, err := s.Create(CreateRequest{TaskType: TypeDailySummary})
	if err != nil {
		t.Fatalf("Create daily: %v", err)
	}
	if got, want := reg.jobs[daily.JobID], scheduler.DailyAt(9, 0, "UTC"); got != want {
		t.Fatalf("daily default trigger = %+v, want %+v", got, want)
	}

	weekly, err := s.Create(CreateRequest{TaskType: TypeWeeklyReport})
	if err != nil {
		t.Fatalf("Create weekly: %v", err)
	}
	if got, want := reg.jobs[weekly.JobID], scheduler.WeeklyAt(time.Monday, 9, 0, "UTC"); got != want {
		t.Fatalf("weekly default trigger = %+v, want %+v", got, want)
	}
}

func TestCreateCustomCron(t *testing.T) {
	t.Parallel()
	reg := newFakeRegistry()
	s := NewStore(reg, &fakeNotifier{}, discardLogger())

	task, err := s.Create(CreateRequest{
		TaskType:   TypeCustom,
		Schedule:   "*/15 * * * *",
		Parameters: map[string]any{"timezone": "Europe/Berlin"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, want := reg.jobs[task.JobID], scheduler.CronExpr("*/15 * * * *", "Europe/Berlin"); got != want {
		t.Fatalf("trigger = %+v, want %+v", got, want)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	t.Parallel()
	reg := newFakeRegistry()
	s := NewStore(reg, &fakeNotifier{}, discardLogger())

	tests := []struct {
		name string
		req  CreateRequest
		kind apperr.Kind
	}{
		{name: "unknown type", req: CreateRequest{TaskType: "hourly_ping"}, kind: apperr.Validation},
		{name: "bad weekday", req: CreateRequest{TaskType: TypeWeeklyReport, Parameters: map[string]any{"dayOfWeek": "someday"}}, kind: apperr.InvalidTrigger},
		{name: "bad hour", req: CreateRequest{TaskType: TypeDailySummary, Parameters: map[string]any{"hour": float64(31)}}, kind: apperr.InvalidTrigger},
		{name: "bad cron", req: CreateRequest{TaskType: TypeCustom, Schedule: "whenever"}, kind: apperr.InvalidTrigger},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(tt.req)
			if apperr.KindOf(err) != tt.kind {
				t.Fatalf("kind = %v, want %v", apperr.KindOf(err), tt.kind)
			}
		})
	}
	if len(s.List()) != 0 {
		t.Fatalf("no tasks should be stored after rejected creates, got %d", len(s.List()))
	}
	if len(reg.jobs) != 0 {
		t.Fatalf("no jobs should remain after rejected creates, got %d", len(reg.jobs))
	}
}

func TestListCreationOrder(t *testing.T) {
	t.Parallel()
	s := NewStore(newFakeRegistry(), &fakeNotifier{}, discardLogger())

	for i := 0; i < 3; i++ {
		if _, err := s.Create(CreateRequest{TaskType: TypeDailySummary}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, task := range got {
		if want := "scheduled_task_" + string(rune('1'+i)); task.TaskID != want {
			t.Fatalf("task[%d] = %s, want %s", i, task.TaskID, want)
		}
	}
}

func TestDeleteRemovesJobAndRecord(t *testing.T) {
	t.Parallel()
	reg := newFakeRegistry()
	s := NewStore(reg, &fakeNotifier{}, discardLogger())

	task, err := s.Create(CreateRequest{TaskType: TypeDailySummary})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(task.TaskID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(reg.jobs) != 0 {
		t.Fatal("underlying job must be removed")
	}
	if len(s.List()) != 0 {
		t.Fatal("task record must be removed")
	}

	if err := s.Delete(task.TaskID); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("second Delete kind = %v, want not_found", apperr.KindOf(err))
	}
}

func TestDeleteKeepsRecordWhenJobRemovalFails(t *testing.T) {
	t.Parallel()
	reg := newFakeRegistry()
	s := NewStore(reg, &fakeNotifier{}, discardLogger())

	task, err := s.Create(CreateRequest{TaskType: TypeDailySummary})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reg.removeErr = apperr.New(apperr.Internal, "registry unavailable")
	if err := s.Delete(task.TaskID); err == nil {
		t.Fatal("Delete should propagate registry failure")
	}
	if len(s.List()) != 1 {
		t.Fatal("record must survive a failed job removal")
	}
}

func TestPauseResume(t *testing.T) {
	t.Parallel()
	reg := newFakeRegistry()
	s := NewStore(reg, &fakeNotifier{}, discardLogger())

	task, err := s.Create(CreateRequest{TaskType: TypeWeeklyReport})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Pause(task.TaskID); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !reg.paused[task.JobID] {
		t.Fatal("registry job must be paused")
	}
	if s.List()[0].Enabled {
		t.Fatal("task must report disabled after pause")
	}

	if err := s.Resume(task.TaskID); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if reg.paused[task.JobID] {
		t.Fatal("registry job must be resumed")
	}
	if !s.List()[0].Enabled {
		t.Fatal("task must report enabled after resume")
	}

	if err := s.Pause("missing"); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("Pause(missing) kind = %v, want not_found", apperr.KindOf(err))
	}
}

func TestCallbackDelivery(t *testing.T) {
	t.Parallel()
	reg := newFakeRegistry()
	notifier := &fakeNotifier{}
	s := NewStore(reg, notifier, discardLogger())

	daily, err := s.Create(CreateRequest{TaskType: TypeDailySummary})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	weekly, err := s.Create(CreateRequest{TaskType: TypeWeeklyReport})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reg.callbacks[daily.JobID]()
	reg.callbacks[weekly.JobID]()
	if len(notifier.topics) != 2 || notifier.topics[0] != "daily-summary" || notifier.topics[1] != "weekly-reports" {
		t.Fatalf("topics = %v", notifier.topics)
	}

	// A delivery failure is logged, not raised.
	notifier.err = apperr.New(apperr.Delivery, "gateway down")
	reg.callbacks[daily.JobID]()
}
