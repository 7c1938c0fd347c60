package analytics

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRecordAssignsSequentialIDs(t *testing.T) {
	t.Parallel()
	l := NewLog(discardLogger())

	for i := 1; i <= 3; i++ {
		id := l.Record("u1", "task_created", nil)
		if want := fmt.Sprintf("event_%d", i); id != want {
			t.Fatalf("event id = %s, want %s", id, want)
		}
	}
	if got := len(l.Events()); got != 3 {
		t.Fatalf("event count = %d, want 3", got)
	}
}

func TestSummarizeScenario(t *testing.T) {
	t.Parallel()
	l := NewLog(discardLogger())

	// 3 completions (2 on p1, 1 on p2) plus 2 other events, all recent.
	l.Record("u1", "task_completed", map[string]any{"project_id": "p1"})
	l.Record("u1", "task_completed", map[string]any{"project_id": "p1"})
	l.Record("u1", "task_completed", map[string]any{"project_id": "p2"})
	l.Record("u1", "task_created", nil)
	l.Record("u1", "project_viewed", nil)
	l.Record("someone-else", "task_completed", nil)

	s := l.Summarize("u1", "daily")
	if s.Summary.TasksCompleted != 3 {
		t.Fatalf("tasksCompleted = %d, want 3", s.Summary.TasksCompleted)
	}
	if s.Summary.ProjectsActive != 2 {
		t.Fatalf("projectsActive = %d, want 2", s.Summary.ProjectsActive)
	}
	if s.Summary.HoursWorked != 2.5 {
		t.Fatalf("hoursWorked = %v, want 2.5", s.Summary.HoursWorked)
	}
	if s.Summary.ProductivityScore != 6.5 {
		t.Fatalf("productivityScore = %v, want 6.5", s.Summary.ProductivityScore)
	}
	if s.Trends.CompletionRate != 0.6 {
		t.Fatalf("completionRate = %v, want 0.6", s.Trends.CompletionRate)
	}
	if s.Trends.Improvement != 0.06 {
		t.Fatalf("improvement = %v, want 0.06", s.Trends.Improvement)
	}
}

func TestSummarizeWindowBoundaries(t *testing.T) {
	t.Parallel()
	l := NewLog(discardLogger())

	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	// Record with a controlled clock so event ages are exact.
	l.now = func() time.Time { return base.Add(-25 * time.Hour) }
	l.Record("u1", "task_completed", nil)

	l.now = func() time.Time { return base.Add(-time.Minute) }
	l.Record("u1", "task_completed", nil)

	l.now = func() time.Time { return base }
	s := l.Summarize("u1", "daily")
	if s.Summary.TasksCompleted != 1 {
		t.Fatalf("daily tasksCompleted = %d, want 1 (25h-old event excluded)", s.Summary.TasksCompleted)
	}

	s = l.Summarize("u1", "weekly")
	if s.Summary.TasksCompleted != 2 {
		t.Fatalf("weekly tasksCompleted = %d, want 2", s.Summary.TasksCompleted)
	}
}

func TestSummarizeUnknownPeriodFallsBackToWeekly(t *testing.T) {
	t.Parallel()
	l := NewLog(discardLogger())
	l.Record("u1", "task_completed", nil)

	s := l.Summarize("u1", "quarterly")
	if s.Period != "weekly" {
		t.Fatalf("period = %s, want weekly", s.Period)
	}
	if s.Summary.TasksCompleted != 1 {
		t.Fatalf("tasksCompleted = %d, want 1", s.Summary.TasksCompleted)
	}
}

func TestSummarizeNoEvents(t *testing.T) {
	t.Parallel()
	l := NewLog(discardLogger())

	s := l.Summarize("ghost", "daily")
	if s.Summary.TasksCompleted != 0 || s.Summary.HoursWorked != 0 {
		t.Fatalf("empty summary not zeroed: %+v", s.Summary)
	}
	if s.Trends.CompletionRate != 0 || s.Trends.Improvement != 0 {
		t.Fatalf("empty trends not zeroed: %+v", s.Trends)
	}
}
