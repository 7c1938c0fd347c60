// Package analytics keeps an append-only in-memory log of user activity
// events and derives rollup summaries over a sliding time window.
//
// The event log is a placeholder for a future database — it lives in process
// memory and is lost on restart.
package analytics

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Event is a single recorded user activity. Never mutated after Record.
type Event struct {
	EventID   string         `json:"event_id"`
	UserID    string         `json:"user_id"`
	EventType string         `json:"event_type"`
	EventData map[string]any `json:"event_data"`
	Timestamp time.Time      `json:"timestamp"`
}

// Summary is the rollup returned by Summarize.
type Summary struct {
	UserID  string       `json:"user_id"`
	Period  string       `json:"period"`
	Summary SummaryStats `json:"summary"`
	Trends  TrendStats   `json:"trends"`
}

type SummaryStats struct {
	TasksCompleted    int     `json:"tasksCompleted"`
	ProjectsActive    int     `json:"projectsActive"`
	HoursWorked       float64 `json:"hoursWorked"`
	ProductivityScore float64 `json:"productivityScore"`
}

type TrendStats struct {
	CompletionRate float64 `json:"completionRate"`
	Improvement    float64 `json:"improvement"`
}

// Log is the append-only activity log. Safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	events []Event
	seq    int
	log    *slog.Logger
	now    func() time.Time
}

// NewLog creates an empty activity log.
func NewLog(log *slog.Logger) *Log {
	return &Log{log: log, now: time.Now}
}

// Record appends an event with a fresh sequential id and the current UTC
// timestamp, and returns the event id.
func (l *Log) Record(userID, eventType string, eventData map[string]any) string {
	if eventData == nil {
		eventData = map[string]any{}
	}

	l.mu.Lock()
	l.seq++
	e := Event{
		EventID:   fmt.Sprintf("event_%d", l.seq),
		UserID:    userID,
		EventType: eventType,
		EventData: eventData,
		Timestamp: l.now().UTC(),
	}
	l.events = append(l.events, e)
	l.mu.Unlock()

	l.log.Info("recorded user activity", "event_type", eventType, "user_id", userID)
	return e.EventID
}

// Summarize derives rollup statistics for a user over a sliding window.
// Period is one of daily, weekly, monthly; anything else falls back to
// weekly. The window is wall-clock "now minus duration", not calendar
// aligned.
func (l *Log) Summarize(userID, period string) Summary {
	var window time.Duration
	switch period {
	case "daily":
		window = 24 * time.Hour
	case "weekly":
		window = 7 * 24 * time.Hour
	case "monthly":
		window = 30 * 24 * time.Hour
	default:
		period = "weekly"
		window = 7 * 24 * time.Hour
	}

	l.mu.Lock()
	start := l.now().UTC().Add(-window)
	var matched []Event
	for _, e := range l.events {
		if e.UserID == userID && !e.Timestamp.Before(start) {
			matched = append(matched, e)
		}
	}
	l.mu.Unlock()

	tasksCompleted := 0
	projects := make(map[string]struct{})
	for _, e := range matched {
		if e.EventType == "task_completed" {
			tasksCompleted++
		}
		if v, ok := e.EventData["project_id"]; ok && v != nil && v != "" {
			projects[fmt.Sprint(v)] = struct{}{}
		}
	}

	// Fixed half-hour-per-event duration assumption.
	hoursWorked := float64(len(matched)) * 0.5
	productivityScore := math.Min(10, float64(tasksCompleted)*2+hoursWorked*0.2)
	completionRate := float64(tasksCompleted) / math.Max(1, float64(len(matched)))
	improvement := completionRate * 0.1

	return Summary{
		UserID: userID,
		Period: period,
		Summary: SummaryStats{
			TasksCompleted:    tasksCompleted,
			ProjectsActive:    len(projects),
			HoursWorked:       round1(hoursWorked),
			ProductivityScore: round1(productivityScore),
		},
		Trends: TrendStats{
			CompletionRate: round2(completionRate),
			Improvement:    round2(improvement),
		},
	}
}

// Events returns a snapshot of all recorded events in insertion order.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
