package preferences

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestGetMaterializesDefaults(t *testing.T) {
	t.Parallel()
	s := NewStore(discardLogger())

	p := s.Get("u1")
	for _, flag := range []string{"emailNotifications", "pushNotifications", "dailySummary", "weeklySummary", "taskAssignment", "taskDueDate"} {
		if v, ok := p[flag].(bool); !ok || !v {
			t.Fatalf("default %s = %v, want true", flag, p[flag])
		}
	}
	if p["emailFrequency"] != "daily" {
		t.Fatalf("emailFrequency = %v, want daily", p["emailFrequency"])
	}
}

func TestUpdateIsPartialMerge(t *testing.T) {
	t.Parallel()
	s := NewStore(discardLogger())

	s.Update("u2", Preferences{"pushNotifications": false})

	p := s.Get("u2")
	if v, _ := p["pushNotifications"].(bool); v {
		t.Fatal("pushNotifications should be false after update")
	}
	// Everything else keeps its default.
	for _, flag := range []string{"emailNotifications", "dailySummary", "weeklySummary", "taskAssignment", "taskDueDate"} {
		if v, ok := p[flag].(bool); !ok || !v {
			t.Fatalf("%s = %v after partial update, want true", flag, p[flag])
		}
	}
}

func TestUpdateStoresUnknownKeys(t *testing.T) {
	t.Parallel()
	s := NewStore(discardLogger())

	s.Update("u3", Preferences{"quietHours": "22:00-07:00"})
	if got := s.Get("u3")["quietHours"]; got != "22:00-07:00" {
		t.Fatalf("quietHours = %v, want stored as-is", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()
	s := NewStore(discardLogger())

	p := s.Get("u4")
	p["taskAssignment"] = false
	if !s.ShouldSend("u4", "task_assignment") {
		t.Fatal("mutating the returned map must not affect the store")
	}
}

func TestShouldSend(t *testing.T) {
	t.Parallel()
	s := NewStore(discardLogger())
	s.Update("u5", Preferences{"taskAssignment": false})

	tests := []struct {
		name     string
		userID   string
		category string
		want     bool
	}{
		{name: "mapped category disabled", userID: "u5", category: "task_assignment", want: false},
		{name: "mapped category default", userID: "u5", category: "daily_summary", want: true},
		{name: "unknown category fails open", userID: "u5", category: "unknown_category", want: true},
		{name: "fresh user fails open", userID: "nobody", category: "unknown_category", want: true},
		{name: "unmapped category by own name", userID: "u5", category: "pushNotifications", want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.ShouldSend(tt.userID, tt.category); got != tt.want {
				t.Fatalf("ShouldSend(%s, %s) = %v, want %v", tt.userID, tt.category, got, tt.want)
			}
		})
	}
}

func TestShouldSendNonBoolFlagFailsOpen(t *testing.T) {
	t.Parallel()
	s := NewStore(discardLogger())
	s.Update("u6", Preferences{"taskAssignment": "nope"})

	if !s.ShouldSend("u6", "task_assignment") {
		t.Fatal("non-bool flag value must fail open")
	}
}
