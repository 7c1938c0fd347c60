// Package preferences stores per-user notification preferences and decides
// whether a notification of a given category may be sent.
//
// Storage is an in-memory map — a placeholder for a future database.
package preferences

import (
	"log/slog"
	"sync"
)

// Preferences is the per-user flag set. Flags are booleans keyed by
// preference name; emailFrequency is a string. Unknown keys written by
// clients are stored as-is for forward compatibility.
type Preferences map[string]any

// Defaults returns the complete default preference set: every notification
// category enabled, daily email frequency.
func Defaults() Preferences {
	return Preferences{
		"emailNotifications": true,
		"pushNotifications":  true,
		"dailySummary":       true,
		"weeklySummary":      true,
		"taskAssignment":     true,
		"taskDueDate":        true,
		"emailFrequency":     "daily",
	}
}

// categoryFlags maps notification categories to preference flag names.
// Unmapped categories are looked up under their own name.
var categoryFlags = map[string]string{
	"task_assignment": "taskAssignment",
	"task_due_date":   "taskDueDate",
	"daily_summary":   "dailySummary",
	"weekly_summary":  "weeklySummary",
}

// Store holds preferences for all users. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	prefs map[string]Preferences
	log   *slog.Logger
}

// NewStore creates an empty preference store.
func NewStore(log *slog.Logger) *Store {
	return &Store{prefs: make(map[string]Preferences), log: log}
}

// Get returns the user's preferences, materializing and storing the defaults
// on first access. The returned map is a copy.
func (s *Store) Get(userID string) Preferences {
	s.mu.Lock()
	p := s.getLocked(userID)
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	s.mu.Unlock()
	return out
}

// Update merges partial into the user's preferences, creating the defaults
// first if the user has none. Merge, not replacement: keys absent from
// partial keep their current values.
func (s *Store) Update(userID string, partial Preferences) {
	s.mu.Lock()
	p := s.getLocked(userID)
	for k, v := range partial {
		p[k] = v
	}
	s.mu.Unlock()
	s.log.Info("updated preferences", "user_id", userID, "keys", len(partial))
}

// ShouldSend reports whether a notification of the given category may be
// sent to the user. Missing flags default to true: a preference lookup must
// never block a legitimate notification.
func (s *Store) ShouldSend(userID, category string) bool {
	key, ok := categoryFlags[category]
	if !ok {
		key = category
	}

	s.mu.Lock()
	p := s.getLocked(userID)
	v, ok := p[key]
	s.mu.Unlock()

	if !ok {
		return true
	}
	b, ok := v.(bool)
	if !ok {
		return true
	}
	return b
}

func (s *Store) getLocked(userID string) Preferences {
	p, ok := s.prefs[userID]
	if !ok {
		p = Defaults()
		s.prefs[userID] = p
		s.log.Info("created default preferences", "user_id", userID)
	}
	return p
}
