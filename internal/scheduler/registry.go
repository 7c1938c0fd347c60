// Package scheduler owns the recurring-job registry. It wraps robfig/cron
// with string job identifiers, pause/resume, and panic-safe callbacks.
//
// Management calls (Add/Remove/Pause/Resume) hold the registry lock only for
// the map mutation; callbacks run on the cron runner's goroutines outside any
// registry lock, so a slow callback never blocks the management API and vice
// versa.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/taskflowhq/taskflow-api/internal/apperr"
)

// Job is a registered (trigger, callback) pair.
type job struct {
	id      string
	trigger Trigger
	entryID cron.EntryID
	run     func()
	enabled bool
}

// Registry manages recurring jobs keyed by identifier.
type Registry struct {
	mu   sync.Mutex
	c    *cron.Cron
	jobs map[string]*job
	log  *slog.Logger
}

// NewRegistry creates a registry. Call Start before adding jobs is not
// required — entries added before Start fire once the runner starts.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		c:    cron.New(cron.WithParser(specParser), cron.WithLocation(time.UTC)),
		jobs: make(map[string]*job),
		log:  log,
	}
}

// Start launches the background timing thread.
func (r *Registry) Start() {
	r.c.Start()
	r.log.Info("job registry started")
}

// Stop halts future firings and waits for in-flight callbacks to finish.
func (r *Registry) Stop() {
	<-r.c.Stop().Done()
	r.log.Info("job registry stopped")
}

// Add registers a recurring job and returns its identifier. The trigger is
// validated up front; invalid parameters yield an InvalidTrigger error.
func (r *Registry) Add(trigger Trigger, callback func()) (string, error) {
	spec, err := trigger.cronSpec()
	if err != nil {
		return "", err
	}

	j := &job{
		id:      uuid.NewString(),
		trigger: trigger,
		run:     callback,
		enabled: true,
	}

	entryID, err := r.c.AddFunc(spec, func() { r.fire(j.id) })
	if err != nil {
		// Reachable only if spec rendering and the parser disagree.
		return "", apperr.Wrap(apperr.InvalidTrigger, "register cron entry", err)
	}
	j.entryID = entryID

	r.mu.Lock()
	r.jobs[j.id] = j
	r.mu.Unlock()

	r.log.Info("job registered", "job_id", j.id, "spec", spec)
	return j.id, nil
}

// Remove stops future firings and discards the job.
func (r *Registry) Remove(jobID string) error {
	r.mu.Lock()
	j, ok := r.jobs[jobID]
	if ok {
		delete(r.jobs, jobID)
	}
	r.mu.Unlock()

	if !ok {
		return apperr.Newf(apperr.NotFound, "job %s not found", jobID)
	}
	r.c.Remove(j.entryID)
	r.log.Info("job removed", "job_id", jobID)
	return nil
}

// Pause disables firing without discarding the job or its schedule.
func (r *Registry) Pause(jobID string) error {
	return r.setEnabled(jobID, false)
}

// Resume re-enables a paused job on its original schedule.
func (r *Registry) Resume(jobID string) error {
	return r.setEnabled(jobID, true)
}

func (r *Registry) setEnabled(jobID string, enabled bool) error {
	r.mu.Lock()
	j, ok := r.jobs[jobID]
	if ok {
		j.enabled = enabled
	}
	r.mu.Unlock()

	if !ok {
		return apperr.Newf(apperr.NotFound, "job %s not found", jobID)
	}
	r.log.Info("job state changed", "job_id", jobID, "enabled", enabled)
	return nil
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// fire runs a job's callback if it is still registered and enabled. Invoked
// by the cron runner; the registry lock is released before the callback runs.
func (r *Registry) fire(jobID string) {
	r.mu.Lock()
	j, ok := r.jobs[jobID]
	enabled := ok && j.enabled
	var run func()
	if enabled {
		run = j.run
	}
	r.mu.Unlock()

	if !enabled {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("job callback panicked", "job_id", jobID, "panic", rec)
		}
	}()
	run()
}
