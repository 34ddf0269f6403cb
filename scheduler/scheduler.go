// Package scheduler maintains the set of recurring update-reminder jobs,
// at most one per incident channel, addressed by a deterministic key.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ReminderJobID derives the job key for an incident channel.
func ReminderJobID(channelName string) string {
	return fmt.Sprintf("%s_updates_reminder", channelName)
}

type Job struct {
	ID          string
	ChannelID   string
	ChannelName string
	Severity    string
	Cadence     time.Duration
}

// NotifyFunc is invoked on every tick of a job. It must fail soft: errors
// are the callback's to log, they never reach the scheduler.
type NotifyFunc func(job Job)

type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*runningJob
	notify NotifyFunc
}

type runningJob struct {
	job  Job
	stop chan struct{}
}

func New(notify NotifyFunc) *Scheduler {
	return &Scheduler{
		jobs:   map[string]*runningJob{},
		notify: notify,
	}
}

// Upsert registers a job under its key, replacing any job already held
// under the same key. It reports whether a previous job was replaced.
func (s *Scheduler) Upsert(job Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	if prev, ok := s.jobs[job.ID]; ok {
		close(prev.stop)
		delete(s.jobs, job.ID)
		replaced = true
	}

	rj := &runningJob{job: job, stop: make(chan struct{})}
	s.jobs[job.ID] = rj
	if job.Cadence > 0 && s.notify != nil {
		go s.run(rj)
	}
	return replaced
}

func (s *Scheduler) run(rj *runningJob) {
	ticker := time.NewTicker(rj.job.Cadence)
	defer ticker.Stop()
	for {
		select {
		case <-rj.stop:
			return
		case <-ticker.C:
			s.fire(rj.job)
		}
	}
}

func (s *Scheduler) fire(job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("reminder job panicked", slog.String("job_id", job.ID), slog.Any("panic", r))
		}
	}()
	s.notify(job)
}

// Delete cancels and removes the job under the key, reporting whether one
// existed.
func (s *Scheduler) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rj, ok := s.jobs[id]
	if !ok {
		return false
	}
	close(rj.stop)
	delete(s.jobs, id)
	return true
}

func (s *Scheduler) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rj, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return rj.job, true
}

func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, rj := range s.jobs {
		jobs = append(jobs, rj.job)
	}
	return jobs
}

// Fire triggers a job synchronously, outside its ticker. Used by tests and
// manual nudges.
func (s *Scheduler) Fire(id string) bool {
	s.mu.Lock()
	rj, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if s.notify != nil {
		s.fire(rj.job)
	}
	return true
}

// Stop cancels every job. The scheduler is not reusable afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rj := range s.jobs {
		close(rj.stop)
		delete(s.jobs, id)
	}
}
