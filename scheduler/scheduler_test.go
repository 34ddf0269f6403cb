package scheduler_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsplane/incidentbot/scheduler"
)

func TestReminderJobID(t *testing.T) {
	assert.Equal(t, "inc-200_updates_reminder", scheduler.ReminderJobID("inc-200"))
}

func TestUpsertAndDelete(t *testing.T) {
	s := scheduler.New(func(scheduler.Job) {})
	defer s.Stop()

	jobID := scheduler.ReminderJobID("inc-1")
	replaced := s.Upsert(scheduler.Job{ID: jobID, ChannelID: "C1", ChannelName: "inc-1", Severity: "sev2"})
	assert.False(t, replaced)

	job, ok := s.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, "sev2", job.Severity)

	// same key again => replace, never a second job
	replaced = s.Upsert(scheduler.Job{ID: jobID, ChannelID: "C1", ChannelName: "inc-1", Severity: "sev1"})
	assert.True(t, replaced)
	assert.Len(t, s.Jobs(), 1)

	job, ok = s.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, "sev1", job.Severity)

	assert.True(t, s.Delete(jobID))
	assert.False(t, s.Delete(jobID))
	assert.Empty(t, s.Jobs())
}

func TestFire(t *testing.T) {
	var mu sync.Mutex
	var fired []string
	s := scheduler.New(func(job scheduler.Job) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, job.ID)
	})
	defer s.Stop()

	jobID := scheduler.ReminderJobID("inc-2")
	s.Upsert(scheduler.Job{ID: jobID, ChannelID: "C2", ChannelName: "inc-2", Severity: "sev1"})

	require.True(t, s.Fire(jobID))
	require.False(t, s.Fire("missing_updates_reminder"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{jobID}, fired)
}

func TestFireSurvivesPanic(t *testing.T) {
	s := scheduler.New(func(scheduler.Job) {
		panic("boom")
	})
	defer s.Stop()

	jobID := scheduler.ReminderJobID("inc-3")
	s.Upsert(scheduler.Job{ID: jobID, ChannelID: "C3", ChannelName: "inc-3"})

	assert.NotPanics(t, func() {
		s.Fire(jobID)
	})
}

func TestTicker(t *testing.T) {
	var mu sync.Mutex
	count := 0
	s := scheduler.New(func(scheduler.Job) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})
	defer s.Stop()

	jobID := scheduler.ReminderJobID("inc-4")
	s.Upsert(scheduler.Job{ID: jobID, ChannelID: "C4", ChannelName: "inc-4", Cadence: 10 * time.Millisecond})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 2
	}, 2*time.Second, 5*time.Millisecond)

	s.Delete(jobID)
	mu.Lock()
	after := count
	mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, count, after+1)
}
