package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountpool/internal/credential"
	"accountpool/internal/logger"
)

const shortWait = 2 * time.Second

var start = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type harness struct {
	clock *testclock.Clock
	sched *Scheduler
	fired chan credential.Job
}

func run(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock: testclock.NewClock(start),
		fired: make(chan credential.Job, 16),
	}
	h.sched = New(h.clock, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.sched.Run(ctx, func(_ context.Context, job credential.Job) { h.fired <- job })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func (h *harness) expectFired(t *testing.T, id string) {
	t.Helper()
	select {
	case job := <-h.fired:
		assert.Equal(t, id, job.ID)
	case <-time.After(shortWait):
		t.Fatalf("job %s did not fire", id)
	}
}

func (h *harness) expectQuiet(t *testing.T) {
	t.Helper()
	select {
	case job := <-h.fired:
		t.Fatalf("unexpected job %s", job.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScheduler_ImmediateJob(t *testing.T) {
	h := run(t)
	h.sched.Schedule(credential.Job{ID: "now", Kind: credential.JobRefreshInfo})
	h.expectFired(t, "now")
	assert.Zero(t, h.sched.Len())
}

func TestScheduler_DelayedJob(t *testing.T) {
	h := run(t)
	h.sched.Schedule(credential.Job{ID: "later", Delay: 30 * time.Minute})
	h.expectQuiet(t)

	require.NoError(t, h.clock.WaitAdvance(30*time.Minute, shortWait, 1))
	h.expectFired(t, "later")
}

func TestScheduler_FiresInTriggerOrder(t *testing.T) {
	h := run(t)
	h.sched.Schedule(credential.Job{ID: "second", Delay: 20 * time.Second})
	h.sched.Schedule(credential.Job{ID: "first", Delay: 10 * time.Second})

	require.NoError(t, h.clock.WaitAdvance(10*time.Second, shortWait, 1))
	h.expectFired(t, "first")
	h.expectQuiet(t)

	require.NoError(t, h.clock.WaitAdvance(10*time.Second, shortWait, 1))
	h.expectFired(t, "second")
}

func TestScheduler_Cancel(t *testing.T) {
	h := run(t)
	h.sched.Schedule(credential.Job{ID: "gone", Delay: time.Minute})
	assert.True(t, h.sched.Cancel("gone"))
	assert.False(t, h.sched.Cancel("gone"))
	assert.Zero(t, h.sched.Len())

	h.clock.Advance(2 * time.Minute)
	h.expectQuiet(t)
}

func TestScheduler_CronRecurs(t *testing.T) {
	h := run(t)
	h.sched.Schedule(credential.Job{ID: "sweep", Kind: credential.JobCheckSessions, CronExpr: "*/10 * * * *"})
	h.expectQuiet(t)

	for range 2 {
		require.NoError(t, h.clock.WaitAdvance(10*time.Minute, shortWait, 1))
		h.expectFired(t, "sweep")
	}
	assert.Equal(t, 1, h.sched.Len())
}

func TestScheduler_InvalidCronDropped(t *testing.T) {
	s := New(testclock.NewClock(start), logger.Nop())
	s.Schedule(credential.Job{ID: "bad", CronExpr: "every tuesday"})
	assert.Zero(t, s.Len())
}

func TestScheduler_ScheduleDoesNotBlockWithoutRun(t *testing.T) {
	s := New(testclock.NewClock(start), logger.Nop())
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Schedule(credential.Job{Delay: time.Hour})
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, s.Len())
}

func TestValidCron(t *testing.T) {
	assert.True(t, ValidCron("*/10 * * * *"))
	assert.False(t, ValidCron("0 */10 * * * *"))
	assert.False(t, ValidCron(""))
}
