// Package scheduler runs deferred and recurring pool jobs on a single
// goroutine ordered by a min-heap of trigger times.
package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/juju/clock"

	"accountpool/internal/credential"
	"accountpool/internal/logger"
)

const maxSleepCap = 60 * time.Second

// Scheduler implements credential.Scheduler. Schedule never blocks; jobs are
// dispatched once Run is active.
type Scheduler struct {
	clock clock.Clock
	log   logger.Logger

	mu    sync.Mutex
	queue jobHeap
	seq   uint64

	wake chan struct{}
}

func New(clk clock.Clock, log logger.Logger) *Scheduler {
	if clk == nil {
		clk = clock.WallClock
	}
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{
		clock: clk,
		log:   log,
		wake:  make(chan struct{}, 1),
	}
}

// Schedule queues job to fire after job.Delay. A job with a cron expression
// and no delay first fires at the next cron tick and then keeps recurring.
func (s *Scheduler) Schedule(job credential.Job) {
	now := s.clock.Now()
	at := now.Add(job.Delay)
	if job.CronExpr != "" && job.Delay <= 0 {
		next, err := nextCronOccurrence(job.CronExpr, now)
		if err != nil {
			s.log.Warn("Drop job %s: invalid cron %q: %v", job.Kind, job.CronExpr, err)
			return
		}
		at = next
	}

	s.mu.Lock()
	s.seq++
	heapPush(&s.queue, entry{at: at, seq: s.seq, job: job})
	s.mu.Unlock()
	s.notify()
}

// Cancel removes a queued job. It reports whether the job was still pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	removed := heapRemoveByID(&s.queue, id)
	s.mu.Unlock()
	if removed {
		s.notify()
	}
	return removed
}

// Len returns the number of queued jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run dispatches due jobs to onTrigger, each in its own goroutine, until ctx
// is cancelled. It waits for running callbacks before returning.
func (s *Scheduler) Run(ctx context.Context, onTrigger func(context.Context, credential.Job)) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		due, wait := s.popDue(s.clock.Now())
		for _, job := range due {
			wg.Add(1)
			go func(job credential.Job) {
				defer wg.Done()
				onTrigger(ctx, job)
			}(job)
		}

		var timer clock.Timer
		var timerCh <-chan time.Time
		if wait >= 0 {
			timer = s.clock.NewTimer(min(wait, maxSleepCap))
			timerCh = timer.Chan()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.wake:
		case <-timerCh:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// popDue removes every job due at now, re-queues recurring ones, and returns
// the time until the next pending job (-1 when nothing is queued).
func (s *Scheduler) popDue(now time.Time) ([]credential.Job, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []credential.Job
	for s.queue.Len() > 0 && !s.queue[0].at.After(now) {
		e := heapPop(&s.queue)
		due = append(due, e.job)
		if e.job.CronExpr == "" {
			continue
		}
		next, err := nextCronOccurrence(e.job.CronExpr, now)
		if err != nil {
			s.log.Warn("Stop recurring job %s: %v", e.job.Kind, err)
			continue
		}
		s.seq++
		heapPush(&s.queue, entry{at: next, seq: s.seq, job: e.job})
	}

	if s.queue.Len() == 0 {
		return due, -1
	}
	return due, s.queue[0].at.Sub(now)
}

// nextCronOccurrence returns the next time expr fires strictly after start.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// ValidCron reports whether expr is a five-field cron expression.
func ValidCron(expr string) bool {
	return len(strings.Fields(expr)) == 5 && gronx.IsValid(expr)
}
