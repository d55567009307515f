package credential

import (
	"time"

	"accountpool/internal/pkg/id"
)

// scheduleRefresh queues a metadata refresh for acc. With dedupe set, nothing
// is queued while an earlier refresh is still pending. Callers hold the
// account lock.
func (p *Pool) scheduleRefresh(acc *account, delay time.Duration, force, dedupe bool) {
	if dedupe && acc.refreshPending {
		return
	}
	acc.refreshPending = true

	job := Job{
		ID:      id.JobID(),
		Kind:    JobRefreshInfo,
		Account: acc.name,
		Delay:   delay,
		Force:   force,
	}
	p.log.Debug("Scheduled Account refresh for %s:%s in %d seconds.", p.kind, acc.name, int(delay.Seconds()))
	p.sched.Schedule(job)
}
