package credential

import "time"

const (
	depletedRecheck = 30 * time.Minute
	expiredRecheck  = 60 * time.Minute
)

// MarkDepleted records that the account ran out of traffic so it drops out of
// selection until a later fetch says otherwise.
func (p *Pool) MarkDepleted(name string) {
	p.locks.Lock(name)
	defer p.locks.Unlock(name)

	acc := p.lookup(name)
	if acc == nil || acc.info == nil {
		return
	}

	p.log.Warn("%s Account %s has not enough traffic, checking again in 30min", p.kind, name)
	var zero int64
	acc.info.TrafficLeft = &zero
	p.scheduleRefresh(acc, depletedRecheck, true, false)
}

// MarkExpired records that the account's validity ended.
func (p *Pool) MarkExpired(name string) {
	p.locks.Lock(name)
	defer p.locks.Unlock(name)

	acc := p.lookup(name)
	if acc == nil || acc.info == nil {
		return
	}

	p.log.Warn("%s Account %s is expired, checking again in 1h", p.kind, name)
	expired := p.clock.Now().Add(-time.Second)
	acc.info.ValidUntil = &expired
	p.scheduleRefresh(acc, expiredRecheck, true, false)
}
