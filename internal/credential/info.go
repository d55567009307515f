package credential

import (
	"context"
	"fmt"
)

// GetInfo returns the default info shape merged with the cached record.
//
// A forced read, or the first read of an account added through AddOrUpdate,
// fetches synchronously. Accounts loaded by SetAll start with an empty record,
// so their first read returns the defaults and is served by a background
// refresh instead of a synchronous fetch. Afterwards a record older than the
// staleness threshold is returned as-is while a refresh is queued on the
// scheduler.
func (p *Pool) GetInfo(ctx context.Context, name string, force bool) (AccountInfo, error) {
	p.locks.Lock(name)
	defer p.locks.Unlock(name)

	acc := p.lookup(name)
	if acc == nil {
		return AccountInfo{}, ErrUnknownAccount
	}

	_, threshold := p.timeouts()
	switch {
	case force || acc.info == nil:
		p.log.Debug("Get %s Account Info for %s", p.kind, name)
		acc.info = p.fetchInfo(ctx, acc)
		acc.refreshPending = false
		p.log.Debug("Account Info: %s", describeInfo(acc.info))
	case acc.info.FetchedAt.Add(threshold).Before(p.clock.Now()):
		p.scheduleRefresh(acc, 0, true, true)
	}

	return p.merge(acc), nil
}

// fetchInfo never fails: errors end up in Info.Error. The transport handle
// is released on every path.
func (p *Pool) fetchInfo(ctx context.Context, acc *account) *Info {
	info, err := p.fetchWithTransport(ctx, acc.name)
	if err != nil {
		info = &Info{Error: (&InfoFetchError{Account: acc.name, Err: err}).Error()}
	} else {
		info = info.clone()
	}
	info.FetchedAt = p.clock.Now()
	return info
}

func (p *Pool) fetchWithTransport(ctx context.Context, name string) (info *Info, err error) {
	t, err := p.transports.Acquire(p.kind, name)
	if err != nil {
		return nil, err
	}
	defer p.closeTransport(name, t)
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	info, err = p.svc.FetchInfo(ctx, name, t)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrMalformedInfo
	}
	return info, nil
}

func (p *Pool) closeTransport(name string, t Transport) {
	if err := t.Close(); err != nil {
		p.log.Debug("Close %s transport for %s: %v", p.kind, name, err)
	}
}

// merge lays the cached fields over the default shape.
func (p *Pool) merge(acc *account) AccountInfo {
	out := AccountInfo{
		Login:   acc.name,
		Type:    p.kind,
		Options: acc.options.clone(),
		Valid:   acc.valid,
		Premium: true,
	}

	info := acc.info.clone()
	if info == nil {
		return out
	}
	out.ValidUntil = info.ValidUntil
	out.TrafficLeft = info.TrafficLeft
	out.MaxTraffic = info.MaxTraffic
	if info.Premium != nil {
		out.Premium = *info.Premium
	}
	out.FetchedAt = info.FetchedAt
	out.Error = info.Error
	return out
}

func describeInfo(i *Info) string {
	s := fmt.Sprintf("fetched=%s", i.FetchedAt.Format("2006-01-02 15:04:05"))
	if i.ValidUntil != nil {
		s += " validuntil=" + i.ValidUntil.Format("2006-01-02 15:04:05")
	}
	if i.TrafficLeft != nil {
		s += " trafficleft=" + FormatTraffic(*i.TrafficLeft)
	}
	if i.MaxTraffic != nil {
		s += " maxtraffic=" + FormatTraffic(*i.MaxTraffic)
	}
	if i.Premium != nil {
		s += fmt.Sprintf(" premium=%t", *i.Premium)
	}
	if i.Error != "" {
		s += " error=" + i.Error
	}
	return s
}
