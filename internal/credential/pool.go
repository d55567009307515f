package credential

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/im7mortal/kmutex"
	"github.com/juju/clock"

	"accountpool/internal/logger"
)

const (
	DefaultLoginTimeout  = 600 * time.Minute
	DefaultInfoThreshold = 600 * time.Minute
)

// Pool owns every account of one service kind. Operations on the same
// account name are serialized; different names proceed independently.
type Pool struct {
	kind       string
	svc        Service
	transports TransportFactory
	sched      Scheduler

	log   logger.Logger
	clock clock.Clock
	loc   *time.Location

	randMu sync.Mutex
	rand   *rand.Rand

	settingsMu    sync.RWMutex
	loginTimeout  time.Duration
	infoThreshold time.Duration

	// locks is taken before mu, never the other way round.
	locks    *kmutex.Kmutex
	mu       sync.RWMutex
	accounts map[string]*account
}

type Option func(*Pool)

func WithLogger(l logger.Logger) Option { return func(p *Pool) { p.log = l } }

func WithClock(c clock.Clock) Option { return func(p *Pool) { p.clock = c } }

// WithRand makes account selection reproducible.
func WithRand(r *rand.Rand) Option { return func(p *Pool) { p.rand = r } }

// WithLocation sets the zone time windows are evaluated in.
func WithLocation(loc *time.Location) Option { return func(p *Pool) { p.loc = loc } }

func WithLoginTimeout(d time.Duration) Option { return func(p *Pool) { p.loginTimeout = d } }

func WithInfoThreshold(d time.Duration) Option { return func(p *Pool) { p.infoThreshold = d } }

// NewPool builds an empty pool. kind is the service tag handed to the
// transport factory and echoed as AccountInfo.Type.
func NewPool(kind string, svc Service, transports TransportFactory, sched Scheduler, opts ...Option) *Pool {
	p := &Pool{
		kind:          kind,
		svc:           svc,
		transports:    transports,
		sched:         sched,
		log:           logger.Default(),
		clock:         clock.WallClock,
		loc:           time.Local,
		loginTimeout:  DefaultLoginTimeout,
		infoThreshold: DefaultInfoThreshold,
		locks:         kmutex.New(),
		accounts:      make(map[string]*account),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Kind returns the service tag of the pool.
func (p *Pool) Kind() string { return p.kind }

// SetTimeouts changes the session timeout and the info staleness threshold.
// Non-positive values leave the current setting unchanged.
func (p *Pool) SetTimeouts(login, threshold time.Duration) {
	p.settingsMu.Lock()
	defer p.settingsMu.Unlock()
	if login > 0 {
		p.loginTimeout = login
	}
	if threshold > 0 {
		p.infoThreshold = threshold
	}
}

func (p *Pool) timeouts() (login, threshold time.Duration) {
	p.settingsMu.RLock()
	defer p.settingsMu.RUnlock()
	return p.loginTimeout, p.infoThreshold
}

func (p *Pool) lookup(name string) *account {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accounts[name]
}

// names returns the account names in a stable order.
func (p *Pool) names() []string {
	p.mu.RLock()
	out := make([]string, 0, len(p.accounts))
	for name := range p.accounts {
		out = append(out, name)
	}
	p.mu.RUnlock()
	slices.Sort(out)
	return out
}

// SetAll replaces the whole pool and logs every account in, one after the
// other. A failed login only invalidates that account.
func (p *Pool) SetAll(ctx context.Context, configs []Config) {
	keep := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		keep[cfg.Name] = struct{}{}
	}
	for _, name := range p.names() {
		if _, ok := keep[name]; !ok {
			p.Remove(name)
		}
	}

	for _, cfg := range configs {
		p.locks.Lock(cfg.Name)
		acc := &account{
			name:    cfg.Name,
			secret:  cfg.Secret,
			options: cfg.Options.clone(),
			valid:   true,
		}
		p.mu.Lock()
		p.accounts[cfg.Name] = acc
		p.mu.Unlock()

		p.login(ctx, acc)
		acc.info = &Info{}
		p.locks.Unlock(cfg.Name)
	}
	p.log.Info("Loaded %d %s accounts", len(configs), p.kind)
}

// AddOrUpdate reports whether anything changed. A new secret always forces a
// fresh login; options are merged key by key. Any update re-validates the
// account, which is the only way an invalid account becomes usable again.
func (p *Pool) AddOrUpdate(ctx context.Context, name, secret string, options Options) bool {
	p.locks.Lock(name)
	defer p.locks.Unlock(name)

	if acc := p.lookup(name); acc != nil {
		acc.valid = true
		if secret != "" {
			acc.secret = secret
			p.relogin(ctx, acc)
			return true
		}
		if len(options) > 0 {
			before := acc.options
			merged := before.clone()
			for k, v := range options {
				merged[k] = slices.Clone(v)
			}
			acc.options = merged
			return !merged.equal(before)
		}
		return false
	}

	acc := &account{
		name:    name,
		secret:  secret,
		options: options.clone(),
		valid:   true,
	}
	p.mu.Lock()
	p.accounts[name] = acc
	p.mu.Unlock()

	p.login(ctx, acc)
	return true
}

// sessionForgetter is implemented by transport factories that keep session
// state beyond a handle's lifetime.
type sessionForgetter interface {
	Forget(kind, name string) error
}

// Remove drops the account together with its cached info and session state.
func (p *Pool) Remove(name string) {
	p.locks.Lock(name)
	defer p.locks.Unlock(name)

	p.mu.Lock()
	_, existed := p.accounts[name]
	delete(p.accounts, name)
	p.mu.Unlock()

	if f, ok := p.transports.(sessionForgetter); ok && existed {
		if err := f.Forget(p.kind, name); err != nil {
			p.log.Warn("Could not drop %s session of %s: %v", p.kind, name, err)
		}
	}
}

// GetAll returns the info view of every account, ordered by name.
func (p *Pool) GetAll(ctx context.Context, force bool) []AccountInfo {
	names := p.names()
	out := make([]AccountInfo, 0, len(names))
	for _, name := range names {
		info, err := p.GetInfo(ctx, name, force)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out
}

func (p *Pool) IsPremium(ctx context.Context, name string) (bool, error) {
	info, err := p.GetInfo(ctx, name, false)
	if err != nil {
		return false, err
	}
	return info.Premium, nil
}

// CanUse reports whether Select would return an account right now.
func (p *Pool) CanUse() bool {
	_, ok := p.Select()
	return ok
}

// AccountData returns the account's configuration without its secret.
func (p *Pool) AccountData(name string) (Snapshot, bool) {
	p.locks.Lock(name)
	defer p.locks.Unlock(name)

	acc := p.lookup(name)
	if acc == nil {
		return Snapshot{}, false
	}
	return acc.snapshot(), true
}

// Acquire returns a transport handle for name, or for a selected account
// when name is empty. The caller closes the handle.
func (p *Pool) Acquire(name string) (string, Transport, error) {
	if name == "" {
		s, ok := p.Select()
		if !ok {
			return "", nil, ErrNoAccount
		}
		name = s.Name
	} else if p.lookup(name) == nil {
		return "", nil, ErrUnknownAccount
	}

	t, err := p.transports.Acquire(p.kind, name)
	if err != nil {
		return "", nil, err
	}
	return name, t, nil
}

// RunJob is the scheduler callback.
func (p *Pool) RunJob(ctx context.Context, job Job) {
	switch job.Kind {
	case JobRefreshInfo:
		if _, err := p.GetInfo(ctx, job.Account, job.Force); errors.Is(err, ErrUnknownAccount) {
			p.log.Debug("Skip %s refresh for removed account %s", p.kind, job.Account)
		}
	case JobCheckSessions:
		for _, name := range p.names() {
			if ctx.Err() != nil {
				return
			}
			p.CheckLoginFreshness(ctx, name)
		}
	default:
		p.log.Warn("Unknown job kind %q for %s", job.Kind, job.Account)
	}
}

func (p *Pool) intn(n int) int {
	p.randMu.Lock()
	defer p.randMu.Unlock()
	if p.rand == nil {
		return rand.IntN(n)
	}
	return p.rand.IntN(n)
}
