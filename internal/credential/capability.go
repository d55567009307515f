package credential

import (
	"context"
	"time"
)

// Service is one remote-service variant: how to log in and how to fetch
// account metadata. Implementations must not call back into the Pool for the
// same account while a call is in progress.
type Service interface {
	// Login authenticates name with secret over t. It returns nil on
	// success, an error wrapping ErrWrongCredential when the remote service
	// rejects the secret, and any other error for transport or protocol
	// failures.
	Login(ctx context.Context, name, secret string, t Transport) error

	// FetchInfo retrieves quota and validity metadata for name over t.
	// A nil Info with a nil error is treated as a malformed result.
	FetchInfo(ctx context.Context, name string, t Transport) (*Info, error)
}

// Transport is a scoped handle holding the account's session. Every handle
// acquired from a TransportFactory is closed exactly once.
type Transport interface {
	// ClearSession drops session affinity such as stored cookies.
	ClearSession()
	Close() error
}

// TransportFactory hands out transport handles keyed by service kind and
// account name.
type TransportFactory interface {
	Acquire(kind, name string) (Transport, error)
}

// JobKind identifies what a scheduled job does when it fires.
type JobKind string

const (
	// JobRefreshInfo re-fetches one account's metadata.
	JobRefreshInfo JobKind = "refresh-info"
	// JobCheckSessions runs CheckLoginFreshness over every account.
	JobCheckSessions JobKind = "check-sessions"
)

// Job describes a deferred unit of work. It carries values only, so a queued
// job is unaffected by later changes to the pool.
type Job struct {
	ID      string
	Kind    JobKind
	Account string
	Delay   time.Duration
	Force   bool
	// CronExpr makes the job recurring when non-empty.
	CronExpr string
}

// Scheduler executes jobs after their delay. Schedule must not block on the
// job running; results are never reported back to the caller.
type Scheduler interface {
	Schedule(job Job)
}
