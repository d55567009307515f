package credential

import (
	"context"
	"errors"
	"fmt"

	jujuerrors "github.com/juju/errors"
)

// login authenticates acc and records the outcome on it. Callers hold the
// account lock. Failures never propagate: they mark the account invalid.
func (p *Pool) login(ctx context.Context, acc *account) {
	err := p.loginWithTransport(ctx, acc)
	acc.lastLoginAt = p.clock.Now()

	switch {
	case err == nil:
		p.log.Debug("Logged in %s account %s", p.kind, acc.name)
	case errors.Is(err, ErrWrongCredential):
		p.log.Warn("Could not login with %s account %s | %s", p.kind, acc.name, "Wrong Password")
		acc.valid = false
	default:
		authErr := &AuthError{Account: acc.name, Err: err}
		p.log.Warn("Could not login with %s account %s | %v", p.kind, acc.name, err)
		p.log.Trace(authErr.Error(), jujuerrors.ErrorStack(err))
		acc.valid = false
	}
}

func (p *Pool) loginWithTransport(ctx context.Context, acc *account) (err error) {
	t, err := p.transports.Acquire(p.kind, acc.name)
	if err != nil {
		return err
	}
	defer p.closeTransport(acc.name, t)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return p.svc.Login(ctx, acc.name, acc.secret, t)
}

// relogin drops the stored session and the cached info, then logs in again.
func (p *Pool) relogin(ctx context.Context, acc *account) {
	if t, err := p.transports.Acquire(p.kind, acc.name); err == nil {
		t.ClearSession()
		p.closeTransport(acc.name, t)
	}
	acc.info = nil
	p.login(ctx, acc)
}

// CheckLoginFreshness reports whether the account's session is still within
// the login timeout. An expired session is re-established before returning
// false. Accounts that never attempted a login count as fresh.
func (p *Pool) CheckLoginFreshness(ctx context.Context, name string) bool {
	p.locks.Lock(name)
	defer p.locks.Unlock(name)

	acc := p.lookup(name)
	if acc == nil || acc.lastLoginAt.IsZero() {
		return true
	}

	loginTimeout, _ := p.timeouts()
	if !acc.lastLoginAt.Add(loginTimeout).Before(p.clock.Now()) {
		return true
	}

	p.log.Debug("Reached login timeout for %s:%s", p.kind, name)
	if !acc.valid {
		return false
	}
	p.relogin(ctx, acc)
	return false
}
