package credential

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongCredential is returned by Service.Login when the remote
	// service rejects the secret.
	ErrWrongCredential = errors.New("wrong password")

	ErrUnknownAccount = errors.New("unknown account")
	ErrNoAccount      = errors.New("no usable account")
	ErrMalformedInfo  = errors.New("wrong return format")
)

// AuthError is a login failure other than a rejected secret.
type AuthError struct {
	Account string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login %s: %v", e.Account, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// InfoFetchError is recorded into Info.Error when metadata retrieval fails.
type InfoFetchError struct {
	Account string
	Err     error
}

func (e *InfoFetchError) Error() string {
	return fmt.Sprintf("fetch info %s: %v", e.Account, e.Err)
}

func (e *InfoFetchError) Unwrap() error { return e.Err }

// ConfigError reports a malformed account option.
type ConfigError struct {
	Option string
	Value  string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("option %s=%q: %v", e.Option, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
