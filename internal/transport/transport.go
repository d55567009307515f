// Package transport hands out per-account HTTP sessions. Each account keeps
// its own cookie jar, persisted under the data directory between runs.
package transport

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	cookiejar "github.com/juju/persistent-cookiejar"

	"accountpool/internal/config"
	"accountpool/internal/credential"
)

type Options struct {
	// Dir holds one cookie file per account. Empty keeps sessions in memory.
	Dir       string
	Proxy     string
	Timeout   time.Duration
	UserAgent string
}

// OptionsFromConfig derives factory options from the process configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Proxy:     cfg.Proxy,
		UserAgent: cfg.UserAgent,
	}
	if cfg.TimeoutMs > 0 {
		opts.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	if cfg.DataDir != "" {
		opts.Dir = filepath.Join(cfg.DataDir, "cookies")
	}
	return opts
}

// Factory implements credential.TransportFactory. Sessions are created on
// first use and shared by every handle for the same kind and name.
type Factory struct {
	opts Options
	base *http.Transport

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	client *http.Client
}

func NewFactory(opts Options) (*Factory, error) {
	base := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
		ForceAttemptHTTP2:     false,
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, errors.Annotatef(err, "invalid proxy %q", opts.Proxy)
		}
		base.Proxy = http.ProxyURL(proxyURL)
	}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
			return nil, errors.Annotatef(err, "cannot create cookie directory")
		}
	}
	return &Factory{
		opts:     opts,
		base:     base,
		sessions: make(map[string]*session),
	}, nil
}

// Acquire returns a new handle on the session of kind/name.
func (f *Factory) Acquire(kind, name string) (credential.Transport, error) {
	s, err := f.session(kind, name)
	if err != nil {
		return nil, err
	}
	return &Handle{s: s, userAgent: f.opts.UserAgent}, nil
}

func (f *Factory) session(kind, name string) (*session, error) {
	key := kind + "/" + name

	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[key]; ok {
		return s, nil
	}

	jarOpts := &cookiejar.Options{NoPersist: true}
	if f.opts.Dir != "" {
		jarOpts = &cookiejar.Options{Filename: f.cookieFile(kind, name)}
	}
	jar, err := cookiejar.New(jarOpts)
	if err != nil {
		return nil, errors.Annotatef(err, "cannot open cookie jar for %s", key)
	}

	s := &session{
		jar: jar,
		client: &http.Client{
			Transport: f.base,
			Jar:       jar,
			Timeout:   f.opts.Timeout,
		},
	}
	f.sessions[key] = s
	return s, nil
}

// cookieFile names the jar by a stable hash so account names never form
// paths.
func (f *Factory) cookieFile(kind, name string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(kind+"/"+name))
	return filepath.Join(f.opts.Dir, id.String()+".cookies")
}

// Forget drops the in-memory session of kind/name and its cookie file.
func (f *Factory) Forget(kind, name string) error {
	f.mu.Lock()
	delete(f.sessions, kind+"/"+name)
	f.mu.Unlock()

	if f.opts.Dir == "" {
		return nil
	}
	err := os.Remove(f.cookieFile(kind, name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Trace(err)
	}
	return nil
}

// Handle is one scoped use of an account session.
type Handle struct {
	s         *session
	userAgent string
	closed    atomic.Bool
}

// Client returns the HTTP client bound to the account's cookie jar.
func (h *Handle) Client() *http.Client { return h.s.client }

func (h *Handle) UserAgent() string { return h.userAgent }

// ClearSession removes every stored cookie of the account.
func (h *Handle) ClearSession() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.jar.RemoveAll()
}

// Close persists the session. Only the first call has an effect.
func (h *Handle) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if err := h.s.jar.Save(); err != nil {
		return errors.Annotatef(err, "cannot save cookie jar")
	}
	return nil
}

var (
	_ credential.TransportFactory = (*Factory)(nil)
	_ credential.Transport        = (*Handle)(nil)
)
