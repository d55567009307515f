// Package httpform is a credential.Service for hosters that log in with a
// form post and report quota as JSON.
package httpform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/juju/errors"

	"accountpool/internal/config"
	"accountpool/internal/credential"
)

const maxBodyBytes = 1 << 20

// Session is the part of a transport handle the service needs.
type Session interface {
	Client() *http.Client
	UserAgent() string
}

type Config struct {
	LoginURL string
	InfoURL  string
	// UserField and SecretField name the login form fields.
	UserField   string
	SecretField string
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		LoginURL: cfg.ServiceLoginURL,
		InfoURL:  cfg.ServiceInfoURL,
	}
}

type Service struct {
	cfg Config
}

func New(cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.LoginURL) == "" {
		return nil, errors.NotValidf("empty login url")
	}
	if strings.TrimSpace(cfg.InfoURL) == "" {
		return nil, errors.NotValidf("empty info url")
	}
	if cfg.UserField == "" {
		cfg.UserField = "username"
	}
	if cfg.SecretField == "" {
		cfg.SecretField = "password"
	}
	return &Service{cfg: cfg}, nil
}

func session(t credential.Transport) (Session, error) {
	s, ok := t.(Session)
	if !ok {
		return nil, errors.Errorf("transport %T carries no http session", t)
	}
	return s, nil
}

// Login posts the credentials. 401 and 403 mean the secret was rejected.
func (s *Service) Login(ctx context.Context, name, secret string, t credential.Transport) error {
	sess, err := session(t)
	if err != nil {
		return err
	}

	form := url.Values{
		s.cfg.UserField:   {name},
		s.cfg.SecretField: {secret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Trace(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", sess.UserAgent())

	resp, err := sess.Client().Do(req)
	if err != nil {
		return errors.Annotatef(err, "login request")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (HTTP %d)", credential.ErrWrongCredential, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return errors.Errorf("login failed: HTTP %d: %s", resp.StatusCode, snippet(body))
	}
	return nil
}

// FetchInfo reads the quota document of the logged in account.
func (s *Service) FetchInfo(ctx context.Context, name string, t credential.Transport) (*credential.Info, error) {
	sess, err := session(t)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(s.cfg.InfoURL)
	if err != nil {
		return nil, errors.Annotatef(err, "info url")
	}
	q := u.Query()
	q.Set(s.cfg.UserField, name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", sess.UserAgent())

	resp, err := sess.Client().Do(req)
	if err != nil {
		return nil, errors.Annotatef(err, "info request")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Annotatef(err, "read info")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("info: HTTP %d: %s", resp.StatusCode, snippet(body))
	}

	info, err := parseInfo(body)
	if err != nil {
		return nil, fmt.Errorf("decode info: %w", err)
	}
	return info, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

var _ credential.Service = (*Service)(nil)
