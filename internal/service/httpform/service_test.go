package httpform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountpool/internal/credential"
	"accountpool/internal/transport"
)

type hoster struct {
	*httptest.Server
	mu   sync.Mutex
	info string
}

func (h *hoster) setInfo(body string) {
	h.mu.Lock()
	h.info = body
	h.mu.Unlock()
}

func newHoster(t *testing.T) *hoster {
	t.Helper()
	h := &hoster{info: `{"validuntil": 1893456000, "trafficleft": "1.5 GB", "maxtraffic": 4194304, "premium": true}`}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.FormValue("password") == "boom":
			w.WriteHeader(http.StatusBadGateway)
		case r.FormValue("password") != "hunter2":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: r.FormValue("username"), Path: "/"})
		}
	})
	mux.HandleFunc("GET /info", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("sid")
		if err != nil || c.Value != r.URL.Query().Get("username") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h.mu.Lock()
		body := h.info
		h.mu.Unlock()
		_, _ = w.Write([]byte(body))
	})
	h.Server = httptest.NewServer(mux)
	t.Cleanup(h.Close)
	return h
}

func setup(t *testing.T) (*hoster, *Service, credential.Transport) {
	t.Helper()
	h := newHoster(t)
	svc, err := New(Config{LoginURL: h.URL + "/login", InfoURL: h.URL + "/info"})
	require.NoError(t, err)
	f, err := transport.NewFactory(transport.Options{UserAgent: "test"})
	require.NoError(t, err)
	tr, err := f.Acquire("httpform", "alice")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return h, svc, tr
}

func TestLogin(t *testing.T) {
	_, svc, tr := setup(t)
	ctx := context.Background()

	err := svc.Login(ctx, "alice", "wrong", tr)
	assert.ErrorIs(t, err, credential.ErrWrongCredential)

	err = svc.Login(ctx, "alice", "boom", tr)
	require.Error(t, err)
	assert.NotErrorIs(t, err, credential.ErrWrongCredential)
	assert.Contains(t, err.Error(), "HTTP 502")

	assert.NoError(t, svc.Login(ctx, "alice", "hunter2", tr))
}

func TestFetchInfo(t *testing.T) {
	_, svc, tr := setup(t)
	ctx := context.Background()

	_, err := svc.FetchInfo(ctx, "alice", tr)
	assert.ErrorContains(t, err, "HTTP 401")

	require.NoError(t, svc.Login(ctx, "alice", "hunter2", tr))
	info, err := svc.FetchInfo(ctx, "alice", tr)
	require.NoError(t, err)

	assert.Equal(t, time.Unix(1893456000, 0), *info.ValidUntil)
	assert.Equal(t, int64(1536*1024), *info.TrafficLeft)
	assert.Equal(t, int64(4194304), *info.MaxTraffic)
	assert.True(t, *info.Premium)
}

func TestFetchInfo_PartialAndMalformed(t *testing.T) {
	h, svc, tr := setup(t)
	ctx := context.Background()
	require.NoError(t, svc.Login(ctx, "alice", "hunter2", tr))

	h.setInfo(`{"trafficleft": -1, "premium": "false"}`)
	info, err := svc.FetchInfo(ctx, "alice", tr)
	require.NoError(t, err)
	assert.Nil(t, info.ValidUntil)
	assert.Equal(t, int64(-1), *info.TrafficLeft)
	assert.False(t, *info.Premium)

	h.setInfo(`{"trafficleft": "1.5", "maxtraffic": " 2048.9 "}`)
	info, err = svc.FetchInfo(ctx, "alice", tr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), *info.TrafficLeft)
	assert.Equal(t, int64(2048), *info.MaxTraffic)

	h.setInfo(`<html>maintenance</html>`)
	_, err = svc.FetchInfo(ctx, "alice", tr)
	assert.ErrorIs(t, err, credential.ErrMalformedInfo)

	h.setInfo(`{"trafficleft": "plenty"}`)
	_, err = svc.FetchInfo(ctx, "alice", tr)
	assert.ErrorContains(t, err, "trafficleft")
}

type bareTransport struct{}

func (bareTransport) ClearSession() {}
func (bareTransport) Close() error  { return nil }

func TestRequiresHTTPSession(t *testing.T) {
	_, svc, _ := setup(t)
	err := svc.Login(context.Background(), "alice", "hunter2", bareTransport{})
	assert.ErrorContains(t, err, "no http session")
}

func TestNew_Validates(t *testing.T) {
	_, err := New(Config{InfoURL: "http://x"})
	assert.Error(t, err)
	_, err = New(Config{LoginURL: "http://x"})
	assert.Error(t, err)
}
