package credential

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type fakeService struct {
	mu         sync.Mutex
	loginErr   map[string]error
	loginPanic map[string]bool
	infos      map[string]*Info
	fetchErr   map[string]error
	fetchPanic map[string]bool
	// block, when set, is received from before every fetch returns.
	block chan struct{}
	// loginBlock does the same for logins.
	loginBlock chan struct{}
	logins  map[string]int
	fetches map[string]int
}

func newFakeService() *fakeService {
	return &fakeService{
		loginErr:   map[string]error{},
		loginPanic: map[string]bool{},
		infos:      map[string]*Info{},
		fetchErr:   map[string]error{},
		fetchPanic: map[string]bool{},
		logins:     map[string]int{},
		fetches:    map[string]int{},
	}
}

func (s *fakeService) Login(_ context.Context, name, secret string, _ Transport) error {
	s.mu.Lock()
	s.logins[name]++
	err := s.loginErr[name]
	boom := s.loginPanic[name]
	block := s.loginBlock
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if boom {
		panic("login exploded")
	}
	return err
}

func (s *fakeService) FetchInfo(_ context.Context, name string, _ Transport) (*Info, error) {
	s.mu.Lock()
	s.fetches[name]++
	info, err, boom, block := s.infos[name], s.fetchErr[name], s.fetchPanic[name], s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if boom {
		panic("fetch exploded")
	}
	return info, err
}

func (s *fakeService) setInfo(name string, info *Info) {
	s.mu.Lock()
	s.infos[name] = info
	s.mu.Unlock()
}

func (s *fakeService) loginCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins[name]
}

func (s *fakeService) fetchCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[name]
}

type fakeTransport struct {
	f    *fakeTransports
	name string
}

func (t *fakeTransport) ClearSession() {
	t.f.mu.Lock()
	t.f.cleared[t.name]++
	t.f.mu.Unlock()
}

func (t *fakeTransport) Close() error {
	t.f.mu.Lock()
	t.f.closed++
	t.f.mu.Unlock()
	return nil
}

type fakeTransports struct {
	mu       sync.Mutex
	acquired int
	closed   int
	cleared  map[string]int
	forgot   map[string]int
	fail     map[string]bool
	kinds    []string
}

func newFakeTransports() *fakeTransports {
	return &fakeTransports{cleared: map[string]int{}, forgot: map[string]int{}, fail: map[string]bool{}}
}

func (f *fakeTransports) Acquire(kind, name string) (Transport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	if f.fail[name] {
		return nil, errors.New("no route to host")
	}
	f.acquired++
	return &fakeTransport{f: f, name: name}, nil
}

func (f *fakeTransports) Forget(_, name string) error {
	f.mu.Lock()
	f.forgot[name]++
	f.mu.Unlock()
	return nil
}

func (f *fakeTransports) balance() (acquired, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acquired, f.closed
}

func (f *fakeTransports) clearedCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared[name]
}

type fakeScheduler struct {
	mu   sync.Mutex
	jobs []Job
}

func (s *fakeScheduler) Schedule(job Job) {
	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()
}

func (s *fakeScheduler) scheduled() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Trace(string, string) {}

func (l *recordingLogger) Warn(format string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

type harness struct {
	pool   *Pool
	svc    *fakeService
	tr     *fakeTransports
	sched  *fakeScheduler
	clock  *testclock.Clock
	logger *recordingLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		svc:    newFakeService(),
		tr:     newFakeTransports(),
		sched:  &fakeScheduler{},
		clock:  testclock.NewClock(testNow),
		logger: &recordingLogger{},
	}
	h.pool = NewPool("TestHoster", h.svc, h.tr, h.sched,
		WithClock(h.clock),
		WithLogger(h.logger),
		WithLocation(time.UTC),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	return h
}

func int64p(v int64) *int64 { return &v }

func boolp(v bool) *bool { return &v }

func timep(v time.Time) *time.Time { return &v }
