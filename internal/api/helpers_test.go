package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const testCandidate = "cand-1"

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// fakeService records every request and answers through respond (200 {} by default).
type fakeService struct {
	mu       sync.Mutex
	requests []recorded
	respond  func(n int, r recorded) (int, string)
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	raw, _ := io.ReadAll(r.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	rec := recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	n := len(f.requests)
	respond := f.respond
	f.mu.Unlock()

	status, payload := http.StatusOK, "{}"
	if respond != nil {
		status, payload = respond(n, rec)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}

func (f *fakeService) hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeService) all() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func (f *fakeService) countPath(path string) int {
	n := 0
	for _, r := range f.all() {
		if r.Method == http.MethodGet && r.Path == path {
			n++
		}
	}
	return n
}

func newTestServerOrSkip(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				server = nil
			}
		}()
		server = httptest.NewServer(handler)
	}()
	if server == nil {
		t.Skip("skipping listener test in restricted environment")
	}
	t.Cleanup(server.Close)
	return server
}

// newTestClient points a client at srv with an unlimited limiter and a fake clock.
func newTestClient(t *testing.T, srv *httptest.Server, cfg Config, opts ...Option) (*Client, *fakeclock.FakeClock) {
	t.Helper()
	fc := fakeclock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg.BaseURL = srv.URL + "/api"
	if cfg.CandidateID == "" {
		cfg.CandidateID = testCandidate
	}
	base := []Option{
		WithClock(fc),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
		WithLogger(zerolog.Nop()),
	}
	c, err := New(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, fc
}

func await[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for result")
	}
	var zero T
	return zero
}

func waitForWatchers(t *testing.T, fc *fakeclock.FakeClock, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for fc.WatcherCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d clock watchers", n)
		}
		time.Sleep(time.Millisecond)
	}
}
