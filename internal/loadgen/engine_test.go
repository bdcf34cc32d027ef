package loadgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/sessprobe-go/internal/client"
	"github.com/yndnr/sessprobe-go/internal/config"
	"github.com/yndnr/sessprobe-go/internal/telemetry/metric"
)

// sessionTarget is a minimal in-memory endpoint implementation for
// driving the engine in tests.
type sessionTarget struct {
	mu             sync.Mutex
	active         map[string]bool
	logins         int
	logouts        int
	failNext       bool
	failAfterLogin bool
}

func newSessionTarget() *sessionTarget {
	return &sessionTarget{active: map[string]bool{}}
}

func (s *sessionTarget) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	tok := r.PostFormValue("token")
	action := r.PostFormValue("action")

	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	ok := func() { w.Write([]byte(`{"result":"OK"}`)) }
	fail := func(msg string) {
		w.Write([]byte(`{"result":"ERROR","message":"` + msg + `"}`))
	}

	if s.failNext {
		s.failNext = false
		fail("induced failure")
		return
	}

	switch action {
	case "LOGIN":
		s.active[tok] = true
		s.logins++
		if s.failAfterLogin {
			s.failAfterLogin = false
			s.failNext = true
		}
		ok()
	case "ACTION":
		if !s.active[tok] {
			fail("not logged in")
			return
		}
		ok()
	case "LOGOUT":
		if !s.active[tok] {
			fail("token not found")
			return
		}
		s.active[tok] = false
		s.logouts++
		ok()
	default:
		fail("unknown action")
	}
}

func (s *sessionTarget) counts() (logins, logouts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins, s.logouts
}

func testLoadSection() config.LoadSection {
	return config.LoadSection{
		Users:        3,
		ThinkMin:     time.Millisecond,
		ThinkMax:     2 * time.Millisecond,
		ActionWeight: 3,
		LogoutWeight: 1,
	}
}

func newTestEngine(t *testing.T, cfg config.LoadSection, handler http.Handler) (*Engine, *metric.Registry) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := client.New(client.Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, nil)

	metrics := metric.NewRegistry()
	return New(cfg, c, nil, metrics), metrics
}

func TestEngineRun_PopulationTooSmall(t *testing.T) {
	e, _ := newTestEngine(t, config.LoadSection{Users: 0}, newSessionTarget())

	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("Run() with zero users should fail")
	}
}

func TestEngineRun_DurationBounded(t *testing.T) {
	target := newSessionTarget()
	cfg := testLoadSection()
	cfg.Duration = 300 * time.Millisecond

	e, _ := newTestEngine(t, cfg, target)

	start := time.Now()
	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("run took %v, want about %v", elapsed, cfg.Duration)
	}

	if report.Requests == 0 {
		t.Fatal("report recorded no requests")
	}
	if report.Failures != 0 {
		t.Errorf("Failures = %d, want 0 against a well-behaved target", report.Failures)
	}
	if report.Violations != 0 {
		t.Errorf("Violations = %d, want 0 against a well-behaved target", report.Violations)
	}

	// Each user logs in at least once; every successful LOGOUT is
	// followed by a re-login, so logins > logouts.
	logins, logouts := target.counts()
	if logins < cfg.Users {
		t.Errorf("target saw %d logins, want at least %d", logins, cfg.Users)
	}
	if logins <= logouts {
		t.Errorf("logins = %d, logouts = %d; session churn should re-login after each logout", logins, logouts)
	}
}

func TestEngineRun_Cancellation(t *testing.T) {
	e, _ := newTestEngine(t, testLoadSection(), newSessionTarget())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := e.Run(ctx); err != nil {
			t.Errorf("Run() error after cancel: %v", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after context cancellation")
	}
}

func TestEngineRun_RecordsFailures(t *testing.T) {
	target := newSessionTarget()
	target.failAfterLogin = true

	cfg := testLoadSection()
	cfg.Users = 1
	cfg.Duration = 200 * time.Millisecond

	e, _ := newTestEngine(t, cfg, target)
	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// The failure hits the first request after a successful LOGIN, so
	// the user stays authenticated and keeps running past it.
	if report.Failures == 0 {
		t.Fatal("report recorded no failures")
	}
	if report.Requests <= report.Failures {
		t.Errorf("Requests = %d, Failures = %d; the user should continue past a failed request",
			report.Requests, report.Failures)
	}

	found := false
	for _, reason := range report.Reasons {
		if reason.Reason == "induced failure" {
			found = true
		}
	}
	if !found {
		t.Errorf("Reasons = %+v, want the server message as a failure reason", report.Reasons)
	}
}

func TestEngineRun_Metrics(t *testing.T) {
	cfg := testLoadSection()
	cfg.Duration = 200 * time.Millisecond

	e, metrics := newTestEngine(t, cfg, newSessionTarget())
	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	families, err := metrics.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	var total float64
	for _, mf := range families {
		if mf.GetName() != "sessprobe_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	if int64(total) != report.Requests {
		t.Errorf("sessprobe_requests_total = %v, want %d", total, report.Requests)
	}
}

func TestEngineRunID_Unique(t *testing.T) {
	target := newSessionTarget()
	a, _ := newTestEngine(t, testLoadSection(), target)
	b, _ := newTestEngine(t, testLoadSection(), target)

	if a.RunID() == b.RunID() {
		t.Errorf("two engines share run ID %q", a.RunID())
	}
	if a.RunID() == "" {
		t.Error("run ID is empty")
	}
}

func TestEngineRun_RateLimit(t *testing.T) {
	target := newSessionTarget()
	cfg := testLoadSection()
	cfg.Users = 2
	cfg.ThinkMin = 0
	cfg.ThinkMax = 0
	cfg.Duration = 500 * time.Millisecond
	cfg.RateLimit = 20

	e, _ := newTestEngine(t, cfg, target)
	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// 20 rps over half a second leaves generous headroom for the
	// limiter's initial burst.
	if report.Requests > 30 {
		t.Errorf("Requests = %d, want rate-limited to roughly 10", report.Requests)
	}
}
