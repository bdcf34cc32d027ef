package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/sessprobe-go/internal/client"
	"github.com/yndnr/sessprobe-go/internal/telemetry/logger"
	"github.com/yndnr/sessprobe-go/pkg/token"
)

const testAPIKey = "secret-key"

// conformingTarget implements the endpoint contract correctly,
// including the dependency double's admin probe.
type conformingTarget struct {
	mu     sync.Mutex
	active map[string]bool

	// acceptUnauthenticatedAction makes the target defective for
	// negative-path tests.
	acceptUnauthenticatedAction bool
}

func newConformingTarget() *conformingTarget {
	return &conformingTarget{active: map[string]bool{}}
}

func (c *conformingTarget) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/__admin/" {
		w.Write([]byte(`{"status":"ok"}`))
		return
	}

	switch r.Header.Get("X-Api-Key") {
	case testAPIKey:
	case "":
		w.WriteHeader(http.StatusUnauthorized)
		return
	default:
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	tok := r.PostFormValue("token")
	action := r.PostFormValue("action")

	w.Header().Set("Content-Type", "application/json")
	ok := func() { w.Write([]byte(`{"result":"OK"}`)) }
	fail := func(msg string) {
		w.Write([]byte(`{"result":"ERROR","message":"` + msg + `"}`))
	}

	if !token.Validate(tok) {
		fail("invalid token")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch action {
	case "LOGIN":
		c.active[tok] = true
		ok()
	case "ACTION":
		if !c.active[tok] && !c.acceptUnauthenticatedAction {
			fail("not logged in")
			return
		}
		ok()
	case "LOGOUT":
		if !c.active[tok] {
			fail("token not found")
			return
		}
		c.active[tok] = false
		ok()
	default:
		fail("unknown action")
	}
}

func runSuite(t *testing.T, handler http.Handler, mock bool) *Summary {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mockURL := ""
	if mock {
		mockURL = srv.URL
	}

	r := NewRunner(client.Config{
		BaseURL: srv.URL,
		APIKey:  testAPIKey,
		Timeout: 5 * time.Second,
	}, mockURL, nil)

	return r.Run(context.Background())
}

func TestRunnerRun_ConformingTarget(t *testing.T) {
	summary := runSuite(t, newConformingTarget(), true)

	if !summary.OK() {
		for _, res := range summary.Results {
			if res.Status == StatusFail {
				t.Errorf("scenario %q failed: %s", res.Name, res.Detail)
			}
		}
		t.Fatalf("suite failed: %d failures", summary.Failed)
	}

	// With the double reachable, only the backing-service-down
	// scenario is skipped.
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
	if summary.Passed != len(scenarios)-1 {
		t.Errorf("Passed = %d, want %d", summary.Passed, len(scenarios)-1)
	}
}

func TestRunnerRun_DoubleUnreachable(t *testing.T) {
	// The double never answers, so only the local and down-path
	// scenarios run.
	down := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	summary := runSuite(t, down, true)

	var skipped int
	for _, sc := range scenarios {
		if sc.needsDouble {
			skipped++
		}
	}
	if summary.Skipped != skipped {
		t.Errorf("Skipped = %d, want %d", summary.Skipped, skipped)
	}

	// Token format is local and must still pass.
	if got := summary.Results[0]; got.Name != "token format" || got.Status != StatusPass {
		t.Errorf("Results[0] = %+v, want token format pass", got)
	}
}

func TestRunnerRun_DefectiveTarget(t *testing.T) {
	target := newConformingTarget()
	target.acceptUnauthenticatedAction = true

	summary := runSuite(t, target, true)

	if summary.OK() {
		t.Fatal("suite passed against a target that accepts ACTION without LOGIN")
	}

	var failedNames []string
	for _, res := range summary.Results {
		if res.Status == StatusFail {
			failedNames = append(failedNames, res.Name)
		}
	}
	want := "action without login rejected"
	found := false
	for _, name := range failedNames {
		if name == want {
			found = true
		}
	}
	if !found {
		t.Errorf("failed scenarios = %v, want %q among them", failedNames, want)
	}
}

func TestRunnerRun_NoMockConfigured(t *testing.T) {
	summary := runSuite(t, newConformingTarget(), false)

	// Without a mock base URL the double is treated as unreachable.
	if summary.Failed != 0 {
		t.Errorf("Failed = %d, want 0", summary.Failed)
	}
	for _, res := range summary.Results {
		if res.Name == "login succeeds" && res.Status != StatusSkip {
			t.Errorf("login succeeds = %v, want skip without a probe URL", res.Status)
		}
	}
}

// recordingLogger captures warn messages for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(msg string, args ...any) {}
func (l *recordingLogger) Info(msg string, args ...any)  {}
func (l *recordingLogger) Error(msg string, args ...any) {}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) With(args ...any) logger.Logger { return l }

func TestRunnerRun_NoMockConfigured_NoWarning(t *testing.T) {
	srv := httptest.NewServer(newConformingTarget())
	t.Cleanup(srv.Close)

	log := &recordingLogger{}
	r := NewRunner(client.Config{
		BaseURL: srv.URL,
		APIKey:  testAPIKey,
		Timeout: 5 * time.Second,
	}, "", log)
	r.Run(context.Background())

	for _, msg := range log.warns {
		if strings.Contains(msg, "unreachable") {
			t.Errorf("warned %q with no admin probe configured", msg)
		}
	}
}

func TestSummaryOK(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    bool
	}{
		{"empty", Summary{}, true},
		{"passes and skips", Summary{Passed: 3, Skipped: 2}, true},
		{"one failure", Summary{Passed: 3, Failed: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.OK(); got != tt.want {
				t.Errorf("OK() = %v, want %v", got, tt.want)
			}
		})
	}
}
