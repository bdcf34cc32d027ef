package loadgen

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStatsSnapshot_Empty(t *testing.T) {
	s := NewStats()
	report := s.Snapshot()

	if report.Requests != 0 {
		t.Errorf("Requests = %d, want 0", report.Requests)
	}
	if report.FailureRate() != 0 {
		t.Errorf("FailureRate() = %f, want 0", report.FailureRate())
	}
	if len(report.PerAction) != 0 {
		t.Errorf("PerAction has %d entries, want 0", len(report.PerAction))
	}
}

func TestStatsRecord_Aggregates(t *testing.T) {
	s := NewStats()
	s.Record("LOGIN", true, "", 10*time.Millisecond)
	s.Record("ACTION", true, "", 20*time.Millisecond)
	s.Record("ACTION", true, "", 40*time.Millisecond)
	s.Record("ACTION", false, "token expired", 60*time.Millisecond)
	s.RecordViolation()

	report := s.Snapshot()

	if report.Requests != 4 {
		t.Errorf("Requests = %d, want 4", report.Requests)
	}
	if report.Failures != 1 {
		t.Errorf("Failures = %d, want 1", report.Failures)
	}
	if report.Violations != 1 {
		t.Errorf("Violations = %d, want 1", report.Violations)
	}
	if got, want := report.FailureRate(), 0.25; got != want {
		t.Errorf("FailureRate() = %f, want %f", got, want)
	}

	// PerAction is sorted by action name.
	if len(report.PerAction) != 2 {
		t.Fatalf("PerAction has %d entries, want 2", len(report.PerAction))
	}
	action := report.PerAction[0]
	if action.Action != "ACTION" {
		t.Fatalf("PerAction[0].Action = %q, want ACTION", action.Action)
	}
	if action.Requests != 3 || action.Failures != 1 {
		t.Errorf("ACTION requests/failures = %d/%d, want 3/1", action.Requests, action.Failures)
	}
	if action.MinLatency != 20*time.Millisecond {
		t.Errorf("ACTION MinLatency = %v, want 20ms", action.MinLatency)
	}
	if action.MaxLatency != 60*time.Millisecond {
		t.Errorf("ACTION MaxLatency = %v, want 60ms", action.MaxLatency)
	}
	if action.AvgLatency != 40*time.Millisecond {
		t.Errorf("ACTION AvgLatency = %v, want 40ms", action.AvgLatency)
	}

	if len(report.Reasons) != 1 {
		t.Fatalf("Reasons has %d entries, want 1", len(report.Reasons))
	}
	if report.Reasons[0].Reason != "token expired" || report.Reasons[0].Count != 1 {
		t.Errorf("Reasons[0] = %+v, want {token expired 1}", report.Reasons[0])
	}
}

func TestStatsRecord_ReasonOrder(t *testing.T) {
	s := NewStats()
	s.Record("ACTION", false, "rare", time.Millisecond)
	s.Record("ACTION", false, "common", time.Millisecond)
	s.Record("ACTION", false, "common", time.Millisecond)

	report := s.Snapshot()
	if len(report.Reasons) != 2 {
		t.Fatalf("Reasons has %d entries, want 2", len(report.Reasons))
	}
	if report.Reasons[0].Reason != "common" {
		t.Errorf("Reasons[0].Reason = %q, want the most frequent first", report.Reasons[0].Reason)
	}
}

func TestStatsRecord_ReasonsBounded(t *testing.T) {
	s := NewStats()
	for i := 0; i < maxFailureReasons*2; i++ {
		s.Record("ACTION", false, fmt.Sprintf("reason-%03d", i), time.Millisecond)
	}

	report := s.Snapshot()
	if len(report.Reasons) != maxFailureReasons {
		t.Errorf("Reasons has %d entries, want at most %d", len(report.Reasons), maxFailureReasons)
	}
	// The overall failure count is still exact.
	if report.Failures != maxFailureReasons*2 {
		t.Errorf("Failures = %d, want %d", report.Failures, maxFailureReasons*2)
	}
}

func TestStatsRecord_Concurrent(t *testing.T) {
	s := NewStats()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Record("ACTION", j%10 != 0, "boom", time.Millisecond)
			}
		}()
	}
	wg.Wait()

	report := s.Snapshot()
	if report.Requests != 800 {
		t.Errorf("Requests = %d, want 800", report.Requests)
	}
	if report.Failures != 80 {
		t.Errorf("Failures = %d, want 80", report.Failures)
	}
}
