package loadgen

import (
	"sort"
	"sync"
	"time"
)

// maxFailureReasons bounds the distinct failure reasons kept per run so a
// misbehaving target cannot grow the map without limit.
const maxFailureReasons = 64

// Stats accumulates request outcomes across all virtual users.
//
// A single failed request never terminates a user, so Stats keeps
// counting through partial failure; the final report carries the
// aggregate failure rate instead of aborting on first error.
type Stats struct {
	mu             sync.Mutex
	start          time.Time
	perAction      map[string]*actionStats
	failureReasons map[string]int64
	violations     int64
}

type actionStats struct {
	count        int64
	failures     int64
	totalLatency time.Duration
	minLatency   time.Duration
	maxLatency   time.Duration
}

// NewStats creates an empty collector with the clock started.
func NewStats() *Stats {
	return &Stats{
		start:          time.Now(),
		perAction:      make(map[string]*actionStats),
		failureReasons: make(map[string]int64),
	}
}

// Record registers one classified request outcome.
func (s *Stats) Record(action string, ok bool, reason string, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	as, exists := s.perAction[action]
	if !exists {
		as = &actionStats{minLatency: latency}
		s.perAction[action] = as
	}

	as.count++
	as.totalLatency += latency
	if latency < as.minLatency {
		as.minLatency = latency
	}
	if latency > as.maxLatency {
		as.maxLatency = latency
	}

	if !ok {
		as.failures++
		if reason != "" {
			if _, known := s.failureReasons[reason]; known || len(s.failureReasons) < maxFailureReasons {
				s.failureReasons[reason]++
			}
		}
	}
}

// RecordViolation counts an observation that contradicted the state model.
func (s *Stats) RecordViolation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations++
}

// ActionReport is the per-action slice of a Report.
type ActionReport struct {
	Action     string        `json:"action"`
	Requests   int64         `json:"requests"`
	Failures   int64         `json:"failures"`
	AvgLatency time.Duration `json:"avg_latency"`
	MinLatency time.Duration `json:"min_latency"`
	MaxLatency time.Duration `json:"max_latency"`
}

// FailureReason is one aggregated failure cause.
type FailureReason struct {
	Reason string `json:"reason"`
	Count  int64  `json:"count"`
}

// Report is an aggregate snapshot of a load run.
type Report struct {
	Elapsed    time.Duration   `json:"elapsed"`
	Requests   int64           `json:"requests"`
	Failures   int64           `json:"failures"`
	Violations int64           `json:"violations"`
	Throughput float64         `json:"throughput_rps"`
	PerAction  []ActionReport  `json:"per_action"`
	Reasons    []FailureReason `json:"failure_reasons"`
}

// FailureRate returns the overall failed-request fraction.
func (r *Report) FailureRate() float64 {
	if r.Requests == 0 {
		return 0
	}
	return float64(r.Failures) / float64(r.Requests)
}

// Snapshot produces the aggregate report for everything recorded so far.
func (s *Stats) Snapshot() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &Report{
		Elapsed:    time.Since(s.start),
		Violations: s.violations,
	}

	for action, as := range s.perAction {
		ar := ActionReport{
			Action:     action,
			Requests:   as.count,
			Failures:   as.failures,
			MinLatency: as.minLatency,
			MaxLatency: as.maxLatency,
		}
		if as.count > 0 {
			ar.AvgLatency = as.totalLatency / time.Duration(as.count)
		}
		report.PerAction = append(report.PerAction, ar)
		report.Requests += as.count
		report.Failures += as.failures
	}
	sort.Slice(report.PerAction, func(i, j int) bool {
		return report.PerAction[i].Action < report.PerAction[j].Action
	})

	for reason, count := range s.failureReasons {
		report.Reasons = append(report.Reasons, FailureReason{Reason: reason, Count: count})
	}
	sort.Slice(report.Reasons, func(i, j int) bool {
		if report.Reasons[i].Count != report.Reasons[j].Count {
			return report.Reasons[i].Count > report.Reasons[j].Count
		}
		return report.Reasons[i].Reason < report.Reasons[j].Reason
	})

	if secs := report.Elapsed.Seconds(); secs > 0 {
		report.Throughput = float64(report.Requests) / secs
	}

	return report
}
