package loadgen

import (
	"math/rand"
	"time"
)

// Task is one schedulable virtual-user activity.
type Task int

const (
	// TaskAction performs ACTION on the current token.
	TaskAction Task = iota

	// TaskLogout performs LOGOUT and, on success, starts a fresh session.
	TaskLogout
)

func (t Task) String() string {
	switch t {
	case TaskAction:
		return "ACTION"
	case TaskLogout:
		return "LOGOUT"
	default:
		return "UNKNOWN"
	}
}

// Scheduler picks the next task by weighted random choice and draws
// think-time delays between tasks.
//
// Each virtual user owns its own Scheduler with a private randomness
// source, so users never contend on shared state. Weights and delay
// bounds come from configuration, keeping the sampler testable in
// isolation.
type Scheduler struct {
	rng          *rand.Rand
	actionWeight int
	logoutWeight int
	thinkMin     time.Duration
	thinkMax     time.Duration
}

// NewScheduler creates a scheduler with the given weights and think-time
// bounds, seeded deterministically for reproducible tests.
func NewScheduler(actionWeight, logoutWeight int, thinkMin, thinkMax time.Duration, seed int64) *Scheduler {
	return &Scheduler{
		rng:          rand.New(rand.NewSource(seed)),
		actionWeight: actionWeight,
		logoutWeight: logoutWeight,
		thinkMin:     thinkMin,
		thinkMax:     thinkMax,
	}
}

// Next returns the next task by weighted random choice.
func (s *Scheduler) Next() Task {
	total := s.actionWeight + s.logoutWeight
	if total <= 0 || s.rng.Intn(total) < s.actionWeight {
		return TaskAction
	}
	return TaskLogout
}

// Think returns a think-time delay drawn uniformly from [thinkMin, thinkMax].
func (s *Scheduler) Think() time.Duration {
	if s.thinkMax <= s.thinkMin {
		return s.thinkMin
	}
	return s.thinkMin + time.Duration(s.rng.Int63n(int64(s.thinkMax-s.thinkMin)))
}
