package loadgen

import (
	"testing"
	"time"
)

func TestTaskString(t *testing.T) {
	tests := []struct {
		task Task
		want string
	}{
		{TaskAction, "ACTION"},
		{TaskLogout, "LOGOUT"},
		{Task(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.task.String(); got != tt.want {
			t.Errorf("Task(%d).String() = %q, want %q", tt.task, got, tt.want)
		}
	}
}

func TestSchedulerNext_WeightRatio(t *testing.T) {
	// With weights 3:1 the observed ACTION share over a long run must
	// converge toward 0.75.
	s := NewScheduler(3, 1, 0, 0, 1)

	const draws = 100000
	var actions int
	for i := 0; i < draws; i++ {
		if s.Next() == TaskAction {
			actions++
		}
	}

	got := float64(actions) / float64(draws)
	if got < 0.74 || got > 0.76 {
		t.Errorf("ACTION share = %f, want within [0.74, 0.76]", got)
	}
}

func TestSchedulerNext_DegenerateWeights(t *testing.T) {
	tests := []struct {
		name         string
		actionWeight int
		logoutWeight int
		want         Task
	}{
		{"only action", 1, 0, TaskAction},
		{"zero weights fall back to action", 0, 0, TaskAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.actionWeight, tt.logoutWeight, 0, 0, 1)
			for i := 0; i < 100; i++ {
				if got := s.Next(); got != tt.want {
					t.Fatalf("Next() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSchedulerNext_OnlyLogout(t *testing.T) {
	s := NewScheduler(0, 1, 0, 0, 1)
	for i := 0; i < 100; i++ {
		if got := s.Next(); got != TaskLogout {
			t.Fatalf("Next() = %v, want %v", got, TaskLogout)
		}
	}
}

func TestSchedulerNext_Deterministic(t *testing.T) {
	a := NewScheduler(3, 1, 0, 0, 7)
	b := NewScheduler(3, 1, 0, 0, 7)

	for i := 0; i < 1000; i++ {
		if got, want := a.Next(), b.Next(); got != want {
			t.Fatalf("draw %d: schedulers with equal seed diverged: %v vs %v", i, got, want)
		}
	}
}

func TestSchedulerThink_Bounds(t *testing.T) {
	min := 10 * time.Millisecond
	max := 30 * time.Millisecond
	s := NewScheduler(3, 1, min, max, 1)

	for i := 0; i < 1000; i++ {
		d := s.Think()
		if d < min || d >= max {
			t.Fatalf("Think() = %v, want within [%v, %v)", d, min, max)
		}
	}
}

func TestSchedulerThink_CollapsedRange(t *testing.T) {
	min := 5 * time.Millisecond
	s := NewScheduler(3, 1, min, min, 1)

	if got := s.Think(); got != min {
		t.Errorf("Think() = %v, want %v", got, min)
	}
}
