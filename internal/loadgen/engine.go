package loadgen

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/sessprobe-go/internal/client"
	"github.com/yndnr/sessprobe-go/internal/config"
	"github.com/yndnr/sessprobe-go/internal/protocol"
	"github.com/yndnr/sessprobe-go/internal/telemetry/logger"
	"github.com/yndnr/sessprobe-go/internal/telemetry/metric"
)

// Engine runs a population of virtual users against the live client.
//
// Users share only the read-only configuration, the client's connection
// pool, and the optional global rate limiter; every user's token and
// state oracle are strictly private.
type Engine struct {
	cfg     config.LoadSection
	client  *client.Client
	logger  logger.Logger
	metrics *metric.Registry
	stats   *Stats
	runID   string
}

// New creates an engine for the given load configuration.
func New(cfg config.LoadSection, c *client.Client, log logger.Logger, metrics *metric.Registry) *Engine {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}

	return &Engine{
		cfg:     cfg,
		client:  c,
		logger:  log,
		metrics: metrics,
		stats:   NewStats(),
		runID:   ulid.Make().String(),
	}
}

// RunID identifies this load run in logs and reports.
func (e *Engine) RunID() string {
	return e.runID
}

// Stats exposes the live collector for progress reporting.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// Run starts the population and blocks until the configured duration
// elapses or ctx is cancelled, then returns the aggregate report.
//
// Cancellation is safe at any suspension point: users only act on
// observed committed state, so an aborted request leaves nothing to
// clean up beyond the HTTP connection.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if e.cfg.Users < 1 {
		return nil, fmt.Errorf("population size must be at least 1, got %d", e.cfg.Users)
	}

	if e.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Duration)
		defer cancel()
	}

	var limiter *rate.Limiter
	if e.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(e.cfg.RateLimit), 1)
	}

	e.logger.Info("load run starting",
		"run_id", e.runID,
		"users", e.cfg.Users,
		"duration", e.cfg.Duration,
		"weights", fmt.Sprintf("%d:%d", e.cfg.ActionWeight, e.cfg.LogoutWeight),
	)

	seed := time.Now().UnixNano()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.cfg.Users; i++ {
		u := &user{
			id:      fmt.Sprintf("vu-%s-%04d", e.runID[len(e.runID)-6:], i),
			client:  e.client,
			oracle:  protocol.NewOracle(),
			stats:   e.stats,
			metrics: e.metrics,
			limiter: limiter,
			logger:  e.logger,
			sched: NewScheduler(
				e.cfg.ActionWeight,
				e.cfg.LogoutWeight,
				e.cfg.ThinkMin,
				e.cfg.ThinkMax,
				seed+int64(i),
			),
		}

		g.Go(func() error {
			e.metrics.UsersActive.Inc()
			defer e.metrics.UsersActive.Dec()
			return u.run(ctx)
		})
	}

	err := g.Wait()

	report := e.stats.Snapshot()
	e.logger.Info("load run finished",
		"run_id", e.runID,
		"requests", report.Requests,
		"failures", report.Failures,
		"violations", report.Violations,
		"elapsed", report.Elapsed,
	)

	// Expiry of the run window is the normal way out.
	if err != nil && ctx.Err() == nil {
		return report, err
	}
	return report, nil
}
