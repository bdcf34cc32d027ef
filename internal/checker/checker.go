package checker

import (
	"context"
	"time"

	"github.com/yndnr/sessprobe-go/internal/client"
	"github.com/yndnr/sessprobe-go/internal/telemetry/logger"
)

// Status is the outcome of one conformance scenario.
type Status string

const (
	// StatusPass means the target behaved as the contract requires.
	StatusPass Status = "PASS"

	// StatusFail means the target violated the contract.
	StatusFail Status = "FAIL"

	// StatusSkip means the scenario's preconditions were not met, most
	// commonly an unreachable dependency double.
	StatusSkip Status = "SKIP"
)

// Result is one scenario's verdict.
type Result struct {
	Name    string        `json:"name"`
	Status  Status        `json:"status"`
	Detail  string        `json:"detail,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Summary aggregates a full suite run.
type Summary struct {
	Results []Result `json:"results"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
}

// OK reports whether the run had no failures. Skipped scenarios do not
// fail a run.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

// scenario is one runnable conformance check. Scenarios that exercise
// semantics backed by the dependency double declare needsDouble and are
// skipped when its admin probe is unreachable.
type scenario struct {
	name        string
	needsDouble bool
	run         func(ctx context.Context, env *env) (Status, string)
}

// env carries the shared fixtures of a suite run. Scenarios build
// derived clients from cfg when they need altered credentials.
type env struct {
	client          *client.Client
	cfg             client.Config
	logger          logger.Logger
	probeConfigured bool
	doubleUp        bool
}

// clientWithKey returns a client identical to the default one except
// for the API key.
func (e *env) clientWithKey(key string) *client.Client {
	cfg := e.cfg
	cfg.APIKey = key
	return client.New(cfg, e.logger)
}

// Runner executes the conformance suite against one target.
type Runner struct {
	target      client.Config
	mockBaseURL string
	logger      logger.Logger
}

// NewRunner creates a suite runner. mockBaseURL locates the dependency
// double's admin probe; leave it empty to skip double-dependent
// scenarios unconditionally.
func NewRunner(target client.Config, mockBaseURL string, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	return &Runner{
		target:      target,
		mockBaseURL: mockBaseURL,
		logger:      log,
	}
}

// Run executes every scenario in order and returns the aggregate.
//
// A failing scenario never aborts the suite; each one runs against its
// own fresh tokens, so scenarios are independent.
func (r *Runner) Run(ctx context.Context) *Summary {
	env := &env{
		client: client.New(r.target, r.logger),
		cfg:    r.target,
		logger: r.logger,
	}
	if r.mockBaseURL != "" {
		env.probeConfigured = true
		env.doubleUp = env.client.AdminHealthy(ctx, r.mockBaseURL)
	}
	if env.probeConfigured && !env.doubleUp {
		r.logger.Warn("dependency double unreachable, double-dependent scenarios will be skipped",
			"mock_base_url", r.mockBaseURL,
		)
	}

	summary := &Summary{}
	for _, sc := range scenarios {
		result := Result{Name: sc.name}

		if sc.needsDouble && !env.doubleUp {
			result.Status = StatusSkip
			result.Detail = "dependency double unreachable"
		} else {
			start := time.Now()
			result.Status, result.Detail = sc.run(ctx, env)
			result.Elapsed = time.Since(start)
		}

		switch result.Status {
		case StatusPass:
			summary.Passed++
		case StatusFail:
			summary.Failed++
			r.logger.Warn("scenario failed", "scenario", sc.name, "detail", result.Detail)
		case StatusSkip:
			summary.Skipped++
		}
		summary.Results = append(summary.Results, result)

		if ctx.Err() != nil {
			break
		}
	}
	return summary
}
