package loadgen

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/sessprobe-go/internal/client"
	"github.com/yndnr/sessprobe-go/internal/protocol"
	"github.com/yndnr/sessprobe-go/internal/telemetry/logger"
	"github.com/yndnr/sessprobe-go/internal/telemetry/metric"
	"github.com/yndnr/sessprobe-go/pkg/token"
)

// user is one virtual user. It owns its token and state oracle
// exclusively and issues requests strictly sequentially, so there is
// never more than one in-flight request per token.
type user struct {
	id      string
	client  *client.Client
	sched   *Scheduler
	oracle  *protocol.Oracle
	stats   *Stats
	metrics *metric.Registry
	limiter *rate.Limiter
	logger  logger.Logger
	token   string
}

// run is the user's task loop. It returns only when ctx is cancelled;
// individual request failures are recorded and the loop continues.
func (u *user) run(ctx context.Context) error {
	if err := u.startSession(ctx); err != nil {
		return err
	}

	for {
		if err := u.think(ctx); err != nil {
			return nil // run ended during think-time
		}

		switch u.sched.Next() {
		case TaskAction:
			if _, err := u.issue(ctx, protocol.ActionDo); err != nil && ctx.Err() != nil {
				return nil
			}
		case TaskLogout:
			resp, err := u.issue(ctx, protocol.ActionLogout)
			if err != nil && ctx.Err() != nil {
				return nil
			}
			if err == nil && resp.OK() {
				// Session churn: discard the token and start over.
				if err := u.startSession(ctx); err != nil {
					return err
				}
			}
		}
	}
}

// startSession generates a fresh token and attempts LOGIN. The user
// enters its task loop regardless of the LOGIN outcome.
func (u *user) startSession(ctx context.Context) error {
	tok, err := token.Generate()
	if err != nil {
		return err
	}
	u.token = tok
	u.oracle.Reset()

	if ctx.Err() != nil {
		return nil
	}
	_, _ = u.issue(ctx, protocol.ActionLogin)
	return nil
}

// issue sends one request and classifies its outcome.
func (u *user) issue(ctx context.Context, action protocol.Action) (*protocol.Response, error) {
	if u.limiter != nil {
		if err := u.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := u.client.Call(ctx, u.token, action)
	latency := time.Since(start)

	u.metrics.RequestDuration.WithLabelValues(action.String()).Observe(latency.Seconds())

	if err != nil {
		u.record(action, false, err.Error(), latency)
		if ctx.Err() == nil {
			u.logger.Debug("request failed",
				"user", u.id,
				"action", action.String(),
				"error", err,
			)
		}
		return nil, err
	}

	if resp.OK() {
		u.record(action, true, "", latency)
	} else {
		// Surface the server-supplied message as the failure reason.
		u.record(action, false, resp.Message, latency)
	}

	if _, verr := u.oracle.Advance(action, resp.Result); verr != nil {
		// The engine only logs violations; the population keeps running.
		u.stats.RecordViolation()
		u.metrics.ProtocolViolations.Inc()
		u.logger.Warn("protocol violation observed",
			"user", u.id,
			"token", u.token,
			"action", action.String(),
			"error", verr,
		)
	}

	return resp, nil
}

func (u *user) record(action protocol.Action, ok bool, reason string, latency time.Duration) {
	outcome := metric.OutcomeSuccess
	if !ok {
		outcome = metric.OutcomeFailure
	}
	u.metrics.Requests.WithLabelValues(action.String(), outcome).Inc()
	u.stats.Record(action.String(), ok, reason, latency)
}

// think sleeps for a scheduler-drawn delay, returning early when the
// run is cancelled.
func (u *user) think(ctx context.Context) error {
	d := u.sched.Think()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
