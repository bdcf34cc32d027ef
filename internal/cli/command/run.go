package command

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessprobe-go/internal/client"
	"github.com/yndnr/sessprobe-go/internal/infra/shutdown"
	"github.com/yndnr/sessprobe-go/internal/loadgen"
	"github.com/yndnr/sessprobe-go/internal/telemetry/metric"
)

// shutdownTimeout bounds hook execution when a run is interrupted.
const shutdownTimeout = 10 * time.Second

// progressInterval paces the progress log lines during a run.
const progressInterval = 10 * time.Second

// RunCommand returns the load-run command.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a load simulation against the target",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Aliases: []string{"u"},
				Usage:   "Base URL of the target application",
				EnvVars: []string{"SESSPROBE_TARGET_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Aliases: []string{"k"},
				Usage:   "X-Api-Key credential",
				EnvVars: []string{"SESSPROBE_TARGET_API_KEY"},
			},
			&cli.IntFlag{
				Name:    "users",
				Aliases: []string{"n"},
				Usage:   "Virtual-user population size",
			},
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "Run duration; 0 runs until interrupted",
			},
			&cli.DurationFlag{
				Name:  "think-min",
				Usage: "Lower bound of the think-time between tasks",
			},
			&cli.DurationFlag{
				Name:  "think-max",
				Usage: "Upper bound of the think-time between tasks",
			},
			&cli.IntFlag{
				Name:  "action-weight",
				Usage: "Relative weight of ACTION in task scheduling",
			},
			&cli.IntFlag{
				Name:  "logout-weight",
				Usage: "Relative weight of LOGOUT in task scheduling",
			},
			&cli.Float64Flag{
				Name:  "rate-limit",
				Usage: "Global requests-per-second cap; 0 disables",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-request timeout",
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Prometheus /metrics listen address; empty disables",
				EnvVars: []string{"SESSPROBE_METRICS_ADDR"},
			},
		},
		Action: runAction,
	}
}

func runFlagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	set := func(key, flag string) {
		if c.IsSet(flag) {
			overrides[key] = c.Value(flag)
		}
	}
	set("target.base_url", "base-url")
	set("target.api_key", "api-key")
	set("target.timeout", "timeout")
	set("load.users", "users")
	set("load.duration", "duration")
	set("load.think_min", "think-min")
	set("load.think_max", "think-max")
	set("load.action_weight", "action-weight")
	set("load.logout_weight", "logout-weight")
	set("load.rate_limit", "rate-limit")
	set("metrics.addr", "metrics-addr")
	return overrides
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c, runFlagOverrides(c))
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	watcher, err := watchLogLevel(c.String("config"), log)
	if err != nil {
		log.Warn("config watch unavailable", "error", err)
	} else if watcher != nil {
		defer watcher.Stop()
	}

	metrics := metric.NewRegistry()
	sh := shutdown.NewHandler(shutdownTimeout)

	if cfg.Metrics.Addr != "" {
		msrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(metrics)}
		go func() {
			if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics listener failed", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
		sh.OnShutdown(msrv.Shutdown)
		log.Info("metrics exposed", "addr", cfg.Metrics.Addr)
	}

	cl := client.New(client.Config{
		BaseURL: cfg.Target.BaseURL,
		APIKey:  cfg.Target.APIKey,
		Timeout: cfg.Target.Timeout,
	}, log)
	engine := loadgen.New(cfg.Load, cl, log, metrics)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	sh.OnShutdown(func(context.Context) error {
		cancel()
		return nil
	})

	var (
		report *loadgen.Report
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		report, runErr = engine.Run(ctx)
		sh.Trigger()
	}()

	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				snap := engine.Stats().Snapshot()
				log.Info("progress",
					"requests", snap.Requests,
					"failures", snap.Failures,
					"violations", snap.Violations,
					"throughput_rps", snap.Throughput,
				)
			case <-progressDone:
				return
			}
		}
	}()

	if err := sh.Wait(); err != nil {
		log.Warn("shutdown hooks incomplete", "error", err)
	}
	<-done
	close(progressDone)

	if report != nil {
		if err := formatterFor(c).Format(os.Stdout, report); err != nil {
			return err
		}
	}
	return runErr
}

// metricsMux serves the Prometheus exposition endpoint.
func metricsMux(metrics *metric.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}
