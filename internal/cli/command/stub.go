package command

import (
	"errors"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessprobe-go/internal/infra/shutdown"
	"github.com/yndnr/sessprobe-go/internal/stubserver"
	"github.com/yndnr/sessprobe-go/internal/telemetry/metric"
)

// StubCommand returns the reference-endpoint server command.
func StubCommand() *cli.Command {
	return &cli.Command{
		Name:  "stub",
		Usage: "Serve the built-in reference endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address",
				EnvVars: []string{"SESSPROBE_STUB_ADDR"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Aliases: []string{"k"},
				Usage:   "X-Api-Key credential the stub requires",
				EnvVars: []string{"SESSPROBE_STUB_API_KEY"},
			},
			&cli.Float64Flag{
				Name:  "failure-rate",
				Usage: "Fraction of LOGIN/ACTION requests failed on purpose, 0.0-1.0",
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Prometheus /metrics listen address; empty disables",
				EnvVars: []string{"SESSPROBE_METRICS_ADDR"},
			},
		},
		Action: stubAction,
	}
}

func stubFlagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	set := func(key, flag string) {
		if c.IsSet(flag) {
			overrides[key] = c.Value(flag)
		}
	}
	set("stub.addr", "addr")
	set("stub.api_key", "api-key")
	set("stub.failure_rate", "failure-rate")
	set("metrics.addr", "metrics-addr")
	return overrides
}

func stubAction(c *cli.Context) error {
	cfg, err := loadConfig(c, stubFlagOverrides(c))
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

	srv := stubserver.New(cfg.Stub, log, metrics)
	sh.OnShutdown(srv.Shutdown)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			sh.Trigger()
		}
	}()

	if err := sh.Wait(); err != nil {
		log.Warn("shutdown hooks incomplete", "error", err)
	}

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}
