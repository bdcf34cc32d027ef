package command

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessprobe-go/internal/checker"
	"github.com/yndnr/sessprobe-go/internal/client"
)

// CheckCommand returns the conformance-suite command.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run the protocol conformance suite against the target",
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
			&cli.StringFlag{
				Name:    "mock-base-url",
				Usage:   "Base URL of the dependency double's admin probe",
				EnvVars: []string{"SESSPROBE_TARGET_MOCK_BASE_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-request timeout",
			},
		},
		Action: checkAction,
	}
}

func checkFlagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	set := func(key, flag string) {
		if c.IsSet(flag) {
			overrides[key] = c.Value(flag)
		}
	}
	set("target.base_url", "base-url")
	set("target.api_key", "api-key")
	set("target.mock_base_url", "mock-base-url")
	set("target.timeout", "timeout")
	return overrides
}

func checkAction(c *cli.Context) error {
	cfg, err := loadConfig(c, checkFlagOverrides(c))
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := checker.NewRunner(client.Config{
		BaseURL: cfg.Target.BaseURL,
		APIKey:  cfg.Target.APIKey,
		Timeout: cfg.Target.Timeout,
	}, cfg.Target.MockBaseURL, log)

	summary := runner.Run(ctx)
	if err := formatterFor(c).Format(os.Stdout, summary); err != nil {
		return err
	}
	if !summary.OK() {
		return cli.Exit("conformance failures detected", 1)
	}
	return nil
}
