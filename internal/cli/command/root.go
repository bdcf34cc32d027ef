// Package command provides CLI command definitions for sessprobe.
//
// It uses urfave/cli/v2 for command parsing. Configuration follows the
// priority Flag > Env > File > Default; flags carry SESSPROBE_*
// environment fallbacks and the --config flag points at a YAML file.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessprobe-go/internal/cli/output"
	"github.com/yndnr/sessprobe-go/internal/config"
	"github.com/yndnr/sessprobe-go/internal/infra/buildinfo"
	"github.com/yndnr/sessprobe-go/internal/infra/confloader"
	"github.com/yndnr/sessprobe-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "sessprobe",
		Usage:   "token-session protocol load and conformance probe",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RunCommand(),
			CheckCommand(),
			StubCommand(),
			VersionCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML configuration file",
			EnvVars: []string{"SESSPROBE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn, error",
			EnvVars: []string{"SESSPROBE_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format: json, text",
			EnvVars: []string{"SESSPROBE_LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
			Value:   "table",
		},
	}
}

// loadConfig assembles the effective configuration for a command:
// defaults, then the config file, then environment, then the given
// flag overrides (koanf dotted paths) on top.
func loadConfig(c *cli.Context, overrides map[string]any) (*config.Config, error) {
	loader := confloader.NewLoader()

	if path := c.String("config"); path != "" {
		if err := loader.LoadFile(path); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loader.LoadEnv(); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, fmt.Errorf("merge flags: %w", err)
		}
	}

	cfg := config.Default()
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Log.Format = v
	}

	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command logger from configuration and installs
// it as the process default.
func newLogger(cfg *config.Config) logger.Logger {
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	logger.SetDefault(log)
	return log
}

// watchLogLevel reloads the log level from the config file on change,
// so long runs can switch verbosity without a restart. Returns nil
// when no config file is in use.
func watchLogLevel(path string, log logger.Logger) (*confloader.Watcher, error) {
	if path == "" {
		return nil, nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(changed string) {
		loader := confloader.NewLoader()
		if err := loader.LoadFile(changed); err != nil {
			log.Warn("config reload failed", "path", changed, "error", err)
			return
		}
		if level := loader.GetString("log.level"); level != "" {
			logger.SetLevel(level)
			log.Info("log level updated", "level", level)
		}
	})
	w.StartAsync()
	return w, nil
}

// formatterFor returns the output formatter selected by the global
// --output flag.
func formatterFor(c *cli.Context) output.Formatter {
	return output.NewFormatter(output.Format(c.String("output")))
}
