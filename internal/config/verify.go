// Package config defines the probe configuration structure.
package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyTarget(&cfg.Target); err != nil {
		return err
	}
	if err := verifyLoad(&cfg.Load); err != nil {
		return err
	}
	return verifyStub(&cfg.Stub)
}

func verifyTarget(cfg *TargetSection) error {
	if cfg.BaseURL == "" {
		return errors.New("target.base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("target.base_url %q is not an absolute URL", cfg.BaseURL)
	}
	if cfg.MockBaseURL != "" {
		if u, err := url.Parse(cfg.MockBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("target.mock_base_url %q is not an absolute URL", cfg.MockBaseURL)
		}
	}
	if cfg.Timeout <= 0 {
		return errors.New("target.timeout must be positive")
	}
	return nil
}

func verifyLoad(cfg *LoadSection) error {
	if cfg.Users < 1 {
		return errors.New("load.users must be at least 1")
	}
	if cfg.ThinkMin < 0 || cfg.ThinkMax < cfg.ThinkMin {
		return errors.New("load think-time bounds must satisfy 0 <= think_min <= think_max")
	}
	if cfg.ActionWeight < 0 || cfg.LogoutWeight < 0 {
		return errors.New("load task weights must not be negative")
	}
	if cfg.ActionWeight+cfg.LogoutWeight == 0 {
		return errors.New("at least one load task weight must be positive")
	}
	if cfg.RateLimit < 0 {
		return errors.New("load.rate_limit must not be negative")
	}
	return nil
}

func verifyStub(cfg *StubSection) error {
	if cfg.FailureRate < 0 || cfg.FailureRate > 1 {
		return errors.New("stub.failure_rate must be within [0, 1]")
	}
	return nil
}
