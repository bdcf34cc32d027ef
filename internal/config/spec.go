// Package config defines the probe configuration structure.
package config

import "time"

// Config is the root configuration for sessprobe.
type Config struct {
	Target  TargetSection  `koanf:"target"`
	Load    LoadSection    `koanf:"load"`
	Stub    StubSection    `koanf:"stub"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// TargetSection describes the system under test.
type TargetSection struct {
	// BaseURL is the root URL of the application, without trailing slash.
	BaseURL string `koanf:"base_url"`

	// APIKey is the credential sent in the X-Api-Key header.
	APIKey string `koanf:"api_key"`

	// MockBaseURL is the base URL of the dependency double; its
	// /__admin/ probe decides whether double-dependent checks run.
	// Empty disables the probe (those checks are skipped).
	MockBaseURL string `koanf:"mock_base_url"`

	// Timeout bounds every request. Exceeding it is a transport
	// failure, never a hang.
	Timeout time.Duration `koanf:"timeout"`
}

// LoadSection configures the load-simulation engine.
type LoadSection struct {
	// Users is the virtual-user population size.
	Users int `koanf:"users"`

	// Duration bounds the run; zero means run until interrupted.
	Duration time.Duration `koanf:"duration"`

	// ThinkMin and ThinkMax bound the uniform random think-time
	// between consecutive tasks of one user.
	ThinkMin time.Duration `koanf:"think_min"`
	ThinkMax time.Duration `koanf:"think_max"`

	// ActionWeight and LogoutWeight are the relative weights of the
	// two scheduled tasks.
	ActionWeight int `koanf:"action_weight"`
	LogoutWeight int `koanf:"logout_weight"`

	// RateLimit caps total requests per second across all users;
	// zero means unlimited.
	RateLimit float64 `koanf:"rate_limit"`
}

// StubSection configures the built-in stub server.
type StubSection struct {
	// Addr is the listen address.
	Addr string `koanf:"addr"`

	// APIKey is the credential the stub requires.
	APIKey string `koanf:"api_key"`

	// FailureRate simulates backing-service unavailability: the
	// fraction of LOGIN/ACTION requests answered with ERROR, 0.0-1.0.
	FailureRate float64 `koanf:"failure_rate"`
}

// MetricsSection configures the Prometheus exposition listener.
type MetricsSection struct {
	// Addr is the /metrics listen address; empty disables the listener.
	Addr string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
