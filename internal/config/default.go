// Package config defines the probe configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second

	DefaultUsers        = 10
	DefaultThinkMin     = 1 * time.Second
	DefaultThinkMax     = 3 * time.Second
	DefaultActionWeight = 3
	DefaultLogoutWeight = 1

	DefaultStubAddr = "127.0.0.1:8080"

	// DefaultStubAPIKey is the development key the stub accepts out of
	// the box. Override stub.api_key for anything beyond local use.
	DefaultStubAPIKey = "sessprobe-dev"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default probe configuration.
func Default() *Config {
	return &Config{
		Target: TargetSection{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Load: LoadSection{
			Users:        DefaultUsers,
			ThinkMin:     DefaultThinkMin,
			ThinkMax:     DefaultThinkMax,
			ActionWeight: DefaultActionWeight,
			LogoutWeight: DefaultLogoutWeight,
		},
		Stub: StubSection{
			Addr:   DefaultStubAddr,
			APIKey: DefaultStubAPIKey,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
