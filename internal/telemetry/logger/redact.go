// Package logger provides structured logging for sessprobe.
package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be fully redacted.
var sensitiveKeyPatterns = []string{
	"api_key",
	"apikey",
	"password",
	"secret",
	"credential",
	"bearer",
}

// Key names whose values are session tokens: masked rather than dropped,
// so a run's log still lets one follow a single token's lifecycle.
var tokenKeyNames = []string{
	"token",
	"session_token",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// normalizeKey folds case and separators so header-style keys like
// X-Api-Key match the underscore patterns.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		keyLower := normalizeKey(a.Key)

		for _, name := range tokenKeyNames {
			if keyLower == name {
				return slog.String(a.Key, MaskToken(strVal))
			}
		}

		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(keyLower, pattern) {
				if strVal != "" {
					return slog.String(a.Key, redactedValue)
				}
				break
			}
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// MaskToken partially masks a token value, keeping the ends as hints.
// Format: first 3 chars + "..." + last 3 chars.
func MaskToken(value string) string {
	if len(value) < 10 {
		return redactedValue
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := normalizeKey(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
