// Package protocol models the token-session wire contract.
package protocol

import (
	"errors"
	"fmt"
)

// ProbeError represents a classified probe failure with a structured error code.
type ProbeError struct {
	Code    string // Error code (e.g., "SP-TRANS-0001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *ProbeError) Is(target error) bool {
	t, ok := target.(*ProbeError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewProbeError creates a new ProbeError with the given code and message.
func NewProbeError(code, message string) *ProbeError {
	return &ProbeError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *ProbeError) WithDetails(details string) *ProbeError {
	return &ProbeError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *ProbeError) WithCause(cause error) *ProbeError {
	return &ProbeError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error if it's a ProbeError.
func GetErrorCode(err error) string {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// ============================================================================
// Transport Errors (TRANS)
// Connection-level failures; never retried by the core, surfaced to callers.
// ============================================================================

var (
	// ErrConnection indicates the request could not reach the target.
	ErrConnection = NewProbeError("SP-TRANS-0001", "connection failed")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = NewProbeError("SP-TRANS-0002", "request timed out")

	// ErrUnexpectedStatus indicates a non-200 status with no decodable body.
	ErrUnexpectedStatus = NewProbeError("SP-TRANS-0003", "unexpected http status")

	// ErrUnauthorized indicates the target rejected the API key (401/403).
	ErrUnauthorized = NewProbeError("SP-TRANS-0004", "api key rejected")

	// ErrBodyNotJSON indicates a 200 response whose body is not valid JSON.
	ErrBodyNotJSON = NewProbeError("SP-TRANS-0005", "response body is not json")
)

// ============================================================================
// Schema Errors (SCHEMA)
// The decoded body does not match the Success/Error response shape.
// ============================================================================

var (
	// ErrMissingResult indicates the result discriminant is absent.
	ErrMissingResult = NewProbeError("SP-SCHEMA-0002", "response missing result field")

	// ErrUnknownResult indicates the result field is neither OK nor ERROR.
	ErrUnknownResult = NewProbeError("SP-SCHEMA-0003", "unknown result value")

	// ErrMissingMessage indicates an ERROR response with an empty message.
	ErrMissingMessage = NewProbeError("SP-SCHEMA-0004", "error response missing message")

	// ErrNotSuccess indicates success validation was requested for a non-OK response.
	ErrNotSuccess = NewProbeError("SP-SCHEMA-0005", "expected result OK")

	// ErrNotError indicates error validation was requested for a non-ERROR response.
	ErrNotError = NewProbeError("SP-SCHEMA-0006", "expected result ERROR")
)

// ============================================================================
// Protocol Violations (PROTO)
// An observation contradicts the session state model. A correctness failure
// for the checker; the load engine logs and counts but never aborts.
// ============================================================================

var (
	// ErrActionWhileUnauthenticated indicates ACTION succeeded on an
	// unauthenticated token.
	ErrActionWhileUnauthenticated = NewProbeError("SP-PROTO-0001", "action succeeded while unauthenticated")

	// ErrInvalidActionAccepted indicates a malformed action was accepted.
	ErrInvalidActionAccepted = NewProbeError("SP-PROTO-0002", "invalid action was accepted")
)

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	code := GetErrorCode(err)
	return len(code) > 8 && code[:8] == "SP-TRANS"
}

// IsSchema reports whether err is a schema validation failure.
func IsSchema(err error) bool {
	code := GetErrorCode(err)
	return len(code) > 9 && code[:9] == "SP-SCHEMA"
}

// IsViolation reports whether err is a protocol violation.
func IsViolation(err error) bool {
	code := GetErrorCode(err)
	return len(code) > 8 && code[:8] == "SP-PROTO"
}
