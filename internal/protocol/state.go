// Package protocol models the token-session wire contract.
package protocol

// SessionState is the modeled server-side state of a token.
type SessionState int

const (
	// StateUnauthenticated is the initial state of every token.
	// Absence of a token on the server is modeled as this state.
	StateUnauthenticated SessionState = iota

	// StateAuthenticated is entered after a successful LOGIN and left
	// after a successful LOGOUT.
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "UNAUTHENTICATED"
	case StateAuthenticated:
		return "AUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

// Oracle is a passive state model for a single token.
//
// It is advanced purely from observed server results and never consults
// server state directly: it can flag observations that contradict the
// session lifecycle but cannot force server state. One Oracle instance
// belongs to exactly one token and is not safe for concurrent use;
// requests for a token must be issued sequentially anyway.
type Oracle struct {
	state SessionState
}

// NewOracle creates an oracle in the unauthenticated state.
func NewOracle() *Oracle {
	return &Oracle{state: StateUnauthenticated}
}

// State returns the current modeled state.
func (o *Oracle) State() SessionState {
	return o.state
}

// Reset returns the oracle to the unauthenticated state.
// Used when a virtual user discards its token after LOGOUT.
func (o *Oracle) Reset() {
	o.state = StateUnauthenticated
}

// Advance applies an observed (action, result) pair and returns the new
// modeled state.
//
// When the observation contradicts the model (e.g. ACTION succeeding on an
// unauthenticated token) Advance returns a protocol violation and leaves
// the state unchanged.
func (o *Oracle) Advance(action Action, result string) (SessionState, error) {
	ok := result == ResultOK

	if !action.Known() {
		// Malformed actions must never succeed, in any state.
		if ok {
			return o.state, ErrInvalidActionAccepted.WithDetails(action.String())
		}
		return o.state, nil
	}

	switch o.state {
	case StateUnauthenticated:
		switch action {
		case ActionLogin:
			if ok {
				o.state = StateAuthenticated
			}
			// ERROR leaves the token unauthenticated; retry is allowed.
		case ActionDo:
			if ok {
				return o.state, ErrActionWhileUnauthenticated
			}
		case ActionLogout:
			// Both OK (idempotent no-op) and ERROR (not found) are
			// acceptable terminal observations.
		}

	case StateAuthenticated:
		switch action {
		case ActionLogin:
			// Re-login on a live session is tolerated as idempotent.
		case ActionDo:
			// OK is the expected repeatable outcome; ERROR is treated
			// as transient (backing service unavailable) and does not
			// change the modeled state.
		case ActionLogout:
			if ok {
				o.state = StateUnauthenticated
			}
		}
	}

	return o.state, nil
}
