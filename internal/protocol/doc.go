// Package protocol models the token-session wire contract.
//
// The endpoint under test accepts a token plus one of three actions and
// answers with a tagged response:
//
//	Success: {"result": "OK", ...}
//	Error:   {"result": "ERROR", "message": "<reason>", ...}
//
// This package holds the pieces every other component builds on:
//
//   - action.go: the LOGIN/ACTION/LOGOUT action set
//   - response.go: response decoding and schema validation
//   - state.go: the passive session-state oracle
//   - errors.go: the transport/schema/violation error taxonomy
//
// The session lifecycle a token traverses:
//
//	UNAUTHENTICATED --LOGIN(OK)--> AUTHENTICATED
//	AUTHENTICATED --ACTION(OK)--> AUTHENTICATED   (repeatable)
//	AUTHENTICATED --LOGOUT(OK)--> UNAUTHENTICATED
//
// Everything here is pure: no I/O, no clocks, no shared state.
package protocol
