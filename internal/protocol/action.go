// Package protocol models the token-session wire contract.
package protocol

import "fmt"

// Action is an operation requested on a token.
type Action string

// Actions understood by the endpoint.
const (
	ActionLogin  Action = "LOGIN"
	ActionDo     Action = "ACTION"
	ActionLogout Action = "LOGOUT"
)

// ParseAction parses s into a known Action.
// Unknown literals are rejected; the client can still send them raw
// for negative testing via Client.Send.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionLogin, ActionDo, ActionLogout:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Known reports whether a is one of the three contract actions.
func (a Action) Known() bool {
	switch a {
	case ActionLogin, ActionDo, ActionLogout:
		return true
	}
	return false
}

func (a Action) String() string {
	return string(a)
}
