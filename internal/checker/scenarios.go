package checker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/sessprobe-go/internal/protocol"
	"github.com/yndnr/sessprobe-go/pkg/token"
)

// neverAuthenticatedToken is well-formed but deliberately never sent
// with LOGIN, so its LOGOUT behavior probes the target's handling of
// unknown tokens.
const neverAuthenticatedToken = "A1B2C3D4E5F6A1B2C3D4E5F6A1B2C3D4"

// scenarios is the full conformance suite, run in declaration order.
var scenarios = []scenario{
	{name: "token format", run: checkTokenFormat},
	{name: "login succeeds", needsDouble: true, run: checkLoginSuccess},
	{name: "login without backing service", run: checkLoginWithoutDouble},
	{name: "action without login rejected", needsDouble: true, run: checkActionWithoutLogin},
	{name: "repeated actions on one session", needsDouble: true, run: checkRepeatedActions},
	{name: "logout ends the session", needsDouble: true, run: checkLogoutTerminality},
	{name: "logout of unknown token", needsDouble: true, run: checkLogoutUnknownToken},
	{name: "malformed token rejected", needsDouble: true, run: checkMalformedToken},
	{name: "unknown action rejected", needsDouble: true, run: checkUnknownAction},
	{name: "api key enforced", needsDouble: true, run: checkAPIKeyEnforced},
	{name: "independent concurrent sessions", needsDouble: true, run: checkTokenIndependence},
}

// checkTokenFormat is purely local: generated tokens must satisfy the
// 32-char uppercase-hex format and show no collisions over a batch.
func checkTokenFormat(_ context.Context, _ *env) (Status, string) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		tok, err := token.Generate()
		if err != nil {
			return StatusFail, fmt.Sprintf("generate: %v", err)
		}
		if !token.Validate(tok) {
			return StatusFail, fmt.Sprintf("generated token %q fails format validation", tok)
		}
		if seen[tok] {
			return StatusFail, fmt.Sprintf("duplicate token %q in a batch of 1000", tok)
		}
		seen[tok] = true
	}
	return StatusPass, ""
}

func checkLoginSuccess(ctx context.Context, env *env) (Status, string) {
	tok, err := token.Generate()
	if err != nil {
		return StatusFail, err.Error()
	}

	resp, err := env.client.Call(ctx, tok, protocol.ActionLogin)
	if err != nil {
		return StatusFail, fmt.Sprintf("LOGIN: %v", err)
	}
	if err := protocol.ValidateSuccess(resp); err != nil {
		return StatusFail, fmt.Sprintf("LOGIN: %v", err)
	}
	return StatusPass, ""
}

// checkLoginWithoutDouble inverts the usual precondition: it only has
// meaning when the backing service is absent, where LOGIN must surface
// either a decodable ERROR or a transport failure, never a silent OK.
func checkLoginWithoutDouble(ctx context.Context, env *env) (Status, string) {
	if !env.probeConfigured {
		return StatusSkip, "no admin probe configured"
	}
	if env.doubleUp {
		return StatusSkip, "backing service is reachable"
	}

	tok, err := token.Generate()
	if err != nil {
		return StatusFail, err.Error()
	}

	resp, err := env.client.Call(ctx, tok, protocol.ActionLogin)
	switch {
	case err != nil && protocol.IsTransport(err):
		return StatusPass, fmt.Sprintf("transport failure: %v", err)
	case err != nil:
		return StatusFail, fmt.Sprintf("LOGIN: %v", err)
	case resp.OK():
		return StatusFail, "LOGIN reported OK with no backing service"
	default:
		if verr := protocol.ValidateError(resp); verr != nil {
			return StatusFail, fmt.Sprintf("LOGIN: %v", verr)
		}
		return StatusPass, fmt.Sprintf("ERROR: %s", resp.Message)
	}
}

func checkActionWithoutLogin(ctx context.Context, env *env) (Status, string) {
	tok, err := token.Generate()
	if err != nil {
		return StatusFail, err.Error()
	}

	resp, err := env.client.Call(ctx, tok, protocol.ActionDo)
	if err != nil {
		return StatusFail, fmt.Sprintf("ACTION: %v", err)
	}
	if err := protocol.ValidateError(resp); err != nil {
		return StatusFail, fmt.Sprintf("ACTION on unauthenticated token: %v", err)
	}
	return StatusPass, ""
}

func checkRepeatedActions(ctx context.Context, env *env) (Status, string) {
	tok, err := token.Generate()
	if err != nil {
		return StatusFail, err.Error()
	}

	resp, err := env.client.Call(ctx, tok, protocol.ActionLogin)
	if err != nil {
		return StatusFail, fmt.Sprintf("LOGIN: %v", err)
	}
	if err := protocol.ValidateSuccess(resp); err != nil {
		return StatusFail, fmt.Sprintf("LOGIN: %v", err)
	}

	for i := 0; i < 4; i++ {
		resp, err := env.client.Call(ctx, tok, protocol.ActionDo)
		if err != nil {
			return StatusFail, fmt.Sprintf("ACTION %d: %v", i+1, err)
		}
		if err := protocol.ValidateSuccess(resp); err != nil {
			return StatusFail, fmt.Sprintf("ACTION %d on a live session: %v", i+1, err)
		}
	}
	return StatusPass, ""
}

func checkLogoutTerminality(ctx context.Context, env *env) (Status, string) {
	tok, err := token.Generate()
	if err != nil {
		return StatusFail, err.Error()
	}

	for _, step := range []protocol.Action{protocol.ActionLogin, protocol.ActionLogout} {
		resp, err := env.client.Call(ctx, tok, step)
		if err != nil {
			return StatusFail, fmt.Sprintf("%s: %v", step, err)
		}
		if err := protocol.ValidateSuccess(resp); err != nil {
			return StatusFail, fmt.Sprintf("%s: %v", step, err)
		}
	}

	resp, err := env.client.Call(ctx, tok, protocol.ActionDo)
	if err != nil {
		return StatusFail, fmt.Sprintf("ACTION after LOGOUT: %v", err)
	}
	if err := protocol.ValidateError(resp); err != nil {
		return StatusFail, fmt.Sprintf("ACTION after LOGOUT: %v", err)
	}
	return StatusPass, ""
}

// checkLogoutUnknownToken accepts both answers: the contract leaves
// LOGOUT of a never-authenticated token open, so only a transport or
// schema failure is a defect.
func checkLogoutUnknownToken(ctx context.Context, env *env) (Status, string) {
	resp, err := env.client.Call(ctx, neverAuthenticatedToken, protocol.ActionLogout)
	if err != nil {
		return StatusFail, fmt.Sprintf("LOGOUT: %v", err)
	}
	if resp.Result == protocol.ResultError && resp.Message == "" {
		return StatusFail, "ERROR response without a message"
	}
	return StatusPass, fmt.Sprintf("target answered %s", resp.Result)
}

func checkMalformedToken(ctx context.Context, env *env) (Status, string) {
	tok, err := token.Generate()
	if err != nil {
		return StatusFail, err.Error()
	}

	malformed := []struct {
		label string
		token string
	}{
		{"31 characters", tok[:31]},
		{"lowercase hex", strings.ToLower(tok)},
	}
	for _, m := range malformed {
		resp, err := env.client.Call(ctx, m.token, protocol.ActionLogin)
		if err != nil {
			return StatusFail, fmt.Sprintf("LOGIN with %s token: %v", m.label, err)
		}
		if verr := protocol.ValidateError(resp); verr != nil {
			return StatusFail, fmt.Sprintf("LOGIN with %s token: %v", m.label, verr)
		}
	}
	return StatusPass, ""
}

func checkUnknownAction(ctx context.Context, env *env) (Status, string) {
	tok, err := token.Generate()
	if err != nil {
		return StatusFail, err.Error()
	}

	resp, err := env.client.Send(ctx, tok, "INVALID", true)
	if err != nil {
		return StatusFail, fmt.Sprintf("INVALID action: %v", err)
	}
	if verr := protocol.ValidateError(resp); verr != nil {
		return StatusFail, fmt.Sprintf("INVALID action: %v", verr)
	}
	return StatusPass, ""
}

func checkAPIKeyEnforced(ctx context.Context, env *env) (Status, string) {
	tok, err := token.Generate()
	if err != nil {
		return StatusFail, err.Error()
	}

	// Missing key must be rejected at the HTTP layer.
	if _, err := env.clientWithKey("").Call(ctx, tok, protocol.ActionLogin); !errors.Is(err, protocol.ErrUnauthorized) {
		return StatusFail, fmt.Sprintf("missing X-Api-Key: got %v, want HTTP rejection", err)
	}

	// A wrong key may be rejected at either layer.
	resp, err := env.clientWithKey(env.cfg.APIKey + "-wrong").Call(ctx, tok, protocol.ActionLogin)
	switch {
	case errors.Is(err, protocol.ErrUnauthorized):
		return StatusPass, ""
	case err != nil:
		return StatusFail, fmt.Sprintf("wrong X-Api-Key: %v", err)
	case resp.OK():
		return StatusFail, "wrong X-Api-Key was accepted"
	default:
		return StatusPass, ""
	}
}

func checkTokenIndependence(ctx context.Context, env *env) (Status, string) {
	tokens := make([]string, 3)
	for i := range tokens {
		tok, err := token.Generate()
		if err != nil {
			return StatusFail, err.Error()
		}
		tokens[i] = tok
	}

	for i, tok := range tokens {
		resp, err := env.client.Call(ctx, tok, protocol.ActionLogin)
		if err != nil {
			return StatusFail, fmt.Sprintf("LOGIN %d: %v", i+1, err)
		}
		if verr := protocol.ValidateSuccess(resp); verr != nil {
			return StatusFail, fmt.Sprintf("LOGIN %d: %v", i+1, verr)
		}
	}

	// Every session must still be live regardless of the others.
	for i, tok := range tokens {
		resp, err := env.client.Call(ctx, tok, protocol.ActionDo)
		if err != nil {
			return StatusFail, fmt.Sprintf("ACTION %d: %v", i+1, err)
		}
		if verr := protocol.ValidateSuccess(resp); verr != nil {
			return StatusFail, fmt.Sprintf("ACTION %d: %v", i+1, verr)
		}
	}
	return StatusPass, ""
}
