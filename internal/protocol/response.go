// Package protocol models the token-session wire contract.
package protocol

import (
	"encoding/json"
	"io"
)

// Result values of the response discriminant.
const (
	ResultOK    = "OK"
	ResultError = "ERROR"
)

// Response is the decoded endpoint response. It is a tagged union
// discriminated by Result: an OK response carries no message, an ERROR
// response carries a non-empty Message. Unknown fields are preserved in
// Extra and ignored by validation (forward-compatible schema).
type Response struct {
	Result  string
	Message string
	Extra   map[string]json.RawMessage
}

// OK reports whether the response is a success.
func (r *Response) OK() bool {
	return r.Result == ResultOK
}

// MarshalJSON encodes the response in its wire shape: the result
// discriminant plus the message on ERROR responses. Extra fields are
// not re-emitted.
func (r Response) MarshalJSON() ([]byte, error) {
	type wire struct {
		Result  string `json:"result"`
		Message string `json:"message,omitempty"`
	}
	return json.Marshal(wire{Result: r.Result, Message: r.Message})
}

// Decode reads and decodes a JSON response body.
//
// Decode inspects the result discriminant first, then validates the shape
// matching that tag. It fails with a schema error when the body is not
// JSON, the discriminant is absent or unknown, or an ERROR response has
// no message.
func Decode(r io.Reader) (*Response, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, ErrBodyNotJSON.WithCause(err)
	}
	return FromMap(raw)
}

// DecodeLenient reads and decodes a JSON response body without enforcing
// the Success/Error shape. Missing or malformed fields yield zero values
// instead of schema errors; only a non-JSON body fails. Used when the
// caller explicitly opts out of schema validation.
func DecodeLenient(r io.Reader) (*Response, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, ErrBodyNotJSON.WithCause(err)
	}

	resp := &Response{}
	if v, ok := raw["result"]; ok {
		_ = json.Unmarshal(v, &resp.Result)
	}
	if v, ok := raw["message"]; ok {
		_ = json.Unmarshal(v, &resp.Message)
	}
	for k, v := range raw {
		if k == "result" || k == "message" {
			continue
		}
		if resp.Extra == nil {
			resp.Extra = make(map[string]json.RawMessage)
		}
		resp.Extra[k] = v
	}
	return resp, nil
}

// FromMap classifies and validates an already-decoded JSON object.
func FromMap(raw map[string]json.RawMessage) (*Response, error) {
	resultRaw, ok := raw["result"]
	if !ok {
		return nil, ErrMissingResult
	}

	var result string
	if err := json.Unmarshal(resultRaw, &result); err != nil {
		return nil, ErrMissingResult.WithCause(err)
	}

	resp := &Response{Result: result}

	switch result {
	case ResultOK:
		// No further shape requirements.
	case ResultError:
		msgRaw, ok := raw["message"]
		if !ok {
			return nil, ErrMissingMessage
		}
		var message string
		if err := json.Unmarshal(msgRaw, &message); err != nil || message == "" {
			return nil, ErrMissingMessage
		}
		resp.Message = message
	default:
		return nil, ErrUnknownResult.WithDetails(result)
	}

	for k, v := range raw {
		if k == "result" || k == "message" {
			continue
		}
		if resp.Extra == nil {
			resp.Extra = make(map[string]json.RawMessage)
		}
		resp.Extra[k] = v
	}

	return resp, nil
}

// ValidateSuccess checks that resp is a well-formed success response.
// Pure and side-effect-free.
func ValidateSuccess(resp *Response) error {
	if resp.Result != ResultOK {
		return ErrNotSuccess.WithDetails(resp.Result)
	}
	return nil
}

// ValidateError checks that resp is a well-formed error response.
// Pure and side-effect-free.
func ValidateError(resp *Response) error {
	if resp.Result != ResultError {
		return ErrNotError.WithDetails(resp.Result)
	}
	if resp.Message == "" {
		return ErrMissingMessage
	}
	return nil
}
