// Package client provides HTTP communication with the system under test.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yndnr/sessprobe-go/internal/protocol"
	"github.com/yndnr/sessprobe-go/internal/telemetry/logger"
)

// Config holds client configuration. It is immutable after construction;
// request handlers never read ambient state.
type Config struct {
	// BaseURL is the root URL of the application, without trailing slash.
	BaseURL string

	// APIKey is sent as the X-Api-Key header on every request.
	APIKey string

	// Timeout bounds each request end to end.
	Timeout time.Duration
}

// Client is a stateless wrapper around the /endpoint contract.
//
// The underlying connection pool may be shared across callers; every
// request is self-contained and carries its own token, so no session
// semantics leak between them.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

// New creates a new client.
func New(cfg Config, log logger.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	if log == nil {
		log = logger.Default()
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		logger:  log,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call issues token+action against /endpoint and validates the response
// against the Success/Error schema.
func (c *Client) Call(ctx context.Context, token string, action protocol.Action) (*protocol.Response, error) {
	return c.Send(ctx, token, action.String(), true)
}

// Send issues a raw action string against /endpoint. Unknown actions are
// sent through unmodified; the server is expected to answer ERROR.
//
// When validate is false the body is decoded leniently: shape mismatches
// yield zero-valued fields instead of schema errors. Transport failures
// are always surfaced.
func (c *Client) Send(ctx context.Context, token, action string, validate bool) (*protocol.Response, error) {
	form := url.Values{}
	form.Set("token", token)
	form.Set("action", action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/endpoint",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, protocol.ErrConnection.WithCause(err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Credential rejection carries no body contract; do not decode.
		return nil, protocol.ErrUnauthorized.WithDetails(fmt.Sprintf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, protocol.ErrUnexpectedStatus.WithDetails(fmt.Sprintf("status %d", resp.StatusCode))
	}

	if validate {
		return protocol.Decode(resp.Body)
	}
	return protocol.DecodeLenient(resp.Body)
}

// AdminHealthy reports whether the dependency double's admin probe at
// {mockBaseURL}/__admin/ answers HTTP 200. Callers use it to skip
// double-dependent checks instead of failing on infrastructure absence.
func (c *Client) AdminHealthy(ctx context.Context, mockBaseURL string) bool {
	if mockBaseURL == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimSuffix(mockBaseURL, "/")+"/__admin/", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("dependency double unreachable",
			"mock_base_url", mockBaseURL,
			"error", err,
		)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// classifyTransport maps a low-level request error to the transport taxonomy.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return protocol.ErrTimeout.WithCause(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return protocol.ErrTimeout.WithCause(err)
	}
	return protocol.ErrConnection.WithCause(err)
}
