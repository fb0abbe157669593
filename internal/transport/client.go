// Package transport performs request/response cycles against the backend:
// auth-header injection, envelope unwrapping, and session-invalidation
// detection.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ganot/labordesk/internal/notify"
)

// LoginPath is exempt from 401 invalidation handling: a failed login must
// not itself trigger a logout-redirect loop.
const LoginPath = "/login"

// DefaultTimeout bounds every request.
const DefaultTimeout = 15 * time.Second

const networkFailureMessage = "network request failed"

// statusUnauthenticated is the envelope status the backend uses for an
// invalid or expired session.
const statusUnauthenticated = 401

// TokenSource supplies the current auth token, usually the session store.
type TokenSource interface {
	Token() (string, bool)
}

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the uniform HTTP layer under the resource caches and auth flow.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	guard  *InvalidationGuard
	notify notify.Sink
	logger *slog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg Config, tokens TokenSource, guard *InvalidationGuard, sink notify.Sink, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:   cfg.BaseURL,
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		guard:  guard,
		notify: sink,
		logger: logger,
	}
}

// envelope is the uniform backend response wrapper.
type envelope struct {
	Status int             `json:"status"`
	Msg    string          `json:"msg"`
	Result json.RawMessage `json:"result"`
}

// Get issues a GET request and unwraps the result into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request and unwraps the result into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request and unwraps the result into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request and unwraps the result into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.tokens.Token(); ok {
		// The backend expects the raw token, no scheme prefix.
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", "method", method, "path", path, "error", err)
		c.notify.Error(networkFailureMessage)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && path != LoginPath {
		c.guard.Invalidate()
		return ErrUnauthenticated
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.notify.Error(networkFailureMessage)
		return fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Error("malformed response envelope", "method", method, "path", path, "error", err)
		c.notify.Error(networkFailureMessage)
		return fmt.Errorf("%w: decoding envelope: %v", ErrNetwork, err)
	}

	switch {
	case env.Status == 0:
		// success, fall through to unwrap
	case env.Status == statusUnauthenticated && path != LoginPath:
		c.guard.Invalidate()
		return ErrUnauthenticated
	default:
		msg := env.Msg
		if msg == "" {
			msg = networkFailureMessage
		}
		c.logger.Error("request rejected", "method", method, "path", path, "status", env.Status, "msg", env.Msg)
		c.notify.Error(msg)
		return &APIError{Status: env.Status, Msg: msg}
	}

	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		c.notify.Error(networkFailureMessage)
		return fmt.Errorf("%w: decoding result: %v", ErrNetwork, err)
	}
	return nil
}
