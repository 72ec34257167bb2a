// Package api is the HTTP client for the VRTravel reconstruction service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// defaultTimeout bounds a single request when no timeout is configured.
// Uploads can take minutes, so this is deliberately generous.
const defaultTimeout = 120 * time.Second

// Envelope is the uniform response wrapper used by every endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Error is a failed API call. Status is 0 for transport-level failures
// that never produced an HTTP response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// Client issues authenticated requests against the versioned API base URL.
// It is a pure I/O boundary: no orchestration logic, no local side effects.
type Client struct {
	baseURL string
	http    *http.Client
}

// Opts holds parameters for creating a Client.
type Opts struct {
	BaseURL string        // versioned base, e.g. "http://localhost:5000/v1"
	Token   string        // bearer token; empty for unauthenticated calls
	Timeout time.Duration // per-request timeout (default: defaultTimeout)
	// For testing: inject a custom HTTP client.
	HTTPClient *http.Client
}

// New creates a Client. When a token is present, requests are sent through
// an oauth2 transport that attaches the bearer header.
func New(opts Opts) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	if opts.Token != "" {
		hc = &http.Client{
			Timeout: hc.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
				Base:   hc.Transport,
			},
		}
	}

	return &Client{baseURL: opts.BaseURL, http: hc}, nil
}

// get issues a GET and decodes the envelope data into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// post issues a JSON POST and decodes the envelope data into out.
// A nil body sends an empty JSON object.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// del issues a DELETE with a JSON body and decodes the envelope data into out.
func (c *Client) del(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodDelete, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if method != http.MethodGet {
		payload := body
		if payload == nil {
			payload = struct{}{}
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// send executes a prepared request and decodes the response envelope.
// Transport failures are reported as an Error with Status 0 so the
// classifier can pattern-match them uniformly.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Message: fmt.Sprintf("network error: read response: %v", err)}
	}

	var env Envelope
	if len(raw) > 0 {
		// Body may not be an envelope for some error statuses; fall
		// through with a zero envelope in that case.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
