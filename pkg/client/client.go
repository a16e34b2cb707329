package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusSuccess is the envelope code the service sets on every successful
// response. Anything else is surfaced to callers as an *APIError.
const StatusSuccess = "10000"

// Envelope is the wire frame every API response arrives in.
type Envelope struct {
	StatusCode string          `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// APIError carries the server-provided failure message and envelope code so
// callers can show it verbatim.
type APIError struct {
	StatusCode string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with code %s", e.StatusCode)
}

// IsAPIError unwraps err into an *APIError if it is one.
func IsAPIError(err error) (*APIError, bool) {
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}

// Client is a typed HTTP client for the billing API. It reads the access
// token from its Session on every request, so a login performed through the
// same session is picked up without re-creating the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSession attaches a session store. Without one the client only reaches
// public endpoints.
func WithSession(s Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// New creates a Client for the API rooted at baseURL (e.g.
// "https://billing.example.com/api/v1").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: NewMemorySession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session store the client was built with.
func (c *Client) Session() Session {
	return c.session
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tokens, err := c.session.Tokens(); err == nil && tokens != nil && tokens.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}
	// Success requires both the HTTP status and the envelope sentinel; a
	// failing transport status wins even if the body claims success.
	if resp.StatusCode >= http.StatusMultipleChoices || env.StatusCode != StatusSuccess {
		return &APIError{
			StatusCode: env.StatusCode,
			Message:    env.Message,
			HTTPStatus: resp.StatusCode,
		}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func queryPath(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}
