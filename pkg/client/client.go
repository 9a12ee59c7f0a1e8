// Package client implements the typed HTTP client for the events backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/azhavoronkov/eventscope/pkg/domain"
)

//go:generate moq -out mocks/tokens.go -pkg mocks -skip-ensure -fmt goimports . TokenStore

// TokenStore supplies the bearer token for authenticated requests
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
}

// Options configures a Client, all dependencies are explicit so tests can
// substitute doubles without monkey-patching
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Tokens    TokenStore // optional, required only for authenticated requests
}

// Client talks to the events backend over plain REST/JSON
type Client struct {
	baseURL   string
	client    *http.Client
	userAgent string
	tokens    TokenStore
}

// APIError carries the HTTP status and a best-effort human-readable message
// extracted from the response body
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// New creates a client for the given backend
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: opts.UserAgent,
		tokens:    opts.Tokens,
	}
}

// ListEvents retrieves up to limit event cards. Transport failures, non-2xx
// statuses and malformed bodies all surface as errors; an empty feed is a
// successful empty slice, never the other way around.
func (c *Client) ListEvents(ctx context.Context, limit int) ([]domain.EventCard, error) {
	var events []domain.EventCard
	req := Request{Method: http.MethodGet, Path: "/events?limit=" + strconv.Itoa(limit)}
	if err := c.Do(ctx, req, &events); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []domain.EventCard{}
	}
	return events, nil
}

// EcoChannels retrieves the channel listing used for source thumbnails
func (c *Client) EcoChannels(ctx context.Context) ([]domain.Channel, error) {
	var channels []domain.Channel
	req := Request{Method: http.MethodGet, Path: "/debug/eco-channels"}
	if err := c.Do(ctx, req, &channels); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}

// TriggerIngest asks the backend to pull fresh posts from its sources.
// The response body is not inspected, only the status matters; callers
// re-query /events once this returns.
func (c *Client) TriggerIngest(ctx context.Context, perChannelLimit int, eventOnly bool) error {
	path := fmt.Sprintf("/debug/telegram-fetch-event-posts?per_channel_limit=%d&event_only=%t",
		perChannelLimit, eventOnly)
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: path}, nil); err != nil {
		return fmt.Errorf("trigger ingest: %w", err)
	}
	return nil
}

// Request describes a single call through Do
type Request struct {
	Method string
	Path   string
	Body   any  // serialized as JSON when non-nil
	Auth   bool // attach bearer token from the token store
}

// Do issues a request and decodes the JSON response into out when out is
// non-nil. Every call carries cache-bypass headers so it observes current
// server state. A 204 response leaves out untouched. Non-2xx responses
// become *APIError, preferring the detail field from a JSON error body.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	var body io.Reader = http.NoBody
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.buildURL(r.Path), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Auth && c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return fmt.Errorf("read access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// apiError extracts a readable message from an error response
func apiError(resp *http.Response) *APIError {
	msg := fmt.Sprintf("Request failed: %d", resp.StatusCode)
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&payload); err == nil && payload.Detail != "" {
		msg = payload.Detail
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
