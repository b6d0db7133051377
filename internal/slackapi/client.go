// Package slackapi is a minimal Slack Web API client for the two lookups
// slackrelay needs: conversations.info and users.info.
package slackapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://slack.com"
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 64 << 10
)

var (
	// ErrMalformedResponse means the body was not the documented JSON shape.
	ErrMalformedResponse = errors.New("malformed slack response")
	// ErrEmptyName means the call succeeded but the object had no name.
	ErrEmptyName = errors.New("slack object has no name")
)

// Error is an `"ok": false` reply, e.g. missing_scope, not_in_channel, channel_not_found.
type Error struct {
	Method string
	Code   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
}

// StatusError is a non-2xx HTTP reply.
type StatusError struct {
	Method     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("slack %s: http status %d", e.Method, e.StatusCode)
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client

	// RateLimit is requests per second across both methods; 0 disables pacing.
	RateLimit float64
	RateBurst int
}

// Client calls the Slack Web API with a bot token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// New builds a Client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(opts.Token),
		http:    httpClient,
		limiter: limiter,
	}
}

type namedObject struct {
	Name string `json:"name"`
}

// ChannelName returns the name of a conversation via conversations.info.
func (c *Client) ChannelName(ctx context.Context, channelID string) (string, error) {
	var resp struct {
		Channel *namedObject `json:"channel"`
	}
	if err := c.get(ctx, "conversations.info", url.Values{"channel": {channelID}}, &resp); err != nil {
		return "", err
	}
	return nameOf("conversations.info", resp.Channel)
}

// UserName returns the handle of a user via users.info.
func (c *Client) UserName(ctx context.Context, userID string) (string, error) {
	var resp struct {
		User *namedObject `json:"user"`
	}
	if err := c.get(ctx, "users.info", url.Values{"user": {userID}}, &resp); err != nil {
		return "", err
	}
	return nameOf("users.info", resp.User)
}

func nameOf(method string, obj *namedObject) (string, error) {
	if obj == nil {
		return "", fmt.Errorf("%s: %w", method, ErrMalformedResponse)
	}
	if strings.TrimSpace(obj.Name) == "" {
		return "", fmt.Errorf("%s: %w", method, ErrEmptyName)
	}
	return obj.Name, nil
}

// get performs a GET and decodes the envelope into out after checking "ok".
func (c *Client) get(ctx context.Context, method string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("slack %s: rate limiter: %w", method, err)
		}
	}

	endpoint := fmt.Sprintf("%s/api/%s?%s", c.baseURL, method, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("slack %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("slack %s: reading response: %w", method, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Method: method, StatusCode: resp.StatusCode}
	}

	var envelope struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%s: %w: %v", method, ErrMalformedResponse, err)
	}
	if !envelope.OK {
		code := strings.TrimSpace(envelope.Error)
		if code == "" {
			code = "unknown_error"
		}
		return &Error{Method: method, Code: code}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", method, ErrMalformedResponse, err)
	}
	return nil
}
