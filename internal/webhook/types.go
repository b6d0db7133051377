package webhook

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultMaxBodySize caps inbound bodies at 1MB.
	DefaultMaxBodySize int64 = 1024 * 1024

	// DefaultPath is where Slack is configured to POST events.
	DefaultPath = "/slack/events"
)

// Handler processes one inbound request. A non-nil error means the request
// could not be completed and should be redelivered by the caller.
type Handler interface {
	Handle(ctx context.Context, req Request) (Response, error)
}

// Config holds webhook server configuration.
type Config struct {
	Listen       string
	Path         string
	MaxBodySize  int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Headers is a header mapping with case-insensitive lookup.
type Headers map[string]string

// Get returns the value for name, trying the exact key, the lowercase key and
// then a case-folded scan.
func (h Headers) Get(name string) string {
	if h == nil {
		return ""
	}
	if v, ok := h[name]; ok {
		return v
	}
	if v, ok := h[strings.ToLower(name)]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// HeadersFromHTTP flattens http.Header, keeping the first value of each key.
func HeadersFromHTTP(h http.Header) Headers {
	out := make(Headers, len(h))
	for k, values := range h {
		if len(values) > 0 {
			out[k] = values[0]
		}
	}
	return out
}

// Request is one inbound invocation. The JSON shape matches API Gateway proxy
// events so a recorded event can be replayed with `slackrelay invoke`.
type Request struct {
	Headers         Headers `json:"headers"`
	Body            string  `json:"body"`
	IsBase64Encoded bool    `json:"isBase64Encoded"`
}

// Response is the handler outcome.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

// ErrorResponse is the JSON body for failures.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
