package dispatch

import (
	"context"
	"time"

	"github.com/mattjoyce/slackrelay/internal/queue"
	"github.com/mattjoyce/slackrelay/internal/resolver"
	"github.com/mattjoyce/slackrelay/internal/webhook"
)

//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks github.com/mattjoyce/slackrelay/internal/dispatch Sink

// Sink is the durable queue a notification is handed to.
type Sink interface {
	Enqueue(ctx context.Context, req queue.EnqueueRequest) (string, error)
}

// Verifier authenticates an inbound delivery.
type Verifier interface {
	Verify(headers webhook.Headers, body []byte, now time.Time) webhook.VerificationResult
}

// NameResolver maps Slack ids to display names.
type NameResolver interface {
	ResolveChannel(ctx context.Context, channelID string) resolver.Resolution
	ResolveUser(ctx context.Context, userID string) resolver.Resolution
}
