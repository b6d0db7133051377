package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mattjoyce/slackrelay/internal/event"
	"github.com/mattjoyce/slackrelay/internal/log"
	"github.com/mattjoyce/slackrelay/internal/payload"
	"github.com/mattjoyce/slackrelay/internal/queue"
	"github.com/mattjoyce/slackrelay/internal/resolver"
	"github.com/mattjoyce/slackrelay/internal/webhook"
)

// DefaultEnqueueTimeout bounds a single enqueue call.
const DefaultEnqueueTimeout = 10 * time.Second

// Response bodies.
const (
	BodyOK            = "ok"
	BodyIgnored       = "ignored"
	BodyBase64        = "base64 not supported"
	BodyInvalidJSON   = "invalid JSON body"
	ErrorUnauthorized = "unauthorized"
)

// Options wires a Dispatcher. Verifier, Resolver, Builder and Sink are required.
type Options struct {
	Verifier       Verifier
	Resolver       NameResolver
	Filter         event.Filter
	Builder        *payload.Builder
	Sink           Sink
	Destination    string
	EnqueueTimeout time.Duration

	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Dispatcher handles Slack deliveries. Safe for concurrent use.
type Dispatcher struct {
	verifier       Verifier
	resolver       NameResolver
	filter         event.Filter
	builder        *payload.Builder
	sink           Sink
	destination    string
	enqueueTimeout time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// New creates a new Dispatcher.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		verifier:       opts.Verifier,
		resolver:       opts.Resolver,
		filter:         opts.Filter,
		builder:        opts.Builder,
		sink:           opts.Sink,
		destination:    opts.Destination,
		enqueueTimeout: opts.EnqueueTimeout,
		now:            opts.Now,
		logger:         opts.Logger,
	}
	if d.enqueueTimeout <= 0 {
		d.enqueueTimeout = DefaultEnqueueTimeout
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.logger == nil {
		d.logger = log.WithComponent("dispatch")
	}
	return d
}

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

// Handle processes one delivery. The returned error is non-nil only when the
// notification could not be enqueued. Cancellation of ctx is ignored; its
// values are kept.
func (d *Dispatcher) Handle(ctx context.Context, req webhook.Request) (webhook.Response, error) {
	// A request runs to completion once accepted. Lookups and the enqueue
	// carry their own timeouts; a client hang-up must not cut them short.
	ctx = context.WithoutCancel(ctx)

	if req.IsBase64Encoded {
		d.logger.Warn("rejecting base64-encoded body")
		return webhook.TextResponse(http.StatusBadRequest, BodyBase64), nil
	}

	body := []byte(req.Body)
	result := d.verifier.Verify(req.Headers, body, d.now())
	if !result.OK {
		d.logger.Error("signature verification failed", "reason", string(result.Reason))
		return webhook.JSONResponse(http.StatusUnauthorized, webhook.ErrorResponse{
			Error:  ErrorUnauthorized,
			Reason: string(result.Reason),
		}), nil
	}

	env, err := event.Decode(body)
	if err != nil {
		d.logger.Warn("rejecting undecodable body", "error", err)
		return webhook.TextResponse(http.StatusBadRequest, BodyInvalidJSON), nil
	}

	decision := d.filter.Admit(env)
	switch decision.Verdict {
	case event.VerdictHandshake:
		d.logger.Info("answering url verification")
		return webhook.JSONResponse(http.StatusOK, challengeResponse{Challenge: env.Challenge}), nil
	case event.VerdictUnsupported:
		d.logger.Debug("acknowledging unsupported type", "type", env.Type)
		return webhook.TextResponse(http.StatusOK, BodyOK), nil
	case event.VerdictIgnored:
		d.logger.Debug("ignoring event",
			"reason", decision.Reason,
			"event_type", env.Event.Type,
			"channel_id", env.Event.Channel,
		)
		return webhook.TextResponse(http.StatusOK, BodyIgnored), nil
	}

	ev := env.Event
	channel, user := d.resolveNames(ctx, ev)
	note := d.builder.Build(ev, channel.Name, user.Name)

	if !decision.Enqueue {
		d.logger.Info("skipping message without keyword",
			"reason", decision.Reason,
			"alias", note.Alias,
			"channel_id", note.AccountID,
		)
		return webhook.TextResponse(http.StatusOK, BodyOK), nil
	}

	id, err := d.enqueue(ctx, note)
	if err != nil {
		return webhook.Response{}, err
	}

	d.logger.Info("notification enqueued",
		"message_id", id,
		"alias", note.Alias,
		"channel_id", note.AccountID,
		"account_name", note.AccountName,
		"user_id", note.UserID,
	)
	return webhook.TextResponse(http.StatusOK, BodyOK), nil
}

// resolveNames looks up both names concurrently. Lookups never fail; a
// failed lookup resolves to the id.
func (d *Dispatcher) resolveNames(ctx context.Context, ev event.ChatEvent) (channel, user resolver.Resolution) {
	var g errgroup.Group
	g.Go(func() error {
		channel = d.resolver.ResolveChannel(ctx, ev.Channel)
		return nil
	})
	g.Go(func() error {
		user = d.resolver.ResolveUser(ctx, ev.User)
		return nil
	})
	_ = g.Wait()
	return channel, user
}

func (d *Dispatcher) enqueue(ctx context.Context, note payload.Notification) (string, error) {
	body, err := note.Marshal()
	if err != nil {
		return "", err
	}

	ectx, cancel := context.WithTimeout(ctx, d.enqueueTimeout)
	defer cancel()

	id, err := d.sink.Enqueue(ectx, queue.EnqueueRequest{
		Destination: d.destination,
		Body:        body,
		DedupeKey:   note.Alias,
	})
	if err != nil {
		return "", fmt.Errorf("enqueue notification %s: %w", note.Alias, err)
	}
	return id, nil
}
