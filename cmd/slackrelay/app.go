package main

import (
	"context"
	"fmt"

	"github.com/mattjoyce/slackrelay/internal/config"
	"github.com/mattjoyce/slackrelay/internal/dispatch"
	"github.com/mattjoyce/slackrelay/internal/event"
	"github.com/mattjoyce/slackrelay/internal/log"
	"github.com/mattjoyce/slackrelay/internal/payload"
	"github.com/mattjoyce/slackrelay/internal/queue"
	"github.com/mattjoyce/slackrelay/internal/resolver"
	"github.com/mattjoyce/slackrelay/internal/slackapi"
	"github.com/mattjoyce/slackrelay/internal/storage"
	"github.com/mattjoyce/slackrelay/internal/webhook"
)

// openSink connects the configured queue driver. The returned func releases it.
func openSink(ctx context.Context, cfg *config.Config) (dispatch.Sink, func() error, error) {
	switch cfg.Queue.Driver {
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(ctx, cfg.Queue.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return queue.New(db), db.Close, nil
	case config.DriverKafka:
		sink, err := queue.DialKafka(cfg.Queue.KafkaBrokers, cfg.Queue.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil
	case config.DriverPostgres:
		pool, err := storage.OpenPostgres(ctx, cfg.Queue.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return queue.NewPostgresSink(pool), func() error { pool.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}

// newDispatcher wires the request pipeline around sink. The resolver, and with
// it the name caches, lives as long as the returned dispatcher.
func newDispatcher(cfg *config.Config, sink dispatch.Sink) *dispatch.Dispatcher {
	client := slackapi.New(slackapi.Options{
		BaseURL:   cfg.Slack.APIBaseURL,
		Token:     cfg.Slack.BotToken,
		Timeout:   cfg.Slack.LookupTimeout,
		RateLimit: cfg.Slack.RateLimit,
		RateBurst: cfg.Slack.RateBurst,
	})

	return dispatch.New(dispatch.Options{
		Verifier: webhook.NewSlackVerifier(cfg.Slack.SigningSecret, cfg.Slack.MaxSkew),
		Resolver: resolver.New(client, cfg.Slack.LookupTimeout, log.WithComponent("resolver")),
		Filter: event.Filter{
			AllowedChannelID: cfg.Filter.AllowedChannelID,
			Keyword:          cfg.Filter.Keyword,
		},
		Builder: payload.NewBuilder(payload.Defaults{
			ClientName: cfg.Payload.ClientName,
			SLA:        cfg.Payload.SLA,
			Priority:   cfg.Payload.Priority,
		}),
		Sink:           sink,
		Destination:    cfg.Queue.Destination,
		EnqueueTimeout: cfg.Queue.Timeout,
		Logger:         log.WithComponent("dispatch"),
	})
}
