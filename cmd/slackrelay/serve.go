package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/slackrelay/internal/config"
	"github.com/mattjoyce/slackrelay/internal/lock"
	"github.com/mattjoyce/slackrelay/internal/log"
	"github.com/mattjoyce/slackrelay/internal/webhook"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP receiver",
		Long: `Listen for Slack Events API deliveries on server.listen and server.path.

GET /healthz answers 200 for load balancer checks. The process stops cleanly
on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log.Setup(cfg.Log.Level, cfg.Log.Format)
	logger := log.WithComponent("main")
	logger.Info("slackrelay starting", "version", version, "queue_driver", cfg.Queue.Driver)

	serverConfig, err := webhook.FromConfig(cfg.Server)
	if err != nil {
		return err
	}

	if cfg.Queue.Driver == config.DriverSQLite {
		l, err := lock.Acquire(lock.PathFor(cfg.Queue.SQLitePath))
		if err != nil {
			return fmt.Errorf("lock sqlite queue: %w", err)
		}
		defer l.Release()
		logger.Info("acquired queue lock", "path", l.Path())
	}

	sink, closeSink, err := openSink(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	defer func() {
		if err := closeSink(); err != nil {
			logger.Warn("closing queue failed", "error", err)
		}
	}()

	server := webhook.New(serverConfig, newDispatcher(cfg, sink), log.WithComponent("webhook"))
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("slackrelay stopped")
	return nil
}
