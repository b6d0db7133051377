package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/slackrelay/internal/webhook"
)

func signCmd(opts *rootOptions) *cobra.Command {
	var (
		timestamp int64
		asRequest bool
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a request body read from stdin with the configured secret",
		Long: `Compute the Slack signature headers for a body read from stdin.

Examples:
  # Print the two headers
  slackrelay sign < body.json

  # Build a complete request and feed it to invoke
  slackrelay sign --request < body.json | slackrelay invoke`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(false)
			if err != nil {
				return err
			}
			if cfg.Slack.SigningSecret == "" {
				return fmt.Errorf("slack.signing_secret is not set")
			}

			body, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}

			if timestamp == 0 {
				timestamp = time.Now().Unix()
			}
			ts := strconv.FormatInt(timestamp, 10)
			headers := webhook.Headers{
				webhook.TimestampHeader: ts,
				webhook.SignatureHeader: webhook.Sign(cfg.Slack.SigningSecret, ts, body),
			}

			out := cmd.OutOrStdout()
			if asRequest {
				return json.NewEncoder(out).Encode(webhook.Request{Headers: headers, Body: string(body)})
			}
			fmt.Fprintf(out, "%s: %s\n", webhook.TimestampHeader, headers[webhook.TimestampHeader])
			fmt.Fprintf(out, "%s: %s\n", webhook.SignatureHeader, headers[webhook.SignatureHeader])
			return nil
		},
	}

	cmd.Flags().Int64Var(&timestamp, "timestamp", 0, "Unix timestamp to sign with (default now)")
	cmd.Flags().BoolVar(&asRequest, "request", false, "Print a complete invoke request instead of headers")
	return cmd
}
