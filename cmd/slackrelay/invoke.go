package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/slackrelay/internal/log"
	"github.com/mattjoyce/slackrelay/internal/webhook"
)

func invokeCmd(opts *rootOptions) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Handle one request read from stdin",
		Long: `Read one API Gateway proxy event from stdin, handle it, and write the
response as JSON to stdout. Logs go to stderr. Use --file to read the event
from a file instead of stdin.

Input:
  {"headers": {...}, "body": "...", "isBase64Encoded": false}

Output:
  {"statusCode": 200, "body": "ok"}

The command exits non-zero when the notification could not be enqueued.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(true)
			if err != nil {
				return err
			}
			log.SetupWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

			raw, err := readInput(cmd, inputPath)
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			var req webhook.Request
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("decode request: %w", err)
			}

			ctx := cmd.Context()
			sink, closeSink, err := openSink(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open queue: %w", err)
			}
			defer closeSink()

			resp, err := newDispatcher(cfg, sink).Handle(ctx, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "Read the event from this file instead of stdin")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
