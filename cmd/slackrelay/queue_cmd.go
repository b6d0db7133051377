package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/slackrelay/internal/config"
	"github.com/mattjoyce/slackrelay/internal/queue"
	"github.com/mattjoyce/slackrelay/internal/storage"
)

type queueOptions struct {
	destination string
	status      string
	limit       int
}

func queueCmd(opts *rootOptions) *cobra.Command {
	qopts := &queueOptions{}

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and drain the local SQLite queue",
	}
	cmd.PersistentFlags().StringVar(&qopts.destination, "destination", "", "Queue destination (default queue.destination)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored notifications as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, dest, closeDB, err := openLocalQueue(cmd, opts, qopts)
			if err != nil {
				return err
			}
			defer closeDB()

			msgs, err := q.List(cmd.Context(), dest, queue.Status(qopts.status), qopts.limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, m := range msgs {
				if err := enc.Encode(m); err != nil {
					return err
				}
			}
			return nil
		},
	}
	list.Flags().StringVar(&qopts.status, "status", "", "Only list messages with this status (queued, delivered)")
	list.Flags().IntVar(&qopts.limit, "limit", 50, "Maximum number of messages")

	pop := &cobra.Command{
		Use:   "pop",
		Short: "Claim the oldest queued notification and print its body",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, dest, closeDB, err := openLocalQueue(cmd, opts, qopts)
			if err != nil {
				return err
			}
			defer closeDB()

			m, err := q.Dequeue(cmd.Context(), dest)
			if err != nil {
				return err
			}
			if m == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "queue empty")
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(m.Body))
			return err
		},
	}

	cmd.AddCommand(list, pop)
	return cmd
}

func openLocalQueue(cmd *cobra.Command, opts *rootOptions, qopts *queueOptions) (*queue.Queue, string, func() error, error) {
	cfg, err := opts.load(false)
	if err != nil {
		return nil, "", nil, err
	}
	if cfg.Queue.Driver != config.DriverSQLite {
		return nil, "", nil, fmt.Errorf("queue commands need the sqlite driver, configured driver is %q", cfg.Queue.Driver)
	}

	dest := qopts.destination
	if dest == "" {
		dest = cfg.Queue.Destination
	}
	if dest == "" {
		return nil, "", nil, fmt.Errorf("no destination: set --destination or queue.destination")
	}

	db, err := storage.OpenSQLite(cmd.Context(), cfg.Queue.SQLitePath)
	if err != nil {
		return nil, "", nil, err
	}
	return queue.New(db), dest, db.Close, nil
}
