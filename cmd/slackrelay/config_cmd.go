package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func configCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(configShowCmd(opts))
	cmd.AddCommand(configCheckCmd(opts))
	return cmd
}

func configShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(false)
			if err != nil {
				return err
			}
			out, err := cfg.Redacted().YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func configCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print its fingerprint",
		Long: `Validate required settings and print a BLAKE3 fingerprint of the redacted
configuration. Two deployments with the same fingerprint run the same settings.
Secret values are not part of the fingerprint, only whether each one is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(true)
			if err != nil {
				return err
			}
			fp, err := cfg.Fingerprint()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config ok")
			fmt.Fprintf(cmd.OutOrStdout(), "fingerprint: %s\n", fp)
			return nil
		},
	}
}
