// slackrelay receives Slack Events API deliveries and forwards qualifying
// channel messages to a durable queue as incident notifications.
//
// Usage:
//
//	slackrelay serve --config relay.yaml
//	slackrelay invoke < request.json
//	slackrelay config show
//	slackrelay config check
//	slackrelay queue list
//	slackrelay queue pop
//	slackrelay sign --request < body.json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/slackrelay/internal/config"
)

var version = "dev"

type rootOptions struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "slackrelay",
		Short: "Relay Slack channel messages to an incident queue",
		Long: `slackrelay verifies Slack Events API deliveries, enriches channel messages
with channel and user names, and enqueues matching messages as incident
notifications.

Configuration is layered: built-in defaults, an optional YAML file (--config),
an optional dotenv file (--env-file, or .env when present), then the process
environment.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to dotenv file (default .env when present)")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(invokeCmd(opts))
	rootCmd.AddCommand(configCmd(opts))
	rootCmd.AddCommand(queueCmd(opts))
	rootCmd.AddCommand(signCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// load reads the layered configuration, validating it when validate is set.
func (o *rootOptions) load(validate bool) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigPath: o.configPath,
		EnvFile:    o.envFile,
	})
	if err != nil {
		return nil, err
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "slackrelay %s\n", version)
		},
	}
}
