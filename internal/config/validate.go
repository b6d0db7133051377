package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingSetting is wrapped by Validate when required settings are absent.
var ErrMissingSetting = errors.New("missing required setting")

// Validate checks required settings and driver-specific requirements. All
// missing settings are reported together.
func (c *Config) Validate() error {
	var missing []string
	if c.Slack.SigningSecret == "" {
		missing = append(missing, "slack.signing_secret (SLACK_SIGNING_SECRET)")
	}
	if c.Slack.BotToken == "" {
		missing = append(missing, "slack.bot_token (BOT_USER_TOKEN)")
	}
	if c.Queue.Destination == "" {
		missing = append(missing, "queue.destination (QUEUE_DESTINATION)")
	}

	switch c.Queue.Driver {
	case DriverSQLite:
		if c.Queue.SQLitePath == "" {
			missing = append(missing, "queue.sqlite_path")
		}
	case DriverKafka:
		if len(c.Queue.KafkaBrokers) == 0 {
			missing = append(missing, "queue.kafka_brokers")
		}
	case DriverPostgres:
		if c.Queue.PostgresURL == "" {
			missing = append(missing, "queue.postgres_url")
		}
	default:
		return fmt.Errorf("queue.driver %q is not one of %s, %s, %s",
			c.Queue.Driver, DriverSQLite, DriverKafka, DriverPostgres)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}

	if c.Slack.MaxSkew <= 0 {
		return fmt.Errorf("slack.max_skew must be positive")
	}
	if c.Slack.LookupTimeout <= 0 {
		return fmt.Errorf("slack.lookup_timeout must be positive")
	}
	if c.Queue.Timeout <= 0 {
		return fmt.Errorf("queue.timeout must be positive")
	}
	if c.Slack.RateLimit < 0 {
		return fmt.Errorf("slack.rate_limit must not be negative")
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path %q must start with /", c.Server.Path)
	}
	return nil
}
