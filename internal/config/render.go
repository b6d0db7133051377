package config

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

const redacted = "[redacted]"

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	out := c
	out.Slack.SigningSecret = mask(c.Slack.SigningSecret)
	out.Slack.BotToken = mask(c.Slack.BotToken)
	out.Queue.PostgresURL = mask(c.Queue.PostgresURL)
	out.Queue.KafkaBrokers = append([]string(nil), c.Queue.KafkaBrokers...)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}

// YAML renders the redacted configuration.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// Fingerprint returns the BLAKE3 hash of the redacted configuration. Secret
// values are not hashed, only whether each one is set, so the fingerprint
// reveals nothing beyond what config show prints.
func (c Config) Fingerprint() (string, error) {
	data, err := c.YAML()
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
