package config

import "time"

// Config represents the complete slackrelay configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server" yaml:"server"`
	Slack   SlackConfig   `koanf:"slack" yaml:"slack"`
	Filter  FilterConfig  `koanf:"filter" yaml:"filter"`
	Payload PayloadConfig `koanf:"payload" yaml:"payload"`
	Queue   QueueConfig   `koanf:"queue" yaml:"queue"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
}

// ServerConfig defines the HTTP listener used by `slackrelay serve`.
type ServerConfig struct {
	Listen       string        `koanf:"listen" yaml:"listen"`
	Path         string        `koanf:"path" yaml:"path"`
	MaxBodySize  string        `koanf:"max_body_size" yaml:"max_body_size"`
	ReadTimeout  time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
}

// SlackConfig holds the signing secret, bot token and lookup API settings.
type SlackConfig struct {
	SigningSecret string        `koanf:"signing_secret" yaml:"signing_secret"`
	BotToken      string        `koanf:"bot_token" yaml:"bot_token"`
	APIBaseURL    string        `koanf:"api_base_url" yaml:"api_base_url"`
	LookupTimeout time.Duration `koanf:"lookup_timeout" yaml:"lookup_timeout"`
	MaxSkew       time.Duration `koanf:"max_skew" yaml:"max_skew"`

	// RateLimit is lookup calls per second; 0 disables pacing.
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `koanf:"rate_burst" yaml:"rate_burst"`
}

// FilterConfig narrows which messages are forwarded.
type FilterConfig struct {
	AllowedChannelID string `koanf:"allowed_channel_id" yaml:"allowed_channel_id"`
	Keyword          string `koanf:"keyword" yaml:"keyword"`
}

// PayloadConfig supplies metadata defaults for outbound notifications.
type PayloadConfig struct {
	ClientName string `koanf:"client_name" yaml:"client_name"`
	SLA        string `koanf:"sla" yaml:"sla"`
	Priority   string `koanf:"priority" yaml:"priority"`
}

// QueueConfig selects and configures the queue sink.
type QueueConfig struct {
	Driver       string        `koanf:"driver" yaml:"driver"`
	Destination  string        `koanf:"destination" yaml:"destination"`
	Timeout      time.Duration `koanf:"timeout" yaml:"timeout"`
	SQLitePath   string        `koanf:"sqlite_path" yaml:"sqlite_path"`
	KafkaBrokers []string      `koanf:"kafka_brokers" yaml:"kafka_brokers,omitempty"`
	PostgresURL  string        `koanf:"postgres_url" yaml:"postgres_url,omitempty"`
}

// LogConfig defines log level and output format.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Queue driver names.
const (
	DriverSQLite   = "sqlite"
	DriverKafka    = "kafka"
	DriverPostgres = "postgres"
)
