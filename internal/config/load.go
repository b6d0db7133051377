package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces generic overrides: SLACKRELAY_QUEUE_DRIVER -> queue.driver.
const EnvPrefix = "SLACKRELAY_"

// DefaultEnvFile is read when present and no explicit env file is given.
const DefaultEnvFile = ".env"

// envAliases maps the deployment's historical variable names onto config keys.
var envAliases = map[string]string{
	"SLACK_SIGNING_SECRET": "slack.signing_secret",
	"BOT_USER_TOKEN":       "slack.bot_token",
	"SLACK_BOT_TOKEN":      "slack.bot_token",
	"QUEUE_DESTINATION":    "queue.destination",
	"SQS_URL":              "queue.destination",
	"ALLOWED_CHANNEL_ID":   "filter.allowed_channel_id",
	"CLIENT_NAME":          "payload.client_name",
	"DEFAULT_SLA":          "payload.sla",
	"DEFAULT_PRIORITY":     "payload.priority",
	"LOG_LEVEL":            "log.level",
}

// LoadOptions controls which optional sources are layered over the defaults.
type LoadOptions struct {
	// ConfigPath is an optional YAML file. A missing explicit file is an error.
	ConfigPath string
	// EnvFile is an optional dotenv file. When empty, DefaultEnvFile is used if it exists.
	EnvFile string
}

func defaults() map[string]any {
	return map[string]any{
		"server.listen":        "127.0.0.1:8080",
		"server.path":          "/slack/events",
		"server.max_body_size": "1MB",
		"server.read_timeout":  10 * time.Second,
		"server.write_timeout": 30 * time.Second,
		"slack.api_base_url":   "https://slack.com",
		"slack.lookup_timeout": 10 * time.Second,
		"slack.max_skew":       5 * time.Minute,
		"slack.rate_limit":     0.0,
		"slack.rate_burst":     1,
		"filter.keyword":       "prio1",
		"payload.client_name":  "CustomerSlackChannel",
		"payload.sla":          "24x7",
		"payload.priority":     "P1",
		"queue.driver":         DriverSQLite,
		"queue.timeout":        10 * time.Second,
		"queue.sqlite_path":    "slackrelay.db",
		"log.level":            "info",
		"log.format":           "json",
	}
}

// Load builds the effective configuration: defaults, then the YAML file, then
// the dotenv file, then the process environment. It does not validate.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if opts.ConfigPath != "" {
		if err := k.Load(file.Provider(opts.ConfigPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", opts.ConfigPath, err)
		}
	}

	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		if err := k.Load(confmap.Provider(dotenv, "."), nil); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", EnvKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Queue.KafkaBrokers = splitList(cfg.Queue.KafkaBrokers)

	return &cfg, nil
}

// EnvKey maps an environment variable name to a config key, or "" to skip it.
func EnvKey(name string) string {
	if key, ok := envAliases[name]; ok {
		return key
	}
	if !strings.HasPrefix(name, EnvPrefix) {
		return ""
	}

	rest := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	section, key, ok := strings.Cut(rest, "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return section + "." + key
}

func readEnvFile(path string) (map[string]any, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file %q: %w", path, err)
	}

	out := make(map[string]any, len(vars))
	for name, value := range vars {
		if key := EnvKey(name); key != "" {
			out[key] = value
		}
	}
	return out, nil
}

// splitList flattens comma-separated entries, which is how lists arrive from env vars.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
