package webhook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattjoyce/slackrelay/internal/config"
)

// FromConfig converts config.ServerConfig to webhook.Config, parsing the body size limit.
func FromConfig(sc config.ServerConfig) (Config, error) {
	maxBodySize, err := parseMaxBodySize(sc.MaxBodySize)
	if err != nil {
		return Config{}, fmt.Errorf("invalid server.max_body_size %q: %w", sc.MaxBodySize, err)
	}

	path := sc.Path
	if path == "" {
		path = DefaultPath
	}

	return Config{
		Listen:       sc.Listen,
		Path:         path,
		MaxBodySize:  maxBodySize,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}, nil
}

// parseMaxBodySize parses size strings like "1MB", "512KB", "1048576" to bytes.
// Returns DefaultMaxBodySize if empty.
func parseMaxBodySize(size string) (int64, error) {
	if size == "" {
		return DefaultMaxBodySize, nil
	}

	upper := strings.ToUpper(strings.TrimSpace(size))
	multiplier := int64(1)

	for _, unit := range []struct {
		suffix string
		mult   int64
	}{
		{"KB", 1024},
		{"MB", 1024 * 1024},
		{"GB", 1024 * 1024 * 1024},
	} {
		if strings.HasSuffix(upper, unit.suffix) {
			multiplier = unit.mult
			upper = strings.TrimSuffix(upper, unit.suffix)
			break
		}
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}
	if value > (1<<62)/multiplier {
		return 0, fmt.Errorf("size too large")
	}

	return value * multiplier, nil
}
