package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Logging     LoggingConfig `toml:"logging"`
	TAXII       TAXIIConfig   `toml:"taxii"`
}

type ServerConfig struct {
	Port         int    `toml:"port"`
	Host         string `toml:"host"`
	MaxBodyBytes int64  `toml:"max_body_bytes"` // Cap on inbound proxy request bodies
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for log lines (default: "15:04:05")
}

// TAXIIConfig controls outbound calls to TAXII servers
type TAXIIConfig struct {
	Timeout            string  `toml:"timeout"`              // Per-call timeout, e.g. "30s". "0" disables it
	RateLimit          float64 `toml:"rate_limit"`           // Outbound requests per second, 0 = unlimited
	UserAgent          string  `toml:"user_agent"`           // User-Agent sent to TAXII servers
	InsecureSkipVerify bool    `toml:"insecure_skip_verify"` // Accept self-signed TAXII server certificates
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "localhost",
			MaxBodyBytes: 10 * 1024 * 1024,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		TAXII: TAXIIConfig{
			Timeout:   "30s",
			RateLimit: 0,
			UserAgent: "taxiiproxy/" + GetVersion(),
		},
	}
}

// LoadFromFile loads configuration from a single file (defaults -> file -> env)
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier ones. Empty paths are skipped.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TAXIIPROXY_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("TAXIIPROXY_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TAXIIPROXY_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if level := os.Getenv("TAXIIPROXY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("TAXIIPROXY_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitString(output, ",")
	}

	if timeout := os.Getenv("TAXIIPROXY_TAXII_TIMEOUT"); timeout != "" {
		config.TAXII.Timeout = timeout
	}
	if rateLimit := os.Getenv("TAXIIPROXY_TAXII_RATE_LIMIT"); rateLimit != "" {
		if r, err := strconv.ParseFloat(rateLimit, 64); err == nil {
			config.TAXII.RateLimit = r
		}
	}
	if skip := os.Getenv("TAXIIPROXY_TAXII_INSECURE_SKIP_VERIFY"); skip != "" {
		if b, err := strconv.ParseBool(skip); err == nil {
			config.TAXII.InsecureSkipVerify = b
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// Zero values leave the config untouched.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail late at request time
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := c.TAXIITimeout(); err != nil {
		return err
	}
	if c.TAXII.RateLimit < 0 {
		return fmt.Errorf("invalid taxii.rate_limit %v: must not be negative", c.TAXII.RateLimit)
	}
	return nil
}

// TAXIITimeout parses the configured outbound timeout. Zero means no timeout.
func (c *Config) TAXIITimeout() (time.Duration, error) {
	if c.TAXII.Timeout == "" || c.TAXII.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TAXII.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid taxii.timeout %q: %w", c.TAXII.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid taxii.timeout %q: must not be negative", c.TAXII.Timeout)
	}
	return d, nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

func splitString(s, sep string) []string {
	var result []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
