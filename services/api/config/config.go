package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings for the viewer API. Values come from an optional
// YAML file, overridden by environment variables (optionally from .env).
type Config struct {
	DatabaseURL  string        `yaml:"database_url"`
	Port         int           `yaml:"port"`
	BearerToken  string        `yaml:"bearer_token"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	SessionIdle  time.Duration `yaml:"session_idle_timeout"`
	SweepSpec    string        `yaml:"session_sweep_spec"`
	LogLevel     string        `yaml:"log_level"`
}

// Options selects where Load looks besides the process environment.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	return LoadWith(Options{})
}

// LoadWith is Load with an explicit YAML file and env file. An empty
// ConfigFile falls back to PEGEL_CONFIG.
func LoadWith(opts Options) (Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	} else {
		_ = godotenv.Load() // ignore missing file
	}

	var cfg Config

	path := opts.ConfigFile
	if path == "" {
		path = os.Getenv("PEGEL_CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 10 * time.Second
	}
	if c.SessionIdle == 0 {
		c.SessionIdle = 30 * time.Minute
	}
	if c.SweepSpec == "" {
		c.SweepSpec = "@every 5m"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) applyEnv() error {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.DatabaseURL = url
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			c.Port = port
		} else {
			return fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			c.Port = port
		} else {
			return fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if token := os.Getenv("API_BEARER_TOKEN"); token != "" {
		c.BearerToken = token
	}

	if err := envDuration("API_QUERY_TIMEOUT", &c.QueryTimeout); err != nil {
		return err
	}
	if err := envDuration("SESSION_IDLE_TIMEOUT", &c.SessionIdle); err != nil {
		return err
	}

	if spec := os.Getenv("SESSION_SWEEP_SPEC"); spec != "" {
		c.SweepSpec = spec
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = strings.ToLower(level)
	}
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid %s: %s", name, raw)
	}
	*dst = d
	return nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("invalid query timeout: %s", c.QueryTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %s", c.LogLevel)
	}
	return nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
