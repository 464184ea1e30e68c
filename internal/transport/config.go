package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/restless-collections/pkg/config/env"
)

type Config struct {
	BaseURL           string
	XSRFToken         string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// LoadConfig reads RESTLESS_* variables, loading envPath first if present
func LoadConfig(envPath string) (*Config, error) {
	if err := env.LoadDotEnv(os.Getenv("ENV"), envPath); err != nil {
		slog.Info("Skipping .env ...", "error", err)
	}

	cfg := &Config{
		BaseURL:   os.Getenv("RESTLESS_BASE_URL"),
		XSRFToken: os.Getenv("RESTLESS_XSRF_TOKEN"),
		Timeout:   DefaultTimeout,
	}

	if raw := os.Getenv("RESTLESS_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RESTLESS_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	if raw := os.Getenv("RESTLESS_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RESTLESS_RPS: %w", err)
		}
		cfg.RequestsPerSecond = rps
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base url %q: scheme must be http or https", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("requests per second must not be negative")
	}
	return nil
}
