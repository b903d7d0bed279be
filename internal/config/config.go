// Package config is a small YAML-driven loader for this module's engine
// tuning: HTTP timeout, retry policy, and default transport preference. It
// mirrors the teacher's pkg/config loader+validator split, scaled down to
// this module's actual surface.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brightloop-labs/directline-go/directline"
)

// Config is the top-level, file-loadable tuning for an Engine.
type Config struct {
	// HTTPTimeout bounds each REST hop. It is ignored for SSE turns, where
	// only context cancellation should end a long-lived stream.
	HTTPTimeout time.Duration `yaml:"httpTimeout"`

	Retry RetryConfig `yaml:"retry"`

	// DefaultTransport is used by example/demo strategies that do not pin
	// a transport per call. It must be "rest" or "sse".
	DefaultTransport string `yaml:"defaultTransport"`
}

// RetryConfig mirrors directline.RetryConfig's fields in YAML-friendly
// form; ToEngineRetryConfig converts between them.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"maxAttempts"`
	InitialInterval time.Duration `yaml:"initialInterval"`
	MaxInterval     time.Duration `yaml:"maxInterval"`
	Multiplier      float64       `yaml:"multiplier"`
}

// Load reads filename as YAML into a Config and validates it.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config matching directline's built-in defaults, used
// both as Load's starting point (so a YAML file only needs to override
// what it cares about) and by callers that want defaults without a file.
func Default() *Config {
	return &Config{
		HTTPTimeout: 60 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:     5,
			InitialInterval: 250 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
		},
		DefaultTransport: "rest",
	}
}

// Validate rejects zero/negative durations and out-of-range attempt
// counts, aggregating every problem found rather than stopping at the
// first.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("httpTimeout must be positive, got %s", c.HTTPTimeout))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.maxAttempts must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.InitialInterval <= 0 {
		errs = append(errs, fmt.Errorf("retry.initialInterval must be positive, got %s", c.Retry.InitialInterval))
	}
	if c.Retry.MaxInterval <= 0 {
		errs = append(errs, fmt.Errorf("retry.maxInterval must be positive, got %s", c.Retry.MaxInterval))
	}
	if c.Retry.MaxInterval < c.Retry.InitialInterval {
		errs = append(errs, fmt.Errorf("retry.maxInterval (%s) must be >= retry.initialInterval (%s)", c.Retry.MaxInterval, c.Retry.InitialInterval))
	}
	if c.Retry.Multiplier <= 1 {
		errs = append(errs, fmt.Errorf("retry.multiplier must be greater than 1, got %v", c.Retry.Multiplier))
	}
	switch c.DefaultTransport {
	case "rest", "sse":
	default:
		errs = append(errs, fmt.Errorf("defaultTransport must be \"rest\" or \"sse\", got %q", c.DefaultTransport))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ToEngineRetryConfig converts the YAML-friendly RetryConfig into the shape
// directline.WithRetryConfig expects.
func (r RetryConfig) ToEngineRetryConfig() directline.RetryConfig {
	return directline.RetryConfig{
		MaxAttempts:     r.MaxAttempts,
		InitialInterval: r.InitialInterval,
		MaxInterval:     r.MaxInterval,
		Multiplier:      r.Multiplier,
	}
}

// ToHTTPClient builds an *http.Client with Timeout set to c.HTTPTimeout,
// wrapped with OpenTelemetry HTTP instrumentation like directline's own
// default client. Callers driving an SSE-only strategy should leave the
// engine's default client in place instead, since Timeout bounds an SSE
// stream's entire lifetime.
func (c *Config) ToHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   c.HTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
