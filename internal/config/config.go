// Package config builds the explicit configuration objects the rest of the
// system consumes: the run configuration (domains, techniques, providers,
// limits) loaded from YAML, and the provider credentials parsed once from
// the environment at process start. Nothing downstream reads the
// environment; credentials travel by value from here.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-prompteval/internal/domain"
	"github.com/ahrav/go-prompteval/internal/llm/providers"
)

// Configuration errors. All validation failures wrap ErrConfiguration so
// callers can distinguish setup problems from runtime failures.
var (
	ErrConfiguration  = errors.New("invalid configuration")
	ErrNoCredentials  = errors.New("missing credentials for provider")
	ErrNoDomains      = errors.New("no domains configured")
	ErrNoProviders    = errors.New("no providers configured")
	ErrEmptyPromptSet = errors.New("domain has no prompts")
)

// Config describes one experiment run: which prompts to sweep, which
// techniques to compare, which providers to call, and the resource limits.
// Constructed once at startup and treated as immutable afterwards.
type Config struct {
	// Domains maps a domain name to its prompt list.
	Domains map[string][]string `yaml:"domains"`

	// Techniques is the subset of recognized techniques to sweep.
	// Empty means all five.
	Techniques []string `yaml:"techniques"`

	// Providers lists the provider identifiers to run the sweep against.
	Providers []string `yaml:"providers"`

	// Models overrides the default model per provider identifier.
	Models map[string]string `yaml:"models"`

	// Retries is the maximum transient-retry count per provider invocation,
	// on top of the initial attempt. Zero disables retries.
	Retries int `yaml:"retries"`

	// Concurrency bounds parallel cases; it doubles as backpressure against
	// provider-side rate limits.
	Concurrency int `yaml:"concurrency"`

	// StageTimeoutSeconds bounds each provider invocation.
	StageTimeoutSeconds int `yaml:"stage_timeout_seconds"`

	// Output is the path of the persisted record document.
	Output string `yaml:"output"`
}

// Load reads a YAML run configuration, filling defaults for absent fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrConfiguration, path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrConfiguration, path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults fills fields whose zero value has no meaning of its own.
// Numeric limits are left alone: Load unmarshals over Default(), so an
// absent key keeps its default while an explicit value (including
// retries: 0) survives for Validate to judge.
func (c *Config) fillDefaults() {
	if len(c.Techniques) == 0 {
		for _, t := range domain.Techniques() {
			c.Techniques = append(c.Techniques, string(t))
		}
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
}

// StageTimeout returns the per-invocation timeout as a duration.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}

// ParsedTechniques converts the configured technique names into their
// canonical closed-set values, preserving configured order.
func (c *Config) ParsedTechniques() ([]domain.Technique, error) {
	parsed := make([]domain.Technique, 0, len(c.Techniques))
	seen := make(map[domain.Technique]bool, len(c.Techniques))
	for _, name := range c.Techniques {
		t, err := domain.ParseTechnique(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		parsed = append(parsed, t)
	}
	return parsed, nil
}

// Model returns the model identifier to use for a provider.
func (c *Config) Model(provider string) string {
	if m, ok := c.Models[provider]; ok && m != "" {
		return m
	}
	return defaultModels[provider]
}

// Validate checks the run configuration against the closed technique and
// provider sets and verifies credentials exist for every requested provider.
// Missing credentials are a configuration error detected before any case
// runs.
func (c *Config) Validate(creds Credentials) error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("%w: %w", ErrConfiguration, ErrNoDomains)
	}
	for name, prompts := range c.Domains {
		if name == "" {
			return fmt.Errorf("%w: empty domain name", ErrConfiguration)
		}
		if len(prompts) == 0 {
			return fmt.Errorf("%w: %w: %q", ErrConfiguration, ErrEmptyPromptSet, name)
		}
		for i, p := range prompts {
			if p == "" {
				return fmt.Errorf("%w: domain %q prompt %d is empty", ErrConfiguration, name, i)
			}
		}
	}

	if _, err := c.ParsedTechniques(); err != nil {
		return err
	}

	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must be >= 0, got %d", ErrConfiguration, c.Retries)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrConfiguration, c.Concurrency)
	}
	if c.StageTimeoutSeconds < 1 {
		return fmt.Errorf("%w: stage_timeout_seconds must be >= 1, got %d", ErrConfiguration, c.StageTimeoutSeconds)
	}

	if len(c.Providers) == 0 {
		return fmt.Errorf("%w: %w", ErrConfiguration, ErrNoProviders)
	}
	for _, p := range c.Providers {
		if !providers.Known(p) {
			return fmt.Errorf("%w: unknown provider %q", ErrConfiguration, p)
		}
		if creds.Key(p) == "" {
			return fmt.Errorf("%w: %w: %s", ErrConfiguration, ErrNoCredentials, p)
		}
	}

	return nil
}
