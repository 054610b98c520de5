// Package providers implements the generation capability for each supported
// provider over raw HTTP. Every adapter speaks its provider's native chat
// API, normalizes the response to plain text, and maps failures onto the
// shared llm error taxonomy so retry behavior is uniform across providers.
package providers

import (
	"net/http"
	"time"

	"github.com/ahrav/go-prompteval/internal/llm"
)

// Supported provider identifiers. These constants must match the provider
// names used in run configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderCohere    = "cohere"
)

// Default generation parameters shared by all adapters.
const (
	DefaultTemperature = 0.15
	DefaultMaxTokens   = 1024
	DefaultHTTPTimeout = 60 * time.Second
)

// Config holds provider-specific connection settings and credentials.
// APIKey is populated from the credentials struct built at process start,
// never from ambient environment lookups inside pipeline logic.
type Config struct {
	Endpoint    string            `yaml:"endpoint"`
	APIKey      string            `yaml:"-"` // Sensitive, never serialized
	Model       string            `yaml:"model"`
	Temperature float64           `yaml:"temperature"`
	MaxTokens   int               `yaml:"max_tokens"`
	Headers     map[string]string `yaml:"headers"`

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client `yaml:"-"`
}

// withDefaults fills zero-valued fields so adapters can rely on them.
func (c Config) withDefaults(endpoint string) Config {
	if c.Endpoint == "" {
		c.Endpoint = endpoint
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return c
}

// Supported returns the canonical provider identifiers in stable order.
func Supported() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderCohere}
}

// Known reports whether name is a supported provider identifier.
func Known(name string) bool {
	for _, p := range Supported() {
		if p == name {
			return true
		}
	}
	return false
}

// New constructs the adapter for the given provider identifier.
// Unknown identifiers return llm.ErrUnknownProvider; the caller validates
// credentials before any case runs.
func New(provider string, cfg Config) (llm.Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	case ProviderGoogle:
		return NewGoogle(cfg), nil
	case ProviderCohere:
		return NewCohere(cfg), nil
	default:
		return nil, &llm.ProviderError{
			Provider: provider,
			Message:  "not a supported provider",
			Type:     llm.ErrorTypeUnknown,
			Cause:    llm.ErrUnknownProvider,
		}
	}
}
