package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/ahrav/go-prompteval/internal/llm/providers"
)

// Credentials holds the API keys for every supported provider, parsed from
// the environment exactly once at process start. Downstream code receives
// this struct by value; there is no ambient credential lookup inside
// pipeline logic.
type Credentials struct {
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	GoogleAPIKey    string `env:"GEMINI_API_KEY"`
	CohereAPIKey    string `env:"COHERE_API_KEY"`
}

// LoadCredentials parses provider API keys from the environment.
func LoadCredentials() (Credentials, error) {
	var creds Credentials
	if err := env.Parse(&creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: parsing credentials: %w", ErrConfiguration, err)
	}
	return creds, nil
}

// Key returns the API key for a provider identifier, or empty when the
// provider is unknown or unconfigured.
func (c Credentials) Key(provider string) string {
	switch provider {
	case providers.ProviderOpenAI:
		return c.OpenAIAPIKey
	case providers.ProviderAnthropic:
		return c.AnthropicAPIKey
	case providers.ProviderGoogle:
		return c.GoogleAPIKey
	case providers.ProviderCohere:
		return c.CohereAPIKey
	default:
		return ""
	}
}
