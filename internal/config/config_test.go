package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prompteval/internal/domain"
	"github.com/ahrav/go-prompteval/internal/llm/providers"
)

func validCreds() Credentials {
	return Credentials{
		OpenAIAPIKey:    "sk-test",
		AnthropicAPIKey: "sk-ant-test",
		GoogleAPIKey:    "goog-test",
		CohereAPIKey:    "co-test",
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate(validCreds()))

	techniques, err := cfg.ParsedTechniques()
	require.NoError(t, err)
	assert.Equal(t, domain.Techniques(), techniques, "defaults sweep all five techniques")
	assert.Len(t, cfg.Domains, 3)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
}

func TestLoad(t *testing.T) {
	t.Run("round-trips a full file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.yaml")
		content := `
domains:
  obscure_history:
    - "Who signed the treaty?"
techniques: [baseline, precision]
providers: [anthropic]
models:
  anthropic: claude-test-model
retries: 5
concurrency: 2
stage_timeout_seconds: 30
output: out.json
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"baseline", "precision"}, cfg.Techniques)
		assert.Equal(t, []string{"anthropic"}, cfg.Providers)
		assert.Equal(t, "claude-test-model", cfg.Model("anthropic"))
		assert.Equal(t, 5, cfg.Retries)
		assert.Equal(t, 2, cfg.Concurrency)
		assert.Equal(t, 30, cfg.StageTimeoutSeconds)
		assert.Equal(t, "out.json", cfg.Output)
	})

	t.Run("fills defaults for omitted fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.yaml")
		content := `
domains:
  d1: ["p1"]
providers: [openai]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, cfg.Techniques, 5)
		assert.Equal(t, DefaultRetries, cfg.Retries)
		assert.Equal(t, DefaultOutput, cfg.Output)
		assert.Equal(t, "gpt-4-turbo", cfg.Model("openai"), "default model applies without override")
	})

	t.Run("explicit zero retries survives", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.yaml")
		content := `
domains:
  d1: ["p1"]
providers: [openai]
retries: 0
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Zero(t, cfg.Retries, "retries: 0 means no retries, not the default")
		assert.NoError(t, cfg.Validate(validCreds()))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("domains: [unclosed"), 0o600))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		cfg.Providers = []string{providers.ProviderOpenAI}
		return cfg
	}

	t.Run("no domains", func(t *testing.T) {
		cfg := base()
		cfg.Domains = nil
		assert.ErrorIs(t, cfg.Validate(validCreds()), ErrNoDomains)
	})

	t.Run("domain without prompts", func(t *testing.T) {
		cfg := base()
		cfg.Domains["empty_domain"] = nil
		assert.ErrorIs(t, cfg.Validate(validCreds()), ErrEmptyPromptSet)
	})

	t.Run("unknown technique", func(t *testing.T) {
		cfg := base()
		cfg.Techniques = []string{"baseline", "mind_reading"}
		err := cfg.Validate(validCreds())
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.ErrorIs(t, err, domain.ErrUnknownTechnique)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := base()
		cfg.Providers = []string{"skynet"}
		assert.ErrorIs(t, cfg.Validate(validCreds()), ErrConfiguration)
	})

	t.Run("no providers", func(t *testing.T) {
		cfg := base()
		cfg.Providers = nil
		assert.ErrorIs(t, cfg.Validate(validCreds()), ErrNoProviders)
	})

	t.Run("negative retries", func(t *testing.T) {
		cfg := base()
		cfg.Retries = -1
		assert.ErrorIs(t, cfg.Validate(validCreds()), ErrConfiguration)
	})

	t.Run("zero concurrency", func(t *testing.T) {
		cfg := base()
		cfg.Concurrency = 0
		assert.ErrorIs(t, cfg.Validate(validCreds()), ErrConfiguration)
	})

	t.Run("zero stage timeout", func(t *testing.T) {
		cfg := base()
		cfg.StageTimeoutSeconds = 0
		assert.ErrorIs(t, cfg.Validate(validCreds()), ErrConfiguration)
	})

	t.Run("missing credentials detected before any case runs", func(t *testing.T) {
		cfg := base()
		cfg.Providers = []string{providers.ProviderCohere}
		creds := validCreds()
		creds.CohereAPIKey = ""
		err := cfg.Validate(creds)
		assert.ErrorIs(t, err, ErrNoCredentials)
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestParsedTechniquesDeduplicates(t *testing.T) {
	cfg := Default()
	cfg.Techniques = []string{"baseline", "chain-of-thought", "Baseline"}
	parsed, err := cfg.ParsedTechniques()
	require.NoError(t, err)
	assert.Equal(t, []domain.Technique{domain.TechniqueBaseline, domain.TechniqueChainOfThought}, parsed)
}

func TestCredentialsKey(t *testing.T) {
	creds := validCreds()
	assert.Equal(t, "sk-test", creds.Key(providers.ProviderOpenAI))
	assert.Equal(t, "co-test", creds.Key(providers.ProviderCohere))
	assert.Empty(t, creds.Key("unknown"))
}
