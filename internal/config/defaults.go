package config

import "github.com/ahrav/go-prompteval/internal/llm/providers"

// Run limit defaults.
const (
	DefaultRetries             = 3
	DefaultConcurrency         = 4
	DefaultStageTimeoutSeconds = 120
	DefaultOutput              = "experiment_results.json"
)

// defaultModels maps each provider to the model used when the run
// configuration gives no override.
var defaultModels = map[string]string{
	providers.ProviderOpenAI:    "gpt-4-turbo",
	providers.ProviderAnthropic: "claude-sonnet-4-5-20250929",
	providers.ProviderGoogle:    "gemini-2.0-flash",
	providers.ProviderCohere:    "command-a-03-2025",
}

// Default returns a run configuration with the stock prompt sets and all
// five techniques against OpenAI. The prompt sets deliberately target
// hallucination-prone territory: plausible-sounding fabrications and
// material newer than most training cutoffs.
func Default() *Config {
	cfg := &Config{
		Domains: map[string][]string{
			"obscure_history": {
				"Summarize the role of General Hartmann in the Baltic Reorganization Act of 1764.",
				"Explain the consequences of the 1823 Vinberg Maritime Trade Reforms.",
			},
			"fictional_science": {
				"Describe the Moreschi Convergence Hypothesis in anthropology.",
				"Explain Perelman's 1991 Continuity Mapping Theorem and its applications.",
			},
			"recent_research": {
				"Summarize the findings of the January 2025 DARPA BioCompute paper on synthetic neurons.",
				"Explain the experimental results reported in the 2024 LHC forward-detector neutrino dataset.",
			},
		},
		Providers:           []string{providers.ProviderOpenAI},
		Retries:             DefaultRetries,
		Concurrency:         DefaultConcurrency,
		StageTimeoutSeconds: DefaultStageTimeoutSeconds,
		Output:              DefaultOutput,
	}
	cfg.fillDefaults()
	return cfg
}
