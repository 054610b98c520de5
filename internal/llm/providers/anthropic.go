package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahrav/go-prompteval/internal/llm"
)

// Anthropic implements the generation capability over Anthropic's messages
// API, which carries the system instruction as a top-level field rather than
// a message role.
type Anthropic struct {
	config Config
}

// NewAnthropic creates an Anthropic adapter with the production endpoint default.
func NewAnthropic(cfg Config) *Anthropic {
	return &Anthropic{config: cfg.withDefaults("https://api.anthropic.com/v1")}
}

func (a *Anthropic) Provider() string { return ProviderAnthropic }

// Invoke sends one messages request and returns the first content block's text.
func (a *Anthropic) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	endpoint := fmt.Sprintf("%s/messages", a.config.Endpoint)

	payload := map[string]any{
		"model":       a.config.Model,
		"max_tokens":  a.config.MaxTokens,
		"temperature": a.config.Temperature,
		"messages": []map[string]any{
			{"role": "user", "content": userContent},
		},
	}
	if systemPrompt != "" {
		payload["system"] = systemPrompt
	}

	headers := map[string]string{
		"x-api-key":         a.config.APIKey,
		"anthropic-version": "2023-06-01",
	}
	for k, v := range a.config.Headers {
		headers[k] = v
	}

	body, err := doJSON(ctx, a.config.HTTPClient, ProviderAnthropic, "POST", endpoint, headers, payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", &llm.ProviderError{
			Provider: ProviderAnthropic,
			Message:  "response contained no content blocks",
			Type:     llm.ErrorTypeUnknown,
			Cause:    llm.ErrEmptyCompletion,
		}
	}
	return resp.Content[0].Text, nil
}
