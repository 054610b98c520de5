package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahrav/go-prompteval/internal/llm"
)

// Cohere implements the generation capability over Cohere's chat API.
// Cohere's v1 chat endpoint takes a single message string, so the system
// instruction is folded into the message body.
type Cohere struct {
	config Config
}

// NewCohere creates a Cohere adapter with the production endpoint default.
func NewCohere(cfg Config) *Cohere {
	return &Cohere{config: cfg.withDefaults("https://api.cohere.com/v1")}
}

func (c *Cohere) Provider() string { return ProviderCohere }

// Invoke sends one chat request and returns the reply text.
func (c *Cohere) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	endpoint := fmt.Sprintf("%s/chat", c.config.Endpoint)

	message := userContent
	if systemPrompt != "" {
		message = fmt.Sprintf("System: %s\nUser: %s", systemPrompt, userContent)
	}

	payload := map[string]any{
		"model":       c.config.Model,
		"message":     message,
		"temperature": c.config.Temperature,
		"max_tokens":  c.config.MaxTokens,
	}

	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", c.config.APIKey),
	}
	for k, v := range c.config.Headers {
		headers[k] = v
	}

	body, err := doJSON(ctx, c.config.HTTPClient, ProviderCohere, "POST", endpoint, headers, payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Text == "" {
		return "", &llm.ProviderError{
			Provider: ProviderCohere,
			Message:  "response contained no text",
			Type:     llm.ErrorTypeUnknown,
			Cause:    llm.ErrEmptyCompletion,
		}
	}
	return resp.Text, nil
}
