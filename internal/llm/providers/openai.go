package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahrav/go-prompteval/internal/llm"
)

// OpenAI implements the generation capability over OpenAI's chat/completions
// API, with the system instruction carried as a system-role message.
type OpenAI struct {
	config Config
}

// NewOpenAI creates an OpenAI adapter with the production endpoint default.
func NewOpenAI(cfg Config) *OpenAI {
	return &OpenAI{config: cfg.withDefaults("https://api.openai.com/v1")}
}

func (o *OpenAI) Provider() string { return ProviderOpenAI }

// Invoke sends one chat completion request and returns the first choice's text.
func (o *OpenAI) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	endpoint := fmt.Sprintf("%s/chat/completions", o.config.Endpoint)

	messages := []map[string]any{}
	if systemPrompt != "" {
		messages = append(messages, map[string]any{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]any{"role": "user", "content": userContent})

	payload := map[string]any{
		"model":       o.config.Model,
		"messages":    messages,
		"max_tokens":  o.config.MaxTokens,
		"temperature": o.config.Temperature,
	}

	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", o.config.APIKey),
	}
	for k, v := range o.config.Headers {
		headers[k] = v
	}

	body, err := doJSON(ctx, o.config.HTTPClient, ProviderOpenAI, "POST", endpoint, headers, payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &llm.ProviderError{
			Provider: ProviderOpenAI,
			Message:  "response contained no choices",
			Type:     llm.ErrorTypeUnknown,
			Cause:    llm.ErrEmptyCompletion,
		}
	}
	return resp.Choices[0].Message.Content, nil
}
