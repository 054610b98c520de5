package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahrav/go-prompteval/internal/llm"
)

// Google implements the generation capability over the Gemini
// generateContent API, with the system instruction in its dedicated field.
type Google struct {
	config Config
}

// NewGoogle creates a Gemini adapter with the production endpoint default.
func NewGoogle(cfg Config) *Google {
	return &Google{config: cfg.withDefaults("https://generativelanguage.googleapis.com/v1beta")}
}

func (g *Google) Provider() string { return ProviderGoogle }

// Invoke sends one generateContent request and returns the first candidate's text.
func (g *Google) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.config.Endpoint, g.config.Model)

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": userContent}},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     g.config.Temperature,
			"maxOutputTokens": g.config.MaxTokens,
		},
	}
	if systemPrompt != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": systemPrompt}},
		}
	}

	headers := map[string]string{
		"x-goog-api-key": g.config.APIKey,
	}
	for k, v := range g.config.Headers {
		headers[k] = v
	}

	body, err := doJSON(ctx, g.config.HTTPClient, ProviderGoogle, "POST", endpoint, headers, payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &llm.ProviderError{
			Provider: ProviderGoogle,
			Message:  "response contained no candidates",
			Type:     llm.ErrorTypeUnknown,
			Cause:    llm.ErrEmptyCompletion,
		}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
