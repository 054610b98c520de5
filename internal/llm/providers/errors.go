package providers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ahrav/go-prompteval/internal/llm"
)

// errorEnvelope covers the JSON error shapes the supported providers emit:
// OpenAI/Google nest under "error", Anthropic/Cohere use a flat "message".
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
	Message string `json:"message"`
}

// newStatusError converts a non-2xx provider response into a classified
// *llm.ProviderError, extracting the provider's error message when the body
// parses and honoring a Retry-After header on throttled responses.
func newStatusError(provider string, resp *http.Response, body []byte) *llm.ProviderError {
	message := strings.TrimSpace(string(body))

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Error.Message != "":
			message = envelope.Error.Message
		case envelope.Message != "":
			message = envelope.Message
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	errType := llm.ClassifyStatus(resp.StatusCode)
	// Some providers signal throttling through the error code rather than 429.
	code := strings.ToLower(envelope.Error.Code + " " + envelope.Error.Type)
	if errType == llm.ErrorTypeUnknown && (strings.Contains(code, "rate") || strings.Contains(code, "limit")) {
		errType = llm.ErrorTypeRateLimit
	}

	retryAfter := 0
	if after := resp.Header.Get("Retry-After"); after != "" {
		if seconds, err := strconv.Atoi(after); err == nil && seconds > 0 {
			retryAfter = seconds
		}
	}

	return &llm.ProviderError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Message:    message,
		Type:       errType,
		RetryAfter: retryAfter,
	}
}
