package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// loggingClient decorates a Client with structured request lifecycle logs.
// Prompts are redacted by default; enable prompt logging only in development.
type loggingClient struct {
	next          Client
	logger        *slog.Logger
	redactPrompts bool
}

// WithLogging wraps client so every invocation emits start and completion
// logs with latency and error classification. When redactPrompts is true the
// prompt bodies are replaced with their lengths.
func WithLogging(client Client, logger *slog.Logger, redactPrompts bool) Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingClient{
		next:          client,
		logger:        logger.With("component", "llm", "provider", client.Provider()),
		redactPrompts: redactPrompts,
	}
}

func (l *loggingClient) Provider() string { return l.next.Provider() }

func (l *loggingClient) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	requestID := uuid.New().String()

	attrs := []any{"request_id", requestID}
	if l.redactPrompts {
		attrs = append(attrs, "system_prompt_len", len(systemPrompt), "user_content_len", len(userContent))
	} else {
		attrs = append(attrs, "system_prompt", systemPrompt, "user_content", userContent)
	}
	l.logger.Debug("invoking provider", attrs...)

	start := time.Now()
	text, err := l.next.Invoke(ctx, systemPrompt, userContent)
	elapsed := time.Since(start)

	if err != nil {
		errType := ErrorTypeUnknown
		var pe *ProviderError
		if errors.As(err, &pe) {
			errType = pe.Type
		}
		l.logger.Error("provider invocation failed",
			"request_id", requestID,
			"duration_ms", elapsed.Milliseconds(),
			"error_type", string(errType),
			"error", err)
		return "", err
	}

	l.logger.Debug("provider invocation completed",
		"request_id", requestID,
		"duration_ms", elapsed.Milliseconds(),
		"response_len", len(text))
	return text, nil
}
