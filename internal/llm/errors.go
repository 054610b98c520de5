package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ErrorType categorizes provider failures for retry classification.
// Rate-limit and transient failures are retryable; authentication failures
// indicate a configuration problem and are never retried.
type ErrorType string

const (
	// ErrorTypeAuthentication indicates rejected credentials (non-retryable).
	ErrorTypeAuthentication ErrorType = "authentication"

	// ErrorTypeRateLimit indicates provider throttling; retry with backoff.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeTransient indicates timeouts, network failures, or provider
	// 5xx responses (retryable).
	ErrorTypeTransient ErrorType = "transient"

	// ErrorTypeUnknown indicates an unclassified failure (non-retryable).
	ErrorTypeUnknown ErrorType = "unknown"
)

// Sentinel errors for provider operations.
var (
	// ErrUnknownProvider indicates a provider identifier outside the
	// configured set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrMissingAPIKey indicates a provider was requested without credentials.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmptyCompletion indicates the provider returned a well-formed
	// response with no text content.
	ErrEmptyCompletion = errors.New("provider returned empty completion")
)

// ProviderError captures a structured failure from a generation provider,
// including the classification that drives retry decisions and any
// provider-specified retry delay.
type ProviderError struct {
	Provider   string    `json:"provider"`
	StatusCode int       `json:"status_code,omitempty"`
	Message    string    `json:"message"`
	Type       ErrorType `json:"type"`
	RetryAfter int       `json:"retry_after,omitempty"` // Retry-After value in seconds
	Cause      error     `json:"-"`
}

// Error returns the formatted provider failure with classification context.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Provider, e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Provider, e.Type, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// IsRetryable reports whether the failure warrants another attempt.
func (e *ProviderError) IsRetryable() bool {
	return e.Type == ErrorTypeRateLimit || e.Type == ErrorTypeTransient
}

// GetRetryAfter returns the provider-specified delay before the next attempt,
// or zero when the provider gave no guidance.
func (e *ProviderError) GetRetryAfter() time.Duration {
	if e.RetryAfter > 0 {
		return time.Duration(e.RetryAfter) * time.Second
	}
	return 0
}

// ClassifyStatus maps an HTTP response status to an ErrorType.
// The mapping is shared by every provider adapter: credential rejections are
// permanent, throttling and server-side failures are retryable, anything
// else is unknown.
func ClassifyStatus(status int) ErrorType {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorTypeAuthentication
	case status == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case status == http.StatusRequestTimeout || status >= http.StatusInternalServerError:
		return ErrorTypeTransient
	default:
		return ErrorTypeUnknown
	}
}

// WrapTransportError converts low-level transport failures into classified
// provider errors. Deadline expiry and network errors are transient by
// policy: an invocation exceeding its timeout is eligible for retry.
func WrapTransportError(provider string, err error) *ProviderError {
	errType := ErrorTypeUnknown
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		errType = ErrorTypeTransient
	case errors.As(err, &netErr):
		errType = ErrorTypeTransient
	}
	return &ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Type:     errType,
		Cause:    err,
	}
}

// IsAuthentication reports whether err is classified as a credential failure.
func IsAuthentication(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Type == ErrorTypeAuthentication
}

// IsRetryable reports whether err is a retryable provider failure.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.IsRetryable()
}
