package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Retry configuration validation errors.
var (
	errMaxAttemptsInvalid     = errors.New("maxAttempts must be greater than 0")
	errInitialIntervalInvalid = errors.New("initialInterval must be greater than 0")
	errMaxIntervalInvalid     = errors.New("maxInterval must be >= initialInterval")
	errMultiplierInvalid      = errors.New("multiplier must be >= 1.0")
)

// errRetriesExhausted wraps the final failure after all attempts are spent.
var errRetriesExhausted = errors.New("all retry attempts exhausted")

// RetryConfig controls the bounded retry loop around provider invocations.
// Implements exponential backoff with full jitter; provider Retry-After
// guidance takes precedence over the computed delay.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`     // Total attempts including the first
	InitialInterval time.Duration `yaml:"initial_interval"` // Starting backoff duration
	MaxInterval     time.Duration `yaml:"max_interval"`     // Backoff cap
	Multiplier      float64       `yaml:"multiplier"`       // Exponential growth factor
	UseJitter       bool          `yaml:"use_jitter"`       // Full jitter randomization
}

// Validate checks the retry parameters for internal consistency.
func (c RetryConfig) Validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w, got %d", errMaxAttemptsInvalid, c.MaxAttempts)
	}
	if c.InitialInterval <= 0 {
		return fmt.Errorf("%w, got %v", errInitialIntervalInvalid, c.InitialInterval)
	}
	if c.MaxInterval < c.InitialInterval {
		return fmt.Errorf("%w, MaxInterval: %v, InitialInterval: %v",
			errMaxIntervalInvalid, c.MaxInterval, c.InitialInterval)
	}
	if c.Multiplier < 1.0 {
		return fmt.Errorf("%w, got %f", errMultiplierInvalid, c.Multiplier)
	}
	return nil
}

// DefaultRetryConfig returns the standard retry policy for the given
// transient-retry budget: the initial attempt plus maxRetries retries, with
// 1s initial backoff doubling up to 30s under full jitter. A budget of 0
// disables retries.
func DefaultRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxAttempts:     maxRetries + 1,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		UseJitter:       true,
	}
}

// retryClient decorates a Client with bounded retry for retryable failures.
// Authentication and unknown failures pass through on the first occurrence.
type retryClient struct {
	next   Client
	config RetryConfig
	logger *slog.Logger
}

// WithRetry wraps client with the bounded retry loop described by cfg.
// Returns an error when cfg is internally inconsistent.
func WithRetry(client Client, cfg RetryConfig, logger *slog.Logger) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retryClient{
		next:   client,
		config: cfg,
		logger: logger.With("component", "retry", "provider", client.Provider()),
	}, nil
}

func (r *retryClient) Provider() string { return r.next.Provider() }

// Invoke attempts the wrapped invocation up to MaxAttempts times, backing off
// between retryable failures. Context cancellation stops the loop immediately
// so a halted sweep does not burn further attempts.
func (r *retryClient) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context done before attempt %d: %w", attempt, err)
		}

		text, err := r.next.Invoke(ctx, systemPrompt, userContent)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return "", err
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.backoff(attempt, err)
		r.logger.Warn("retrying provider invocation",
			"attempt", attempt,
			"max_attempts", r.config.MaxAttempts,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("context done during retry backoff: %w", ctx.Err())
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %w", errRetriesExhausted, r.config.MaxAttempts, lastErr)
}

// backoff computes the delay before the next attempt. Provider Retry-After
// guidance wins; otherwise exponential backoff with optional full jitter.
func (r *retryClient) backoff(attempt int, err error) time.Duration {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if after := pe.GetRetryAfter(); after > 0 {
			return after
		}
	}

	interval := r.config.InitialInterval
	for i := 1; i < attempt; i++ {
		interval = time.Duration(float64(interval) * r.config.Multiplier)
		if interval > r.config.MaxInterval {
			interval = r.config.MaxInterval
			break
		}
	}

	if r.config.UseJitter {
		// Full jitter: uniform in [0, interval]. math/rand/v2 is thread-safe.
		jitterMs := rand.Int64N(interval.Milliseconds() + 1) // #nosec G404 -- non-cryptographic jitter
		return time.Duration(jitterMs) * time.Millisecond
	}
	return interval
}
