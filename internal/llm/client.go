// Package llm defines the generation capability consumed by the pipeline:
// a single Invoke operation over a configured provider, plus the error
// taxonomy and the retry and logging decorators that wrap it.
//
// The pipeline is agnostic to which provider backs a Client; provider
// selection happens once at construction time (see the providers subpackage),
// never by runtime type inspection.
package llm

import "context"

// Client is the generation capability: one model invocation with a system
// instruction and user content, returning the model's text.
//
// Implementations must honor ctx cancellation and deadlines, and must return
// failures as *ProviderError so callers can classify them for retry.
type Client interface {
	// Invoke sends one request to the underlying model and returns its text
	// response. The call blocks until the provider responds, the context is
	// done, or the request times out.
	Invoke(ctx context.Context, systemPrompt, userContent string) (string, error)

	// Provider returns the canonical provider identifier backing this client.
	Provider() string
}

// InvokeFunc adapts a plain function to the Client interface for decorators
// and tests.
type InvokeFunc struct {
	Fn   func(ctx context.Context, systemPrompt, userContent string) (string, error)
	Name string
}

func (f InvokeFunc) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	return f.Fn(ctx, systemPrompt, userContent)
}

func (f InvokeFunc) Provider() string { return f.Name }
