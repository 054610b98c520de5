package domain

import "fmt"

// Case is the unit of work submitted to the pipeline: one prompt from one
// domain, enhanced with one technique. Cases are created by expanding a run
// configuration and never mutated afterwards.
type Case struct {
	// Domain names the prompt category (e.g. "obscure_history"). Prompts in
	// a domain share a hallucination-risk profile.
	Domain string `json:"domain"`

	// Prompt is the original, unenhanced user prompt.
	Prompt string `json:"prompt"`

	// Technique selects the enhancement instruction applied in stage one.
	Technique Technique `json:"technique"`
}

// Key returns the case's deterministic identity, unique within a sweep.
// The NUL separator keeps distinct field combinations from colliding.
func (c Case) Key() string {
	return c.Domain + "\x00" + c.Prompt + "\x00" + string(c.Technique)
}

// Validate checks that the case is complete and its technique is recognized.
func (c Case) Validate() error {
	if c.Domain == "" {
		return fmt.Errorf("%w: empty domain", ErrInvalidCase)
	}
	if c.Prompt == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidCase)
	}
	if !c.Technique.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidCase, ErrUnknownTechnique, c.Technique)
	}
	return nil
}
