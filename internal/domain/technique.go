// Package domain defines the core types for prompt-technique experiments:
// enhancement techniques, experiment cases, pipeline results, and the records
// that tie them together. Types here are plain values with validation; they
// carry no behavior beyond identity and invariant checks so that every other
// package can depend on them without cycles.
package domain

import (
	"fmt"
	"strings"
)

// Technique identifies a prompt-enhancement strategy applied in the
// enhancement stage. The set is closed; unknown values fail validation.
type Technique string

const (
	// TechniqueBaseline passes the original prompt through unchanged.
	// It anchors the improvement comparison for every other technique.
	TechniqueBaseline Technique = "baseline"

	// TechniqueChainOfThought rewrites the prompt to request explicit
	// step-by-step reasoning before the answer.
	TechniqueChainOfThought Technique = "chain_of_thought"

	// TechniqueTwoShot prepends two worked examples demonstrating the task.
	TechniqueTwoShot Technique = "two_shot"

	// TechniqueSocratic decomposes the prompt into guiding questions.
	TechniqueSocratic Technique = "socratic"

	// TechniquePrecision rewrites the prompt to demand factual precision,
	// citations, and explicit uncertainty flagging.
	TechniquePrecision Technique = "precision"
)

// Techniques returns every recognized technique in its canonical order.
// Returns a fresh slice to prevent mutation of the canonical set.
func Techniques() []Technique {
	return []Technique{
		TechniqueBaseline,
		TechniqueChainOfThought,
		TechniqueTwoShot,
		TechniqueSocratic,
		TechniquePrecision,
	}
}

// ParseTechnique converts a configuration string into a Technique.
// Matching is case-insensitive and tolerates hyphenated spellings
// (e.g. "chain-of-thought"). Unknown names return ErrUnknownTechnique.
func ParseTechnique(s string) (Technique, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, t := range Techniques() {
		if normalized == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTechnique, s)
}

// Valid reports whether t is a member of the closed technique set.
func (t Technique) Valid() bool {
	for _, known := range Techniques() {
		if t == known {
			return true
		}
	}
	return false
}

func (t Technique) String() string { return string(t) }
