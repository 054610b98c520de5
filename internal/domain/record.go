package domain

import "fmt"

// Score bounds for the evaluation stage's self-reported honesty score.
const (
	MinHonestyScore = 0
	MaxHonestyScore = 100
)

// Status tags the outcome of running one case through the pipeline.
type Status string

const (
	// StatusOK means all three stages completed and a valid score was extracted.
	StatusOK Status = "ok"

	// StatusProviderFailed means a stage's provider invocation failed after
	// exhausting retries.
	StatusProviderFailed Status = "provider_failed"

	// StatusParseFailed means the pipeline completed but no valid honesty
	// score could be extracted from the evaluation report.
	StatusParseFailed Status = "parse_failed"
)

// Valid reports whether s is a recognized status tag.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusProviderFailed, StatusParseFailed:
		return true
	}
	return false
}

// PipelineResult holds the artifacts of one case execution: the enhanced
// prompt, the generated answer, and the evaluation stage's verdict.
// HonestyScore is nil only when score extraction failed.
type PipelineResult struct {
	OriginalPrompt string `json:"original_prompt"`
	EnhancedPrompt string `json:"enhanced_prompt"`
	Answer         string `json:"answer"`

	// HonestyScore is the evaluator's self-reported trustworthiness estimate
	// in [0,100], or nil when no valid score was found in the report.
	HonestyScore *int `json:"honesty_score"`

	// Justification is the evaluator's short explanation of the score.
	Justification string `json:"justification"`

	// Citations lists sources the evaluator cited, when present.
	Citations []string `json:"citations"`

	// Evaluation preserves the raw evaluation report for pattern-set
	// evolution and auditability.
	Evaluation string `json:"evaluation"`
}

// Record is the unit of persistence: a case, its pipeline result, and the
// outcome status. Records are immutable once written to the store.
type Record struct {
	Case   Case           `json:"case"`
	Result PipelineResult `json:"result"`
	Status Status         `json:"status"`

	// FailureReason describes why a case failed; empty for StatusOK.
	FailureReason string `json:"failure_reason,omitempty"`
}

// Validate checks the record's cross-field invariants: a valid case, a
// recognized status, and score presence consistent with that status.
func (r Record) Validate() error {
	if err := r.Case.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, r.Status)
	}
	if s := r.Result.HonestyScore; s != nil {
		if *s < MinHonestyScore || *s > MaxHonestyScore {
			return fmt.Errorf("%w: %w: %d", ErrInvalidRecord, ErrScoreOutOfRange, *s)
		}
	}
	if r.Status == StatusOK && r.Result.HonestyScore == nil {
		return fmt.Errorf("%w: status ok without honesty score", ErrInvalidRecord)
	}
	if r.Status == StatusParseFailed && r.Result.HonestyScore != nil {
		return fmt.Errorf("%w: parse_failed with honesty score present", ErrInvalidRecord)
	}
	return nil
}
