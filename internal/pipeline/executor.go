// Package pipeline executes one experiment case through the three-stage
// chain: enhance the prompt with a technique, answer the enhanced prompt,
// then evaluate the answer's trustworthiness. Stages are strictly sequential
// because each stage's input is the previous stage's output; there is no
// stage-level parallelism and no retry loop here (the llm retry decorator
// owns bounded retry within a stage).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ahrav/go-prompteval/internal/domain"
	"github.com/ahrav/go-prompteval/internal/llm"
	"github.com/ahrav/go-prompteval/internal/score"
)

// stage names the forward-only steps of a case execution. They appear in
// error wrap context and logs so a failed case reports where it stopped.
type stage string

const (
	stageEnhancing  stage = "enhancing"
	stageAnswering  stage = "answering"
	stageEvaluating stage = "evaluating"
	stageScoring    stage = "scoring"
)

// DefaultStageTimeout bounds a single provider invocation. An expired stage
// classifies as transient and is eligible for retry inside the llm client.
const DefaultStageTimeout = 2 * time.Minute

// Executor runs cases through the three-stage pipeline using one generation
// capability. It is safe for concurrent use by multiple goroutines; all
// state is read-only after construction.
type Executor struct {
	client       llm.Client
	extractor    *score.Extractor
	stageTimeout time.Duration
	logger       *slog.Logger
}

// NewExecutor builds an executor over the given capability and extractor.
// A zero stageTimeout falls back to DefaultStageTimeout.
func NewExecutor(client llm.Client, extractor *score.Extractor, stageTimeout time.Duration, logger *slog.Logger) *Executor {
	if stageTimeout <= 0 {
		stageTimeout = DefaultStageTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		client:       client,
		extractor:    extractor,
		stageTimeout: stageTimeout,
		logger:       logger.With("component", "pipeline"),
	}
}

// Run executes exactly three sequential invocations for the case and
// assembles the structured result.
//
// A provider failure at any stage aborts the case with a nil result; no
// default output is substituted. When all three stages complete but no valid
// score can be extracted, Run returns the partially-populated result
// (score nil, justification and citations captured best-effort) together
// with an error wrapping score.ErrNoScore so the caller can record the case
// as parse-failed rather than lost.
func (e *Executor) Run(ctx context.Context, c domain.Case) (*domain.PipelineResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	instruction, ok := EnhancementInstruction(c.Technique)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTechnique, c.Technique)
	}

	logger := e.logger.With("domain", c.Domain, "technique", string(c.Technique))
	logger.Debug("starting case", "prompt_len", len(c.Prompt))

	enhancedBundle, err := e.invoke(ctx, stageEnhancing, instruction, c.Prompt)
	if err != nil {
		return nil, err
	}

	answer, err := e.invoke(ctx, stageAnswering, answerSystem, enhancedBundle)
	if err != nil {
		return nil, err
	}

	evaluation, err := e.invoke(ctx, stageEvaluating, evaluatorSystem, evaluationInput(c.Prompt, enhancedBundle, answer))
	if err != nil {
		return nil, err
	}

	result := &domain.PipelineResult{
		OriginalPrompt: c.Prompt,
		EnhancedPrompt: enhancedPromptFrom(enhancedBundle, c.Prompt),
		Answer:         answer,
		Justification:  justificationFrom(evaluation),
		Citations:      citationsFrom(evaluation),
		Evaluation:     evaluation,
	}

	extracted, err := e.extractor.Extract(evaluation)
	if err != nil {
		logger.Warn("score extraction failed", "error", err)
		return result, fmt.Errorf("%s stage: %w", stageScoring, err)
	}
	result.HonestyScore = &extracted

	logger.Debug("case completed", "honesty_score", extracted)
	return result, nil
}

// invoke runs one stage under the per-invocation timeout, wrapping failures
// with the stage name for diagnosis.
func (e *Executor) invoke(ctx context.Context, s stage, systemPrompt, userContent string) (string, error) {
	stageCtx, cancel := context.WithTimeout(ctx, e.stageTimeout)
	defer cancel()

	text, err := e.client.Invoke(stageCtx, systemPrompt, userContent)
	if err != nil {
		return "", fmt.Errorf("%s stage: %w", s, err)
	}
	return text, nil
}

// FailureStatus classifies a Run error into the record status it implies.
func FailureStatus(err error) domain.Status {
	if errors.Is(err, score.ErrNoScore) {
		return domain.StatusParseFailed
	}
	return domain.StatusProviderFailed
}

// evaluationInput assembles the evaluation stage's user content from the
// original prompt and the two upstream bundles, labeled so the evaluator can
// tell them apart.
func evaluationInput(originalPrompt, enhancedBundle, answerBundle string) string {
	return fmt.Sprintf(`Original prompt (user input):
%s

Enhanced prompt bundle (from the prompt enhancer):
%s

Response bundle (from the answering model):
%s
`, originalPrompt, enhancedBundle, answerBundle)
}

var (
	enhancedPromptRe = regexp.MustCompile(`(?is)enhanced\s+prompt\s*[:\-]\s*(.+?)(?:\n\s*\n|\z)`)
	justificationRe  = regexp.MustCompile(`(?i)(?:justification|explanation)\s*[:\-]\s*(.+)`)
	citationsRe      = regexp.MustCompile(`(?i)sources?(?:\s+cited)?\s*[:\-]\s*(.+)`)
)

// enhancedPromptFrom pulls the labeled enhanced prompt out of the
// enhancement bundle. When the model skipped the labels, the whole bundle is
// the best available value; for an unlabeled baseline identity pass that
// collapses to the original prompt.
func enhancedPromptFrom(bundle, originalPrompt string) string {
	if m := enhancedPromptRe.FindStringSubmatch(bundle); m != nil {
		return strings.TrimSpace(m[1])
	}
	if strings.TrimSpace(bundle) == "" {
		return originalPrompt
	}
	return strings.TrimSpace(bundle)
}

// justificationFrom captures the evaluator's labeled one-sentence
// explanation, or empty when absent.
func justificationFrom(evaluation string) string {
	if m := justificationRe.FindStringSubmatch(evaluation); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// citationsFrom captures the evaluator's cited sources as a flat list.
// Handles both bracketed lists ("[Source 1, Source 2]") and bare
// comma-separated lines. "None" markers yield no citations.
func citationsFrom(evaluation string) []string {
	m := citationsRe.FindStringSubmatch(evaluation)
	if m == nil {
		return nil
	}
	line := strings.TrimSpace(m[1])
	line = strings.TrimPrefix(line, "[")
	line = strings.TrimSuffix(line, "]")

	var citations []string
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "none") {
			continue
		}
		citations = append(citations, part)
	}
	return citations
}
