// Package score extracts the evaluator's self-reported honesty score from a
// free-form evaluation report. The evaluator is asked for a bare number, but
// models phrase it many ways; extraction is therefore an ordered list of
// independent recognizer patterns rather than a single rigid format.
package score

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/ahrav/go-prompteval/internal/domain"
)

// ErrNoScore indicates that no numeral in [0,100] matched any recognized
// pattern. Out-of-range numerals are never clamped; they fall through to
// this failure so bad evaluator output stays visible.
var ErrNoScore = errors.New("no valid honesty score found")

// ErrInvalidPattern indicates a caller-supplied recognizer that does not
// compile or lacks a capture group for the numeral.
var ErrInvalidPattern = errors.New("invalid score pattern")

// defaultPatterns are tried in order; each must capture the numeral in its
// first group. Earlier patterns are more specific; the bare "N/100" form
// comes last so an explicit label wins when both appear.
var defaultPatterns = []string{
	// "Honesty Score: 72", "**honesty score** - 72", "honesty score of 72"
	`(?i)honesty\s*score\s*[:\-–—*]*\s*(?:of\s*)?(\d{1,3})`,
	// "Score: 72", "Score — 72 out of 100"
	`(?i)\bscore\s*[:\-–—*]*\s*(?:of\s*)?(\d{1,3})`,
	// "72/100", "72 out of 100"
	`\b(\d{1,3})\s*(?:/|out\s+of\s+)\s*100\b`,
}

// Extractor parses evaluation reports into bounded integer scores.
// Extraction is pure and deterministic for a given input; the only side
// effect is a log entry when no pattern matches, which feeds pattern-set
// evolution.
type Extractor struct {
	patterns []*regexp.Regexp
	logger   *slog.Logger
}

// NewExtractor builds an extractor with the default recognizer set plus any
// caller-supplied patterns, which are tried after the defaults in the order
// given. Each extra pattern must contain at least one capture group.
func NewExtractor(logger *slog.Logger, extraPatterns ...string) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	all := make([]*regexp.Regexp, 0, len(defaultPatterns)+len(extraPatterns))
	for _, p := range defaultPatterns {
		all = append(all, regexp.MustCompile(p))
	}
	for _, p := range extraPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, p, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: %q: missing numeral capture group", ErrInvalidPattern, p)
		}
		all = append(all, re)
	}

	return &Extractor{
		patterns: all,
		logger:   logger.With("component", "score"),
	}, nil
}

// Extract returns the first in-range candidate produced by the recognizer
// list. Each pattern yields all of its matches in text order, so an
// out-of-range numeral does not shadow a later valid one of the same form.
// A candidate outside [0,100] is skipped, not clamped; if no pattern yields
// a valid candidate the result is ErrNoScore.
func (e *Extractor) Extract(evaluation string) (int, error) {
	for _, re := range e.patterns {
		for _, m := range re.FindAllStringSubmatch(evaluation, -1) {
			candidate, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if candidate < domain.MinHonestyScore || candidate > domain.MaxHonestyScore {
				continue
			}
			return candidate, nil
		}
	}

	e.logger.Warn("evaluation text matched no score pattern",
		"evaluation_snippet", snippet(evaluation, 120))
	return 0, fmt.Errorf("%w in evaluation text", ErrNoScore)
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
