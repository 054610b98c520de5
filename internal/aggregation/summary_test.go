package aggregation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-prompteval/internal/domain"
)

func okRecord(d, prompt string, tech domain.Technique, score int) domain.Record {
	return domain.Record{
		Case:   domain.Case{Domain: d, Prompt: prompt, Technique: tech},
		Result: domain.PipelineResult{OriginalPrompt: prompt, HonestyScore: &score},
		Status: domain.StatusOK,
	}
}

func failedRecord(d, prompt string, tech domain.Technique, status domain.Status) domain.Record {
	return domain.Record{
		Case:          domain.Case{Domain: d, Prompt: prompt, Technique: tech},
		Status:        status,
		FailureReason: "stage failed",
	}
}

// TestPairedImprovement covers the concrete aggregation scenario: baseline 60
// and precision 80 on the same prompt yield improvement(precision) = +20 for
// that domain, with zero provider failures.
func TestPairedImprovement(t *testing.T) {
	records := []domain.Record{
		okRecord("domainA", "p1", domain.TechniqueBaseline, 60),
		okRecord("domainA", "p1", domain.TechniquePrecision, 80),
	}

	s := Summarize(records)

	assert.Equal(t, 2, s.TotalCases)
	assert.Equal(t, 2, s.OKCases)
	assert.Zero(t, s.FailureRate)
	assert.InDelta(t, 20.0, s.ImprovementMeans[domain.TechniquePrecision], 1e-9)
	assert.InDelta(t, 20.0, s.DomainImprovementMeans["domainA"][domain.TechniquePrecision], 1e-9)
	assert.InDelta(t, 60.0, s.TechniqueMeans[domain.TechniqueBaseline], 1e-9)
	assert.InDelta(t, 80.0, s.TechniqueMeans[domain.TechniquePrecision], 1e-9)
}

func TestImprovementIsPairedNotIndependent(t *testing.T) {
	// Baseline exists only for p1. The precision score on p2 has no pair and
	// must not contribute to the improvement mean.
	records := []domain.Record{
		okRecord("d", "p1", domain.TechniqueBaseline, 50),
		okRecord("d", "p1", domain.TechniquePrecision, 70),
		okRecord("d", "p2", domain.TechniquePrecision, 10),
	}

	s := Summarize(records)

	assert.InDelta(t, 20.0, s.ImprovementMeans[domain.TechniquePrecision], 1e-9,
		"unpaired scores must not dilute the paired difference")
	assert.InDelta(t, 40.0, s.TechniqueMeans[domain.TechniquePrecision], 1e-9,
		"plain means still include all ok records")
}

func TestImprovementPairsWithinDomain(t *testing.T) {
	// Same prompt text in two domains; pairs must not cross domains.
	records := []domain.Record{
		okRecord("d1", "p", domain.TechniqueBaseline, 10),
		okRecord("d2", "p", domain.TechniqueSocratic, 90),
	}

	s := Summarize(records)
	assert.Empty(t, s.ImprovementMeans, "no pair exists within either domain")
}

func TestFailedRecordsExcludedButCounted(t *testing.T) {
	records := []domain.Record{
		okRecord("d", "p1", domain.TechniqueBaseline, 60),
		failedRecord("d", "p2", domain.TechniqueBaseline, domain.StatusProviderFailed),
		failedRecord("d", "p3", domain.TechniqueChainOfThought, domain.StatusParseFailed),
		okRecord("d", "p1", domain.TechniqueChainOfThought, 90),
	}

	s := Summarize(records)

	assert.Equal(t, 4, s.TotalCases)
	assert.Equal(t, 2, s.OKCases)
	assert.InDelta(t, 0.5, s.FailureRate, 1e-9)
	assert.InDelta(t, 60.0, s.TechniqueMeans[domain.TechniqueBaseline], 1e-9,
		"failed cases must not drag the mean")
	assert.Equal(t, 1, s.TechniqueFailures[domain.TechniqueBaseline][domain.StatusProviderFailed])
	assert.Equal(t, 1, s.TechniqueFailures[domain.TechniqueChainOfThought][domain.StatusParseFailed])
	assert.Equal(t, 2, len(s.DomainFailures["d"]))
}

func TestDomainTechniqueMeans(t *testing.T) {
	records := []domain.Record{
		okRecord("history", "p1", domain.TechniqueBaseline, 40),
		okRecord("history", "p2", domain.TechniqueBaseline, 60),
		okRecord("science", "p3", domain.TechniqueBaseline, 80),
	}

	s := Summarize(records)

	assert.InDelta(t, 50.0, s.DomainTechniqueMeans["history"][domain.TechniqueBaseline], 1e-9)
	assert.InDelta(t, 80.0, s.DomainTechniqueMeans["science"][domain.TechniqueBaseline], 1e-9)
	assert.InDelta(t, 60.0, s.TechniqueMeans[domain.TechniqueBaseline], 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalCases)
	assert.Zero(t, s.FailureRate)
	assert.Empty(t, s.TechniqueMeans)
}

func TestWriteTable(t *testing.T) {
	t.Run("renders means and improvements", func(t *testing.T) {
		records := []domain.Record{
			okRecord("d", "p1", domain.TechniqueBaseline, 60),
			okRecord("d", "p1", domain.TechniquePrecision, 80),
		}
		var sb strings.Builder
		Summarize(records).WriteTable(&sb)

		out := sb.String()
		assert.Contains(t, out, "HONESTY SCORE SUMMARY")
		assert.Contains(t, out, "baseline")
		assert.Contains(t, out, "precision")
		assert.Contains(t, out, "+20.0 vs baseline")
	})

	t.Run("marks techniques with no valid scores", func(t *testing.T) {
		records := []domain.Record{
			failedRecord("d", "p1", domain.TechniqueSocratic, domain.StatusParseFailed),
		}
		var sb strings.Builder
		Summarize(records).WriteTable(&sb)

		require.Contains(t, sb.String(), "no valid scores")
	})
}
