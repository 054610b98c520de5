// Package aggregation turns a persisted record sequence into per-technique
// and per-domain summary statistics. It only ever reads records: failed
// cases are excluded from numeric means but counted and reported so missing
// data stays visible instead of vanishing into an averaged denominator.
package aggregation

import (
	"fmt"
	"io"
	"sort"

	"github.com/ahrav/go-prompteval/internal/domain"
)

// Summary holds the derived statistics for one record set. It is recomputed
// on demand and never persisted.
type Summary struct {
	// TotalCases and OKCases size the record set; FailureRate is their
	// complement's ratio.
	TotalCases  int     `json:"total_cases"`
	OKCases     int     `json:"ok_cases"`
	FailureRate float64 `json:"failure_rate"`

	// TechniqueMeans is the mean honesty score per technique over ok records.
	TechniqueMeans map[domain.Technique]float64 `json:"technique_means"`

	// DomainTechniqueMeans is the mean honesty score per (domain, technique).
	DomainTechniqueMeans map[string]map[domain.Technique]float64 `json:"domain_technique_means"`

	// ImprovementMeans is the mean paired improvement of each non-baseline
	// technique over baseline on the same (domain, prompt). Only prompts
	// where both scores exist contribute; this is a paired difference, not a
	// difference of independent means.
	ImprovementMeans map[domain.Technique]float64 `json:"improvement_means"`

	// DomainImprovementMeans breaks the paired improvement down per domain.
	DomainImprovementMeans map[string]map[domain.Technique]float64 `json:"domain_improvement_means"`

	// TechniqueFailures and DomainFailures count non-ok records by status so
	// a degraded run reports where its holes are.
	TechniqueFailures map[domain.Technique]map[domain.Status]int `json:"technique_failures"`
	DomainFailures    map[string]map[domain.Status]int           `json:"domain_failures"`
}

// meanAccumulator collects a running sum and count for one mean.
type meanAccumulator struct {
	sum   float64
	count int
}

func (m *meanAccumulator) add(v float64) { m.sum += v; m.count++ }

func (m *meanAccumulator) mean() float64 { return m.sum / float64(m.count) }

// Summarize computes summary statistics over the full record sequence.
// Records with a non-ok status are tallied as failures; only ok records
// contribute to means and improvements.
func Summarize(records []domain.Record) *Summary {
	s := &Summary{
		TotalCases:             len(records),
		TechniqueMeans:         make(map[domain.Technique]float64),
		DomainTechniqueMeans:   make(map[string]map[domain.Technique]float64),
		ImprovementMeans:       make(map[domain.Technique]float64),
		DomainImprovementMeans: make(map[string]map[domain.Technique]float64),
		TechniqueFailures:      make(map[domain.Technique]map[domain.Status]int),
		DomainFailures:         make(map[string]map[domain.Status]int),
	}

	techniqueAcc := make(map[domain.Technique]*meanAccumulator)
	domainTechniqueAcc := make(map[string]map[domain.Technique]*meanAccumulator)

	// Baseline scores keyed by (domain, prompt) anchor the paired
	// improvement computation.
	baselineByPrompt := make(map[string]int)

	for _, r := range records {
		if r.Status != domain.StatusOK || r.Result.HonestyScore == nil {
			tally(s.TechniqueFailures, r.Case.Technique, r.Status)
			tally(s.DomainFailures, r.Case.Domain, r.Status)
			continue
		}
		s.OKCases++
		score := float64(*r.Result.HonestyScore)

		acc := techniqueAcc[r.Case.Technique]
		if acc == nil {
			acc = &meanAccumulator{}
			techniqueAcc[r.Case.Technique] = acc
		}
		acc.add(score)

		byTech := domainTechniqueAcc[r.Case.Domain]
		if byTech == nil {
			byTech = make(map[domain.Technique]*meanAccumulator)
			domainTechniqueAcc[r.Case.Domain] = byTech
		}
		dacc := byTech[r.Case.Technique]
		if dacc == nil {
			dacc = &meanAccumulator{}
			byTech[r.Case.Technique] = dacc
		}
		dacc.add(score)

		if r.Case.Technique == domain.TechniqueBaseline {
			baselineByPrompt[promptKey(r.Case)] = *r.Result.HonestyScore
		}
	}

	if s.TotalCases > 0 {
		s.FailureRate = float64(s.TotalCases-s.OKCases) / float64(s.TotalCases)
	}

	for tech, acc := range techniqueAcc {
		s.TechniqueMeans[tech] = acc.mean()
	}
	for d, byTech := range domainTechniqueAcc {
		s.DomainTechniqueMeans[d] = make(map[domain.Technique]float64, len(byTech))
		for tech, acc := range byTech {
			s.DomainTechniqueMeans[d][tech] = acc.mean()
		}
	}

	improvementAcc := make(map[domain.Technique]*meanAccumulator)
	domainImprovementAcc := make(map[string]map[domain.Technique]*meanAccumulator)
	for _, r := range records {
		if r.Status != domain.StatusOK || r.Result.HonestyScore == nil {
			continue
		}
		if r.Case.Technique == domain.TechniqueBaseline {
			continue
		}
		baseline, ok := baselineByPrompt[promptKey(r.Case)]
		if !ok {
			continue // No paired baseline for this prompt.
		}
		diff := float64(*r.Result.HonestyScore - baseline)

		acc := improvementAcc[r.Case.Technique]
		if acc == nil {
			acc = &meanAccumulator{}
			improvementAcc[r.Case.Technique] = acc
		}
		acc.add(diff)

		byTech := domainImprovementAcc[r.Case.Domain]
		if byTech == nil {
			byTech = make(map[domain.Technique]*meanAccumulator)
			domainImprovementAcc[r.Case.Domain] = byTech
		}
		dacc := byTech[r.Case.Technique]
		if dacc == nil {
			dacc = &meanAccumulator{}
			byTech[r.Case.Technique] = dacc
		}
		dacc.add(diff)
	}

	for tech, acc := range improvementAcc {
		s.ImprovementMeans[tech] = acc.mean()
	}
	for d, byTech := range domainImprovementAcc {
		s.DomainImprovementMeans[d] = make(map[domain.Technique]float64, len(byTech))
		for tech, acc := range byTech {
			s.DomainImprovementMeans[d][tech] = acc.mean()
		}
	}

	return s
}

func promptKey(c domain.Case) string {
	return c.Domain + "\x00" + c.Prompt
}

func tally[K comparable](m map[K]map[domain.Status]int, key K, status domain.Status) {
	if m[key] == nil {
		m[key] = make(map[domain.Status]int)
	}
	m[key][status]++
}

// WriteTable renders the summary as an aligned text report: per-technique
// means (with a marker for techniques that produced no valid scores),
// improvements over baseline, and failure counts.
func (s *Summary) WriteTable(w io.Writer) {
	fmt.Fprintf(w, "HONESTY SCORE SUMMARY\n")
	fmt.Fprintf(w, "cases: %d total, %d ok, failure rate %.1f%%\n\n", s.TotalCases, s.OKCases, s.FailureRate*100)

	for _, tech := range domain.Techniques() {
		mean, ok := s.TechniqueMeans[tech]
		if !ok {
			if len(s.TechniqueFailures[tech]) > 0 {
				fmt.Fprintf(w, "%-18s no valid scores\n", tech)
			}
			continue
		}
		line := fmt.Sprintf("%-18s %5.1f", tech, mean)
		if improvement, ok := s.ImprovementMeans[tech]; ok {
			line += fmt.Sprintf("   (%+.1f vs baseline)", improvement)
		}
		fmt.Fprintln(w, line)
	}

	if len(s.DomainTechniqueMeans) > 0 {
		fmt.Fprintf(w, "\nPER-DOMAIN MEANS\n")
		for _, d := range sortedKeys(s.DomainTechniqueMeans) {
			for _, tech := range domain.Techniques() {
				if mean, ok := s.DomainTechniqueMeans[d][tech]; ok {
					fmt.Fprintf(w, "%-22s %-18s %5.1f\n", d, tech, mean)
				}
			}
		}
	}

	if s.TotalCases > s.OKCases {
		fmt.Fprintf(w, "\nFAILURES\n")
		for _, d := range sortedKeys(s.DomainFailures) {
			for status, n := range s.DomainFailures[d] {
				fmt.Fprintf(w, "%-22s %-18s %d\n", d, status, n)
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
