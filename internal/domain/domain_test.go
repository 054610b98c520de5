package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTechnique(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Technique
		wantErr bool
	}{
		{name: "canonical baseline", input: "baseline", want: TechniqueBaseline},
		{name: "canonical chain of thought", input: "chain_of_thought", want: TechniqueChainOfThought},
		{name: "hyphenated spelling", input: "chain-of-thought", want: TechniqueChainOfThought},
		{name: "mixed case", input: "Two_Shot", want: TechniqueTwoShot},
		{name: "surrounding whitespace", input: "  socratic ", want: TechniqueSocratic},
		{name: "precision", input: "precision", want: TechniquePrecision},
		{name: "unknown technique", input: "few_shot", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTechnique(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownTechnique)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTechniquesClosedSet(t *testing.T) {
	all := Techniques()
	assert.Len(t, all, 5)
	assert.Equal(t, TechniqueBaseline, all[0], "baseline must be first for aggregation anchoring")

	for _, tech := range all {
		assert.True(t, tech.Valid(), "canonical technique %q must be valid", tech)
	}
	assert.False(t, Technique("zero_shot").Valid())
}

func TestCaseKeyUniqueness(t *testing.T) {
	a := Case{Domain: "history", Prompt: "p1", Technique: TechniqueBaseline}
	b := Case{Domain: "history", Prompt: "p1", Technique: TechniquePrecision}
	c := Case{Domain: "history", Prompt: "p2", Technique: TechniqueBaseline}

	assert.NotEqual(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Equal(t, a.Key(), Case{Domain: "history", Prompt: "p1", Technique: TechniqueBaseline}.Key())
}

func TestCaseValidate(t *testing.T) {
	valid := Case{Domain: "history", Prompt: "Who?", Technique: TechniqueBaseline}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name string
		c    Case
	}{
		{name: "empty domain", c: Case{Prompt: "p", Technique: TechniqueBaseline}},
		{name: "empty prompt", c: Case{Domain: "d", Technique: TechniqueBaseline}},
		{name: "unknown technique", c: Case{Domain: "d", Prompt: "p", Technique: "bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.c.Validate(), ErrInvalidCase)
		})
	}
}

func TestRecordValidate(t *testing.T) {
	score := 88
	base := Case{Domain: "obscure_history", Prompt: "Who proposed it?", Technique: TechniqueBaseline}

	t.Run("ok record with score", func(t *testing.T) {
		r := Record{
			Case:   base,
			Result: PipelineResult{OriginalPrompt: base.Prompt, HonestyScore: &score},
			Status: StatusOK,
		}
		require.NoError(t, r.Validate())
	})

	t.Run("ok record without score is invalid", func(t *testing.T) {
		r := Record{Case: base, Status: StatusOK}
		assert.ErrorIs(t, r.Validate(), ErrInvalidRecord)
	})

	t.Run("parse_failed with score is invalid", func(t *testing.T) {
		r := Record{
			Case:   base,
			Result: PipelineResult{HonestyScore: &score},
			Status: StatusParseFailed,
		}
		assert.ErrorIs(t, r.Validate(), ErrInvalidRecord)
	})

	t.Run("score out of range", func(t *testing.T) {
		bad := 101
		r := Record{
			Case:   base,
			Result: PipelineResult{HonestyScore: &bad},
			Status: StatusOK,
		}
		err := r.Validate()
		assert.ErrorIs(t, err, ErrInvalidRecord)
		assert.ErrorIs(t, err, ErrScoreOutOfRange)
	})

	t.Run("unknown status", func(t *testing.T) {
		r := Record{Case: base, Status: "exploded"}
		assert.ErrorIs(t, r.Validate(), ErrInvalidRecord)
	})

	t.Run("provider_failed without score is valid", func(t *testing.T) {
		r := Record{Case: base, Status: StatusProviderFailed, FailureReason: "rate limited"}
		require.NoError(t, r.Validate())
	})
}
