package classification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/patterns"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(patterns.MustDefault())

	tests := []struct {
		name       string
		text       string
		wantType   model.DocumentType
		wantNI     int
		wantSV     int
		confidence float64
	}{
		{
			name:     "empty text defaults to new issue",
			text:     "",
			wantType: model.DocumentNewIssue,
		},
		{
			name:       "surveillance amounts",
			text:       "Collections for the month of $5,230,000 and Charge-offs of $120,000, Pool Balance $50,000,000",
			wantType:   model.DocumentSurveillance,
			wantSV:     8,
			confidence: 0.4,
		},
		{
			name:       "offering memorandum with table of contents bonus",
			text:       "TABLE OF CONTENTS\nOffering Memorandum",
			wantType:   model.DocumentNewIssue,
			wantNI:     9,
			confidence: 0.45,
		},
		{
			name:       "tie favours new issue",
			text:       "prospectus collections",
			wantType:   model.DocumentNewIssue,
			wantNI:     3,
			wantSV:     3,
			confidence: 0.3,
		},
		{
			name:       "confidence is capped",
			text:       strings.Repeat("servicer report ", 10),
			wantType:   model.DocumentSurveillance,
			wantSV:     30,
			confidence: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantNI, got.NewIssueScore)
			assert.Equal(t, tt.wantSV, got.SurveillanceScore)
			assert.InDelta(t, tt.confidence, got.Confidence, 0.0001)
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	c := NewClassifier(patterns.MustDefault())

	text := "Prospectus supplement. Collections $1,000 and charge-offs $20 for the collection period."
	base := c.Classify(text)
	require.Equal(t, model.DocumentSurveillance, base.Type)

	for i := 1; i <= 5; i++ {
		text += " Additional charge-offs were recorded."
		got := c.Classify(text)
		assert.Equal(t, model.DocumentSurveillance, got.Type)
		assert.Greater(t, got.SurveillanceScore, base.SurveillanceScore)
		assert.Equal(t, base.NewIssueScore, got.NewIssueScore)
		assert.GreaterOrEqual(t, got.Confidence, base.Confidence)
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := NewClassifier(patterns.MustDefault())

	upper := c.Classify("MONTHLY SERVICER REPORT: DISTRIBUTION DATE AND COLLECTION PERIOD")
	lower := c.Classify("monthly servicer report: distribution date and collection period")
	assert.Equal(t, lower, upper)
	assert.Equal(t, model.DocumentSurveillance, upper.Type)
}

func TestScoreCountsOccurrencesAndBonuses(t *testing.T) {
	vocab := patterns.CompiledVocabulary{
		Terms: []patterns.Term{{Text: "alpha", Weight: 2}, {Text: "beta", Weight: 1}},
		Bonuses: []patterns.Bonus{
			{AllOf: []string{"alpha", "gamma"}, Points: 5},
			{AllOf: []string{"alpha", "beta"}, Points: 3},
		},
	}

	assert.Equal(t, 0, Score("", vocab))
	assert.Equal(t, 4, Score("alpha alpha", vocab))
	assert.Equal(t, 2+1+3, Score("alpha beta", vocab))
	assert.Equal(t, 2+5, Score("alpha gamma", vocab))
}

func TestCustomNormalization(t *testing.T) {
	lib := patterns.Default()
	lib.Normalization = 100
	compiled, err := patterns.Compile(lib)
	require.NoError(t, err)

	got := NewClassifier(compiled).Classify("prospectus prospectus")
	assert.InDelta(t, 0.06, got.Confidence, 0.0001)
}
