// Package classification decides whether a document is a new-issue offering
// or a surveillance report by scoring it against two weighted vocabularies.
package classification

import (
	"strings"

	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/patterns"
)

// Classifier scores documents against a compiled pattern library.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	newIssue      patterns.CompiledVocabulary
	surveillance  patterns.CompiledVocabulary
	normalization float64
}

// NewClassifier creates a classifier from the library's vocabularies.
func NewClassifier(lib *patterns.Compiled) *Classifier {
	return &Classifier{
		newIssue:      lib.NewIssueVocabulary,
		surveillance:  lib.SurveillanceVocabulary,
		normalization: lib.Normalization,
	}
}

// Classify scores text. Surveillance wins only on a strictly higher score,
// so ties (including empty text) classify as a new issue.
func (c *Classifier) Classify(text string) model.Classification {
	lowered := strings.ToLower(text)

	ni := Score(lowered, c.newIssue)
	sv := Score(lowered, c.surveillance)

	docType := model.DocumentNewIssue
	if sv > ni {
		docType = model.DocumentSurveillance
	}

	confidence := 0.0
	if c.normalization > 0 {
		confidence = minFloat(float64(ni+sv)/c.normalization, 1.0)
	}

	return model.Classification{
		Type:              docType,
		Confidence:        confidence,
		NewIssueScore:     ni,
		SurveillanceScore: sv,
	}
}

// Score sums weight × occurrence count for every term of vocab in lowered,
// plus each bonus whose terms all occur. lowered must already be lowercase.
func Score(lowered string, vocab patterns.CompiledVocabulary) int {
	score := 0
	for _, term := range vocab.Terms {
		score += term.Weight * strings.Count(lowered, term.Text)
	}
	for _, b := range vocab.Bonuses {
		if containsAll(lowered, b.AllOf) {
			score += b.Points
		}
	}
	return score
}

func containsAll(s string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}

// minFloat returns the minimum of two float64 values.
func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
