// Package engine ties the classifier, extractor, segmenter and assembler
// together behind a single immutable extraction engine.
package engine

import (
	"log/slog"

	"github.com/Veraticus/tranche/internal/assemble"
	"github.com/Veraticus/tranche/internal/classification"
	"github.com/Veraticus/tranche/internal/extract"
	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/patterns"
	"github.com/Veraticus/tranche/internal/segment"
	"github.com/Veraticus/tranche/internal/service"
)

// Engine extracts typed records from document text. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	lib        *patterns.Compiled
	classifier *classification.Classifier
	segmenter  *segment.Segmenter
	assembler  *assemble.Assembler
}

var _ service.Extractor = (*Engine)(nil)

// New creates an engine over a compiled pattern library. A nil library
// selects the built-in one.
func New(lib *patterns.Compiled) *Engine {
	if lib == nil {
		lib = patterns.MustDefault()
	}
	return &Engine{
		lib:        lib,
		classifier: classification.NewClassifier(lib),
		segmenter:  segment.NewSegmenter(lib),
		assembler:  assemble.NewAssembler(lib),
	}
}

// Library returns the compiled library the engine was built with.
func (e *Engine) Library() *patterns.Compiled {
	return e.lib
}

// ClassifyDocument scores text against both vocabularies.
func (e *Engine) ClassifyDocument(text string) model.Classification {
	return e.classifier.Classify(text)
}

// ExtractNewIssue runs the new-issue rule set and the segmenter over text.
func (e *Engine) ExtractNewIssue(text, sourceID string) model.NewIssueDeal {
	fields := extract.Fields(text, e.lib.NewIssue)
	classes := e.segmenter.Segment(text)
	return e.assembler.NewIssue(text, sourceID, fields, classes)
}

// ExtractSurveillance runs the surveillance rule set and derives per-class
// performance from the segmenter.
func (e *Engine) ExtractSurveillance(text, sourceID string) model.SurveillanceReport {
	fields := extract.Fields(text, e.lib.Surveillance)
	classes := e.segmenter.Segment(text)
	return e.assembler.Surveillance(sourceID, fields, classes)
}

// Extract classifies text and extracts the matching record.
func (e *Engine) Extract(text, sourceID string) model.ExtractionResult {
	c := e.ClassifyDocument(text)
	return e.extractAs(c, c.Type, text, sourceID)
}

// ExtractAs extracts text as docType regardless of what classification would
// choose. The returned Classification still reports the vocabulary scores.
func (e *Engine) ExtractAs(docType model.DocumentType, text, sourceID string) model.ExtractionResult {
	return e.extractAs(e.ClassifyDocument(text), docType, text, sourceID)
}

func (e *Engine) extractAs(c model.Classification, docType model.DocumentType, text, sourceID string) model.ExtractionResult {
	result := model.ExtractionResult{Classification: c}

	switch docType {
	case model.DocumentSurveillance:
		report := e.ExtractSurveillance(text, sourceID)
		result.Report = &report
	default:
		deal := e.ExtractNewIssue(text, sourceID)
		result.Deal = &deal
	}

	slog.Debug("Extracted document",
		"source", sourceID,
		"type", docType,
		"classified_as", c.Type,
		"classification_confidence", c.Confidence,
		"confidence_score", result.ConfidenceScore(),
		"issues", len(result.Issues()))

	return result
}
