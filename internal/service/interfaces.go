// Package service defines the interfaces shared between the extraction
// engine and its collaborators.
package service

import (
	"context"

	"github.com/Veraticus/tranche/internal/model"
)

// DealFilter narrows deal listings. Zero values mean no constraint.
type DealFilter struct {
	Sector        string
	MinConfidence int
	Limit         int
	Offset        int
}

// ReportFilter narrows surveillance report listings.
type ReportFilter struct {
	DealIdentifier string
	Limit          int
	Offset         int
}

// RecordSink accepts assembled records. Implementations assign an ID to
// records that do not carry one.
type RecordSink interface {
	SaveDeal(ctx context.Context, deal *model.NewIssueDeal) error
	SaveSurveillance(ctx context.Context, report *model.SurveillanceReport) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	RecordSink

	// Deal operations
	GetDeal(ctx context.Context, id string) (*model.NewIssueDeal, error)
	ListDeals(ctx context.Context, filter DealFilter) ([]model.NewIssueDeal, error)
	DeleteDeal(ctx context.Context, id string) error

	// Surveillance operations
	GetSurveillance(ctx context.Context, id string) (*model.SurveillanceReport, error)
	ListSurveillance(ctx context.Context, filter ReportFilter) ([]model.SurveillanceReport, error)
	DeleteSurveillance(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TextSource turns a document on disk into plain text. Failures wrap
// common.ErrExtractionFailed; unknown formats wrap common.ErrUnsupportedFormat.
type TextSource interface {
	ExtractFile(ctx context.Context, path string) (string, error)
}

// Extractor is the core engine boundary.
type Extractor interface {
	ClassifyDocument(text string) model.Classification
	ExtractNewIssue(text, sourceID string) model.NewIssueDeal
	ExtractSurveillance(text, sourceID string) model.SurveillanceReport
	Extract(text, sourceID string) model.ExtractionResult
}
