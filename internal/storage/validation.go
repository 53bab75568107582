// Package storage provides the SQLite persistence layer for extracted deals
// and surveillance reports.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tranche/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidDeal     = errors.New("invalid deal")
	ErrInvalidReport   = errors.New("invalid surveillance report")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrInvalidClassRow = errors.New("invalid note class")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDeal validates a deal before it is written.
func validateDeal(deal *model.NewIssueDeal) error {
	if deal == nil {
		return fmt.Errorf("%w: deal", ErrNilParameter)
	}
	if deal.ConfidenceScore < 0 || deal.ConfidenceScore > 100 {
		return fmt.Errorf("%w: confidence %d out of range", ErrInvalidDeal, deal.ConfidenceScore)
	}
	seen := make(map[string]bool, len(deal.NoteClasses))
	for i, nc := range deal.NoteClasses {
		if nc.ClassID == "" {
			return fmt.Errorf("%w: note class at index %d: missing class id", ErrInvalidClassRow, i)
		}
		if seen[nc.ClassID] {
			return fmt.Errorf("%w: duplicate class id %q", ErrInvalidClassRow, nc.ClassID)
		}
		seen[nc.ClassID] = true
	}
	return nil
}

// validateReport validates a surveillance report before it is written.
func validateReport(report *model.SurveillanceReport) error {
	if report == nil {
		return fmt.Errorf("%w: report", ErrNilParameter)
	}
	if report.ConfidenceScore < 0 || report.ConfidenceScore > 100 {
		return fmt.Errorf("%w: confidence %d out of range", ErrInvalidReport, report.ConfidenceScore)
	}
	seen := make(map[string]bool, len(report.NoteClassPerformance))
	for i, p := range report.NoteClassPerformance {
		if p.ClassID == "" {
			return fmt.Errorf("%w: performance row at index %d: missing class id", ErrInvalidClassRow, i)
		}
		if seen[p.ClassID] {
			return fmt.Errorf("%w: duplicate class id %q", ErrInvalidClassRow, p.ClassID)
		}
		seen[p.ClassID] = true
	}
	return nil
}

// validatePage ensures limit and offset are usable.
func validatePage(limit, offset int) error {
	if limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidFilter)
	}
	if offset < 0 {
		return fmt.Errorf("%w: negative offset", ErrInvalidFilter)
	}
	return nil
}
