package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/service"
)

const reportColumns = `id, deal_identifier, report_date, collection_period, pool_balance,
	collections_amount, charge_offs_amount, delinquency_30, delinquency_60, delinquency_90,
	cumulative_losses, loss_rate, prepayment_rate, credit_enhancement_level,
	covenant_compliance, confidence_score, issues, source_identifier, extracted_at`

// SaveSurveillance stores a report and its per-class performance rows.
func (s *SQLiteStorage) SaveSurveillance(ctx context.Context, report *model.SurveillanceReport) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReport(report); err != nil {
		return err
	}

	// The record is only updated once the transaction has committed.
	id := report.ID
	if id == "" {
		id = uuid.NewString()
	}
	extractedAt := report.ExtractedAt
	if extractedAt.IsZero() {
		extractedAt = time.Now().UTC()
	}

	issues, err := marshalIssues(report.Issues)
	if err != nil {
		return err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO surveillance_reports (`+reportColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, report.DealIdentifier, report.ReportDate, report.CollectionPeriod,
			report.PoolBalance, report.CollectionsAmount, report.ChargeOffsAmount,
			report.Delinquency30, report.Delinquency60, report.Delinquency90,
			report.CumulativeLosses, report.LossRate, report.PrepaymentRate,
			report.CreditEnhancementLevel, report.CovenantCompliance, report.ConfidenceScore,
			issues, report.SourceIdentifier, extractedAt,
		)
		if err != nil {
			return mapConstraint(fmt.Errorf("failed to insert report: %w", err), "report "+id)
		}

		for _, p := range report.NoteClassPerformance {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO note_class_performance (
					report_id, class_id, rating, beginning_balance, ending_balance,
					principal_paid, interest_rate, enhancement_level, confidence
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, p.ClassID, p.Rating, p.BeginningBalance, p.EndingBalance,
				p.PrincipalPaid, p.InterestRate, p.EnhancementLevel, p.Confidence,
			); err != nil {
				return mapConstraint(fmt.Errorf("failed to insert performance %s: %w", p.ClassID, err), "class "+p.ClassID)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	report.ID = id
	report.ExtractedAt = extractedAt
	return nil
}

// GetSurveillance retrieves a report by ID.
func (s *SQLiteStorage) GetSurveillance(ctx context.Context, id string) (*model.SurveillanceReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	report, err := scanReport(s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM surveillance_reports WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("surveillance report %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if report.NoteClassPerformance, err = s.performance(ctx, s.db, id); err != nil {
		return nil, err
	}
	return report, nil
}

// ListSurveillance returns reports ordered by report date, newest first.
func (s *SQLiteStorage) ListSurveillance(ctx context.Context, filter service.ReportFilter) ([]model.SurveillanceReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePage(filter.Limit, filter.Offset); err != nil {
		return nil, err
	}

	query := `SELECT ` + reportColumns + ` FROM surveillance_reports`
	var args []any
	if filter.DealIdentifier != "" {
		query += " WHERE deal_identifier = ?"
		args = append(args, filter.DealIdentifier)
	}
	query += " ORDER BY report_date DESC, extracted_at DESC, id"
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query surveillance reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []model.SurveillanceReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating surveillance reports: %w", err)
	}

	for i := range reports {
		if reports[i].NoteClassPerformance, err = s.performance(ctx, s.db, reports[i].ID); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// DeleteSurveillance removes a report and its performance rows.
func (s *SQLiteStorage) DeleteSurveillance(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM surveillance_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete surveillance report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("surveillance report %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) performance(ctx context.Context, q queryable, reportID string) ([]model.NoteClassPerformance, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT class_id, rating, beginning_balance, ending_balance, principal_paid,
			interest_rate, enhancement_level, confidence
		FROM note_class_performance
		WHERE report_id = ?
		ORDER BY class_id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	perf := make([]model.NoteClassPerformance, 0)
	for rows.Next() {
		var p model.NoteClassPerformance
		if err := rows.Scan(
			&p.ClassID, &p.Rating, &p.BeginningBalance, &p.EndingBalance, &p.PrincipalPaid,
			&p.InterestRate, &p.EnhancementLevel, &p.Confidence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance: %w", err)
		}
		perf = append(perf, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating performance: %w", err)
	}
	return perf, nil
}

func scanReport(sc scanner) (*model.SurveillanceReport, error) {
	var (
		report model.SurveillanceReport
		issues string
	)
	err := sc.Scan(
		&report.ID, &report.DealIdentifier, &report.ReportDate, &report.CollectionPeriod,
		&report.PoolBalance, &report.CollectionsAmount, &report.ChargeOffsAmount,
		&report.Delinquency30, &report.Delinquency60, &report.Delinquency90,
		&report.CumulativeLosses, &report.LossRate, &report.PrepaymentRate,
		&report.CreditEnhancementLevel, &report.CovenantCompliance, &report.ConfidenceScore,
		&issues, &report.SourceIdentifier, &report.ExtractedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan surveillance report: %w", err)
	}
	if report.Issues, err = unmarshalIssues(issues); err != nil {
		return nil, err
	}
	return &report, nil
}
