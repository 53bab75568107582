package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/service"
)

const dealColumns = `id, deal_name, issuer, deal_type, issuance_date, total_deal_size, deal_size,
	currency, asset_type, originator, servicer, trustee, rating_agency, sector,
	class_a_advance_rate, initial_oc, expected_cnl_low, expected_cnl_high, reserve_account,
	avg_seasoning, top_obligor_conc, stated_class_count, confidence_score, issues,
	source_identifier, extracted_at`

// SaveDeal stores a deal and its note classes in one transaction. A deal
// without an ID is assigned a fresh UUID.
func (s *SQLiteStorage) SaveDeal(ctx context.Context, deal *model.NewIssueDeal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDeal(deal); err != nil {
		return err
	}

	// The record is only updated once the transaction has committed.
	id := deal.ID
	if id == "" {
		id = uuid.NewString()
	}
	extractedAt := deal.ExtractedAt
	if extractedAt.IsZero() {
		extractedAt = time.Now().UTC()
	}

	issues, err := marshalIssues(deal.Issues)
	if err != nil {
		return err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO deals (`+dealColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, deal.DealName, deal.Issuer, deal.DealType, deal.IssuanceDate,
			deal.TotalDealSize, deal.DealSize, deal.Currency, deal.AssetType, deal.Originator,
			deal.Servicer, deal.Trustee, deal.RatingAgency, deal.Sector,
			deal.ClassAAdvanceRate, deal.InitialOC, deal.ExpectedCNLLow, deal.ExpectedCNLHigh,
			deal.ReserveAccount, deal.AvgSeasoning, deal.TopObligorConc, deal.StatedClassCount,
			deal.ConfidenceScore, issues, deal.SourceIdentifier, extractedAt,
		)
		if err != nil {
			return mapConstraint(fmt.Errorf("failed to insert deal: %w", err), "deal "+id)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO note_classes (
				deal_id, class_id, original_balance, current_balance, interest_rate,
				expected_maturity, legal_final_maturity, rating, subordination_level,
				payment_priority, enhancement_level, confidence
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare note class statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, nc := range deal.NoteClasses {
			if _, err := stmt.ExecContext(ctx,
				id, nc.ClassID, nc.OriginalBalance, nc.CurrentBalance, nc.InterestRate,
				nc.ExpectedMaturity, nc.LegalFinalMaturity, nc.Rating, nc.SubordinationLevel,
				nc.PaymentPriority, nc.EnhancementLevel, nc.Confidence,
			); err != nil {
				return mapConstraint(fmt.Errorf("failed to insert note class %s: %w", nc.ClassID, err), "class "+nc.ClassID)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	deal.ID = id
	deal.ExtractedAt = extractedAt
	return nil
}

// GetDeal retrieves a deal and its note classes by ID.
func (s *SQLiteStorage) GetDeal(ctx context.Context, id string) (*model.NewIssueDeal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id)
	deal, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deal %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	classes, err := s.noteClasses(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	deal.NoteClasses = classes
	return deal, nil
}

// ListDeals returns deals ordered by extraction time, newest first.
func (s *SQLiteStorage) ListDeals(ctx context.Context, filter service.DealFilter) ([]model.NewIssueDeal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePage(filter.Limit, filter.Offset); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.Sector != "" {
		where = append(where, "sector = ?")
		args = append(args, filter.Sector)
	}
	if filter.MinConfidence > 0 {
		where = append(where, "confidence_score >= ?")
		args = append(args, filter.MinConfidence)
	}

	query := `SELECT ` + dealColumns + ` FROM deals`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY extracted_at DESC, id"
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deals []model.NewIssueDeal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deals: %w", err)
	}

	for i := range deals {
		classes, err := s.noteClasses(ctx, s.db, deals[i].ID)
		if err != nil {
			return nil, err
		}
		deals[i].NoteClasses = classes
	}
	return deals, nil
}

// DeleteDeal removes a deal. Its note classes cascade.
func (s *SQLiteStorage) DeleteDeal(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM deals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deal %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) noteClasses(ctx context.Context, q queryable, dealID string) ([]model.NoteClass, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT class_id, original_balance, current_balance, interest_rate,
			expected_maturity, legal_final_maturity, rating, subordination_level,
			payment_priority, enhancement_level, confidence
		FROM note_classes
		WHERE deal_id = ?
		ORDER BY class_id`, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query note classes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	classes := make([]model.NoteClass, 0)
	for rows.Next() {
		var nc model.NoteClass
		if err := rows.Scan(
			&nc.ClassID, &nc.OriginalBalance, &nc.CurrentBalance, &nc.InterestRate,
			&nc.ExpectedMaturity, &nc.LegalFinalMaturity, &nc.Rating, &nc.SubordinationLevel,
			&nc.PaymentPriority, &nc.EnhancementLevel, &nc.Confidence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan note class: %w", err)
		}
		classes = append(classes, nc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note classes: %w", err)
	}
	return classes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeal(sc scanner) (*model.NewIssueDeal, error) {
	var (
		deal   model.NewIssueDeal
		issues string
	)
	err := sc.Scan(
		&deal.ID, &deal.DealName, &deal.Issuer, &deal.DealType, &deal.IssuanceDate,
		&deal.TotalDealSize, &deal.DealSize, &deal.Currency, &deal.AssetType, &deal.Originator,
		&deal.Servicer, &deal.Trustee, &deal.RatingAgency, &deal.Sector,
		&deal.ClassAAdvanceRate, &deal.InitialOC, &deal.ExpectedCNLLow, &deal.ExpectedCNLHigh,
		&deal.ReserveAccount, &deal.AvgSeasoning, &deal.TopObligorConc, &deal.StatedClassCount,
		&deal.ConfidenceScore, &issues, &deal.SourceIdentifier, &deal.ExtractedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan deal: %w", err)
	}
	if deal.Issues, err = unmarshalIssues(issues); err != nil {
		return nil, err
	}
	return &deal, nil
}

func marshalIssues(issues []string) (string, error) {
	if issues == nil {
		issues = []string{}
	}
	data, err := json.Marshal(issues)
	if err != nil {
		return "", fmt.Errorf("failed to marshal issues: %w", err)
	}
	return string(data), nil
}

func unmarshalIssues(data string) ([]string, error) {
	issues := make([]string, 0)
	if data == "" {
		return issues, nil
	}
	if err := json.Unmarshal([]byte(data), &issues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
	}
	return issues, nil
}

// paginate appends LIMIT/OFFSET. SQLite needs a LIMIT before OFFSET, so
// -1 stands in for "no limit".
func paginate(query string, args []any, limit, offset int) (string, []any) {
	if limit == 0 && offset == 0 {
		return query, args
	}
	if limit == 0 {
		limit = -1
	}
	query += " LIMIT ? OFFSET ?"
	return query, append(args, limit, offset)
}
