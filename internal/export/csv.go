// Package export writes stored deals and surveillance reports as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/tranche/internal/model"
)

// DealHeader is the column order of WriteDeals.
var DealHeader = []string{
	"id",
	"deal_name",
	"issuer",
	"deal_type",
	"sector",
	"issuance_date",
	"currency",
	"total_deal_size",
	"deal_size_mm",
	"class_count",
	"stated_class_count",
	"class_a_advance_rate",
	"initial_oc",
	"expected_cnl_low",
	"expected_cnl_high",
	"reserve_account",
	"avg_seasoning",
	"originator",
	"servicer",
	"trustee",
	"rating_agency",
	"confidence_score",
	"issues",
	"source",
	"extracted_at",
}

// ReportHeader is the column order of WriteReports.
var ReportHeader = []string{
	"id",
	"deal_identifier",
	"report_date",
	"collection_period",
	"pool_balance",
	"collections_amount",
	"charge_offs_amount",
	"delinquency_30",
	"delinquency_60",
	"delinquency_90",
	"cumulative_losses",
	"loss_rate",
	"prepayment_rate",
	"credit_enhancement_level",
	"covenant_compliance",
	"class_count",
	"confidence_score",
	"issues",
	"source",
	"extracted_at",
}

// NoteClassHeader is the column order of WriteNoteClasses.
var NoteClassHeader = []string{
	"deal_id",
	"deal_name",
	"class_id",
	"original_balance",
	"current_balance",
	"interest_rate",
	"expected_maturity",
	"legal_final_maturity",
	"rating",
	"subordination_level",
	"payment_priority",
	"confidence",
}

// Writer renders records as CSV rows.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a CSV writer. A nil logger uses slog.Default.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// WriteDeals writes one row per deal, header first.
func (w *Writer) WriteDeals(out io.Writer, deals []model.NewIssueDeal) error {
	rows := make([][]string, 0, len(deals)+1)
	rows = append(rows, DealHeader)
	for i := range deals {
		rows = append(rows, dealRow(&deals[i]))
	}

	if err := writeAll(out, rows); err != nil {
		return fmt.Errorf("failed to write deals: %w", err)
	}
	w.logger.Info("exported deals", "rows", len(deals))
	return nil
}

// WriteReports writes one row per surveillance report, header first.
func (w *Writer) WriteReports(out io.Writer, reports []model.SurveillanceReport) error {
	rows := make([][]string, 0, len(reports)+1)
	rows = append(rows, ReportHeader)
	for i := range reports {
		rows = append(rows, reportRow(&reports[i]))
	}

	if err := writeAll(out, rows); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	w.logger.Info("exported surveillance reports", "rows", len(reports))
	return nil
}

// WriteNoteClasses flattens the capital structure of every deal into one
// row per class.
func (w *Writer) WriteNoteClasses(out io.Writer, deals []model.NewIssueDeal) error {
	rows := [][]string{NoteClassHeader}
	for i := range deals {
		d := &deals[i]
		for _, nc := range d.NoteClasses {
			rows = append(rows, []string{
				d.ID,
				d.DealName,
				nc.ClassID,
				formatFloat(nc.OriginalBalance),
				formatFloat(nc.CurrentBalance),
				formatFloat(nc.InterestRate),
				nc.ExpectedMaturity,
				nc.LegalFinalMaturity,
				nc.Rating,
				strconv.Itoa(nc.SubordinationLevel),
				strconv.Itoa(nc.PaymentPriority),
				strconv.Itoa(nc.Confidence),
			})
		}
	}

	if err := writeAll(out, rows); err != nil {
		return fmt.Errorf("failed to write note classes: %w", err)
	}
	w.logger.Info("exported note classes", "rows", len(rows)-1)
	return nil
}

func dealRow(d *model.NewIssueDeal) []string {
	return []string{
		d.ID,
		d.DealName,
		d.Issuer,
		d.DealType,
		d.Sector,
		d.IssuanceDate,
		d.Currency,
		formatFloat(d.TotalDealSize),
		formatFloat(d.DealSize),
		strconv.Itoa(len(d.NoteClasses)),
		strconv.Itoa(d.StatedClassCount),
		formatFloat(d.ClassAAdvanceRate),
		formatFloat(d.InitialOC),
		formatFloat(d.ExpectedCNLLow),
		formatFloat(d.ExpectedCNLHigh),
		formatFloat(d.ReserveAccount),
		strconv.Itoa(d.AvgSeasoning),
		d.Originator,
		d.Servicer,
		d.Trustee,
		d.RatingAgency,
		strconv.Itoa(d.ConfidenceScore),
		strings.Join(d.Issues, "; "),
		d.SourceIdentifier,
		formatTime(d.ExtractedAt),
	}
}

func reportRow(r *model.SurveillanceReport) []string {
	return []string{
		r.ID,
		r.DealIdentifier,
		r.ReportDate,
		r.CollectionPeriod,
		formatFloat(r.PoolBalance),
		formatFloat(r.CollectionsAmount),
		formatFloat(r.ChargeOffsAmount),
		formatFloat(r.Delinquency30),
		formatFloat(r.Delinquency60),
		formatFloat(r.Delinquency90),
		formatFloat(r.CumulativeLosses),
		formatFloat(r.LossRate),
		formatFloat(r.PrepaymentRate),
		formatFloat(r.CreditEnhancementLevel),
		r.CovenantCompliance,
		strconv.Itoa(len(r.NoteClassPerformance)),
		strconv.Itoa(r.ConfidenceScore),
		strings.Join(r.Issues, "; "),
		r.SourceIdentifier,
		formatTime(r.ExtractedAt),
	}
}

func writeAll(out io.Writer, rows [][]string) error {
	cw := csv.NewWriter(out)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// formatFloat avoids exponent notation so spreadsheets read raw amounts.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
