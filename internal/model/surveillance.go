package model

import "time"

// NoteClassPerformance is the per-tranche view reported in a surveillance
// document.
type NoteClassPerformance struct {
	ClassID          string  `json:"class_id"`
	Rating           string  `json:"rating"`
	BeginningBalance float64 `json:"beginning_balance"`
	EndingBalance    float64 `json:"ending_balance"`
	PrincipalPaid    float64 `json:"principal_paid"`
	InterestRate     float64 `json:"interest_rate"`
	EnhancementLevel float64 `json:"enhancement_level"`
	Confidence       int     `json:"confidence"`
}

// SurveillanceReport is the record assembled from a periodic performance
// report on an already-issued deal.
type SurveillanceReport struct {
	ExtractedAt            time.Time              `json:"extracted_at"`
	ID                     string                 `json:"id,omitempty"`
	DealIdentifier         string                 `json:"deal_identifier"`
	ReportDate             string                 `json:"report_date"`
	CollectionPeriod       string                 `json:"collection_period"`
	CovenantCompliance     string                 `json:"covenant_compliance"`
	SourceIdentifier       string                 `json:"source_identifier"`
	NoteClassPerformance   []NoteClassPerformance `json:"note_class_performance"`
	Issues                 []string               `json:"issues"`
	PoolBalance            float64                `json:"pool_balance"`
	CollectionsAmount      float64                `json:"collections_amount"`
	ChargeOffsAmount       float64                `json:"charge_offs_amount"`
	Delinquency30          float64                `json:"delinquency_30"`
	Delinquency60          float64                `json:"delinquency_60"`
	Delinquency90          float64                `json:"delinquency_90"`
	CumulativeLosses       float64                `json:"cumulative_losses"`
	LossRate               float64                `json:"loss_rate"`
	PrepaymentRate         float64                `json:"prepayment_rate"`
	CreditEnhancementLevel float64                `json:"credit_enhancement_level"`
	ConfidenceScore        int                    `json:"confidence_score"`
}

// NeedsReview reports whether the record's confidence falls below threshold.
func (r *SurveillanceReport) NeedsReview(threshold int) bool {
	return r.ConfidenceScore < threshold
}

// ExtractionResult is the outcome of auto-detected extraction: the
// classification plus exactly one of Deal or Report.
type ExtractionResult struct {
	Deal           *NewIssueDeal       `json:"deal,omitempty"`
	Report         *SurveillanceReport `json:"report,omitempty"`
	Classification Classification      `json:"classification"`
}

// ConfidenceScore returns the confidence of whichever record is present.
func (r *ExtractionResult) ConfidenceScore() int {
	switch {
	case r.Deal != nil:
		return r.Deal.ConfidenceScore
	case r.Report != nil:
		return r.Report.ConfidenceScore
	}
	return 0
}

// Issues returns the advisory issues of whichever record is present.
func (r *ExtractionResult) Issues() []string {
	switch {
	case r.Deal != nil:
		return r.Deal.Issues
	case r.Report != nil:
		return r.Report.Issues
	}
	return nil
}
