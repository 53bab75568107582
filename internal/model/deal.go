package model

import (
	"strings"
	"time"
)

// NoteClass represents one tranche of a securitization.
type NoteClass struct {
	ClassID            string  `json:"class_id"`
	ExpectedMaturity   string  `json:"expected_maturity"`
	LegalFinalMaturity string  `json:"legal_final_maturity"`
	Rating             string  `json:"rating"`
	OriginalBalance    float64 `json:"original_balance"`
	CurrentBalance     float64 `json:"current_balance"`
	InterestRate       float64 `json:"interest_rate"`
	EnhancementLevel   float64 `json:"enhancement_level"`
	SubordinationLevel int     `json:"subordination_level"`
	PaymentPriority    int     `json:"payment_priority"`
	Confidence         int     `json:"confidence"`
}

// SeniorityFromClassID maps the leading letter of a class id to its
// subordination level: A is most senior (1) through D (4); anything else is 5.
func SeniorityFromClassID(classID string) int {
	id := strings.ToUpper(strings.TrimSpace(classID))
	if id == "" {
		return 5
	}
	switch id[0] {
	case 'A':
		return 1
	case 'B':
		return 2
	case 'C':
		return 3
	case 'D':
		return 4
	default:
		return 5
	}
}

// NewIssueDeal is the record assembled from a new-issue offering document.
// DealSize is expressed in millions; TotalDealSize is the raw amount.
type NewIssueDeal struct {
	ExtractedAt       time.Time   `json:"extracted_at"`
	ID                string      `json:"id,omitempty"`
	DealName          string      `json:"deal_name"`
	Issuer            string      `json:"issuer"`
	DealType          string      `json:"deal_type"`
	IssuanceDate      string      `json:"issuance_date"`
	Currency          string      `json:"currency"`
	AssetType         string      `json:"asset_type"`
	Originator        string      `json:"originator"`
	Servicer          string      `json:"servicer"`
	Trustee           string      `json:"trustee"`
	RatingAgency      string      `json:"rating_agency"`
	Sector            string      `json:"sector"`
	SourceIdentifier  string      `json:"source_identifier"`
	NoteClasses       []NoteClass `json:"note_classes"`
	Issues            []string    `json:"issues"`
	TotalDealSize     float64     `json:"total_deal_size"`
	DealSize          float64     `json:"deal_size"`
	ClassAAdvanceRate float64     `json:"class_a_advance_rate"`
	InitialOC         float64     `json:"initial_oc"`
	ExpectedCNLLow    float64     `json:"expected_cnl_low"`
	ExpectedCNLHigh   float64     `json:"expected_cnl_high"`
	ReserveAccount    float64     `json:"reserve_account"`
	TopObligorConc    float64     `json:"top_obligor_conc"`
	AvgSeasoning      int         `json:"avg_seasoning"`
	StatedClassCount  int         `json:"stated_class_count"`
	ConfidenceScore   int         `json:"confidence_score"`
}

// NeedsReview reports whether the record's confidence falls below threshold.
func (d *NewIssueDeal) NeedsReview(threshold int) bool {
	return d.ConfidenceScore < threshold
}
