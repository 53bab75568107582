// Package assemble merges extracted field values and segmented note classes
// into the final typed records, filling domain defaults and scoring how much
// of each record came from the document itself.
package assemble

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Veraticus/tranche/internal/extract"
	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/patterns"
)

// Fields counted toward record confidence. Defaults never count.
var (
	NewIssueRequired = []string{
		"deal_name", "issuer", "deal_type", "issuance_date", "total_deal_size", "currency",
		"asset_type", "originator", "servicer", "trustee", "rating_agency",
	}
	SurveillanceRequired = []string{
		"deal_identifier", "report_date", "collection_period", "pool_balance", "collections_amount",
		"charge_offs_amount", "delinquency_30", "delinquency_60", "delinquency_90", "cumulative_losses",
		"loss_rate", "prepayment_rate", "credit_enhancement_level", "covenant_compliance",
	}
)

// Domain defaults that are not carried by a rule.
const (
	DefaultDealSize   = 100.0
	DefaultSector     = "Unknown"
	CNLSpread         = 1.0
	SmallDealSize     = 1e6
	ComplianceUnknown = "Unknown"
	Compliant         = "Compliant"
	Breach            = "Breach"
)

// Advisory issue texts.
const (
	IssueNoNoteClasses  = "No note classes found"
	IssueOneNoteClass   = "Only one note class found (ABS typically have multiple)"
	IssueSmallDeal      = "Deal size seems unusually small (<$1M)"
	IssueNoPoolBalance  = "Pool balance not found"
	IssueDelinquencies  = "Delinquency buckets not monotonic"
	IssueChargeOffs     = "Charge-offs exceed collections"
	issueMissingPrefix  = "Missing "
	issueCountMismatchF = "Stated class count (%d) differs from extracted count (%d)"
)

type sectorMatcher struct {
	re     *regexp.Regexp
	sector string
}

// Assembler builds records against a compiled library. It is safe for
// concurrent use.
type Assembler struct {
	lib     *patterns.Compiled
	sectors []sectorMatcher
}

// NewAssembler creates an assembler over lib.
func NewAssembler(lib *patterns.Compiled) *Assembler {
	a := &Assembler{lib: lib}
	for _, sk := range lib.SectorKeywords {
		kw := strings.TrimSpace(sk.Keyword)
		if kw == "" {
			continue
		}
		a.sectors = append(a.sectors, sectorMatcher{
			re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `(?:e?s)?\b`),
			sector: sk.Sector,
		})
	}
	return a
}

// resolver reads matched values and falls back to rule defaults.
type resolver struct {
	fields map[string]extract.Value
	rule   func(string) (patterns.CompiledRule, bool)
}

func (r resolver) matched(field string) bool {
	_, ok := r.fields[field]
	return ok
}

func (r resolver) value(field string) (extract.Value, bool) {
	if v, ok := r.fields[field]; ok {
		return v, true
	}
	if rule, ok := r.rule(field); ok {
		if v, ok := extract.DefaultValue(rule); ok {
			return v, true
		}
	}
	return extract.Value{}, false
}

func (r resolver) text(field string) string {
	v, _ := r.value(field)
	return v.Text
}

func (r resolver) number(field string) float64 {
	v, _ := r.value(field)
	return v.Number
}

func (r resolver) integer(field string) int {
	v, _ := r.value(field)
	return v.Int
}

func (r resolver) confidence(required []string) int {
	if len(required) == 0 {
		return 0
	}
	n := 0
	for _, f := range required {
		if r.matched(f) {
			n++
		}
	}
	score := int(math.Round(100 * float64(n) / float64(len(required))))
	return max(0, min(100, score))
}

// NewIssue assembles a new-issue deal. text is the full document and is used
// for sector inference and the stated class count.
func (a *Assembler) NewIssue(text, sourceID string, fields map[string]extract.Value, classes []model.NoteClass) model.NewIssueDeal {
	r := resolver{fields: fields, rule: a.lib.NewIssueRule}

	deal := model.NewIssueDeal{
		DealName:          r.text("deal_name"),
		Issuer:            r.text("issuer"),
		DealType:          r.text("deal_type"),
		IssuanceDate:      r.text("issuance_date"),
		Currency:          r.text("currency"),
		AssetType:         r.text("asset_type"),
		Originator:        r.text("originator"),
		Servicer:          r.text("servicer"),
		Trustee:           r.text("trustee"),
		RatingAgency:      r.text("rating_agency"),
		SourceIdentifier:  sourceID,
		ClassAAdvanceRate: r.number("class_a_advance_rate"),
		InitialOC:         r.number("initial_oc"),
		ExpectedCNLLow:    r.number("expected_cnl_low"),
		ReserveAccount:    r.number("reserve_account"),
		AvgSeasoning:      r.integer("avg_seasoning"),
		TopObligorConc:    r.number("top_obligor_conc"),
		NoteClasses:       make([]model.NoteClass, 0, len(classes)),
		Issues:            make([]string, 0),
	}
	deal.NoteClasses = append(deal.NoteClasses, classes...)

	if r.matched("expected_cnl_high") {
		deal.ExpectedCNLHigh = r.number("expected_cnl_high")
	} else {
		deal.ExpectedCNLHigh = deal.ExpectedCNLLow + CNLSpread
	}

	if r.matched("total_deal_size") {
		deal.TotalDealSize = r.number("total_deal_size")
		deal.DealSize = deal.TotalDealSize / 1e6
	} else {
		deal.DealSize = DefaultDealSize
		deal.TotalDealSize = DefaultDealSize * 1e6
	}

	deal.Sector = a.Sector(text, deal.DealName, deal.AssetType)
	if n, ok := extract.StatedClassCount(text, a.lib.ClassCount); ok {
		deal.StatedClassCount = n
	}
	deal.ConfidenceScore = r.confidence(NewIssueRequired)

	for _, f := range []string{"deal_name", "issuer"} {
		if !r.matched(f) {
			deal.Issues = append(deal.Issues, issueMissingPrefix+f)
		}
	}
	if r.matched("total_deal_size") && deal.TotalDealSize < SmallDealSize {
		deal.Issues = append(deal.Issues, IssueSmallDeal)
	}
	switch len(classes) {
	case 0:
		deal.Issues = append(deal.Issues, IssueNoNoteClasses)
	case 1:
		deal.Issues = append(deal.Issues, IssueOneNoteClass)
	}
	if deal.StatedClassCount > 0 && deal.StatedClassCount != len(classes) {
		deal.Issues = append(deal.Issues, fmt.Sprintf(issueCountMismatchF, deal.StatedClassCount, len(classes)))
	}

	return deal
}

// Surveillance assembles a surveillance report. Per-class performance is
// derived from the segmented classes: the original balance is read as the
// beginning balance and the current balance as the ending balance.
func (a *Assembler) Surveillance(sourceID string, fields map[string]extract.Value, classes []model.NoteClass) model.SurveillanceReport {
	r := resolver{fields: fields, rule: a.lib.SurveillanceRule}

	report := model.SurveillanceReport{
		DealIdentifier:         r.text("deal_identifier"),
		ReportDate:             r.text("report_date"),
		CollectionPeriod:       r.text("collection_period"),
		SourceIdentifier:       sourceID,
		PoolBalance:            r.number("pool_balance"),
		CollectionsAmount:      r.number("collections_amount"),
		ChargeOffsAmount:       r.number("charge_offs_amount"),
		Delinquency30:          r.number("delinquency_30"),
		Delinquency60:          r.number("delinquency_60"),
		Delinquency90:          r.number("delinquency_90"),
		CumulativeLosses:       r.number("cumulative_losses"),
		LossRate:               r.number("loss_rate"),
		PrepaymentRate:         r.number("prepayment_rate"),
		CreditEnhancementLevel: r.number("credit_enhancement_level"),
		CovenantCompliance:     ComplianceUnknown,
		NoteClassPerformance:   Performance(classes),
		Issues:                 make([]string, 0),
	}
	if r.matched("covenant_compliance") {
		report.CovenantCompliance = NormalizeCompliance(r.text("covenant_compliance"))
	} else if d := r.text("covenant_compliance"); d != "" {
		report.CovenantCompliance = d
	}
	report.ConfidenceScore = r.confidence(SurveillanceRequired)

	for _, f := range []string{"deal_identifier", "report_date"} {
		if !r.matched(f) {
			report.Issues = append(report.Issues, issueMissingPrefix+f)
		}
	}
	if !r.matched("pool_balance") {
		report.Issues = append(report.Issues, IssueNoPoolBalance)
	}
	if r.matched("delinquency_30") && r.matched("delinquency_60") && r.matched("delinquency_90") &&
		(report.Delinquency60 > report.Delinquency30 || report.Delinquency90 > report.Delinquency60) {
		report.Issues = append(report.Issues, IssueDelinquencies)
	}
	if r.matched("collections_amount") && r.matched("charge_offs_amount") &&
		report.ChargeOffsAmount > report.CollectionsAmount {
		report.Issues = append(report.Issues, IssueChargeOffs)
	}

	return report
}

// Performance converts segmented classes into surveillance performance rows.
func Performance(classes []model.NoteClass) []model.NoteClassPerformance {
	out := make([]model.NoteClassPerformance, 0, len(classes))
	for _, c := range classes {
		p := model.NoteClassPerformance{
			ClassID:          c.ClassID,
			Rating:           c.Rating,
			BeginningBalance: c.OriginalBalance,
			EndingBalance:    c.CurrentBalance,
			InterestRate:     c.InterestRate,
			EnhancementLevel: c.EnhancementLevel,
			Confidence:       c.Confidence,
		}
		if c.CurrentBalance > 0 {
			p.PrincipalPaid = math.Max(0, c.OriginalBalance-c.CurrentBalance)
		}
		out = append(out, p)
	}
	return out
}

// Sector infers the asset sector from the deal name and asset type first,
// then from the whole text.
func (a *Assembler) Sector(text, dealName, assetType string) string {
	for _, hay := range []string{dealName + " " + assetType, text} {
		for _, s := range a.sectors {
			if s.re.MatchString(hay) {
				return s.sector
			}
		}
	}
	return DefaultSector
}

// NormalizeCompliance maps a captured covenant status to Compliant or Breach.
func NormalizeCompliance(status string) string {
	s := strings.ToLower(strings.Join(strings.Fields(status), " "))
	switch {
	case s == "":
		return ComplianceUnknown
	case strings.HasPrefix(s, "no "):
		return Compliant
	case strings.Contains(s, "not"), strings.Contains(s, "fail"), strings.Contains(s, "breach"):
		return Breach
	default:
		return Compliant
	}
}
