package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/tranche/internal/assemble"
	"github.com/Veraticus/tranche/internal/engine"
	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/scenario"
)

// ReviewNotice is shown next to records whose confidence is below the
// review threshold.
const ReviewNotice = "needs manual review"

var printer = message.NewPrinter(language.English)

// FormatAmount renders a currency amount with thousands separators. Zero
// renders as a dash because extraction writes zero for "not found".
func FormatAmount(v float64) string {
	if v == 0 {
		return "-"
	}
	return printer.Sprintf("$%d", int64(math.Round(v)))
}

// FormatPercent renders a percentage field; zero renders as a dash.
func FormatPercent(v float64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func field(label, value string) string {
	return LabelStyle.Render(label) + value
}

func confidenceLine(score, threshold int) string {
	line := fmt.Sprintf("%d/100", score)
	if score < threshold {
		return WarningStyle.Render(line + "  " + WarningIcon + " " + ReviewNotice)
	}
	return SuccessStyle.Render(line)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

func issuesBlock(issues []string) string {
	if len(issues) == 0 {
		return ""
	}
	lines := make([]string, 0, len(issues)+1)
	lines = append(lines, SubtitleStyle.Render("Issues"))
	for _, issue := range issues {
		lines = append(lines, "  • "+issue)
	}
	return strings.Join(lines, "\n")
}

// RenderClassification describes a classification on one line.
func RenderClassification(c model.Classification) string {
	return fmt.Sprintf("%s %s  confidence %.0f%%  %s",
		DocumentIcon,
		TitleStyle.UnsetMargins().Render(string(c.Type)),
		c.Confidence*100,
		SubtleStyle.Render(fmt.Sprintf("(new-issue score %d, surveillance score %d)", c.NewIssueScore, c.SurveillanceScore)))
}

// RenderDeal renders a new-issue deal with its capital structure.
func RenderDeal(d *model.NewIssueDeal, threshold int) string {
	lines := []string{
		field("Issuer", orDash(d.Issuer)),
		field("Deal type", orDash(d.DealType)),
		field("Sector", orDash(d.Sector)),
		field("Issuance date", orDash(d.IssuanceDate)),
		field("Total deal size", FormatAmount(d.TotalDealSize)+" "+d.Currency),
		field("Originator", orDash(d.Originator)),
		field("Servicer", orDash(d.Servicer)),
		field("Trustee", orDash(d.Trustee)),
		field("Rating agency", orDash(d.RatingAgency)),
		field("Expected CNL", fmt.Sprintf("%s - %s", FormatPercent(d.ExpectedCNLLow), FormatPercent(d.ExpectedCNLHigh))),
		field("Class A advance rate", FormatPercent(d.ClassAAdvanceRate)),
		field("Initial OC", FormatPercent(d.InitialOC)),
		field("Reserve account", FormatPercent(d.ReserveAccount)),
		field("Avg seasoning (months)", strconv.Itoa(d.AvgSeasoning)),
		field("Confidence", confidenceLine(d.ConfidenceScore, threshold)),
	}
	if d.ID != "" {
		lines = append([]string{field("ID", d.ID)}, lines...)
	}

	body := strings.Join(lines, "\n")
	if len(d.NoteClasses) > 0 {
		t := newTable("Class", "Balance", "Rate", "Expected", "Legal final", "Rating")
		for _, nc := range d.NoteClasses {
			t.Row(nc.ClassID, FormatAmount(nc.OriginalBalance), FormatPercent(nc.InterestRate),
				orDash(nc.ExpectedMaturity), orDash(nc.LegalFinalMaturity), orDash(nc.Rating))
		}
		body += "\n\n" + t.String()
	}
	if issues := issuesBlock(d.Issues); issues != "" {
		body += "\n\n" + issues
	}

	return RenderBox(DocumentIcon+" "+orDash(d.DealName), body)
}

// RenderReport renders a surveillance report with per-class performance.
func RenderReport(r *model.SurveillanceReport, threshold int) string {
	lines := []string{
		field("Report date", orDash(r.ReportDate)),
		field("Collection period", orDash(r.CollectionPeriod)),
		field("Pool balance", FormatAmount(r.PoolBalance)),
		field("Collections", FormatAmount(r.CollectionsAmount)),
		field("Charge-offs", FormatAmount(r.ChargeOffsAmount)),
		field("Delinquency 30/60/90", fmt.Sprintf("%s / %s / %s",
			FormatPercent(r.Delinquency30), FormatPercent(r.Delinquency60), FormatPercent(r.Delinquency90))),
		field("Cumulative losses", FormatAmount(r.CumulativeLosses)),
		field("Loss rate", FormatPercent(r.LossRate)),
		field("Prepayment rate", FormatPercent(r.PrepaymentRate)),
		field("Credit enhancement", FormatPercent(r.CreditEnhancementLevel)),
		field("Covenant compliance", complianceLine(r.CovenantCompliance)),
		field("Confidence", confidenceLine(r.ConfidenceScore, threshold)),
	}
	if r.ID != "" {
		lines = append([]string{field("ID", r.ID)}, lines...)
	}

	body := strings.Join(lines, "\n")
	if len(r.NoteClassPerformance) > 0 {
		t := newTable("Class", "Beginning", "Ending", "Principal paid", "Rate", "Rating")
		for _, p := range r.NoteClassPerformance {
			t.Row(p.ClassID, FormatAmount(p.BeginningBalance), FormatAmount(p.EndingBalance),
				FormatAmount(p.PrincipalPaid), FormatPercent(p.InterestRate), orDash(p.Rating))
		}
		body += "\n\n" + t.String()
	}
	if issues := issuesBlock(r.Issues); issues != "" {
		body += "\n\n" + issues
	}

	return RenderBox(ChartIcon+" "+orDash(r.DealIdentifier), body)
}

func complianceLine(status string) string {
	switch status {
	case assemble.Compliant:
		return SuccessStyle.Render(status)
	case assemble.Breach:
		return ErrorStyle.Render(status)
	}
	return orDash(status)
}

// RenderResult renders whichever record an extraction produced.
func RenderResult(res *model.ExtractionResult, threshold int) string {
	var record string
	switch {
	case res.Deal != nil:
		record = RenderDeal(res.Deal, threshold)
	case res.Report != nil:
		record = RenderReport(res.Report, threshold)
	}
	return RenderClassification(res.Classification) + "\n" + record
}

// RenderDealList renders stored deals as a table.
func RenderDealList(deals []model.NewIssueDeal, threshold int) string {
	if len(deals) == 0 {
		return FormatInfo("No deals stored")
	}
	t := newTable("ID", "Deal", "Sector", "Size ($MM)", "Classes", "Confidence")
	for i := range deals {
		d := &deals[i]
		t.Row(shortID(d.ID), orDash(d.DealName), orDash(d.Sector),
			strconv.FormatFloat(d.DealSize, 'f', 1, 64), strconv.Itoa(len(d.NoteClasses)),
			reviewCell(d.ConfidenceScore, threshold))
	}
	return t.String()
}

// RenderReportList renders stored surveillance reports as a table.
func RenderReportList(reports []model.SurveillanceReport, threshold int) string {
	if len(reports) == 0 {
		return FormatInfo("No surveillance reports stored")
	}
	t := newTable("ID", "Deal", "Report date", "Pool balance", "60+ DQ", "Confidence")
	for i := range reports {
		r := &reports[i]
		t.Row(shortID(r.ID), orDash(r.DealIdentifier), orDash(r.ReportDate),
			FormatAmount(r.PoolBalance), FormatPercent(r.Delinquency60),
			reviewCell(r.ConfidenceScore, threshold))
	}
	return t.String()
}

func reviewCell(score, threshold int) string {
	if score < threshold {
		return fmt.Sprintf("%d %s", score, WarningIcon)
	}
	return strconv.Itoa(score)
}

// shortID trims generated UUIDs for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RenderStress renders a stress test as a pass/fail table.
func RenderStress(res *scenario.StressResult) string {
	t := newTable("Scenario", "Multiple", "Stressed CNL", "Coverage", "Result")
	for _, o := range res.Outcomes {
		result := SuccessStyle.Render(SuccessIcon + " pass")
		if !o.Pass {
			result = ErrorStyle.Render(ErrorIcon + " fail")
		}
		t.Row(o.Name, fmt.Sprintf("%.1fx", o.Multiplier), fmt.Sprintf("%.2f%%", o.StressedCNL),
			fmt.Sprintf("%.2fx", o.Coverage), result)
	}

	body := strings.Join([]string{
		field("Base expected CNL", fmt.Sprintf("%.2f%%", res.BaseCNL)),
		field("Credit enhancement", fmt.Sprintf("%.2f%%", res.CreditEnhancement)),
		field("Breakeven multiple", fmt.Sprintf("%.2fx", res.BreakevenMultiple)),
	}, "\n") + "\n\n" + t.String() + "\n\n" + res.Reasoning

	return RenderBox(ChartIcon+" Stress test: "+orDash(res.DealName), body)
}

// RenderSimulation renders a Monte Carlo loss distribution summary.
func RenderSimulation(res *scenario.SimulationResult) string {
	breach := fmt.Sprintf("%.2f%%", res.BreachProbability*100)
	if res.BreachProbability > 0.05 {
		breach = WarningStyle.Render(breach)
	}
	return strings.Join([]string{
		TitleStyle.Render(fmt.Sprintf("Monte Carlo (%s paths, seed %d)", printer.Sprintf("%d", res.Simulations), res.Seed)),
		field("Mean CNL", fmt.Sprintf("%.2f%%", res.Mean)),
		field("Std deviation", fmt.Sprintf("%.2f%%", res.StdDev)),
		field("Median", fmt.Sprintf("%.2f%%", res.P50)),
		field("95th percentile", fmt.Sprintf("%.2f%%", res.P95)),
		field("99th percentile", fmt.Sprintf("%.2f%%", res.P99)),
		field("Worst path", fmt.Sprintf("%.2f%%", res.Max)),
		field("Breach probability", breach),
	}, "\n")
}

// RenderBatchSummary renders batch totals and any per-file failures.
func RenderBatchSummary(s *engine.BatchSummary) string {
	lines := []string{
		fmt.Sprintf("  • Files: %d", s.TotalFiles),
		fmt.Sprintf("  • New issue: %d", s.NewIssues),
		fmt.Sprintf("  • Surveillance: %d", s.Surveillance),
		fmt.Sprintf("  • Saved: %d", s.Saved),
		fmt.Sprintf("  • Time taken: %s", s.ProcessingTime.Round(time.Millisecond)),
	}
	if s.NeedsReview > 0 {
		lines = append(lines, WarningStyle.Render(fmt.Sprintf("  • %s: %d", ReviewNotice, s.NeedsReview)))
	}
	if s.FailedCount > 0 {
		lines = append(lines, ErrorStyle.Render(fmt.Sprintf("  • Failed: %d", s.FailedCount)))
		for _, r := range s.Results {
			if r.Err != nil {
				lines = append(lines, SubtleStyle.Render(fmt.Sprintf("      %s: %v", r.Path, r.Err)))
			}
		}
	}
	return RenderBox("Batch Complete", strings.Join(lines, "\n"))
}
