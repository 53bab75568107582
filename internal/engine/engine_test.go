package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tranche/internal/assemble"
	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/testutil"
)

func TestExtractNewIssueProspectus(t *testing.T) {
	e := New(nil)

	result := e.Extract(testutil.NewIssueProspectus, "acme-2024-1.pdf")

	assert.Equal(t, model.DocumentNewIssue, result.Classification.Type)
	assert.Equal(t, 22, result.Classification.NewIssueScore)
	assert.Equal(t, 2, result.Classification.SurveillanceScore)
	assert.InDelta(t, 1.0, result.Classification.Confidence, 0.0001)
	require.NotNil(t, result.Deal)
	assert.Nil(t, result.Report)

	deal := result.Deal
	assert.Equal(t, "acme-2024-1.pdf", deal.SourceIdentifier)
	assert.Equal(t, "Acme Auto Receivables Trust 2024-1", deal.DealName)
	assert.Equal(t, "Acme Auto Receivables Trust 2024-1", deal.Issuer)
	assert.Equal(t, "Asset Backed Notes", deal.DealType)
	assert.Equal(t, "2024-05-15", deal.IssuanceDate)
	assert.Equal(t, "USD", deal.Currency)
	assert.Equal(t, "Acme Financial Services Inc.", deal.Originator)
	assert.Equal(t, "Acme Financial Services Inc.", deal.Servicer)
	assert.Equal(t, "Wilmington Trust, National Association", deal.Trustee)
	assert.InDelta(t, 1e9, deal.TotalDealSize, 0.5)
	assert.InDelta(t, 1000.0, deal.DealSize, 0.0001)
	assert.Equal(t, "Auto ABS", deal.Sector)
	assert.InDelta(t, 1.25, deal.ExpectedCNLLow, 0.0001)
	assert.InDelta(t, 1.50, deal.ExpectedCNLHigh, 0.0001)
	assert.InDelta(t, 0.50, deal.ReserveAccount, 0.0001)
	assert.Equal(t, 18, deal.AvgSeasoning)
	assert.InDelta(t, 80.0, deal.ClassAAdvanceRate, 0.0001) // default
	assert.Equal(t, 4, deal.StatedClassCount)
	assert.Equal(t, 100, deal.ConfidenceScore)
	assert.Empty(t, deal.Issues)
	assert.True(t, deal.ExtractedAt.IsZero())

	require.Len(t, deal.NoteClasses, 4)
	ids := make([]string, 0, len(deal.NoteClasses))
	for _, nc := range deal.NoteClasses {
		ids = append(ids, nc.ClassID)
	}
	assert.Equal(t, []string{"A-1", "A-2", "B", "C"}, ids)

	a2 := deal.NoteClasses[1]
	assert.InDelta(t, 450000000.0, a2.OriginalBalance, 0.5)
	assert.InDelta(t, 5.32, a2.InterestRate, 0.0001)
	assert.Equal(t, "2027-06-15", a2.ExpectedMaturity)
	assert.Equal(t, "2027-08-15", a2.LegalFinalMaturity)
	assert.Equal(t, "AAA(sf)", a2.Rating)
	assert.Equal(t, 1, a2.SubordinationLevel)
}

func TestExtractSurveillanceReport(t *testing.T) {
	e := New(nil)

	result := e.Extract(testutil.SurveillanceReport, "acme-2023-2-apr.pdf")

	assert.Equal(t, model.DocumentSurveillance, result.Classification.Type)
	require.NotNil(t, result.Report)
	assert.Nil(t, result.Deal)

	r := result.Report
	assert.Equal(t, "Acme Auto Receivables Trust 2023-2", r.DealIdentifier)
	assert.Equal(t, "2024-04-15", r.ReportDate)
	assert.Equal(t, "March 2024", r.CollectionPeriod)
	assert.InDelta(t, 5e7, r.PoolBalance, 0.5)
	assert.InDelta(t, 5.23e6, r.CollectionsAmount, 0.5)
	assert.InDelta(t, 1.2e5, r.ChargeOffsAmount, 0.5)
	assert.InDelta(t, 1.20, r.Delinquency30, 0.0001)
	assert.InDelta(t, 0.45, r.Delinquency60, 0.0001)
	assert.InDelta(t, 0.20, r.Delinquency90, 0.0001)
	assert.InDelta(t, 0.85, r.LossRate, 0.0001)
	assert.Equal(t, assemble.Compliant, r.CovenantCompliance)
	assert.Equal(t, 79, r.ConfidenceScore) // 11 of 14
	assert.Empty(t, r.Issues)
	assert.NotNil(t, r.NoteClassPerformance)
	assert.Empty(t, r.NoteClassPerformance)
}

func TestExtractSurveillanceDerivesPerformance(t *testing.T) {
	r := New(nil).ExtractSurveillance(testutil.SurveillanceWithClasses, "report.txt")

	require.Len(t, r.NoteClassPerformance, 2)
	a := r.NoteClassPerformance[0]
	assert.Equal(t, "A", a.ClassID)
	assert.InDelta(t, 4e8, a.BeginningBalance, 0.5)
	assert.InDelta(t, 2.5e8, a.EndingBalance, 0.5)
	assert.InDelta(t, 1.5e8, a.PrincipalPaid, 0.5)
	assert.InDelta(t, 5.10, a.InterestRate, 0.0001)
	assert.Equal(t, "AAA(sf)", a.Rating)

	b := r.NoteClassPerformance[1]
	assert.Equal(t, "B", b.ClassID)
	assert.Zero(t, b.PrincipalPaid)
}

func TestSingleClassLine(t *testing.T) {
	deal := New(nil).ExtractNewIssue("Class A Notes $100,000,000 5.25% due January 15, 2030 KBRA AAA", "line")

	require.Len(t, deal.NoteClasses, 1)
	nc := deal.NoteClasses[0]
	assert.Equal(t, "A", nc.ClassID)
	assert.InDelta(t, 100000000.0, nc.OriginalBalance, 0.001)
	assert.InDelta(t, 5.25, nc.InterestRate, 0.0001)
	assert.Equal(t, "2030-01-15", nc.ExpectedMaturity)
	assert.Equal(t, "AAA", nc.Rating)
	assert.Equal(t, 1, nc.SubordinationLevel)
	assert.Contains(t, deal.Issues, assemble.IssueOneNoteClass)
}

func TestSurveillanceSentence(t *testing.T) {
	text := "Collections for the month of $5,230,000 and Charge-offs of $120,000, Pool Balance $50,000,000"

	result := New(nil).Extract(text, "s")

	assert.Equal(t, model.DocumentSurveillance, result.Classification.Type)
	require.NotNil(t, result.Report)
	assert.InDelta(t, 5230000.0, result.Report.CollectionsAmount, 0.5)
	assert.InDelta(t, 120000.0, result.Report.ChargeOffsAmount, 0.5)
	assert.InDelta(t, 50000000.0, result.Report.PoolBalance, 0.5)
}

func TestEmptyText(t *testing.T) {
	result := New(nil).Extract("", "empty")

	assert.Equal(t, model.DocumentNewIssue, result.Classification.Type)
	assert.Zero(t, result.Classification.Confidence)
	require.NotNil(t, result.Deal)

	deal := result.Deal
	assert.InDelta(t, 100.0, deal.DealSize, 0.0001)
	assert.Equal(t, "Unknown", deal.Sector)
	assert.NotNil(t, deal.NoteClasses)
	assert.Empty(t, deal.NoteClasses)
	assert.Zero(t, deal.ConfidenceScore)
	assert.Contains(t, deal.Issues, "Missing deal_name")
	assert.Contains(t, deal.Issues, assemble.IssueNoNoteClasses)
}

func TestScaleWord(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "amount of notes", text: "Ford Credit Auto Owner Trust 2024-A\n$1.70 billion Asset Backed Notes", want: 1.7e9},
		{name: "deal size with linking word", text: "Total deal size of $1.70 billion", want: 1.7e9},
		{name: "deal size in millions", text: "Total deal size (in millions): $500", want: 5e8},
		{name: "labelled deal size", text: "Deal Size: $1.70 billion", want: 1.7e9},
		{name: "aggregate principal in millions", text: "Aggregate principal amount in millions: $500", want: 5e8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := New(nil).ExtractNewIssue(tt.text, "deal")

			assert.InDelta(t, tt.want, deal.TotalDealSize, 1)
			assert.InDelta(t, tt.want/1e6, deal.DealSize, 0.001)
		})
	}
}

func TestRomanNumeralSeriesIsRejected(t *testing.T) {
	deal := New(nil).ExtractNewIssue("Class I Notes were referenced on page I.", "roman")

	for _, nc := range deal.NoteClasses {
		assert.NotEqual(t, "I", nc.ClassID)
	}
	assert.Empty(t, deal.NoteClasses)
}

func TestExtractAsOverridesDetection(t *testing.T) {
	e := New(nil)

	result := e.ExtractAs(model.DocumentSurveillance, testutil.NewIssueProspectus, "forced")

	assert.Equal(t, model.DocumentNewIssue, result.Classification.Type)
	assert.Nil(t, result.Deal)
	require.NotNil(t, result.Report)
	assert.Equal(t, "forced", result.Report.SourceIdentifier)
}

func TestExtractIsDeterministic(t *testing.T) {
	e := New(nil)

	for _, text := range []string{testutil.NewIssueProspectus, testutil.SurveillanceWithClasses, ""} {
		first := e.Extract(text, "doc")
		for range 3 {
			assert.Equal(t, first, e.Extract(text, "doc"))
		}
	}
}

func TestLibraryDefaultsToBuiltIn(t *testing.T) {
	e := New(nil)
	require.NotNil(t, e.Library())
	assert.NotEmpty(t, e.Library().Version)
}
