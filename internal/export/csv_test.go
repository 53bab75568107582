package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tranche/internal/model"
)

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return rows
}

func column(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func TestWriteDeals(t *testing.T) {
	extracted := time.Date(2024, 5, 20, 14, 30, 0, 0, time.UTC)
	deals := []model.NewIssueDeal{
		{
			ID:              "deal-1",
			DealName:        "Acme Auto Receivables Trust 2024-1",
			Sector:          "Auto ABS",
			TotalDealSize:   1_000_000_000,
			DealSize:        1000,
			ExpectedCNLLow:  1.25,
			ConfidenceScore: 100,
			Issues:          []string{"first", "second"},
			NoteClasses:     []model.NoteClass{{ClassID: "A-1"}, {ClassID: "B"}},
			ExtractedAt:     extracted,
		},
		{ID: "deal-2", DealName: "Servicer, Inc. Trust"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(nil).WriteDeals(&buf, deals))

	rows := readCSV(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t, DealHeader, rows[0])

	first := rows[1]
	assert.Equal(t, "deal-1", first[column(DealHeader, "id")])
	assert.Equal(t, "1000000000", first[column(DealHeader, "total_deal_size")])
	assert.Equal(t, "1.25", first[column(DealHeader, "expected_cnl_low")])
	assert.Equal(t, "2", first[column(DealHeader, "class_count")])
	assert.Equal(t, "first; second", first[column(DealHeader, "issues")])
	assert.Equal(t, "2024-05-20T14:30:00Z", first[column(DealHeader, "extracted_at")])

	second := rows[2]
	assert.Equal(t, "Servicer, Inc. Trust", second[column(DealHeader, "deal_name")])
	assert.Empty(t, second[column(DealHeader, "extracted_at")])
	assert.Equal(t, "0", second[column(DealHeader, "class_count")])
}

func TestWriteReports(t *testing.T) {
	reports := []model.SurveillanceReport{{
		ID:                   "rep-1",
		DealIdentifier:       "Acme Auto Receivables Trust 2023-2",
		ReportDate:           "2024-04-15",
		PoolBalance:          50_000_000,
		Delinquency30:        1.2,
		CovenantCompliance:   "Compliant",
		ConfidenceScore:      79,
		NoteClassPerformance: []model.NoteClassPerformance{{ClassID: "A"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(nil).WriteReports(&buf, reports))

	rows := readCSV(t, &buf)
	require.Len(t, rows, 2)
	assert.Equal(t, ReportHeader, rows[0])
	assert.Equal(t, "50000000", rows[1][column(ReportHeader, "pool_balance")])
	assert.Equal(t, "1.2", rows[1][column(ReportHeader, "delinquency_30")])
	assert.Equal(t, "Compliant", rows[1][column(ReportHeader, "covenant_compliance")])
	assert.Equal(t, "1", rows[1][column(ReportHeader, "class_count")])
	assert.Equal(t, "79", rows[1][column(ReportHeader, "confidence_score")])
}

func TestWriteNoteClasses(t *testing.T) {
	deals := []model.NewIssueDeal{
		{
			ID:       "deal-1",
			DealName: "Trust 2024-1",
			NoteClasses: []model.NoteClass{
				{ClassID: "A-1", OriginalBalance: 400_000_000, InterestRate: 5.1, SubordinationLevel: 1, PaymentPriority: 1, Rating: "AAA(sf)"},
				{ClassID: "B", OriginalBalance: 50_000_000, SubordinationLevel: 2, PaymentPriority: 2},
			},
		},
		{ID: "deal-2", DealName: "No classes"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(nil).WriteNoteClasses(&buf, deals))

	rows := readCSV(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"deal-1", "Trust 2024-1", "A-1", "400000000", "0", "5.1", "", "", "AAA(sf)", "1", "1", "0"}, rows[1])
	assert.Equal(t, "B", rows[2][2])
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(nil).WriteDeals(&buf, nil))
	assert.Len(t, readCSV(t, &buf), 1)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	err := NewWriter(nil).WriteReports(failingWriter{}, []model.SurveillanceReport{{ID: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
