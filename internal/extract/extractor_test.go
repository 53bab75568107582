package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/patterns"
)

func rule(t *testing.T, kind model.ValueKind, regexes ...string) patterns.CompiledRule {
	t.Helper()
	pats := make([]patterns.FieldPattern, 0, len(regexes))
	for _, r := range regexes {
		pats = append(pats, patterns.FieldPattern{Regex: r})
	}
	lib := &patterns.Library{NewIssue: []patterns.ExtractionRule{{Field: "f", Kind: kind, Patterns: pats}}}
	c, err := patterns.Compile(lib)
	require.NoError(t, err)
	return c.NewIssue[0]
}

func TestCoerceCurrency(t *testing.T) {
	tests := []struct {
		name    string
		capture string
		span    string
		want    float64
		ok      bool
	}{
		{name: "plain dollars", capture: "$100,000,000", span: "$100,000,000", want: 100000000, ok: true},
		{name: "billion", capture: "$1.70 billion", span: "deal of $1.70 billion", want: 1700000000, ok: true},
		{name: "million", capture: "$450 million", span: "$450 million", want: 450000000, ok: true},
		{name: "mm", capture: "$12.5mm", span: "$12.5 mm", want: 12500000, ok: true},
		{name: "bn", capture: "$2bn", span: "$2 bn", want: 2000000000, ok: true},
		{name: "thousand", capture: "$75 thousand", span: "$75 thousand", want: 75000, ok: true},
		{name: "k suffix", capture: "$250k", span: "$250k", want: 250000, ok: true},
		{name: "usd prefix", capture: "USD 5,000", span: "USD 5,000", want: 5000, ok: true},
		{name: "trailing comma", capture: "$120,000,", span: "$120,000,", want: 120000, ok: true},
		{name: "scale word elsewhere in span", capture: "$5", span: "in millions: $5", want: 5000000, ok: true},
		{name: "plural billions", capture: "$2", span: "($ in billions) $2", want: 2000000000, ok: true},
		{name: "plural thousands", capture: "$75", span: "in thousands: $75", want: 75000, ok: true},
		{name: "not a number", capture: "N/A", span: "N/A", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Coerce(model.KindCurrency, tt.capture, tt.span)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, v.Number, 0.001)
			}
		})
	}
}

func TestCoerceOtherKinds(t *testing.T) {
	v, ok := Coerce(model.KindPercentage, "5.25", "5.25%")
	require.True(t, ok)
	assert.InDelta(t, 5.25, v.Number, 0.0001)
	assert.Equal(t, "5.25", v.Text)

	_, ok = Coerce(model.KindPercentage, "n/a", "n/a %")
	assert.False(t, ok)

	v, ok = Coerce(model.KindInteger, " 1,024 ", "")
	require.True(t, ok)
	assert.Equal(t, 1024, v.Int)

	_, ok = Coerce(model.KindInteger, "twelve", "")
	assert.False(t, ok)

	v, ok = Coerce(model.KindText, "  Ford   Credit\n Company LLC, ", "")
	require.True(t, ok)
	assert.Equal(t, "Ford Credit Company LLC", v.Text)

	_, ok = Coerce(model.KindText, "  ", "")
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "01/15/2030", want: "2030-01-15", ok: true},
		{in: "1/5/2030", want: "2030-01-05", ok: true},
		{in: "01-15-2030", want: "2030-01-15", ok: true},
		{in: "2030-01-15", want: "2030-01-15", ok: true},
		{in: "January 15, 2030", want: "2030-01-15", ok: true},
		{in: "JANUARY 15, 2030", want: "2030-01-15", ok: true},
		{in: "Jan. 15, 2030", want: "2030-01-15", ok: true},
		{in: "Sept. 3, 2027", want: "2027-09-03", ok: true},
		{in: "March 1 2026", want: "2026-03-01", ok: true},
		{in: "13/45/2030", ok: false},
		{in: "soon", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldFirstMatchWins(t *testing.T) {
	r := rule(t, model.KindPercentage,
		`coupon\s+(\d+(?:\.\d+)?)%`,
		`rate\s+(\d+(?:\.\d+)?)%`,
	)

	v, ok := Field("rate 4.00% and coupon 5.50%", r)
	require.True(t, ok)
	assert.InDelta(t, 5.50, v.Number, 0.0001)
	assert.Equal(t, 0, v.Pattern)

	v, ok = Field("rate 4.00% only", r)
	require.True(t, ok)
	assert.InDelta(t, 4.00, v.Number, 0.0001)
	assert.Equal(t, 1, v.Pattern)

	_, ok = Field("nothing here", r)
	assert.False(t, ok)
}

func TestFieldCurrencyPrefersLargest(t *testing.T) {
	r := rule(t, model.KindCurrency,
		`size\s+(\$[\d,.]+)`,
		`total\s+(\$[\d,.]+(?:\s*billion)?)`,
	)

	v, ok := Field("size $1.70 ... total $1.70 billion", r)
	require.True(t, ok)
	assert.InDelta(t, 1.7e9, v.Number, 1)
	assert.Equal(t, 1, v.Pattern)

	v, ok = Field("size $500 total $400", r)
	require.True(t, ok)
	assert.InDelta(t, 500.0, v.Number, 0.001)
	assert.Equal(t, 0, v.Pattern)
}

func TestFieldMalformedCaptureFallsThrough(t *testing.T) {
	r := rule(t, model.KindDate,
		`maturity:\s*(\S+)`,
		`due\s+(\d{1,2}/\d{1,2}/\d{4})`,
	)

	v, ok := Field("maturity: TBD, due 02/15/2031", r)
	require.True(t, ok)
	assert.Equal(t, "2031-02-15", v.Text)
	assert.Equal(t, 1, v.Pattern)
}

func TestFieldLaterMatchOfSamePattern(t *testing.T) {
	r := rule(t, model.KindDate, `(\d{1,2}/\d{1,2}/\d{4})`)

	v, ok := Field("printed 99/99/2020, closing 03/01/2024", r)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", v.Text)
}

func TestFieldWholeMatchWithoutGroup(t *testing.T) {
	r := rule(t, model.KindText, `owner\s+trust`)

	v, ok := Field("an Owner  Trust structure", r)
	require.True(t, ok)
	assert.Equal(t, "Owner Trust", v.Text)
}

func TestDefaultValue(t *testing.T) {
	c := patterns.MustDefault()

	r, ok := c.NewIssueRule("class_a_advance_rate")
	require.True(t, ok)
	v, ok := DefaultValue(r)
	require.True(t, ok)
	assert.InDelta(t, 80.0, v.Number, 0.0001)
	assert.Equal(t, -1, v.Pattern)

	r, ok = c.NewIssueRule("avg_seasoning")
	require.True(t, ok)
	v, ok = DefaultValue(r)
	require.True(t, ok)
	assert.Equal(t, 12, v.Int)

	r, ok = c.NewIssueRule("deal_name")
	require.True(t, ok)
	_, ok = DefaultValue(r)
	assert.False(t, ok)
}

func TestStatedClassCount(t *testing.T) {
	c := patterns.MustDefault()

	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{text: "The issuer will offer five classes of notes.", want: 5, ok: true},
		{text: "3 classes of Notes are offered", want: 3, ok: true},
		{text: "Twelve Classes of Certificates", want: 12, ok: true},
		{text: "one class of notes", ok: false},
		{text: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := StatedClassCount(tt.text, c.ClassCount)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultNewIssueRules(t *testing.T) {
	c := patterns.MustDefault()

	text := `Ford Credit Auto Owner Trust 2024-A
$1.70 billion Asset Backed Notes
Ford Motor Credit Company LLC, as servicer
U.S. Bank Trust Company, National Association, as indenture trustee
Closing Date: on or about March 20, 2024
Rating Agencies: KBRA and S&P
The expected cumulative net loss is 0.55% - 0.65%.
Reserve account equal to 0.25% of the initial pool balance.
Weighted average seasoning of 14 months.`

	fields := Fields(text, c.NewIssue)

	assert.Equal(t, "Ford Credit Auto Owner Trust 2024-A", fields["deal_name"].Text)
	assert.InDelta(t, 1.7e9, fields["total_deal_size"].Number, 1)
	assert.Equal(t, "Ford Motor Credit Company LLC", fields["servicer"].Text)
	assert.Equal(t, "U.S. Bank Trust Company, National Association", fields["trustee"].Text)
	assert.Equal(t, "2024-03-20", fields["issuance_date"].Text)
	assert.Equal(t, "KBRA and S&P", fields["rating_agency"].Text)
	assert.InDelta(t, 0.55, fields["expected_cnl_low"].Number, 0.0001)
	assert.InDelta(t, 0.65, fields["expected_cnl_high"].Number, 0.0001)
	assert.InDelta(t, 0.25, fields["reserve_account"].Number, 0.0001)
	assert.Equal(t, 14, fields["avg_seasoning"].Int)
	assert.Equal(t, "Asset Backed Notes", fields["deal_type"].Text)
	_, matched := fields["issuer"]
	assert.False(t, matched)
}

func TestDefaultSurveillanceRules(t *testing.T) {
	c := patterns.MustDefault()

	text := `Collections for the month of $5,230,000 and Charge-offs of $120,000, Pool Balance $50,000,000
Distribution Date: 04/15/2024
30-59 Days Delinquent: 1.20%
60-89 Days Delinquent: 0.45%
90+ Days Delinquent: 0.20%
Cumulative Net Loss Ratio: 0.85%
Trigger Status: Pass`

	fields := Fields(text, c.Surveillance)

	assert.InDelta(t, 5230000.0, fields["collections_amount"].Number, 0.5)
	assert.InDelta(t, 120000.0, fields["charge_offs_amount"].Number, 0.5)
	assert.InDelta(t, 50000000.0, fields["pool_balance"].Number, 0.5)
	assert.Equal(t, "2024-04-15", fields["report_date"].Text)
	assert.InDelta(t, 1.20, fields["delinquency_30"].Number, 0.0001)
	assert.InDelta(t, 0.45, fields["delinquency_60"].Number, 0.0001)
	assert.InDelta(t, 0.20, fields["delinquency_90"].Number, 0.0001)
	assert.InDelta(t, 0.85, fields["loss_rate"].Number, 0.0001)
	assert.Equal(t, "Pass", fields["covenant_compliance"].Text)
}
