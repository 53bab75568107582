package textextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentText(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name: "positioning operators",
			stream: `BT
/F1 12 Tf
72 720 Td
(Class A Notes) Tj
0 -14 Td
[($100,000,000) -300 (5.25%)] TJ
T*
<48656C6C6F> Tj
ET`,
			want: "Class A Notes\n$100,000,000 5.25%\nHello",
		},
		{
			name: "separate text objects on one baseline",
			stream: `BT 1 0 0 1 72 600 Tm (Risk) Tj ET
BT 1 0 0 1 120 600 Tm (Factors) Tj ET
BT 1 0 0 1 72 586 Tm (Next line) Tj ET`,
			want: "Risk Factors\nNext line",
		},
		{
			name:   "small kerning keeps words together",
			stream: `BT [(Tr) -20 (anche)] TJ ET`,
			want:   "Tranche",
		},
		{
			name:   "escapes and nesting",
			stream: `BT (a\(b\) \\ c\101 \(nested \(deep\)\)) Tj ET`,
			want:   `a(b) \ cA (nested (deep))`,
		},
		{
			name:   "balanced parentheses need no escape",
			stream: `BT (Rating (sf)) Tj ET`,
			want:   "Rating (sf)",
		},
		{
			name:   "quote operators start new lines",
			stream: "BT (one) Tj (two) ' 0 0 (three) \" ET",
			want:   "one\ntwo\nthree",
		},
		{
			name:   "utf-16 hex string",
			stream: `BT <FEFF0041002D0031> Tj ET`,
			want:   "A-1",
		},
		{
			name:   "winansi bytes",
			stream: `BT (caf\351 \2265m) Tj ET`,
			want:   "café –5m",
		},
		{
			name: "marked content and comments are ignored",
			stream: `% comment (not text) Tj
/Span <</ActualText (x)>> BDC
BT (shown) Tj ET
EMC`,
			want: "shown",
		},
		{
			name: "inline image is skipped",
			stream: `BI /W 2 /H 2 /BPC 8 /CS /G ID ) Tj ( EI
BT (after) Tj ET`,
			want: "after",
		},
		{
			name:   "graphics only",
			stream: `q 1 0 0 1 0 0 cm 0 0 100 100 re f Q`,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentText([]byte(tt.stream)))
		})
	}
}
