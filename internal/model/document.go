// Package model defines the core domain models used throughout the application.
package model

// DocumentType identifies the kind of ABS filing a text was taken from.
type DocumentType string

// Document type constants.
const (
	DocumentNewIssue     DocumentType = "NEW_ISSUE"
	DocumentSurveillance DocumentType = "SURVEILLANCE"
)

// String returns the wire name of the document type.
func (d DocumentType) String() string {
	return string(d)
}

// ParseDocumentType accepts the wire names plus the CLI spellings
// ("new-issue", "surveillance").
func ParseDocumentType(s string) (DocumentType, bool) {
	switch s {
	case "NEW_ISSUE", "new-issue", "new_issue", "newissue":
		return DocumentNewIssue, true
	case "SURVEILLANCE", "surveillance":
		return DocumentSurveillance, true
	}
	return "", false
}

// ValueKind drives post-match coercion of an extracted field.
type ValueKind string

// Value kind constants.
const (
	KindText       ValueKind = "text"
	KindCurrency   ValueKind = "currency"
	KindPercentage ValueKind = "percentage"
	KindDate       ValueKind = "date"
	KindInteger    ValueKind = "integer"
)

// Valid reports whether k is one of the known kinds.
func (k ValueKind) Valid() bool {
	switch k {
	case KindText, KindCurrency, KindPercentage, KindDate, KindInteger:
		return true
	}
	return false
}

// Classification is the result of scoring a document against the
// new-issue and surveillance vocabularies.
type Classification struct {
	Type              DocumentType `json:"type"`
	Confidence        float64      `json:"confidence"`
	NewIssueScore     int          `json:"new_issue_score"`
	SurveillanceScore int          `json:"surveillance_score"`
}
