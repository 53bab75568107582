// Package extract applies compiled extraction rules to document text and
// coerces the captured values into typed results.
//
// Extraction never fails: a pattern that does not match, or whose capture
// cannot be coerced to the rule's kind, simply leaves the field unmatched.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/patterns"
)

// Value is a coerced field value. Text always carries the normalized textual
// form; Number is set for currency and percentage kinds, Int for integers.
type Value struct {
	Kind    model.ValueKind `json:"kind"`
	Text    string          `json:"text"`
	Number  float64         `json:"number,omitempty"`
	Int     int             `json:"int,omitempty"`
	Pattern int             `json:"pattern"`
}

var (
	numberRe   = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?|\.\d+`)
	billionRe  = regexp.MustCompile(`(?i)\b(?:billions?|bn|bb)\b`)
	millionRe  = regexp.MustCompile(`(?i)\b(?:millions?|mm)\b`)
	thousandRe = regexp.MustCompile(`(?i)\bthousands?\b|\d\s?k\b`)
	septRe     = regexp.MustCompile(`(?i)\bsept\b`)
)

// Date layouts tried in order. Single-digit month and day layouts also
// accept zero-padded input.
var dateLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// Field applies rule to text. Patterns are tried in declared order and the
// first one yielding a coercible value wins. Currency rules are the
// exception: every pattern is evaluated and the largest amount wins, ties
// going to the earlier pattern.
func Field(text string, rule patterns.CompiledRule) (Value, bool) {
	var (
		best  Value
		found bool
	)
	for i, p := range rule.Patterns {
		v, ok := firstMatch(text, p.Re, rule.Kind)
		if !ok {
			continue
		}
		v.Pattern = i
		if rule.Kind != model.KindCurrency {
			return v, true
		}
		if !found || v.Number > best.Number {
			best, found = v, true
		}
	}
	return best, found
}

// firstMatch walks the matches of re in order and returns the first one
// whose capture coerces.
func firstMatch(text string, re *regexp.Regexp, kind model.ValueKind) (Value, bool) {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if len(loc) >= 4 {
			start, end = loc[2], loc[3]
		}
		if start < 0 {
			continue
		}
		if v, ok := Coerce(kind, text[start:end], text[loc[0]:loc[1]]); ok {
			return v, true
		}
	}
	return Value{}, false
}

// Coerce converts a captured string to kind. span is the whole matched text
// and is only consulted for currency scale words.
func Coerce(kind model.ValueKind, capture, span string) (Value, bool) {
	v := Value{Kind: kind}
	switch kind {
	case model.KindCurrency:
		n, ok := leadingNumber(capture)
		if !ok {
			return v, false
		}
		v.Number = n * scale(span)
		v.Text = collapse(capture)
	case model.KindPercentage:
		n, ok := leadingNumber(capture)
		if !ok {
			return v, false
		}
		v.Number = n
		v.Text = strconv.FormatFloat(n, 'f', -1, 64)
	case model.KindDate:
		d, ok := ParseDate(capture)
		if !ok {
			return v, false
		}
		v.Text = d
	case model.KindInteger:
		n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(capture), ",", ""))
		if err != nil {
			return v, false
		}
		v.Int = n
		v.Text = strconv.Itoa(n)
	default:
		s := strings.Trim(collapse(capture), ",;:")
		if s == "" {
			return v, false
		}
		v.Text = s
	}
	return v, true
}

// DefaultValue coerces the rule's textual default. It reports false when the
// rule has no default or the default does not fit the kind.
func DefaultValue(rule patterns.CompiledRule) (Value, bool) {
	if rule.Default == "" {
		return Value{}, false
	}
	v, ok := Coerce(rule.Kind, rule.Default, "")
	v.Pattern = -1
	return v, ok
}

// Fields runs every rule against text and returns the matched values keyed
// by field name. Unmatched fields are absent.
func Fields(text string, rules []patterns.CompiledRule) map[string]Value {
	out := make(map[string]Value, len(rules))
	for _, r := range rules {
		if v, ok := Field(text, r); ok {
			out[r.Field] = v
		}
	}
	return out
}

var cardinals = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

// StatedClassCount finds an explicit "N classes of notes" statement.
func StatedClassCount(text string, pats []patterns.CompiledPattern) (int, bool) {
	for _, p := range pats {
		m := p.Re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(m[1]))
		if n, ok := cardinals[word]; ok {
			return n, true
		}
		if n, err := strconv.Atoi(word); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// ParseDate normalizes a date string to YYYY-MM-DD.
func ParseDate(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	s = septRe.ReplaceAllString(collapse(s), "Sep")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

func leadingNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// scale returns the multiplier implied by a scale word anywhere in span.
func scale(span string) float64 {
	switch {
	case billionRe.MatchString(span):
		return 1e9
	case millionRe.MatchString(span):
		return 1e6
	case thousandRe.MatchString(span):
		return 1e3
	}
	return 1
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
