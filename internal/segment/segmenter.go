// Package segment finds the note classes (tranches) of a securitization in
// document text and extracts per-class details from the text around each
// class mention.
package segment

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/tranche/internal/extract"
	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/patterns"
)

// Mention is one validated structural match of a class identifier.
type Mention struct {
	ClassID    string
	Pattern    string
	Start      int
	IDEnd      int
	Confidence int
}

// Segmenter extracts note classes using a compiled pattern library.
// It is safe for concurrent use.
type Segmenter struct {
	lib *patterns.Compiled
}

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// NewSegmenter creates a segmenter over lib.
func NewSegmenter(lib *patterns.Compiled) *Segmenter {
	return &Segmenter{lib: lib}
}

// Segment returns the note classes found in text, one per class id, sorted
// by class id. A class whose neighbourhood yields nothing is still returned
// with zero-valued details.
func (s *Segmenter) Segment(text string) []model.NoteClass {
	mentions := s.Mentions(text)
	classes := make([]model.NoteClass, 0)
	if len(mentions) == 0 {
		return classes
	}

	starts := make([]int, 0, len(mentions))
	for _, m := range mentions {
		starts = append(starts, m.Start)
	}
	sort.Ints(starts)

	type candidate struct {
		class    model.NoteClass
		resolved int
		start    int
	}
	best := make(map[string]candidate)
	order := make([]string, 0)

	for _, m := range mentions {
		window := s.Neighborhood(text, m, starts)
		nc, resolved := s.details(m, window)

		cur, seen := best[m.ClassID]
		if !seen {
			order = append(order, m.ClassID)
		}
		if !seen || better(nc.Confidence, resolved, m.Start, cur.class.Confidence, cur.resolved, cur.start) {
			best[m.ClassID] = candidate{class: nc, resolved: resolved, start: m.Start}
		}
	}

	for _, id := range order {
		classes = append(classes, best[id].class)
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].ClassID < classes[j].ClassID
	})
	return classes
}

// better orders duplicate mentions: higher pattern confidence, then more
// resolved fields, then the earlier mention.
func better(conf, resolved, start, curConf, curResolved, curStart int) bool {
	if conf != curConf {
		return conf > curConf
	}
	if resolved != curResolved {
		return resolved > curResolved
	}
	return start < curStart
}

// Mentions runs every structural pattern over text and returns the mentions
// that survive validation. When the document carries none of the
// financial-structure context terms, no mention is valid.
func (s *Segmenter) Mentions(text string) []Mention {
	if !s.hasContext(text) {
		return nil
	}

	var out []Mention
	for _, sp := range s.lib.ClassDiscovery {
		for _, loc := range sp.Re.FindAllStringSubmatchIndex(text, -1) {
			if loc[2] < 0 {
				continue
			}
			id := NormalizeClassID(text[loc[2]:loc[3]])
			if !s.Valid(id) {
				continue
			}
			out = append(out, Mention{
				ClassID:    id,
				Pattern:    sp.Name,
				Start:      loc[0],
				IDEnd:      loc[3],
				Confidence: sp.Confidence,
			})
		}
	}
	return out
}

// NormalizeClassID uppercases id and strips a leading CLASS or SERIES keyword.
func NormalizeClassID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, prefix := range []string{"CLASS", "SERIES"} {
		if strings.HasPrefix(id, prefix) {
			id = strings.TrimLeft(id[len(prefix):], " \t-")
		}
	}
	return id
}

// Valid applies the identifier-level checks: length, stop letters and
// stop words.
func (s *Segmenter) Valid(id string) bool {
	if id == "" || len(id) > s.lib.MaxClassIDLength {
		return false
	}
	if s.lib.IsStopLetter(id) || s.lib.IsStopWord(id) {
		return false
	}
	return true
}

func (s *Segmenter) hasContext(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range s.lib.ContextTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// Neighborhood returns the text following m's identifier up to the next
// mention, a blank line (once the window has seen a digit) or the size
// limit, whichever comes first. starts must be sorted.
func (s *Segmenter) Neighborhood(text string, m Mention, starts []int) string {
	end := len(text)
	if limit := m.IDEnd + s.lib.NeighborhoodLimit; limit < end {
		end = limit
		for end > m.IDEnd && !utf8.RuneStart(text[end]) {
			end--
		}
	}

	i := sort.SearchInts(starts, m.IDEnd)
	if i < len(starts) && starts[i] < end {
		end = starts[i]
	}

	window := text[m.IDEnd:end]
	for _, loc := range blankLineRe.FindAllStringIndex(window, -1) {
		if strings.ContainsAny(window[:loc[0]], "0123456789") {
			return window[:loc[0]]
		}
	}
	return window
}

// details extracts the per-class fields from window and reports how many
// resolved.
func (s *Segmenter) details(m Mention, window string) (model.NoteClass, int) {
	seniority := model.SeniorityFromClassID(m.ClassID)
	nc := model.NoteClass{
		ClassID:            m.ClassID,
		SubordinationLevel: seniority,
		PaymentPriority:    seniority,
		Confidence:         m.Confidence,
	}
	if strings.TrimSpace(window) == "" {
		return nc, 0
	}

	fields := extract.Fields(window, s.lib.NoteClassFields)
	if v, ok := fields["original_balance"]; ok {
		nc.OriginalBalance = v.Number
	}
	if v, ok := fields["current_balance"]; ok {
		nc.CurrentBalance = v.Number
	}
	if v, ok := fields["interest_rate"]; ok {
		nc.InterestRate = v.Number
	}
	if v, ok := fields["expected_maturity"]; ok {
		nc.ExpectedMaturity = v.Text
	}
	if v, ok := fields["legal_final_maturity"]; ok {
		nc.LegalFinalMaturity = v.Text
	}
	if v, ok := fields["rating"]; ok {
		nc.Rating = v.Text
	}
	if v, ok := fields["enhancement_level"]; ok {
		nc.EnhancementLevel = v.Number
	}
	return nc, len(fields)
}
