// Package patterns holds the declarative rule tables that drive document
// classification, scalar field extraction and note-class segmentation.
//
// A Library is plain data and may be overlaid from YAML. Compile turns it
// into an immutable Compiled value whose regular expressions are built once;
// a Compiled library is safe to share between goroutines.
package patterns

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/model"
)

// FieldPattern is one regular expression tried for a field. Capture group 1
// holds the value; a pattern without groups yields the whole match.
type FieldPattern struct {
	Name       string `yaml:"name,omitempty"`
	Regex      string `yaml:"regex"`
	Confidence int    `yaml:"confidence,omitempty"`
}

// ExtractionRule binds an ordered pattern list to a semantic field.
// Default is the textual domain default used when no pattern resolves.
type ExtractionRule struct {
	Field    string          `yaml:"field"`
	Kind     model.ValueKind `yaml:"kind"`
	Default  string          `yaml:"default,omitempty"`
	Patterns []FieldPattern  `yaml:"patterns"`
}

// Bonus adds Points to a vocabulary score when every term in AllOf occurs.
type Bonus struct {
	AllOf  []string `yaml:"all_of"`
	Points int      `yaml:"points"`
}

// Vocabulary is the weighted keyword list for one document type.
type Vocabulary struct {
	Terms   map[string]int     `yaml:"terms"`
	Type    model.DocumentType `yaml:"type"`
	Bonuses []Bonus            `yaml:"bonuses,omitempty"`
}

// StructuralPattern discovers note-class mentions. Group 1 is the class id.
type StructuralPattern struct {
	Name       string `yaml:"name"`
	Regex      string `yaml:"regex"`
	Confidence int    `yaml:"confidence"`
}

// SectorKeyword maps a keyword found in a deal name or text to a sector label.
type SectorKeyword struct {
	Keyword string `yaml:"keyword"`
	Sector  string `yaml:"sector"`
}

// Library is the complete, versioned rule set.
type Library struct {
	Version                string              `yaml:"version"`
	NewIssue               []ExtractionRule    `yaml:"new_issue"`
	Surveillance           []ExtractionRule    `yaml:"surveillance"`
	NoteClassFields        []ExtractionRule    `yaml:"note_class_fields"`
	ClassDiscovery         []StructuralPattern `yaml:"class_discovery"`
	ClassCount             []FieldPattern      `yaml:"class_count"`
	SectorKeywords         []SectorKeyword     `yaml:"sector_keywords"`
	StopLetters            []string            `yaml:"stop_letters"`
	StopWords              []string            `yaml:"stop_words"`
	ContextTerms           []string            `yaml:"context_terms"`
	NewIssueVocabulary     Vocabulary          `yaml:"new_issue_vocabulary"`
	SurveillanceVocabulary Vocabulary          `yaml:"surveillance_vocabulary"`
	Normalization          float64             `yaml:"normalization"`
	MaxClassIDLength       int                 `yaml:"max_class_id_length"`
	NeighborhoodLimit      int                 `yaml:"neighborhood_limit"`
}

// CompiledPattern is a FieldPattern with its regular expression built.
type CompiledPattern struct {
	Re *regexp.Regexp
	FieldPattern
}

// CompiledRule is an ExtractionRule with compiled patterns.
type CompiledRule struct {
	Field    string
	Kind     model.ValueKind
	Default  string
	Patterns []CompiledPattern
}

// CompiledStructural is a StructuralPattern with its regular expression built.
type CompiledStructural struct {
	Re *regexp.Regexp
	StructuralPattern
}

// Term is a lowercased vocabulary entry.
type Term struct {
	Text   string
	Weight int
}

// CompiledVocabulary holds lowercased terms in a stable order.
type CompiledVocabulary struct {
	Type    model.DocumentType
	Terms   []Term
	Bonuses []Bonus
}

// Compiled is the immutable, ready-to-use form of a Library.
type Compiled struct {
	stopLetters            map[string]struct{}
	stopWords              map[string]struct{}
	newIssueByField        map[string]int
	surveillanceByField    map[string]int
	noteClassByField       map[string]int
	Version                string
	NewIssue               []CompiledRule
	Surveillance           []CompiledRule
	NoteClassFields        []CompiledRule
	ClassDiscovery         []CompiledStructural
	ClassCount             []CompiledPattern
	SectorKeywords         []SectorKeyword
	ContextTerms           []string
	NewIssueVocabulary     CompiledVocabulary
	SurveillanceVocabulary CompiledVocabulary
	Normalization          float64
	MaxClassIDLength       int
	NeighborhoodLimit      int
}

// Compile validates lib and builds every regular expression. Errors name the
// offending rule so a bad overlay fails at load time rather than mid-extraction.
func Compile(lib *Library) (*Compiled, error) {
	if lib == nil {
		return nil, fmt.Errorf("%w: nil library", common.ErrInvalidConfig)
	}

	c := &Compiled{
		Version:           lib.Version,
		SectorKeywords:    append([]SectorKeyword(nil), lib.SectorKeywords...),
		Normalization:     lib.Normalization,
		MaxClassIDLength:  lib.MaxClassIDLength,
		NeighborhoodLimit: lib.NeighborhoodLimit,
		stopLetters:       upperSet(lib.StopLetters),
		stopWords:         upperSet(lib.StopWords),
	}
	if c.Normalization <= 0 {
		c.Normalization = DefaultNormalization
	}
	if c.MaxClassIDLength <= 0 {
		c.MaxClassIDLength = DefaultMaxClassIDLength
	}
	if c.NeighborhoodLimit <= 0 {
		c.NeighborhoodLimit = DefaultNeighborhoodLimit
	}

	var err error
	if c.NewIssue, c.newIssueByField, err = compileRules("new_issue", lib.NewIssue); err != nil {
		return nil, err
	}
	if c.Surveillance, c.surveillanceByField, err = compileRules("surveillance", lib.Surveillance); err != nil {
		return nil, err
	}
	if c.NoteClassFields, c.noteClassByField, err = compileRules("note_class_fields", lib.NoteClassFields); err != nil {
		return nil, err
	}
	if c.ClassCount, err = compilePatterns("class_count", lib.ClassCount); err != nil {
		return nil, err
	}

	for _, sp := range lib.ClassDiscovery {
		re, compileErr := common.CompileInsensitive(sp.Regex)
		if compileErr != nil {
			return nil, fmt.Errorf("failed to compile class discovery pattern %s: %w", sp.Name, compileErr)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: class discovery pattern %s has no capture group", common.ErrInvalidPattern, sp.Name)
		}
		c.ClassDiscovery = append(c.ClassDiscovery, CompiledStructural{StructuralPattern: sp, Re: re})
	}

	for _, term := range lib.ContextTerms {
		if t := strings.ToLower(strings.TrimSpace(term)); t != "" {
			c.ContextTerms = append(c.ContextTerms, t)
		}
	}

	if c.NewIssueVocabulary, err = compileVocabulary(model.DocumentNewIssue, lib.NewIssueVocabulary); err != nil {
		return nil, err
	}
	if c.SurveillanceVocabulary, err = compileVocabulary(model.DocumentSurveillance, lib.SurveillanceVocabulary); err != nil {
		return nil, err
	}

	return c, nil
}

func compileRules(section string, rules []ExtractionRule) ([]CompiledRule, map[string]int, error) {
	compiled := make([]CompiledRule, 0, len(rules))
	index := make(map[string]int, len(rules))

	for _, r := range rules {
		if strings.TrimSpace(r.Field) == "" {
			return nil, nil, fmt.Errorf("%w: %s rule without field name", common.ErrInvalidConfig, section)
		}
		if !r.Kind.Valid() {
			return nil, nil, fmt.Errorf("%w: %s.%s has unknown kind %q", common.ErrInvalidConfig, section, r.Field, r.Kind)
		}
		if _, dup := index[r.Field]; dup {
			return nil, nil, fmt.Errorf("%w: %s.%s declared twice", common.ErrInvalidConfig, section, r.Field)
		}
		pats, err := compilePatterns(section+"."+r.Field, r.Patterns)
		if err != nil {
			return nil, nil, err
		}
		index[r.Field] = len(compiled)
		compiled = append(compiled, CompiledRule{
			Field:    r.Field,
			Kind:     r.Kind,
			Default:  r.Default,
			Patterns: pats,
		})
	}
	return compiled, index, nil
}

func compilePatterns(owner string, pats []FieldPattern) ([]CompiledPattern, error) {
	out := make([]CompiledPattern, 0, len(pats))
	for i, p := range pats {
		re, err := common.CompileInsensitive(p.Regex)
		if err != nil {
			name := p.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("failed to compile pattern %s %s: %w", owner, name, err)
		}
		out = append(out, CompiledPattern{FieldPattern: p, Re: re})
	}
	return out, nil
}

func compileVocabulary(docType model.DocumentType, v Vocabulary) (CompiledVocabulary, error) {
	cv := CompiledVocabulary{Type: docType}
	for term, weight := range v.Terms {
		if weight <= 0 {
			return cv, fmt.Errorf("%w: %s term %q has non-positive weight %d", common.ErrInvalidConfig, docType, term, weight)
		}
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" {
			continue
		}
		cv.Terms = append(cv.Terms, Term{Text: t, Weight: weight})
	}
	sort.Slice(cv.Terms, func(i, j int) bool { return cv.Terms[i].Text < cv.Terms[j].Text })

	for _, b := range v.Bonuses {
		if b.Points <= 0 || len(b.AllOf) == 0 {
			return cv, fmt.Errorf("%w: %s bonus must name terms and positive points", common.ErrInvalidConfig, docType)
		}
		lowered := make([]string, 0, len(b.AllOf))
		for _, t := range b.AllOf {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(t)))
		}
		cv.Bonuses = append(cv.Bonuses, Bonus{AllOf: lowered, Points: b.Points})
	}
	return cv, nil
}

func upperSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if s := strings.ToUpper(strings.TrimSpace(it)); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// NewIssueRule returns the new-issue rule for field.
func (c *Compiled) NewIssueRule(field string) (CompiledRule, bool) {
	return lookup(c.NewIssue, c.newIssueByField, field)
}

// SurveillanceRule returns the surveillance rule for field.
func (c *Compiled) SurveillanceRule(field string) (CompiledRule, bool) {
	return lookup(c.Surveillance, c.surveillanceByField, field)
}

// NoteClassRule returns the per-class sub-field rule for field.
func (c *Compiled) NoteClassRule(field string) (CompiledRule, bool) {
	return lookup(c.NoteClassFields, c.noteClassByField, field)
}

func lookup(rules []CompiledRule, index map[string]int, field string) (CompiledRule, bool) {
	i, ok := index[field]
	if !ok {
		return CompiledRule{}, false
	}
	return rules[i], true
}

// IsStopLetter reports whether id is a single-letter false positive.
func (c *Compiled) IsStopLetter(id string) bool {
	_, ok := c.stopLetters[strings.ToUpper(id)]
	return ok
}

// IsStopWord reports whether id is a common English word.
func (c *Compiled) IsStopWord(id string) bool {
	_, ok := c.stopWords[strings.ToUpper(id)]
	return ok
}

var (
	defaultOnce     sync.Once
	defaultCompiled *Compiled
	errDefault      error
)

// MustDefault returns the process-wide compiled built-in library, building it
// on first use. It panics only if the built-in tables themselves are invalid.
func MustDefault() *Compiled {
	defaultOnce.Do(func() {
		defaultCompiled, errDefault = Compile(Default())
	})
	if errDefault != nil {
		panic(fmt.Sprintf("built-in pattern library is invalid: %v", errDefault))
	}
	return defaultCompiled
}
