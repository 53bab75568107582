package patterns

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/tranche/internal/common"
)

// LoadFile reads a YAML overlay from path and compiles it on top of the
// built-in library.
func LoadFile(path string) (*Compiled, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}
	lib, err := Overlay(Default(), data)
	if err != nil {
		return nil, fmt.Errorf("pattern file %s: %w", path, err)
	}
	return Compile(lib)
}

// Overlay decodes a YAML document and merges it into base, returning base.
// Rules replace base rules with the same field name and otherwise append;
// vocabulary terms and bonuses extend the base vocabularies; sector keywords
// are consulted before the built-in ones; stop lists and context terms are
// extended; non-zero tunables override.
func Overlay(base *Library, data []byte) (*Library, error) {
	var over Library
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&over); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	if over.Version != "" {
		base.Version = over.Version
	}
	base.NewIssue = mergeRules(base.NewIssue, over.NewIssue)
	base.Surveillance = mergeRules(base.Surveillance, over.Surveillance)
	base.NoteClassFields = mergeRules(base.NoteClassFields, over.NoteClassFields)
	base.ClassDiscovery = append(base.ClassDiscovery, over.ClassDiscovery...)
	base.ClassCount = append(base.ClassCount, over.ClassCount...)
	base.SectorKeywords = append(over.SectorKeywords, base.SectorKeywords...)
	base.StopLetters = append(base.StopLetters, over.StopLetters...)
	base.StopWords = append(base.StopWords, over.StopWords...)
	base.ContextTerms = append(base.ContextTerms, over.ContextTerms...)
	mergeVocabulary(&base.NewIssueVocabulary, over.NewIssueVocabulary)
	mergeVocabulary(&base.SurveillanceVocabulary, over.SurveillanceVocabulary)

	if over.Normalization > 0 {
		base.Normalization = over.Normalization
	}
	if over.MaxClassIDLength > 0 {
		base.MaxClassIDLength = over.MaxClassIDLength
	}
	if over.NeighborhoodLimit > 0 {
		base.NeighborhoodLimit = over.NeighborhoodLimit
	}
	return base, nil
}

func mergeRules(base, over []ExtractionRule) []ExtractionRule {
	for _, r := range over {
		replaced := false
		for i := range base {
			if base[i].Field == r.Field {
				base[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			base = append(base, r)
		}
	}
	return base
}

func mergeVocabulary(base *Vocabulary, over Vocabulary) {
	if len(over.Terms) > 0 && base.Terms == nil {
		base.Terms = make(map[string]int, len(over.Terms))
	}
	for term, weight := range over.Terms {
		base.Terms[term] = weight
	}
	base.Bonuses = append(base.Bonuses, over.Bonuses...)
}
