package normalizer

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TextNormalizer cleans announcement and catalog text before it is used as a
// search query or compared against catalog names. Normalize strips noise
// only; NormalizeSearch additionally expands whole-word abbreviations.
type TextNormalizer struct {
	rePrefixes []*regexp.Regexp
	reSpaces   *regexp.Regexp
	reDashes   *regexp.Regexp

	// Compiled whole-word abbreviation rules, ordered for determinism.
	abbrevRules []abbrevRule
}

type abbrevRule struct {
	re          *regexp.Regexp
	replacement string
}

// NewTextNormalizer builds a normalizer from the embedded rules file.
func NewTextNormalizer() (*TextNormalizer, error) {
	rules, err := LoadRulesConfig()
	if err != nil {
		return nil, err
	}

	tn := &TextNormalizer{
		reSpaces: regexp.MustCompile(`\s+`),
		reDashes: regexp.MustCompile(`[—–]`),
	}

	for _, p := range rules.LinePrefixes {
		re, err := regexp.Compile(`(?i)^\s*` + p + `\s*`)
		if err != nil {
			return nil, err
		}
		tn.rePrefixes = append(tn.rePrefixes, re)
	}

	abbrevs := make([]string, 0, len(rules.Abbreviations))
	for k := range rules.Abbreviations {
		abbrevs = append(abbrevs, k)
	}
	sort.Strings(abbrevs)
	for _, k := range abbrevs {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`)
		if err != nil {
			return nil, err
		}
		tn.abbrevRules = append(tn.abbrevRules, abbrevRule{re: re, replacement: rules.Abbreviations[k]})
	}

	return tn, nil
}

// Normalize strips known catalog line prefixes, replaces typographic dashes
// with a plain hyphen, collapses whitespace runs and trims. Idempotent.
func (tn *TextNormalizer) Normalize(text string) string {
	s := text
	// Prefixes can stack ("PKM: PKM: ..."), strip until nothing changes.
	for {
		before := s
		for _, re := range tn.rePrefixes {
			s = re.ReplaceAllString(s, "")
		}
		if s == before {
			break
		}
	}
	s = tn.reDashes.ReplaceAllString(s, "-")
	s = tn.reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExpandAbbreviations expands whole-word abbreviations (ETB -> Elite Trainer
// Box). Partial-word occurrences are never touched.
func (tn *TextNormalizer) ExpandAbbreviations(text string) string {
	s := text
	for _, rule := range tn.abbrevRules {
		s = rule.re.ReplaceAllString(s, rule.replacement)
	}
	return s
}

// NormalizeSearch is the pass applied to text headed for the matcher or the
// index: cleanup plus abbreviation expansion.
func (tn *TextNormalizer) NormalizeSearch(text string) string {
	return tn.ExpandAbbreviations(tn.Normalize(text))
}

// FoldASCII lowercases and folds accented characters to their ASCII base
// ("Pokémon" -> "pokemon"). Used for index terms so edit-distance scoring is
// insensitive to diacritics.
func FoldASCII(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(unidecode.Unidecode(folded))
}
