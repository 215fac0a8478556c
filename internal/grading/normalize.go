package grading

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultLanguage is the locale used for case folding when none is set.
const DefaultLanguage = "tr"

// Normalizer canonicalizes free-text answers before fuzzy comparison:
// NFC composition, locale-aware lower-casing, then only letters, digits and
// single spaces survive.
type Normalizer struct {
	tag language.Tag
}

// NewNormalizer builds a Normalizer for a BCP 47 language tag. Unparseable
// tags fall back to DefaultLanguage.
func NewNormalizer(lang string) Normalizer {
	if lang == "" {
		lang = DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Turkish
	}
	return Normalizer{tag: tag}
}

// Normalize returns the comparison form of s.
func (n Normalizer) Normalize(s string) string {
	// A Caser keeps state between calls, so each call gets its own.
	// Decomposed accents are combining marks, not letters, and would be
	// dropped below.
	lower := cases.Lower(n.tag).String(norm.NFC.String(s))

	var b strings.Builder
	b.Grow(len(lower))
	space := false
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}
