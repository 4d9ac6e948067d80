package deident

import (
	"regexp"
	"strings"
)

// The clean action strips identifying substrings from an otherwise-kept
// value. Matching is deliberately mechanical: a fixed set of pattern rules
// plus a vocabulary of the record's own known identifiers. No NLP.

type scrubRule struct {
	name    string
	pattern *regexp.Regexp
}

var scrubRules = []scrubRule{
	{"email", regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)},
	{"phone", regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`)},
	{"date8", regexp.MustCompile(`\b(19|20)\d{6}\b`)},
}

var whitespaceRun = regexp.MustCompile(`\s{2,}`)

// scrubber removes identifying text from free-text values. One scrubber is
// built per file so the vocabulary reflects that file's identifiers.
type scrubber struct {
	terms []*regexp.Regexp
}

// newScrubber builds a scrubber from known identifier terms (patient name
// parts, patient ID, accession number). Terms shorter than three
// characters are skipped to avoid eating unrelated text.
func newScrubber(terms []string) *scrubber {
	s := &scrubber{}
	seen := make(map[string]bool)

	for _, term := range terms {
		term = strings.TrimSpace(term)
		if len(term) < 3 {
			continue
		}
		key := strings.ToLower(term)
		if seen[key] {
			continue
		}
		seen[key] = true
		s.terms = append(s.terms, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(term)))
	}
	return s
}

// clean strips matched substrings and collapses leftover whitespace.
// Returns the cleaned value and whether anything changed.
func (s *scrubber) clean(value string) (string, bool) {
	cleaned := value

	for _, rule := range scrubRules {
		cleaned = rule.pattern.ReplaceAllString(cleaned, "")
	}
	for _, term := range s.terms {
		cleaned = term.ReplaceAllString(cleaned, "")
	}

	if cleaned == value {
		return value, false
	}

	cleaned = strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))
	return cleaned, true
}
