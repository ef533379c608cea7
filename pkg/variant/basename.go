package variant

import (
	"regexp"
	"strings"
)

var parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)

var squareBracketPattern = regexp.MustCompile(`\[[^\]]*\]`)

var numberTokenPattern = regexp.MustCompile(`#\d+`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// BaseName normalizes a display name down to the shared identity name:
// lowercased, parenthetical qualifiers and "#1234" number tokens
// removed, known feature words stripped, whitespace collapsed. "Sung Jinwoo Chase" and
// "Sung Jinwoo (Hot Topic)" both normalize to "sung jinwoo".
func BaseName(name string) string {
	s := strings.ToLower(name)
	s = parentheticalPattern.ReplaceAllString(s, " ")
	s = squareBracketPattern.ReplaceAllString(s, " ")
	s = numberTokenPattern.ReplaceAllString(s, " ")

	// Strip feature phrases, longest first so "glow in the dark"
	// disappears before "glow" gets a chance to leave "in the dark".
	for _, phrase := range featureStripPhrases() {
		s = strings.ReplaceAll(s, phrase, " ")
	}

	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// featureStripPhrases returns the feature match words ordered longest
// first, derived from the shared pattern tables.
func featureStripPhrases() []string {
	phrases := make([]string, 0, len(tables.Features))
	for _, f := range tables.Features {
		phrases = append(phrases, f.Match)
	}
	// Insertion sort by descending length; the table is small.
	for i := 1; i < len(phrases); i++ {
		for j := i; j > 0 && len(phrases[j]) > len(phrases[j-1]); j-- {
			phrases[j], phrases[j-1] = phrases[j-1], phrases[j]
		}
	}
	return phrases
}
