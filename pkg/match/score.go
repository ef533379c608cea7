package match

import (
	"strings"
)

// Relevance scoring is used only for cross-source reconciliation:
// catalog matches are equally authoritative once matched, but records
// coming back from external lookups for the same query need ranking
// before they are trusted.
const (
	// ScoreNumberExact rewards an exact catalog-number match.
	ScoreNumberExact = 100
	// ScoreNumberInName rewards the target number appearing in the name.
	ScoreNumberInName = 50
	// ScoreBaseName rewards containment of the cleaned base name.
	ScoreBaseName = 25
	// ScoreProductKeyword rewards a generic product keyword.
	ScoreProductKeyword = 10

	// MinScore is the reliability floor; candidates scoring below it
	// are discarded as unreliable guesses.
	MinScore = 25
)

// productKeywords are generic terms that suggest a record is the right
// kind of product at all.
var productKeywords = []string{
	"funko",
	"pop!",
	"pop ",
	"vinyl",
	"figure",
}

// Target is the identity an external record is scored against.
type Target struct {
	Number   string
	BaseName string
}

// Relevance scores an external record's name and number against the
// target identity.
func Relevance(target Target, name, number string) int {
	lowName := strings.ToLower(name)
	score := 0

	if target.Number != "" && number != "" && number == target.Number {
		score += ScoreNumberExact
	}
	if target.Number != "" && strings.Contains(lowName, target.Number) {
		score += ScoreNumberInName
	}
	if target.BaseName != "" && strings.Contains(lowName, strings.ToLower(target.BaseName)) {
		score += ScoreBaseName
	}
	for _, kw := range productKeywords {
		if strings.Contains(lowName, kw) {
			score += ScoreProductKeyword
			break
		}
	}

	return score
}

// Reliable reports whether a score clears the reliability floor.
func Reliable(score int) bool {
	return score >= MinScore
}
