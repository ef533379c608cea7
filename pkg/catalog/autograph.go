package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// autographTokens are the substrings that mark a row as a signed item.
// Grading-service names count as evidence: slabs are only graded when
// the signature has been certified.
var autographTokens = []string{
	"autographed",
	"autograph",
	"signed",
	"signature",
	"certificate of authenticity",
	"coa",
	"psa/dna",
	"jsa",
	"beckett",
}

// autographAllowList holds external IDs of known signed items whose
// catalog text carries none of the usual tokens. Curated by hand from
// false negatives reported against the live catalog.
var autographAllowList = map[string]struct{}{
	"884211": {},
	"901377": {},
	"912004": {},
}

// classifyAutograph is the heuristic used under the narrow legacy schema,
// which has no dedicated autograph column. It scans the slug, the image
// reference and the free text for autograph tokens, then falls back to
// the allow-list. No evidence yields Unknown, never NotAutographed: the
// heuristic can prove presence but not absence.
func classifyAutograph(row *Row) AutographDecision {
	haystack := strings.ToLower(row.Slug + " " + row.ImageRef + " " + row.Name + " " + row.Description)

	for _, token := range autographTokens {
		if strings.Contains(haystack, token) {
			return Autographed
		}
	}

	if _, ok := autographAllowList[row.ExternalID]; ok {
		return Autographed
	}

	return AutographUnknown
}

// signerPatterns match "signed by <name>" style phrases. The capture
// stops at commas and parentheses so qualifiers don't leak into the name.
var signerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)signed\s+by\s+([^,()]+)`),
	regexp.MustCompile(`(?i)autographed\s+by\s+([^,()]+)`),
	regexp.MustCompile(`(?i)autograph\s+by\s+([^,()]+)`),
}

var signerCaser = cases.Title(language.English)

// extractSignerName pulls the signer's name out of free text, returning
// an empty string when no phrase matches or the match is too short to be
// a name.
func extractSignerName(text string) string {
	for _, pat := range signerPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		signer := strings.TrimSpace(m[1])
		if len(signer) > 2 {
			return signerCaser.String(strings.ToLower(signer))
		}
	}
	return ""
}
