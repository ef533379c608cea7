// Package match resolves a user query against a catalog snapshot.
// Numeric catalog codes match exactly, free text matches by substring,
// and barcode-shaped queries additionally match barcodes by equality.
package match

import (
	"strings"

	"github.com/popdex/popdex/pkg/catalog"
)

// Kind classifies how a candidate matched.
type Kind int

const (
	// NumericExact means the row's catalog number or barcode equalled
	// the query digits exactly.
	NumericExact Kind = iota
	// TextContains means the query was a substring of the row's name,
	// series or slug.
	TextContains
)

// String returns a string representation of the match kind.
func (k Kind) String() string {
	switch k {
	case NumericExact:
		return "numeric-exact"
	case TextContains:
		return "text-contains"
	default:
		return "unknown"
	}
}

// Candidate is one matched row. It is ephemeral: produced and consumed
// within a single query.
type Candidate struct {
	Row   catalog.Row
	Score int
	Kind  Kind
}

// Options control matching behavior.
type Options struct {
	// IncludeAutographed opts autographed rows into text-query results.
	// General search excludes them; variant-detail lookups opt in.
	IncludeAutographed bool
}

// Match returns the rows matching the query. A query consisting solely
// of digits (optionally prefixed with '#') is a numeric query: rows
// match only on exact catalog number equality, never partial, so number
// 1982 can never surface row 19820. Anything else is a text query
// matched by substring against name, series and slug.
func Match(query string, rows []catalog.Row, opts Options) []Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	if digits, ok := numericQuery(q); ok {
		return matchNumeric(digits, rows)
	}
	return matchText(q, rows, opts)
}

// MatchBarcode matches rows by exact barcode equality only; barcode
// lookups never fall back to fuzzy text matching. Several rows may
// legitimately share one barcode.
func MatchBarcode(barcode string, rows []catalog.Row) []Candidate {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return nil
	}

	var out []Candidate
	for _, row := range rows {
		if row.Barcode != "" && row.Barcode == code {
			out = append(out, Candidate{Row: row, Kind: NumericExact})
		}
	}
	return out
}

// numericQuery reports whether the normalized query is a pure catalog
// code: all digits after an optional '#' prefix.
func numericQuery(q string) (string, bool) {
	digits := strings.TrimPrefix(q, "#")
	if digits == "" {
		return "", false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return digits, true
}

func matchNumeric(digits string, rows []catalog.Row) []Candidate {
	barcodeShaped := len(digits) == 12 || len(digits) == 13

	var out []Candidate
	for _, row := range rows {
		switch {
		case row.Number != "" && row.Number == digits:
			out = append(out, Candidate{Row: row, Kind: NumericExact})
		case barcodeShaped && row.Barcode == digits:
			out = append(out, Candidate{Row: row, Kind: NumericExact})
		}
	}
	return out
}

func matchText(q string, rows []catalog.Row, opts Options) []Candidate {
	var out []Candidate
	for _, row := range rows {
		if row.IsAutographed() && !opts.IncludeAutographed {
			continue
		}
		if strings.Contains(strings.ToLower(row.Name), q) ||
			strings.Contains(strings.ToLower(row.Series), q) ||
			strings.Contains(strings.ToLower(row.Slug), q) {
			out = append(out, Candidate{Row: row, Kind: TextContains})
		}
	}
	return out
}
