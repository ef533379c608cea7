package variant

import (
	"strings"

	"github.com/popdex/popdex/pkg/catalog"
)

// NoExclusivity is the group tag for rows without any retailer or
// convention match.
const NoExclusivity = "none"

// Key identifies a set of rows that share one item identity.
type Key struct {
	Number   string
	BaseName string
}

// KeyFor derives the identity key for a row.
func KeyFor(row *catalog.Row) Key {
	return Key{Number: row.Number, BaseName: BaseName(row.Name)}
}

// ExclusivityGroup partitions rows sharing an identity key by their
// exclusivity tag.
type ExclusivityGroup struct {
	Key    Key
	Groups map[string][]catalog.Row
	// Order preserves first-seen tag order for deterministic output.
	Order []string
}

// Distinct reports the number of distinct exclusivity tags in the group.
func (g *ExclusivityGroup) Distinct() int {
	return len(g.Groups)
}

// ExtractExclusivity scans a row's free text against the ordered pattern
// tables and returns the first matching tag. Conventions are checked
// before special editions, special editions before retailers. Convention
// matches distinguish shared releases from true exclusives. Rows that
// already carry an explicit exclusivity column keep it untouched.
func ExtractExclusivity(row *catalog.Row) string {
	if row.ExclusivityTag != "" {
		return row.ExclusivityTag
	}

	text := " " + row.SearchText() + " "

	for _, p := range tables.Conventions {
		if p.matches(text) {
			if strings.Contains(text, "shared") {
				return p.Label + " Shared"
			}
			return p.Label + " Exclusive"
		}
	}
	for _, p := range tables.Special {
		if p.matches(text) {
			return p.Label
		}
	}
	for _, p := range tables.Retailers {
		if p.matches(text) {
			return p.Label
		}
	}
	return ""
}

// ExtractFeatures scans free text for cosmetic feature keywords and
// returns their labels in table order, deduplicated. Suppressor phrases
// cancel their pattern ("diamond select" is a brand, not a finish).
func ExtractFeatures(text string) []string {
	text = strings.ToLower(text)

	var labels []string
	seen := make(map[string]struct{})
	for _, p := range tables.Features {
		if !p.matches(text) {
			continue
		}
		if _, dup := seen[p.Label]; dup {
			continue
		}
		seen[p.Label] = struct{}{}
		labels = append(labels, p.Label)
	}
	return labels
}

// Classify partitions rows sharing the given key by exclusivity tag.
// Rows without any match land in the NoExclusivity group.
func Classify(rows []catalog.Row, key Key) *ExclusivityGroup {
	group := &ExclusivityGroup{
		Key:    key,
		Groups: make(map[string][]catalog.Row),
	}

	for _, row := range rows {
		tag := ExtractExclusivity(&row)
		if tag == "" {
			tag = NoExclusivity
		}
		if _, ok := group.Groups[tag]; !ok {
			group.Order = append(group.Order, tag)
		}
		group.Groups[tag] = append(group.Groups[tag], row)
	}

	return group
}

// FilterTrueVariants decides whether a candidate row set represents
// truly distinct sellable items. Rows that split into two or more
// exclusivity groups are all real variants and are returned unfiltered.
// Rows that collapse into a single group differ only by cosmetic
// feature tags and are discarded entirely: features are search facets,
// not separate purchasable identities.
//
// Explicit variant lineage overrides the heuristic: a single-tag set
// whose rows span more than one recorded master lineage is kept, since
// the catalog itself recorded them as distinct items.
func FilterTrueVariants(rows []catalog.Row) []catalog.Row {
	if len(rows) == 0 {
		return nil
	}

	group := Classify(rows, KeyFor(&rows[0]))
	if group.Distinct() >= 2 {
		return rows
	}

	if distinctLineages(rows) > 1 {
		return rows
	}

	return nil
}

// distinctLineages counts distinct recorded master lineages. Only sets
// where at least one row carries an explicit parent link participate;
// under the legacy schema every row is its own master and the count
// stays zero.
func distinctLineages(rows []catalog.Row) int {
	explicit := false
	roots := make(map[string]struct{})
	for _, row := range rows {
		if row.ParentExternalID != "" {
			explicit = true
			roots[row.ParentExternalID] = struct{}{}
		} else if row.ExternalID != "" {
			roots[row.ExternalID] = struct{}{}
		}
	}
	if !explicit {
		return 0
	}
	return len(roots)
}
