package identity

import (
	"strings"

	"github.com/popdex/popdex/pkg/catalog"
	"github.com/popdex/popdex/pkg/variant"
)

// DedupeRows removes duplicate catalog rows, keeping the first seen.
// Rows with a non-empty external ID are keyed by that ID alone; rows
// without one fall back to a composite of number, normalized name,
// exclusivity tag, and feature tags. The pass is idempotent.
func DedupeRows(rows []catalog.Row) []catalog.Row {
	seen := make(map[string]struct{}, len(rows))
	out := make([]catalog.Row, 0, len(rows))
	for i := range rows {
		key := rowKey(&rows[i])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rows[i])
	}
	return out
}

func rowKey(row *catalog.Row) string {
	if row.ExternalID != "" {
		return "id\x00" + row.ExternalID
	}
	features := row.FeatureTags
	if len(features) == 0 {
		features = variant.ExtractFeatures(row.SearchText())
	}
	return strings.Join([]string{
		row.Number,
		strings.ToLower(strings.TrimSpace(row.Name)),
		variant.ExtractExclusivity(row),
		strings.Join(features, "|"),
	}, "\x00")
}
