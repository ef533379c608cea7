package catalog

import (
	"strings"

	"github.com/popdex/popdex/pkg/logging"
)

// LoadResult carries the outcome of parsing one catalog payload.
// Skipped rows are reported, never raised.
type LoadResult struct {
	Rows        []Row
	Skipped     int
	HeaderWidth int
	WideSchema  bool
}

// Parse splits the raw catalog text into typed rows. The header row is
// discarded; its width decides how the columns of every data row in this
// load are interpreted. Rows narrower than the schema the header declares
// are counted as skipped and dropped; a short row never aborts the load. A completely empty payload yields zero rows, not an error.
func Parse(raw string) (*LoadResult, error) {
	records := scanRecords(raw)
	if len(records) == 0 {
		return &LoadResult{}, nil
	}

	header := records[0]
	result := &LoadResult{
		HeaderWidth: len(header),
		WideSchema:  len(header) >= wideSchemaFields,
	}

	seen := make(map[string]int, len(records))
	for i, fields := range records[1:] {
		if isBlankRecord(fields) {
			continue
		}
		if len(fields) < minSchemaFields {
			result.Skipped++
			continue
		}
		// The header's schema governs every data row of the load. A row
		// too short for the wide columns cannot be reinterpreted under
		// the legacy heuristics; it is skipped like any other short row.
		if result.WideSchema && len(fields) < wideSchemaFields {
			result.Skipped++
			continue
		}

		row := buildRow(fields, result.WideSchema)

		// ExternalID must be unique within one load; later duplicates
		// are dropped as skipped rows.
		if row.ExternalID != "" {
			if _, dup := seen[row.ExternalID]; dup {
				result.Skipped++
				continue
			}
			seen[row.ExternalID] = i
		}

		result.Rows = append(result.Rows, row)
	}

	if result.Skipped > 0 {
		logging.Debug().
			Int("skipped", result.Skipped).
			Int("accepted", len(result.Rows)).
			Msg("Catalog rows skipped during parse")
	}

	return result, nil
}

// scanRecords splits the payload into logical records, tracking quote
// parity across line boundaries: a quoted field may legally contain
// embedded newlines and doubled-quote escapes. A record is complete only
// when the buffered text has an even cumulative quote count.
func scanRecords(raw string) [][]string {
	var (
		records  [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
	)

	flushField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	flushRecord := func() {
		flushField()
		records = append(records, fields)
		fields = nil
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '"':
			if inQuotes {
				if i+1 < len(raw) && raw[i+1] == '"' {
					// Doubled-quote escape inside a quoted field.
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				inQuotes = true
			}
		case c == ',' && !inQuotes:
			flushField()
		case (c == '\r' || c == '\n') && !inQuotes:
			if c == '\r' && i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			flushRecord()
		default:
			field.WriteByte(c)
		}
	}

	// Trailing record without a final newline. An open quote here means
	// the payload ended mid-field; the partial record still flushes and
	// the width check downstream decides its fate.
	if field.Len() > 0 || len(fields) > 0 {
		flushRecord()
	}

	return records
}

// isBlankRecord reports whether every field of the record is empty,
// as produced by stray blank lines between records.
func isBlankRecord(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// buildRow converts one accepted record into a Row. The wide flag comes
// from the header row and governs interpretation for the whole load.
func buildRow(fields []string, wide bool) Row {
	row := Row{
		ExternalID:  strings.TrimSpace(fields[colExternalID]),
		Name:        strings.TrimSpace(fields[colName]),
		Number:      normalizeNumber(fields[colNumber]),
		Series:      strings.TrimSpace(fields[colSeries]),
		ImageRef:    strings.TrimSpace(fields[colImageRef]),
		Description: strings.TrimSpace(fields[colDescription]),
		Category:    strings.TrimSpace(fields[colCategory]),
		Brand:       strings.TrimSpace(fields[colBrand]),
		Barcode:     strings.TrimSpace(fields[colBarcode]),
		ReleaseDate: strings.TrimSpace(fields[colReleaseDate]),
		ProdStatus:  strings.TrimSpace(fields[colProdStatus]),
		Slug:        strings.TrimSpace(fields[colSlug]),
	}

	if wide {
		row.IsMasterVariant = parseBool(fields[colIsMasterVariant])
		row.ParentExternalID = strings.TrimSpace(fields[colParentExternalID])
		if row.ParentExternalID == row.ExternalID {
			// A row pointing at itself is its own master.
			row.ParentExternalID = ""
			row.IsMasterVariant = true
		}
		row.FeatureTags = splitTags(fields[colStickers])
		if len(row.FeatureTags) == 0 {
			row.FeatureTags = splitTags(fields[colFeatures])
		}
		row.ExclusivityTag = strings.TrimSpace(fields[colExclusivity])
		row.SignedBy = strings.TrimSpace(fields[colSignedBy])

		// The dedicated column is authoritative; the heuristic is skipped.
		if parseBool(fields[colIsAutographed]) {
			row.Autograph = Autographed
		} else {
			row.Autograph = NotAutographed
		}
		return row
	}

	// Old narrow schema: lineage and feature columns are absent, so every
	// row stands as its own master and autograph status is heuristic.
	row.IsMasterVariant = true
	row.Autograph = classifyAutograph(&row)
	if row.Autograph == Autographed {
		row.SignedBy = extractSignerName(row.Name + " " + row.Description)
	}
	return row
}

// normalizeNumber enforces the row invariant: the catalog number is
// either empty or a non-negative integer string.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	if s == "" || !isDigits(s) {
		return ""
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// splitTags splits a pipe-separated tag list, dropping empty entries.
func splitTags(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
