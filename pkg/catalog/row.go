// Package catalog loads and serves the bulk delimited product catalog.
// It parses the raw catalog text into typed rows, tolerating multi-line
// quoted fields and two historical schema widths, and owns an in-memory
// snapshot with a time-to-live.
package catalog

import (
	"strings"
)

// AutographDecision is the explicit tagged result of autograph
// classification. Absence of evidence is Unknown, not NotAutographed.
type AutographDecision int

const (
	// AutographUnknown means no signal either way was found.
	AutographUnknown AutographDecision = iota
	// Autographed means the row is a signed item.
	Autographed
	// NotAutographed means the authoritative schema column says unsigned.
	NotAutographed
)

// String returns a string representation of the decision.
func (d AutographDecision) String() string {
	switch d {
	case Autographed:
		return "autographed"
	case NotAutographed:
		return "not autographed"
	default:
		return "unknown"
	}
}

// Row is one parsed catalog line.
//
// Invariants: Number is either empty or a non-negative integer string.
// ExternalID, if present, is globally unique within one catalog load.
type Row struct {
	// ExternalID is the stable catalog identifier; may be empty.
	ExternalID string

	// Name is the display string.
	Name string

	// Number is the catalog code in string form; may be empty.
	Number string

	// Series is the series or category label.
	Series string

	// Category is the secondary category column, when present.
	Category string

	// Brand is the manufacturer label.
	Brand string

	// ImageRef points at the row's image resource.
	ImageRef string

	// Description is the free-text description.
	Description string

	// Barcode is the UPC/EAN string; may be empty.
	Barcode string

	// ReleaseDate is the raw release date string from the catalog.
	ReleaseDate string

	// ProdStatus carries the free-text production status tags.
	ProdStatus string

	// Slug is the URL slug.
	Slug string

	// IsMasterVariant marks the canonical sellable item for its number.
	IsMasterVariant bool

	// ParentExternalID is the master row's ExternalID; empty when this
	// row is itself the master.
	ParentExternalID string

	// FeatureTags is the ordered list of cosmetic feature labels
	// (e.g. "Chase", "Glow in the Dark").
	FeatureTags []string

	// ExclusivityTag is the retailer/convention label, or empty.
	ExclusivityTag string

	// Autograph is the tagged autograph classification.
	Autograph AutographDecision

	// SignedBy is the extracted signer name for autographed rows.
	SignedBy string
}

// IsAutographed reports whether the row was positively classified as signed.
func (r *Row) IsAutographed() bool {
	return r.Autograph == Autographed
}

// SearchText returns the lowercased free text the heuristic classifiers
// scan: name, series, description and production status joined together.
func (r *Row) SearchText() string {
	return strings.ToLower(r.Name + " " + r.Series + " " + r.ProdStatus + " " + r.Description)
}

// Column indexes of the oldest supported schema. A data row needs at
// least minSchemaFields fields to be accepted.
const (
	colExternalID = iota
	colName
	colNumber
	colSeries
	colImageRef
	colDescription
	colCategory
	colBrand
	colBarcode
	colReleaseDate
	colProdStatus
	colEstimatedValue
	colEstimatedValueCurrency
	colSlug

	minSchemaFields = 14
)

// Column indexes added by the wider schema. The header row must report
// at least wideSchemaFields fields for these to be interpreted.
const (
	colRefNumber = minSchemaFields + iota
	colScale
	colAKA
	colItemTypeName
	colScrapedDate
	colIsMasterVariant
	colParentExternalID
	colVariantType
	colStickers
	colExclusivity
	colIsAutographed
	colSignedBy
	colFeatures

	wideSchemaFields = 27
)
