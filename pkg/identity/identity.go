// Package identity merges rows and records from the catalog and from
// external lookup sources into canonical deduplicated identities: one
// entity per real-world item regardless of how many sources reported it.
package identity

import (
	"strings"

	"github.com/popdex/popdex/pkg/catalog"
	"github.com/popdex/popdex/pkg/sources"
	"github.com/popdex/popdex/pkg/variant"
)

// Listing is one per-source record attached to an identity.
type Listing struct {
	// Source is the kind of source that produced the record.
	Source sources.Label `json:"source"`

	// Name is the record's display name as that source reported it.
	Name string `json:"name"`

	// ImageRef is the record's image, if any.
	ImageRef string `json:"image_ref,omitempty"`

	// ExternalID is the source's stable identifier, if any.
	ExternalID string `json:"external_id,omitempty"`

	// Price is the optional price signal.
	Price *sources.PriceSignal `json:"price,omitempty"`
}

// PopIdentity is the canonical merged entity for one real-world item.
// It is created the first time a resolution pass yields a record with
// its key and mutated only within that same pass; the final list is
// owned by the resolver's caller and never mutated downstream.
type PopIdentity struct {
	// Number is the catalog code; may be empty.
	Number string `json:"number,omitempty"`

	// BaseName is the normalized base name shared by all listings.
	BaseName string `json:"base_name"`

	// Series is backfilled from the first source that knows it.
	Series string `json:"series,omitempty"`

	// BestImageRef prefers official-source images.
	BestImageRef string `json:"best_image_ref,omitempty"`

	// Listings holds the per-source records in merge order.
	Listings []Listing `json:"listings"`

	// ExternalIDsSeen makes re-merging the same record idempotent.
	ExternalIDsSeen map[string]struct{} `json:"-"`

	// Official reports whether any listing came from the catalog.
	Official bool `json:"official"`
}

// Key is the merge key: catalog number plus normalized base name.
// When the number is empty the key is the base name alone.
type Key struct {
	Number   string
	BaseName string
}

// KeyOf derives the merge key from a number and raw display name.
func KeyOf(number, name string) Key {
	baseName := variant.BaseName(name)
	if number == "" {
		return Key{BaseName: baseName}
	}
	return Key{Number: strings.TrimSpace(number), BaseName: baseName}
}

// RecordFromRow converts a catalog row into the shared record shape so
// the resolver can treat the catalog as just another (highest-priority)
// source stream.
func RecordFromRow(row *catalog.Row) sources.Record {
	return sources.Record{
		Name:       row.Name,
		Number:     row.Number,
		Series:     row.Series,
		ImageRef:   row.ImageRef,
		ExternalID: row.ExternalID,
		Source:     sources.Catalog,
	}
}
