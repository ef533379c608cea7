package identity

import (
	"sort"
	"strings"

	"github.com/popdex/popdex/pkg/sources"
)

// Stream is the full record list from a single source.
type Stream struct {
	Label   sources.Label
	Records []sources.Record
}

// Resolver merges source streams into canonical identities.
// The zero value is ready to use.
type Resolver struct{}

// NewResolver returns a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve merges the given streams into one identity per merge key.
// Streams are processed in fixed priority order (catalog first, then
// barcode lookups, then marketplaces) regardless of argument order, so
// the catalog always seeds the canonical fields. Records with an empty
// name are dropped; identities therefore always carry at least one
// listing.
func (r *Resolver) Resolve(streams ...Stream) []PopIdentity {
	ordered := make([]Stream, len(streams))
	copy(ordered, streams)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Label.Priority() < ordered[j].Label.Priority()
	})

	byKey := make(map[Key]*PopIdentity)
	var order []Key

	for _, stream := range ordered {
		for i := range stream.Records {
			rec := &stream.Records[i]
			if strings.TrimSpace(rec.Name) == "" {
				continue
			}
			key := KeyOf(rec.Number, rec.Name)
			id, ok := byKey[key]
			if !ok {
				id = &PopIdentity{
					Number:          key.Number,
					BaseName:        key.BaseName,
					ExternalIDsSeen: make(map[string]struct{}),
				}
				byKey[key] = id
				order = append(order, key)
			}
			r.merge(id, rec, stream.Label)
		}
	}

	out := make([]PopIdentity, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}

// merge folds one record into an identity. Re-merging a record whose
// external ID was already seen is a no-op, which keeps repeated lookup
// passes from duplicating listings.
func (r *Resolver) merge(id *PopIdentity, rec *sources.Record, label sources.Label) {
	if rec.ExternalID != "" {
		if _, seen := id.ExternalIDsSeen[rec.ExternalID]; seen {
			return
		}
		id.ExternalIDsSeen[rec.ExternalID] = struct{}{}
	}

	id.Listings = append(id.Listings, Listing{
		Source:     label,
		Name:       rec.Name,
		ImageRef:   rec.ImageRef,
		ExternalID: rec.ExternalID,
		Price:      rec.Price,
	})

	if label.Official() {
		id.Official = true
	}

	// Series is backfilled once; later sources never overwrite it.
	if id.Series == "" && rec.Series != "" {
		id.Series = rec.Series
	}

	// Official images always win. Unofficial images only fill a gap.
	if rec.ImageRef != "" {
		if label.Official() || id.BestImageRef == "" {
			id.BestImageRef = rec.ImageRef
		}
	}
}
