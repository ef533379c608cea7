// Package sources defines the external lookup adapter surface: barcode
// databases and marketplace search backends each expose one capability,
// Lookup, and the engine consumes only their typed output. The engine
// performs no network calls itself for these adapters.
package sources

import (
	"context"
	"time"
)

// Label identifies where a record came from.
type Label string

// Known source labels, in merge priority order.
const (
	// Catalog is the official catalog source; it always merges first
	// and its images win backfill conflicts.
	Catalog Label = "catalog"
	// BarcodeDB is a barcode-lookup adapter.
	BarcodeDB Label = "barcode-db"
	// Marketplace is a marketplace-search adapter.
	Marketplace Label = "marketplace"
)

// String returns the string representation of the label.
func (l Label) String() string {
	return string(l)
}

// Priority returns the fixed merge order of the label: lower merges
// first. Unknown labels merge last.
func (l Label) Priority() int {
	switch l {
	case Catalog:
		return 0
	case BarcodeDB:
		return 1
	case Marketplace:
		return 2
	default:
		return 3
	}
}

// Official reports whether the label is the authoritative catalog
// source, whose images win backfill conflicts.
func (l Label) Official() bool {
	return l == Catalog
}

// DefaultTimeout bounds one adapter call when the adapter does not
// declare its own.
const DefaultTimeout = 5 * time.Second

// Source is one external lookup adapter.
type Source interface {
	// Name identifies the adapter in logs and errors.
	Name() string

	// Label reports which kind of source this adapter is, which fixes
	// its merge priority.
	Label() Label

	// Timeout bounds one Lookup call. Zero means DefaultTimeout.
	Timeout() time.Duration

	// Lookup resolves the query into raw external records.
	Lookup(ctx context.Context, query string) ([]Record, error)
}
