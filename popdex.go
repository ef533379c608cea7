// Package popdex resolves collectible catalog queries into canonical,
// deduplicated identities. It loads a delimited catalog snapshot,
// matches queries by catalog number, free text or barcode, filters
// feature-only duplicate rows from true retailer variants, and merges
// catalog matches with external lookup sources into ranked identities.
package popdex

import (
	"context"
	"fmt"

	"github.com/popdex/popdex/pkg/catalog"
	"github.com/popdex/popdex/pkg/identity"
	"github.com/popdex/popdex/pkg/logging"
	"github.com/popdex/popdex/pkg/match"
	"github.com/popdex/popdex/pkg/sources"
	"github.com/popdex/popdex/pkg/variant"
)

// Popdex manages a catalog snapshot with automatic updates and resolves
// queries against it.
type Popdex interface {
	// Search resolves a free-text or numeric query into ranked
	// identities. Autographed rows are excluded unless opted in.
	Search(ctx context.Context, query string, opts ...SearchOption) ([]identity.PopIdentity, error)

	// LookupByBarcode resolves a barcode by exact equality.
	LookupByBarcode(ctx context.Context, barcode string) ([]identity.PopIdentity, error)

	// CheckForUpdate reports whether the remote catalog is newer than
	// the loaded snapshot.
	CheckForUpdate(ctx context.Context) (bool, error)

	// ForceReload fetches and swaps in a fresh snapshot, bypassing the
	// freshness check.
	ForceReload(ctx context.Context) error

	// AutoUpdatesOn begins periodic background reloads.
	AutoUpdatesOn() error

	// AutoUpdatesOff stops periodic background reloads.
	AutoUpdatesOff() error

	// OnCatalogSwap registers a callback fired after each successful
	// snapshot swap.
	OnCatalogSwap(CatalogSwapHook)
}

// popdex is the internal implementation of the Popdex interface.
type popdex struct {
	config  *config
	store   *catalog.Store
	sources []sources.Source
	hooks   *hooks

	lifecycle lifecycle
}

// New creates a Popdex instance with the given options.
func New(opts ...Option) (Popdex, error) {
	p := &popdex{
		config: defaultConfig(),
		hooks:  newHooks(),
	}

	if err := p.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	fetcher := p.config.fetcher
	if fetcher == nil && p.config.catalogURL != "" {
		fetcher = catalog.NewHTTPFetcher(p.config.catalogURL, p.config.httpClient)
	}

	storeOpts := []catalog.StoreOption{catalog.WithTTL(p.config.ttl)}
	if p.config.cachePath != "" {
		cache, err := catalog.OpenCache(p.config.cachePath)
		if err != nil {
			return nil, fmt.Errorf("opening snapshot cache: %w", err)
		}
		storeOpts = append(storeOpts, catalog.WithCache(cache))
	}
	p.store = catalog.NewStore(fetcher, storeOpts...)

	if p.config.initialText != "" {
		if _, err := p.store.Load(p.config.initialText); err != nil {
			return nil, fmt.Errorf("loading initial catalog: %w", err)
		}
	}

	p.sources = p.config.sources

	if p.config.autoUpdatesEnabled {
		if err := p.AutoUpdatesOn(); err != nil {
			return nil, fmt.Errorf("starting auto-updates: %w", err)
		}
	}

	return p, nil
}

// SearchOption controls a single Search call.
type SearchOption func(*match.Options)

// WithAutographed opts autographed rows into the results.
func WithAutographed() SearchOption {
	return func(o *match.Options) { o.IncludeAutographed = true }
}

// Search resolves a query through the full pipeline: snapshot, dedupe,
// match, variant filtering, external fan-out, merge, rank. A query with
// zero matches across every stream returns an empty list, not an error.
func (p *popdex) Search(ctx context.Context, query string, opts ...SearchOption) ([]identity.PopIdentity, error) {
	var matchOpts match.Options
	for _, opt := range opts {
		opt(&matchOpts)
	}

	rows, err := p.store.Snapshot()
	if err != nil {
		return nil, err
	}
	rows = identity.DedupeRows(rows)

	ctx = logging.WithQueryID(ctx, query)
	candidates := match.Match(query, rows, matchOpts)
	kept := filterVariants(candidates)

	streams := p.lookupStreams(ctx, query, kept)
	ids := identity.NewResolver().Resolve(streams...)
	identity.Rank(ids)

	logging.Ctx(ctx).Debug().
		Str("query", query).
		Int("candidates", len(candidates)).
		Int("identities", len(ids)).
		Msg("Search resolved")

	return ids, nil
}

// LookupByBarcode resolves a barcode against the snapshot and the
// external sources. Catalog rows match by exact barcode equality only.
func (p *popdex) LookupByBarcode(ctx context.Context, barcode string) ([]identity.PopIdentity, error) {
	rows, err := p.store.Snapshot()
	if err != nil {
		return nil, err
	}
	rows = identity.DedupeRows(rows)

	candidates := match.MatchBarcode(barcode, rows)

	streams := p.lookupStreams(ctx, barcode, candidateRows(candidates))
	ids := identity.NewResolver().Resolve(streams...)
	identity.Rank(ids)
	return ids, nil
}

// CheckForUpdate compares the remote Last-Modified against the local
// load time.
func (p *popdex) CheckForUpdate(ctx context.Context) (bool, error) {
	return p.store.CheckForUpdate(ctx)
}

// ForceReload reloads the snapshot and fires swap hooks on success.
func (p *popdex) ForceReload(ctx context.Context) error {
	prev := p.store.Len()
	if err := p.store.ForceReload(ctx); err != nil {
		return err
	}
	p.hooks.triggerCatalogSwap(SwapEvent{
		PreviousRows: prev,
		Rows:         p.store.Len(),
		LoadedAt:     p.store.LoadedAt(),
	})
	return nil
}

// OnCatalogSwap registers a callback fired after each successful swap.
func (p *popdex) OnCatalogSwap(fn CatalogSwapHook) {
	p.hooks.OnCatalogSwap(fn)
}

// lookupStreams builds the per-source record streams for one resolution
// pass: the catalog stream from the kept rows plus one stream per
// external adapter response. External records are scored against the
// query target and unreliable guesses are dropped.
func (p *popdex) lookupStreams(ctx context.Context, query string, rows []catalog.Row) []identity.Stream {
	streams := make([]identity.Stream, 0, len(p.sources)+1)

	records := make([]sources.Record, 0, len(rows))
	for i := range rows {
		records = append(records, identity.RecordFromRow(&rows[i]))
	}
	streams = append(streams, identity.Stream{Label: sources.Catalog, Records: records})

	if len(p.sources) == 0 {
		return streams
	}

	target := targetFor(query, rows)
	for _, result := range sources.LookupAll(ctx, p.sources, query) {
		if result.Err != nil {
			continue
		}
		streams = append(streams, identity.Stream{
			Label:   result.Label,
			Records: reliableRecords(result.Records, target),
		})
	}
	return streams
}

// targetFor derives the scoring target from the query, preferring the
// matched catalog rows' own number and base name when available.
func targetFor(query string, rows []catalog.Row) match.Target {
	if len(rows) > 0 {
		return match.Target{
			Number:   rows[0].Number,
			BaseName: variant.BaseName(rows[0].Name),
		}
	}
	return match.Target{BaseName: variant.BaseName(query)}
}

func reliableRecords(records []sources.Record, target match.Target) []sources.Record {
	out := records[:0]
	for _, rec := range records {
		if match.Reliable(match.Relevance(target, rec.Name, rec.Number)) {
			out = append(out, rec)
		}
	}
	return out
}

// filterVariants groups matched candidates by identity key and drops
// multi-row groups whose rows collapse into a single exclusivity group:
// those differ only by cosmetic feature tags. A lone matched row is its
// own identity and always passes through.
func filterVariants(candidates []match.Candidate) []catalog.Row {
	byKey := make(map[variant.Key][]catalog.Row)
	var order []variant.Key
	for _, c := range candidates {
		key := variant.KeyFor(&c.Row)
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], c.Row)
	}

	var kept []catalog.Row
	for _, key := range order {
		group := byKey[key]
		if len(group) == 1 {
			kept = append(kept, group[0])
			continue
		}
		kept = append(kept, variant.FilterTrueVariants(group)...)
	}
	return kept
}

func candidateRows(candidates []match.Candidate) []catalog.Row {
	rows := make([]catalog.Row, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, c.Row)
	}
	return rows
}
