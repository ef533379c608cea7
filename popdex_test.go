package popdex

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popdex/popdex/pkg/catalog"
	"github.com/popdex/popdex/pkg/errors"
	"github.com/popdex/popdex/pkg/sources"
)

const testHeader = "hdbid,name,number,series,image_url,description,category,brand,upc,release_date,prod_status,estimated_value,estimated_value_currency,slug"

func record(fields ...string) string {
	padded := make([]string, 14)
	copy(padded, fields)
	return strings.Join(padded, ",")
}

// testCatalog holds one true-variant trio, one feature-only pair, one
// barcode-carrying row and one autographed row.
func testCatalog() string {
	rows := []string{
		testHeader,
		record("201", "Sung Jinwoo", "1982", "Solo Leveling", "https://img/official-201.png", "Shadow Monarch", "Animation", "Funko", "", "", "", "", "", "sung-jinwoo-1982"),
		record("202", "Sung Jinwoo Chase", "1982", "Solo Leveling", "https://img/official-202.png", "", "Animation", "Funko", "", "", "", "", "", "sung-jinwoo-chase"),
		record("203", "Sung Jinwoo (Hot Topic)", "1982", "Solo Leveling", "https://img/official-203.png", "", "Animation", "Funko", "", "", "", "", "", "sung-jinwoo-ht"),
		record("301", "Igris", "2000", "Solo Leveling", "", "", "Animation", "Funko", "", "", "", "", "", "igris-2000"),
		record("302", "Igris Glow in the Dark", "2000", "Solo Leveling", "", "", "Animation", "Funko", "", "", "", "", "", "igris-gitd"),
		record("401", "Cha Hae-In", "1984", "Solo Leveling", "", "", "Animation", "Funko", "012345678905", "", "", "", "", "cha-hae-in"),
		record("501", "Go Gunhee", "1985", "Solo Leveling", "", "Signed by voice actor", "Animation", "Funko", "", "", "", "", "", "go-gunhee"),
	}
	return strings.Join(rows, "\n") + "\n"
}

func newTestPopdex(t *testing.T, opts ...Option) Popdex {
	t.Helper()
	p, err := New(append([]Option{WithInitialCatalog(testCatalog())}, opts...)...)
	require.NoError(t, err)
	return p
}

func TestSearchTrueVariants(t *testing.T) {
	p := newTestPopdex(t)

	ids, err := p.Search(context.Background(), "#1982")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	id := ids[0]
	assert.Equal(t, "1982", id.Number)
	assert.Equal(t, "sung jinwoo", id.BaseName)
	assert.Equal(t, "Solo Leveling", id.Series)
	assert.True(t, id.Official)
	// The Hot Topic exclusive splits the trio into two exclusivity
	// groups, so all three rows survive as listings.
	assert.Len(t, id.Listings, 3)
	assert.Equal(t, "https://img/official-203.png", id.BestImageRef)
}

func TestSearchDropsFeatureOnlyDuplicates(t *testing.T) {
	p := newTestPopdex(t)

	// Base and glow rows share one exclusivity group; neither is a
	// distinct sellable item.
	ids, err := p.Search(context.Background(), "#2000")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchTextQuery(t *testing.T) {
	p := newTestPopdex(t)

	ids, err := p.Search(context.Background(), "cha hae")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "cha hae-in", ids[0].BaseName)
}

func TestSearchAutographOptIn(t *testing.T) {
	p := newTestPopdex(t)

	ids, err := p.Search(context.Background(), "gunhee")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = p.Search(context.Background(), "gunhee", WithAutographed())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "go gunhee", ids[0].BaseName)
}

func TestSearchNoMatchesIsNotAnError(t *testing.T) {
	p := newTestPopdex(t)

	ids, err := p.Search(context.Background(), "beru")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchFailsClosedWithoutCatalog(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, errors.ErrCatalogUnavailable)
}

type stubSource struct {
	name    string
	label   sources.Label
	records []sources.Record
}

func (s *stubSource) Name() string           { return s.name }
func (s *stubSource) Label() sources.Label   { return s.label }
func (s *stubSource) Timeout() time.Duration { return time.Second }

func (s *stubSource) Lookup(_ context.Context, _ string) ([]sources.Record, error) {
	return s.records, nil
}

func TestSearchMergesMarketplaceRecords(t *testing.T) {
	market := &stubSource{
		name:  "ebay",
		label: sources.Marketplace,
		records: []sources.Record{
			{
				Name:       "Sung Jinwoo #1982",
				Number:     "1982",
				ImageRef:   "https://img/market.jpg",
				ExternalID: "ebay-1",
				Price:      &sources.PriceSignal{Amount: 34.50, Currency: "USD"},
			},
			{
				// Scores below the reliability floor and is dropped.
				Name: "Mystery minifigure lot",
			},
		},
	}
	p := newTestPopdex(t, WithSources(market))

	ids, err := p.Search(context.Background(), "#1982")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	id := ids[0]
	require.Len(t, id.Listings, 4)
	last := id.Listings[len(id.Listings)-1]
	assert.Equal(t, sources.Marketplace, last.Source)
	require.NotNil(t, last.Price)
	assert.InDelta(t, 34.50, last.Price.Amount, 0.001)
	// Official catalog images still win the backfill.
	assert.Equal(t, "https://img/official-203.png", id.BestImageRef)
}

func TestLookupByBarcode(t *testing.T) {
	p := newTestPopdex(t)

	ids, err := p.LookupByBarcode(context.Background(), "012345678905")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "cha hae-in", ids[0].BaseName)

	ids, err = p.LookupByBarcode(context.Background(), "999999999999")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

type scriptedFetcher struct {
	text         string
	lastModified time.Time
	fetches      int
}

func (f *scriptedFetcher) Fetch(context.Context) (*catalog.FetchResult, error) {
	f.fetches++
	return &catalog.FetchResult{Text: f.text, LastModified: f.lastModified}, nil
}

func (f *scriptedFetcher) LastModified(context.Context) (time.Time, error) {
	return f.lastModified, nil
}

func TestForceReloadFiresSwapHook(t *testing.T) {
	fetcher := &scriptedFetcher{text: testCatalog()}
	p, err := New(WithFetcher(fetcher))
	require.NoError(t, err)

	var events []SwapEvent
	p.OnCatalogSwap(func(e SwapEvent) { events = append(events, e) })

	require.NoError(t, p.ForceReload(context.Background()))
	require.Len(t, events, 1)
	assert.Zero(t, events[0].PreviousRows)
	assert.Equal(t, 7, events[0].Rows)
	assert.False(t, events[0].LoadedAt.IsZero())
	assert.Equal(t, 1, fetcher.fetches)
}

func TestCheckForUpdate(t *testing.T) {
	fetcher := &scriptedFetcher{
		text:         testCatalog(),
		lastModified: time.Now().Add(-time.Hour),
	}
	p, err := New(WithFetcher(fetcher))
	require.NoError(t, err)

	// Never loaded: always reports an update.
	updated, err := p.CheckForUpdate(context.Background())
	require.NoError(t, err)
	assert.True(t, updated)

	require.NoError(t, p.ForceReload(context.Background()))

	updated, err = p.CheckForUpdate(context.Background())
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestAutoUpdateLifecycle(t *testing.T) {
	p, err := New(WithInitialCatalog(testCatalog()))
	require.NoError(t, err)

	require.NoError(t, p.AutoUpdatesOn())
	require.NoError(t, p.AutoUpdatesOff())
	// Stopping twice is safe.
	require.NoError(t, p.AutoUpdatesOff())
}

// countingFetcher always reports a newer remote payload, so every
// auto-update tick ends in a fetch.
type countingFetcher struct {
	text    string
	fetches atomic.Int64
}

func (f *countingFetcher) Fetch(context.Context) (*catalog.FetchResult, error) {
	f.fetches.Add(1)
	return &catalog.FetchResult{Text: f.text}, nil
}

func (f *countingFetcher) LastModified(context.Context) (time.Time, error) {
	return time.Now().Add(time.Hour), nil
}

func TestAutoUpdateRestart(t *testing.T) {
	fetcher := &countingFetcher{text: testCatalog()}
	p, err := New(
		WithFetcher(fetcher),
		WithAutoUpdateInterval(20*time.Millisecond),
	)
	require.NoError(t, err)

	// Stopping before the first start must not wedge the lifecycle.
	require.NoError(t, p.AutoUpdatesOff())

	require.NoError(t, p.AutoUpdatesOn())
	require.Eventually(t, func() bool {
		return fetcher.fetches.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond, "first run never ticked")

	require.NoError(t, p.AutoUpdatesOff())

	// Re-enabling after a stop starts a fresh loop that ticks again.
	before := fetcher.fetches.Load()
	require.NoError(t, p.AutoUpdatesOn())
	require.Eventually(t, func() bool {
		return fetcher.fetches.Load() > before
	}, 2*time.Second, 5*time.Millisecond, "restarted run never ticked")

	require.NoError(t, p.AutoUpdatesOff())
}

func TestOptionValidation(t *testing.T) {
	_, err := New(WithCatalogURL(""))
	assert.Error(t, err)

	_, err = New(WithTTL(0))
	assert.Error(t, err)

	_, err = New(WithAutoUpdateInterval(0))
	assert.Error(t, err)
}
