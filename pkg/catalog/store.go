package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/popdex/popdex/pkg/errors"
	"github.com/popdex/popdex/pkg/logging"
)

// DefaultTTL is how long a loaded snapshot is served before the store
// fails closed and demands a reload.
const DefaultTTL = 24 * time.Hour

// Store owns the in-memory catalog snapshot. The snapshot is read-only
// once built; reloads build a new row slice and atomically swap it in,
// so concurrent readers never observe a partially updated catalog.
type Store struct {
	mu           sync.RWMutex
	rows         []Row
	loadedAt     time.Time
	lastModified time.Time
	skipped      int

	ttl     time.Duration
	fetcher Fetcher
	cache   *Cache
	now     func() time.Time

	// reload single-flight state: a reload requested while one is
	// already running waits for the in-flight result instead of
	// starting a second fetch.
	flightMu sync.Mutex
	inflight *reloadCall
}

type reloadCall struct {
	done chan struct{}
	err  error
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL overrides the snapshot time-to-live.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCache attaches an on-disk snapshot cache. The cache serves the
// previous good payload when a fetch fails.
func WithCache(cache *Cache) StoreOption {
	return func(s *Store) { s.cache = cache }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a store backed by the given fetcher. The store starts
// empty; call Reload (or Load with raw text) before Snapshot.
func NewStore(fetcher Fetcher, opts ...StoreOption) *Store {
	s := &Store{
		ttl:     DefaultTTL,
		fetcher: fetcher,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load parses raw catalog text and swaps the parsed rows in as the
// current snapshot. Short rows are skipped, never fatal.
func (s *Store) Load(raw string) (*LoadResult, error) {
	result, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	s.swap(result, s.now(), time.Time{})

	logging.Info().
		Int("rows", len(result.Rows)).
		Int("skipped", result.Skipped).
		Bool("wide_schema", result.WideSchema).
		Msg("Catalog snapshot loaded")

	return result, nil
}

// Snapshot returns the current rows. It fails closed once the last load
// is older than the TTL: the caller must reload first. The returned
// slice is shared and must be treated as read-only.
func (s *Store) Snapshot() ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loadedAt.IsZero() {
		return nil, errors.ErrCatalogUnavailable
	}
	if s.now().Sub(s.loadedAt) > s.ttl {
		return nil, &errors.StaleSnapshotError{LoadedAt: s.loadedAt, TTL: s.ttl}
	}
	return s.rows, nil
}

// Len reports the current snapshot size without TTL checking.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Skipped reports how many rows the last load dropped.
func (s *Store) Skipped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skipped
}

// LoadedAt reports when the current snapshot was built.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Reload fetches and loads the catalog. Only one reload runs at a time;
// a concurrent request joins the in-flight reload and shares its result.
func (s *Store) Reload(ctx context.Context) error {
	s.flightMu.Lock()
	if call := s.inflight; call != nil {
		s.flightMu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	call := &reloadCall{done: make(chan struct{})}
	s.inflight = call
	s.flightMu.Unlock()

	call.err = s.reload(ctx)

	s.flightMu.Lock()
	s.inflight = nil
	s.flightMu.Unlock()
	close(call.done)

	return call.err
}

// ForceReload bypasses the TTL and freshness check entirely; it is the
// same single-flight reload, kept as a distinct method for callers that
// want to express intent.
func (s *Store) ForceReload(ctx context.Context) error {
	return s.Reload(ctx)
}

// CheckForUpdate compares the server-reported last-modified timestamp
// against the local load timestamp. Unknown server time counts as
// updated when we have never loaded.
func (s *Store) CheckForUpdate(ctx context.Context) (bool, error) {
	if s.fetcher == nil {
		return false, nil
	}

	remote, err := s.fetcher.LastModified(ctx)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	loadedAt := s.loadedAt
	s.mu.RUnlock()

	if loadedAt.IsZero() {
		return true, nil
	}
	if remote.IsZero() {
		return false, nil
	}
	return remote.After(loadedAt), nil
}

// reload performs one fetch-parse-swap cycle. A transport failure leaves
// the previous good snapshot in place; when the store is empty it falls
// back to the disk cache before reporting the catalog unavailable.
func (s *Store) reload(ctx context.Context) error {
	if s.fetcher == nil {
		return fmt.Errorf("no fetcher configured: %w", errors.ErrCatalogUnavailable)
	}

	fetched, err := s.fetcher.Fetch(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Catalog fetch failed")

		if s.Len() > 0 {
			// Keep serving the previous good snapshot.
			return err
		}
		if cacheErr := s.loadFromCache(); cacheErr == nil {
			logging.Ctx(ctx).Info().Msg("Serving catalog snapshot from disk cache")
			return nil
		}
		return fmt.Errorf("%w: %w", errors.ErrCatalogUnavailable, err)
	}

	result, err := Parse(fetched.Text)
	if err != nil {
		return err
	}

	now := s.now()
	s.swap(result, now, fetched.LastModified)

	if s.cache != nil {
		if err := s.cache.Put(CachedSnapshot{
			RawText:      fetched.Text,
			LastModified: fetched.LastModified,
			LoadedAt:     now,
		}); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to persist snapshot cache")
		}
	}

	logging.Ctx(ctx).Info().
		Int("rows", len(result.Rows)).
		Int("skipped", result.Skipped).
		Msg("Catalog reloaded")

	return nil
}

func (s *Store) loadFromCache() error {
	if s.cache == nil {
		return errors.ErrNotFound
	}
	snap, err := s.cache.Get()
	if err != nil {
		return err
	}
	result, err := Parse(snap.RawText)
	if err != nil {
		return err
	}
	// Stamp the fallback with the current time: a stale-but-valid
	// snapshot beats failing closed when the fetch itself is down.
	s.swap(result, s.now(), snap.LastModified)
	return nil
}

func (s *Store) swap(result *LoadResult, loadedAt, lastModified time.Time) {
	s.mu.Lock()
	s.rows = result.Rows
	s.loadedAt = loadedAt
	s.lastModified = lastModified
	s.skipped = result.Skipped
	s.mu.Unlock()
}
