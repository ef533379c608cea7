package popdex

import (
	"fmt"
	"net/http"
	"time"

	"github.com/popdex/popdex/pkg/catalog"
	"github.com/popdex/popdex/pkg/sources"
)

// config holds the assembled instance configuration.
type config struct {
	catalogURL string
	httpClient *http.Client
	fetcher    catalog.Fetcher

	initialText string
	cachePath   string
	ttl         time.Duration

	sources []sources.Source

	autoUpdatesEnabled bool
	autoUpdateInterval time.Duration
}

func defaultConfig() *config {
	return &config{
		ttl:                catalog.DefaultTTL,
		autoUpdateInterval: 6 * time.Hour,
	}
}

// Option is a function that configures a Popdex instance.
type Option func(*config) error

func (p *popdex) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(p.config); err != nil {
			return err
		}
	}
	return nil
}

// WithCatalogURL configures the remote catalog resource to fetch.
func WithCatalogURL(url string) Option {
	return func(c *config) error {
		if url == "" {
			return fmt.Errorf("catalog URL cannot be empty")
		}
		c.catalogURL = url
		return nil
	}
}

// WithHTTPClient overrides the HTTP client used to fetch the catalog.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) error {
		c.httpClient = client
		return nil
	}
}

// WithFetcher overrides the catalog fetcher entirely. Takes precedence
// over WithCatalogURL.
func WithFetcher(f catalog.Fetcher) Option {
	return func(c *config) error {
		c.fetcher = f
		return nil
	}
}

// WithInitialCatalog seeds the store with already-fetched catalog text,
// parsed at construction time.
func WithInitialCatalog(rawText string) Option {
	return func(c *config) error {
		c.initialText = rawText
		return nil
	}
}

// WithSnapshotCache enables the on-disk snapshot cache at the given
// database path.
func WithSnapshotCache(path string) Option {
	return func(c *config) error {
		c.cachePath = path
		return nil
	}
}

// WithTTL overrides how long a snapshot is served before the store
// fails closed.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) error {
		if ttl <= 0 {
			return fmt.Errorf("ttl must be positive")
		}
		c.ttl = ttl
		return nil
	}
}

// WithSources registers external lookup adapters queried on every
// resolution pass.
func WithSources(srcs ...sources.Source) Option {
	return func(c *config) error {
		c.sources = append(c.sources, srcs...)
		return nil
	}
}

// WithAutoUpdates configures whether periodic background reloads are
// enabled.
func WithAutoUpdates(enabled bool) Option {
	return func(c *config) error {
		c.autoUpdatesEnabled = enabled
		return nil
	}
}

// WithAutoUpdateInterval configures how often the background reload
// runs.
func WithAutoUpdateInterval(interval time.Duration) Option {
	return func(c *config) error {
		if interval <= 0 {
			return fmt.Errorf("update interval must be positive")
		}
		c.autoUpdateInterval = interval
		return nil
	}
}
