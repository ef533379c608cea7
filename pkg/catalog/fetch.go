package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/popdex/popdex/pkg/errors"
)

// FetchResult is one retrieved catalog payload.
type FetchResult struct {
	Text         string
	LastModified time.Time
}

// Fetcher retrieves the raw catalog text. The catalog source is a single
// HTTP-fetchable delimited resource; all connection mechanics live here,
// outside the parsing core.
type Fetcher interface {
	// Fetch downloads the full catalog payload.
	Fetch(ctx context.Context) (*FetchResult, error)

	// LastModified reports the server-side modification time without
	// downloading the payload.
	LastModified(ctx context.Context) (time.Time, error)
}

// HTTPFetcher fetches the catalog over HTTP.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher creates a fetcher for the given catalog URL. A nil
// client gets a default with a 30 second timeout.
func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{url: url, client: client}
}

// Fetch downloads the catalog text.
func (f *HTTPFetcher) Fetch(ctx context.Context) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.WrapFetch(f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFetchError(f.url, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapFetch(f.url, err)
	}

	return &FetchResult{
		Text:         string(body),
		LastModified: parseLastModified(resp.Header.Get("Last-Modified")),
	}, nil
}

// LastModified issues a HEAD request and returns the server-reported
// modification time, or the zero time when the server omits the header.
func (f *HTTPFetcher) LastModified(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, f.url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return time.Time{}, errors.WrapFetch(f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, errors.NewFetchError(f.url, resp.StatusCode, nil)
	}

	return parseLastModified(resp.Header.Get("Last-Modified")), nil
}

func parseLastModified(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := http.ParseTime(value)
	if err != nil {
		return time.Time{}
	}
	return t
}
