package sources_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/popdex/popdex/pkg/errors"
	"github.com/popdex/popdex/pkg/sources"
)

// stubSource is a scripted adapter for fan-out tests.
type stubSource struct {
	name    string
	label   sources.Label
	timeout time.Duration
	records []sources.Record
	err     error
	delay   time.Duration
}

func (s *stubSource) Name() string           { return s.name }
func (s *stubSource) Label() sources.Label   { return s.label }
func (s *stubSource) Timeout() time.Duration { return s.timeout }

func (s *stubSource) Lookup(ctx context.Context, query string) ([]sources.Record, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.records, s.err
}

func TestDecodeRecords(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		data := []byte(`[
            {"name": "Sung Jinwoo", "number": "1982", "series": "Solo Leveling",
             "image_ref": "https://img/sj.png", "external_id": "X1",
             "price": {"amount": 14.99, "currency": "USD"}},
            {"name": "Cha Hae-In"}
        ]`)

		records, err := sources.DecodeRecords(data, sources.Marketplace)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, sources.Marketplace, records[0].Source)
		assert.Equal(t, "1982", records[0].Number)
		assert.InDelta(t, 14.99, records[0].Price.Amount, 0.001)
		assert.Equal(t, sources.Marketplace, records[1].Source)
	})

	t.Run("unknown fields fail fast", func(t *testing.T) {
		data := []byte(`[{"name": "X", "seller_rating": 4.5}]`)
		_, err := sources.DecodeRecords(data, sources.Marketplace)
		assert.Error(t, err)
	})

	t.Run("shape mismatch fails fast", func(t *testing.T) {
		_, err := sources.DecodeRecords([]byte(`{"name": "not an array"}`), sources.BarcodeDB)
		assert.Error(t, err)
	})

	t.Run("missing name fails validation", func(t *testing.T) {
		_, err := sources.DecodeRecords([]byte(`[{"number": "1982"}]`), sources.BarcodeDB)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("non-numeric number fails validation", func(t *testing.T) {
		_, err := sources.DecodeRecords([]byte(`[{"name": "X", "number": "12a"}]`), sources.BarcodeDB)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestLookupAllFanOut(t *testing.T) {
	srcs := []sources.Source{
		&stubSource{
			name:    "ebay",
			label:   sources.Marketplace,
			records: []sources.Record{{Name: "Sung Jinwoo listing", Source: sources.Marketplace}},
		},
		&stubSource{
			name:    "upcdb",
			label:   sources.BarcodeDB,
			records: []sources.Record{{Name: "Sung Jinwoo", Source: sources.BarcodeDB}},
		},
	}

	results := sources.LookupAll(context.Background(), srcs, "sung jinwoo")
	require.Len(t, results, 2)

	// Priority order: barcode-db before marketplace.
	assert.Equal(t, "upcdb", results[0].Source)
	assert.Equal(t, "ebay", results[1].Source)
	assert.NoError(t, results[0].Err)
}

func TestLookupAllTimeoutIsPartialSuccess(t *testing.T) {
	srcs := []sources.Source{
		&stubSource{
			name:    "slow",
			label:   sources.Marketplace,
			timeout: 20 * time.Millisecond,
			delay:   500 * time.Millisecond,
		},
		&stubSource{
			name:    "fast",
			label:   sources.BarcodeDB,
			records: []sources.Record{{Name: "Found", Source: sources.BarcodeDB}},
		},
	}

	start := time.Now()
	results := sources.LookupAll(context.Background(), srcs, "q")
	require.Len(t, results, 2)
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	fast, slow := results[0], results[1]
	assert.Equal(t, "fast", fast.Source)
	assert.NoError(t, fast.Err)
	assert.Len(t, fast.Records, 1)

	assert.Equal(t, "slow", slow.Source)
	require.Error(t, slow.Err)
	assert.True(t, pkgerrors.IsTimeout(slow.Err))
	assert.Empty(t, slow.Records)
}

func TestLookupAllAdapterFailure(t *testing.T) {
	srcs := []sources.Source{
		&stubSource{name: "broken", label: sources.BarcodeDB, err: errors.New("bad gateway")},
	}

	results := sources.LookupAll(context.Background(), srcs, "q")
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.False(t, pkgerrors.IsTimeout(results[0].Err))
}

func TestLookupAllNoSources(t *testing.T) {
	assert.Empty(t, sources.LookupAll(context.Background(), nil, "q"))
}

func TestLabelPriority(t *testing.T) {
	assert.Less(t, sources.Catalog.Priority(), sources.BarcodeDB.Priority())
	assert.Less(t, sources.BarcodeDB.Priority(), sources.Marketplace.Priority())
	assert.True(t, sources.Catalog.Official())
	assert.False(t, sources.Marketplace.Official())
}
