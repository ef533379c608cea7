package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/popdex/popdex/pkg/errors"
)

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.Get()
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)

	loadedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastMod := loadedAt.Add(-time.Hour)

	require.NoError(t, cache.Put(CachedSnapshot{
		RawText:      "hdbid,name\n1,Alpha\n",
		LastModified: lastMod,
		LoadedAt:     loadedAt,
	}))

	snap, err := cache.Get()
	require.NoError(t, err)
	assert.Equal(t, "hdbid,name\n1,Alpha\n", snap.RawText)
	assert.True(t, snap.LastModified.Equal(lastMod))
	assert.True(t, snap.LoadedAt.Equal(loadedAt))

	// A second Put replaces the single cached payload.
	require.NoError(t, cache.Put(CachedSnapshot{
		RawText:  "hdbid,name\n2,Beta\n",
		LoadedAt: loadedAt.Add(time.Hour),
	}))

	snap, err = cache.Get()
	require.NoError(t, err)
	assert.Contains(t, snap.RawText, "Beta")
}
