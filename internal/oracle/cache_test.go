package oracle

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/trackyear/internal/model"
)

type countingLookup struct {
	answer string
	calls  int32
}

func (c *countingLookup) LookupYear(ctx context.Context, title, artist string) (string, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.answer, nil
}

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "sub", "answers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestCache_PutGet(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)

	_, ok, err := cache.Get(ctx, "Song", "Artist")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "Song", "Artist", 1999))
	require.NoError(t, cache.Put(ctx, "Song", "Artist", 2001))

	year, ok, err := cache.Get(ctx, " song ", "ARTIST")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.Year(2001), year)

	n, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCache_SkipsUnresolved(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)

	require.NoError(t, cache.Put(ctx, "Song", "Artist", model.YearUnresolved))

	n, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCached_LookupYear(t *testing.T) {
	ctx := context.Background()
	inner := &countingLookup{answer: "1999"}
	lookup := NewCached(inner, openTestCache(t))

	for i := 0; i < 3; i++ {
		text, err := lookup.LookupYear(ctx, "Song", "Artist")
		require.NoError(t, err)
		assert.Equal(t, "1999", text)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}

func TestCached_DoesNotCacheMalformed(t *testing.T) {
	ctx := context.Background()
	inner := &countingLookup{answer: "not sure"}
	lookup := NewCached(inner, openTestCache(t))

	for i := 0; i < 2; i++ {
		text, err := lookup.LookupYear(ctx, "Song", "Artist")
		require.NoError(t, err)
		assert.Equal(t, "not sure", text)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}
