package cache

import (
	"context"
	"errors"
	"testing"

	"instogram/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeedCache(t *testing.T) (*FeedCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewFeedCache(client), mr
}

func countingLoader(calls *int, posts []models.Post) FeedLoader {
	return func(context.Context) ([]models.Post, error) {
		*calls++
		return posts, nil
	}
}

func TestFeedCache_MissThenHit(t *testing.T) {
	fc, mr := newTestFeedCache(t)
	ctx := context.Background()

	calls := 0
	load := countingLoader(&calls, []models.Post{{ID: "p1", Content: "hello"}})

	first, err := fc.Read(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	stored, err := mr.Get(FeedKey)
	require.NoError(t, err)
	assert.Equal(t, string(first), stored)
	assert.Zero(t, mr.TTL(FeedKey), "feed entry must not expire")

	second, err := fc.Read(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "hit must not reach storage")
	assert.Equal(t, first, second)
}

func TestFeedCache_HitReturnsStoredBytesVerbatim(t *testing.T) {
	fc, mr := newTestFeedCache(t)
	require.NoError(t, mr.Set(FeedKey, `[{"id":"stale"}]`))

	got, err := fc.Read(context.Background(), func(context.Context) ([]models.Post, error) {
		t.Fatal("loader must not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"stale"}]`, string(got))
}

func TestFeedCache_InvalidateForcesReload(t *testing.T) {
	fc, mr := newTestFeedCache(t)
	ctx := context.Background()

	calls := 0
	load := countingLoader(&calls, nil)

	payload, err := fc.Read(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(payload))

	fc.Invalidate(ctx)
	assert.False(t, mr.Exists(FeedKey))

	_, err = fc.Read(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFeedCache_LoaderErrorIsNotCached(t *testing.T) {
	fc, mr := newTestFeedCache(t)

	_, err := fc.Read(context.Background(), func(context.Context) ([]models.Post, error) {
		return nil, models.NewInternalError(errors.New("db down"))
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.False(t, mr.Exists(FeedKey))
}

func TestFeedCache_RedisDownDegradesToStorage(t *testing.T) {
	fc, mr := newTestFeedCache(t)
	mr.Close()

	calls := 0
	payload, err := fc.Read(context.Background(), countingLoader(&calls, []models.Post{{ID: "p1"}}))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, string(payload), `"id":"p1"`)

	// Invalidate must not panic or surface errors.
	fc.Invalidate(context.Background())
}

func TestFeedCache_NilClient(t *testing.T) {
	fc := NewFeedCache((*redis.Client)(nil))

	calls := 0
	_, err := fc.Read(context.Background(), countingLoader(&calls, nil))
	require.NoError(t, err)
	_, err = fc.Read(context.Background(), countingLoader(&calls, nil))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	fc.Invalidate(context.Background())
	assert.Error(t, fc.Ping(context.Background()))
}
