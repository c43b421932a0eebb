package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"instogram/internal/models"
	"instogram/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// FeedKey is the single key holding the serialized latest feed.
const FeedKey = "posts"

// FeedLoader rebuilds the feed from storage on a cache miss.
type FeedLoader func(ctx context.Context) ([]models.Post, error)

// FeedCache is a cache-aside store for the latest feed. Entries never
// expire; every post mutation deletes the key.
type FeedCache struct {
	client *redis.Client
}

// NewFeedCache returns a FeedCache over client. A nil client disables caching.
func NewFeedCache(client *redis.Client) *FeedCache {
	return &FeedCache{client: client}
}

// Read returns the cached feed bytes verbatim, or loads, stores and returns
// a freshly encoded feed. Redis failures degrade to a miss.
func (f *FeedCache) Read(ctx context.Context, load FeedLoader) ([]byte, error) {
	span, ctx := observability.NewSpan(ctx, "cache.feed.read", attribute.String("cache.key", FeedKey))
	defer span.End()

	if f.client != nil {
		cached, err := f.client.Get(ctx, FeedKey).Bytes()
		switch {
		case err == nil:
			observability.FeedCacheHits.Inc()
			span.AddAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		case !errors.Is(err, redis.Nil):
			observability.Logger.WarnContext(ctx, "feed cache read failed, loading from storage",
				slog.String("error", err.Error()))
		}
	}

	observability.FeedCacheMisses.Inc()
	span.AddAttributes(attribute.Bool("cache.hit", false))

	posts, err := load(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}

	payload, err := json.Marshal(posts)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}

	if f.client != nil {
		if err := f.client.Set(ctx, FeedKey, payload, 0).Err(); err != nil {
			observability.Logger.WarnContext(ctx, "feed cache write failed",
				slog.String("error", err.Error()))
		}
	}

	return payload, nil
}

// Invalidate deletes the cached feed. Errors are logged, not returned.
func (f *FeedCache) Invalidate(ctx context.Context) {
	if f.client == nil {
		return
	}
	observability.FeedCacheInvalidations.Inc()
	if err := f.client.Del(ctx, FeedKey).Err(); err != nil {
		observability.Logger.ErrorContext(ctx, "feed cache invalidation failed",
			slog.String("error", err.Error()))
	}
}

// Ping reports whether the cache backend is reachable.
func (f *FeedCache) Ping(ctx context.Context) error {
	if f.client == nil {
		return errors.New("redis unavailable")
	}
	return f.client.Ping(ctx).Err()
}
