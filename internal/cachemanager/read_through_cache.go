package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache serves values from cache and falls back to fn on a miss.
// Errors from fn are never cached.
type ReadThroughCache[V any, I any] struct {
	cache           CacheManager[V]
	fn              func(ctx context.Context, input I) (V, error)
	shouldSkipCache bool
}

func NewReadThroughCache[V any, I any](
	cache CacheManager[V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[V, I] {
	return &ReadThroughCache[V, I]{
		cache:           cache,
		fn:              fn,
		shouldSkipCache: shouldSkipCache,
	}
}

func (r *ReadThroughCache[V, I]) Get(ctx context.Context, key string, input I, ttl time.Duration) (V, error) {
	if r.shouldSkipCache {
		return r.fn(ctx, input)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, ttl)

	return value, nil
}

// Invalidate drops cached values so the next Get goes to fn.
func (r *ReadThroughCache[V, I]) Invalidate(ctx context.Context, keys ...string) error {
	return r.cache.Delete(ctx, keys...)
}
