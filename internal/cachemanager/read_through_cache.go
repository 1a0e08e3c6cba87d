package cachemanager

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader decodes the value stored for path.
type Loader[V any] func(ctx context.Context, path string) (V, error)

// ReadThroughCache loads missing paths with a Loader and stores the result.
// Concurrent misses for one path share a single load.
type ReadThroughCache[V any] struct {
	cache  CacheManager[string, V]
	load   Loader[V]
	ttl    time.Duration
	bypass bool
	group  singleflight.Group
}

// NewReadThroughCache wraps cache, storing loaded values for ttl.
// With bypass set every Get loads.
func NewReadThroughCache[V any](cache CacheManager[string, V], load Loader[V], ttl time.Duration, bypass bool) *ReadThroughCache[V] {
	return &ReadThroughCache[V]{cache: cache, load: load, ttl: ttl, bypass: bypass}
}

// Get returns the value for path, loading it on a miss.
// Failed loads are not cached.
func (r *ReadThroughCache[V]) Get(ctx context.Context, path string) (V, error) {
	if r.bypass {
		return r.load(ctx, path)
	}
	if value, ok := r.cache.Get(ctx, path); ok {
		return value, nil
	}
	return r.fill(ctx, path)
}

// GetWithRefresh is Get that also extends the lifetime of a hit.
func (r *ReadThroughCache[V]) GetWithRefresh(ctx context.Context, path string) (V, error) {
	if r.bypass {
		return r.load(ctx, path)
	}
	if value, ok := r.cache.GetWithRefresh(ctx, path, r.ttl); ok {
		return value, nil
	}
	return r.fill(ctx, path)
}

// Invalidate drops paths so the next Get reloads them.
func (r *ReadThroughCache[V]) Invalidate(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		r.group.Forget(path)
	}
	return r.cache.Delete(ctx, paths...)
}

func (r *ReadThroughCache[V]) fill(ctx context.Context, path string) (V, error) {
	v, err, _ := r.group.Do(path, func() (any, error) {
		value, err := r.load(ctx, path)
		if err != nil {
			return nil, err
		}
		r.cache.Set(ctx, path, value, r.ttl)
		return value, nil
	})
	value, _ := v.(V)
	return value, err
}
