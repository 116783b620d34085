package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type employeeOption struct {
	ID       string
	Division string
}

func TestInMemoryCacheManager_GetExistingValue_StructType(t *testing.T) {
	cache := NewInMemoryCacheManager[employeeOption]("options", DefaultExpiration, DefaultCleanupInterval)
	opt := employeeOption{ID: "4", Division: "North"}

	cache.Set(context.Background(), "employees", opt, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "employees")
	require.True(t, ok)
	require.Equal(t, opt, got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := NewInMemoryCacheManager[string]("options", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "divisions")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWrongType(t *testing.T) {
	cache := NewInMemoryCacheManager[string]("options", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("divisions", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "divisions")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[string]("options", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "cities", "Lisbon", 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "cities")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string]("options", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)

	require.NoError(t, cache.Delete(ctx))
	require.NoError(t, cache.Delete(ctx, "a", "missing"))
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)

	require.NoError(t, cache.Flush(ctx))
	_, ok = cache.Get(ctx, "b")
	require.False(t, ok)
}
