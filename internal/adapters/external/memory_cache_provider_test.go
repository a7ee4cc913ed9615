package external

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"todayweather.app/internal/mocks"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

func TestMemoryCacheProvider_Operations(t *testing.T) {
	now := time.Date(2025, 7, 15, 5, 0, 0, 0, time.UTC)
	cache := NewMemoryCacheProvider()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	value := []byte("line-1\nline-2\n")
	require.NoError(t, cache.Set(ctx, "k", value, time.Minute))

	value[0] = 'X'
	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("line-1\nline-2\n"), got, "stored value must not alias the caller's slice")

	got[0] = 'Y'
	again, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, byte('l'), again[0])

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	now = now.Add(2 * time.Minute)

	exists, err = cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = cache.Get(ctx, "k")
	assert.True(t, errors.IsNotFoundError(err))
	assert.Equal(t, 0, cache.Len(), "expired entry is dropped on read")

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "a"))
	_, err = cache.Get(ctx, "a")
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, cache.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCacheProvider_ValidationErrors(t *testing.T) {
	cache := NewMemoryCacheProvider()
	ctx := context.Background()

	tests := []struct {
		name      string
		operation func() error
	}{
		{name: "GetEmptyKey", operation: func() error { _, err := cache.Get(ctx, ""); return err }},
		{name: "SetEmptyKey", operation: func() error { return cache.Set(ctx, "", []byte("v"), time.Minute) }},
		{name: "SetNilValue", operation: func() error { return cache.Set(ctx, "k", nil, time.Minute) }},
		{name: "SetZeroTTL", operation: func() error { return cache.Set(ctx, "k", []byte("v"), 0) }},
		{name: "DeleteEmptyKey", operation: func() error { return cache.Delete(ctx, "") }},
		{name: "ExistsEmptyKey", operation: func() error { _, err := cache.Exists(ctx, ""); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.IsValidationError(tt.operation()))
		})
	}
}

func TestMemoryCacheProvider_EmptyValueIsStored(t *testing.T) {
	cache := NewMemoryCacheProvider()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "empty", []byte{}, time.Minute))

	got, err := cache.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInstrumentedCacheProvider(t *testing.T) {
	metrics := mocks.NewCacheMetrics()
	logger := mocks.NewRecordingLogger()
	cache := NewInstrumentedCacheProvider(NewMemoryCacheProvider(), metrics, logger)
	ctx := context.Background()

	var _ ports.CacheProvider = cache

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))

	_, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	_, err = cache.Get(ctx, "missing")
	assert.True(t, errors.IsNotFoundError(err))
	_, err = cache.Get(ctx, "k")
	require.NoError(t, err)

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRatio, 1e-9)
	assert.Equal(t, 3, metrics.Operations["get"])
	assert.Equal(t, 1, metrics.Operations["set"])
	assert.True(t, logger.Has("DEBUG", "cache miss"))

	err = cache.Set(ctx, "", []byte("v"), time.Minute)
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, logger.Has("WARN", "cache set failed"))

	require.NoError(t, cache.Delete(ctx, "k"))
	require.NoError(t, cache.Clear(ctx))
	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 1, metrics.Operations["exists"])
}
