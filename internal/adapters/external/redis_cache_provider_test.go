package external

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

// setupMockRedis creates a mock Redis server for testing
func setupMockRedis(t *testing.T) (*miniredis.Miniredis, *ports.RedisConfig) {
	t.Helper()

	mockRedis := miniredis.RunT(t)

	redisConfig := &ports.RedisConfig{
		Addr:         mockRedis.Addr(),
		Password:     "",
		DB:           0,
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	}

	return mockRedis, redisConfig
}

func TestRedisCacheProviderAdapter_NewRedisCacheProviderAdapter(t *testing.T) {
	tests := []struct {
		name        string
		config      *ports.RedisConfig
		expectError bool
		errorType   errors.ErrorType
	}{
		{
			name:        "NilConfig",
			config:      nil,
			expectError: true,
			errorType:   errors.ErrorTypeConfiguration,
		},
		{
			name: "ValidConfig",
			config: func() *ports.RedisConfig {
				_, cfg := setupMockRedis(t)
				return cfg
			}(),
		},
		{
			name: "InvalidAddress",
			config: &ports.RedisConfig{
				Addr:         "invalid:address:port",
				DialTimeout:  5,
				ReadTimeout:  3,
				WriteTimeout: 3,
			},
			expectError: true,
			errorType:   errors.ErrorTypeExternalAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := NewRedisCacheProviderAdapter(tt.config)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, adapter)
				var appErr *errors.AppError
				if assert.ErrorAs(t, err, &appErr) {
					assert.Equal(t, tt.errorType, appErr.Type)
				}
				return
			}
			require.NoError(t, err)
			assert.NoError(t, adapter.Close())
		})
	}
}

func TestRedisCacheProviderAdapter_Operations(t *testing.T) {
	mockRedis, redisConfig := setupMockRedis(t)

	adapter, err := NewRedisCacheProviderAdapter(redisConfig)
	require.NoError(t, err)
	defer func() { _ = adapter.Close() }()

	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		value := []byte("{\"baseDate\":\"20250715\"}\n")

		require.NoError(t, adapter.Set(ctx, "kma/getVilageFcst/20250715_0500/60,127", value, time.Minute))

		retrieved, err := adapter.Get(ctx, "kma/getVilageFcst/20250715_0500/60,127")
		require.NoError(t, err)
		assert.Equal(t, value, retrieved)
		assert.True(t, mockRedis.Exists(redisKeyPrefix+"kma/getVilageFcst/20250715_0500/60,127"))
	})

	t.Run("GetNonExistentKey", func(t *testing.T) {
		retrieved, err := adapter.Get(ctx, "non-existent-key")
		assert.Nil(t, retrieved)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, adapter.Set(ctx, "delete-key", []byte("v"), time.Minute))
		require.NoError(t, adapter.Delete(ctx, "delete-key"))

		_, err := adapter.Get(ctx, "delete-key")
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := adapter.Exists(ctx, "exists-key")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, adapter.Set(ctx, "exists-key", []byte("v"), time.Minute))

		exists, err = adapter.Exists(ctx, "exists-key")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("TTLExpiration", func(t *testing.T) {
		require.NoError(t, adapter.Set(ctx, "ttl-key", []byte("v"), 100*time.Millisecond))

		mockRedis.FastForward(150 * time.Millisecond)

		_, err := adapter.Get(ctx, "ttl-key")
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("BinaryData", func(t *testing.T) {
		value := []byte{0x00, 0xff, 0x10, 0x00, 0x7f}
		require.NoError(t, adapter.Set(ctx, "binary", value, time.Minute))

		retrieved, err := adapter.Get(ctx, "binary")
		require.NoError(t, err)
		assert.Equal(t, value, retrieved)
	})
}

func TestRedisCacheProviderAdapter_ClearKeepsForeignKeys(t *testing.T) {
	mockRedis, redisConfig := setupMockRedis(t)

	adapter, err := NewRedisCacheProviderAdapter(redisConfig)
	require.NoError(t, err)
	defer func() { _ = adapter.Close() }()

	ctx := context.Background()
	require.NoError(t, mockRedis.Set("other-service:key", "keep"))
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, adapter.Set(ctx, key, []byte(key), time.Minute))
	}

	require.NoError(t, adapter.Clear(ctx))

	assert.Equal(t, []string{"other-service:key"}, mockRedis.Keys())
}

func TestRedisCacheProviderAdapter_ValidationErrors(t *testing.T) {
	_, redisConfig := setupMockRedis(t)

	adapter, err := NewRedisCacheProviderAdapter(redisConfig)
	require.NoError(t, err)
	defer func() { _ = adapter.Close() }()

	ctx := context.Background()

	tests := []struct {
		name      string
		operation func() error
	}{
		{name: "GetEmptyKey", operation: func() error { _, err := adapter.Get(ctx, ""); return err }},
		{name: "SetEmptyKey", operation: func() error { return adapter.Set(ctx, "", []byte("value"), time.Minute) }},
		{name: "SetNilValue", operation: func() error { return adapter.Set(ctx, "key", nil, time.Minute) }},
		{name: "SetZeroTTL", operation: func() error { return adapter.Set(ctx, "key", []byte("value"), 0) }},
		{name: "SetNegativeTTL", operation: func() error { return adapter.Set(ctx, "key", []byte("value"), -time.Minute) }},
		{name: "DeleteEmptyKey", operation: func() error { return adapter.Delete(ctx, "") }},
		{name: "ExistsEmptyKey", operation: func() error { _, err := adapter.Exists(ctx, ""); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation()
			var appErr *errors.AppError
			if assert.ErrorAs(t, err, &appErr) {
				assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
			}
		})
	}
}

func TestRedisCacheProviderAdapter_Ping(t *testing.T) {
	_, redisConfig := setupMockRedis(t)

	adapter, err := NewRedisCacheProviderAdapter(redisConfig)
	require.NoError(t, err)
	defer func() { _ = adapter.Close() }()

	var _ ports.CacheProvider = adapter

	assert.NoError(t, adapter.Ping(context.Background()))
}
