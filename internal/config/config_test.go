package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todayweather.app/pkg/errors"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_GO_KR_SERVICE_KEY", "service-key")
	t.Setenv("KAKAO_REST_KEY", "kakao-key")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, CacheTypeMemory, cfg.Cache.Type)
	assert.Equal(t, 1440, cfg.Cache.TTLMinutes)
	assert.Equal(t, 60, cfg.Cache.PurgeIntervalMinutes)
	assert.Equal(t, 25, cfg.Fusion.ObservationHours)
	assert.Equal(t, "https://apis.data.go.kr/1360000", cfg.DataGoKr.BaseURL)
	assert.Equal(t, []string{"37.5665:126.9780"}, cfg.Warmup.Locations)
	assert.False(t, cfg.Warmup.Enabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_TYPE", "s3")
	t.Setenv("S3_BUCKET", "weather-cache")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("WARMUP_ENABLED", "true")
	t.Setenv("WARMUP_LOCATIONS", "37.5665:126.9780,35.1796:129.0756")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, CacheTypeS3, cfg.Cache.Type)
	assert.Equal(t, "weather-cache", cfg.Cache.S3.Bucket)
	assert.True(t, cfg.Cache.S3.UsePathStyle)

	coords, err := cfg.Warmup.Coordinates()
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{37.5665, 126.9780}, {35.1796, 129.0756}}, coords)
}

func TestLoadConfig_MissingServiceKey(t *testing.T) {
	t.Setenv("KAKAO_REST_KEY", "kakao-key")
	t.Setenv("DATA_GO_KR_SERVICE_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestCacheConfig_Validate(t *testing.T) {
	validRedis := RedisConfig{Addr: "localhost:6379", DialTimeout: 5, ReadTimeout: 3, WriteTimeout: 3}

	tests := []struct {
		name    string
		config  CacheConfig
		wantErr bool
	}{
		{name: "memory", config: CacheConfig{Type: CacheTypeMemory, TTLMinutes: 60}},
		{name: "database", config: CacheConfig{Type: CacheTypeDatabase, TTLMinutes: 60}},
		{name: "redis", config: CacheConfig{Type: CacheTypeRedis, TTLMinutes: 60, Redis: validRedis}},
		{name: "redis without address", config: CacheConfig{Type: CacheTypeRedis, TTLMinutes: 60, Redis: RedisConfig{DialTimeout: 5, ReadTimeout: 3, WriteTimeout: 3}}, wantErr: true},
		{name: "s3 without bucket", config: CacheConfig{Type: CacheTypeS3, TTLMinutes: 60, S3: S3Config{Region: "ap-northeast-2"}}, wantErr: true},
		{name: "s3 with half credentials", config: CacheConfig{Type: CacheTypeS3, TTLMinutes: 60, S3: S3Config{Bucket: "b", Region: "r", AccessKeyID: "id"}}, wantErr: true},
		{name: "s3 with bad endpoint", config: CacheConfig{Type: CacheTypeS3, TTLMinutes: 60, S3: S3Config{Bucket: "b", Region: "r", Endpoint: "minio:9000"}}, wantErr: true},
		{name: "unknown type", config: CacheConfig{Type: CacheTypeFromString("memcached"), TTLMinutes: 60}, wantErr: true},
		{name: "zero ttl", config: CacheConfig{Type: CacheTypeMemory}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsConfigurationError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWarmupConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  WarmupConfig
		wantErr bool
	}{
		{name: "disabled ignores locations", config: WarmupConfig{Locations: []string{"bogus"}}},
		{name: "valid", config: WarmupConfig{Enabled: true, IntervalMinutes: 30, Locations: []string{"37.5:127.0"}}},
		{name: "missing separator", config: WarmupConfig{Enabled: true, IntervalMinutes: 30, Locations: []string{"37.5,127.0"}}, wantErr: true},
		{name: "bad latitude", config: WarmupConfig{Enabled: true, IntervalMinutes: 30, Locations: []string{"north:127.0"}}, wantErr: true},
		{name: "no locations", config: WarmupConfig{Enabled: true, IntervalMinutes: 30}, wantErr: true},
		{name: "interval too long", config: WarmupConfig{Enabled: true, IntervalMinutes: 5000, Locations: []string{"37.5:127.0"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCacheTypeFromString(t *testing.T) {
	assert.Equal(t, CacheTypeRedis, CacheTypeFromString(" Redis "))
	assert.Equal(t, CacheTypeDatabase, CacheTypeFromString("database"))
	assert.Equal(t, CacheTypeUnknown, CacheTypeFromString(""))
	assert.Equal(t, "s3", CacheTypeS3.String())
}
