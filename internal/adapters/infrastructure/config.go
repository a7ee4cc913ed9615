package infrastructure

import (
	"time"

	"todayweather.app/internal/config"
	"todayweather.app/internal/ports"
)

// ConfigProviderAdapter implements the ConfigProvider port
type ConfigProviderAdapter struct {
	config *config.Config
}

// NewConfigProviderAdapter creates a new config provider adapter
func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{
		config: cfg,
	}
}

// GetFusionConfig returns the fusion use case configuration
func (c *ConfigProviderAdapter) GetFusionConfig() ports.FusionConfig {
	return ports.FusionConfig{
		CacheTTL:              time.Duration(c.config.Cache.TTLMinutes) * time.Minute,
		ObservationHours:      c.config.Fusion.ObservationHours,
		StationCount:          c.config.Fusion.StationCount,
		MeasuringStationCount: c.config.Fusion.MeasuringStationCount,
		FetchConcurrency:      c.config.Fusion.FetchConcurrency,
	}
}

// GetServerConfig returns server configuration
func (c *ConfigProviderAdapter) GetServerConfig() ports.ServerConfig {
	return ports.ServerConfig{
		Port:         c.config.Server.Port,
		ReadTimeout:  config.Duration(c.config.Server.ReadTimeoutSeconds),
		WriteTimeout: config.Duration(c.config.Server.WriteTimeoutSeconds),
	}
}

// GetDatabaseConfig returns database configuration
func (c *ConfigProviderAdapter) GetDatabaseConfig() ports.DatabaseConfig {
	return ports.DatabaseConfig{
		Host:     c.config.Database.Host,
		Port:     c.config.Database.Port,
		User:     c.config.Database.User,
		Password: c.config.Database.Password,
		Name:     c.config.Database.Name,
		SSLMode:  c.config.Database.SSLMode,
	}
}

// GetUpstreamConfig returns the upstream provider configuration
func (c *ConfigProviderAdapter) GetUpstreamConfig() ports.UpstreamConfig {
	d := c.config.DataGoKr
	return ports.UpstreamConfig{
		ServiceKey:         d.ServiceKey,
		DataGoKrBaseURL:    d.BaseURL,
		AirKoreaBaseURL:    d.AirKoreaBaseURL,
		LivingIndexBaseURL: d.LivingIndexBaseURL,
		AsosBaseURL:        d.AsosBaseURL,
		KakaoBaseURL:       c.config.Kakao.BaseURL,
		KakaoRESTKey:       c.config.Kakao.RESTKey,
		ScraperBaseURL:     c.config.Scraper.BaseURL,
		AWSScraperBaseURL:  c.config.Scraper.AWSBaseURL,
		Timeout:            config.Duration(d.TimeoutSeconds),
		RatePerSecond:      d.RatePerSecond,
		RateBurst:          d.RateBurst,
		BreakerMaxRequests: d.BreakerMaxRequests,
		BreakerInterval:    config.Duration(d.BreakerIntervalSec),
		BreakerTimeout:     config.Duration(d.BreakerTimeoutSec),
	}
}

// GetCacheConfig returns cache configuration
func (c *ConfigProviderAdapter) GetCacheConfig() ports.CacheConfig {
	cache := c.config.Cache
	return ports.CacheConfig{
		Type:          cache.Type.String(),
		TTL:           time.Duration(cache.TTLMinutes) * time.Minute,
		PurgeInterval: time.Duration(cache.PurgeIntervalMinutes) * time.Minute,
		Redis: ports.RedisConfig{
			Addr:         cache.Redis.Addr,
			Password:     cache.Redis.Password,
			DB:           cache.Redis.DB,
			DialTimeout:  cache.Redis.DialTimeout,
			ReadTimeout:  cache.Redis.ReadTimeout,
			WriteTimeout: cache.Redis.WriteTimeout,
		},
		S3: ports.S3Config{
			Bucket:          cache.S3.Bucket,
			Region:          cache.S3.Region,
			Endpoint:        cache.S3.Endpoint,
			AccessKeyID:     cache.S3.AccessKeyID,
			SecretAccessKey: cache.S3.SecretAccessKey,
			Prefix:          cache.S3.Prefix,
			UsePathStyle:    cache.S3.UsePathStyle,
		},
	}
}

// GetWarmupConfig returns the cache warm-up configuration. Locations were
// validated when the configuration was loaded.
func (c *ConfigProviderAdapter) GetWarmupConfig() ports.WarmupConfig {
	warmup := ports.WarmupConfig{
		Enabled:         c.config.Warmup.Enabled,
		IntervalMinutes: c.config.Warmup.IntervalMinutes,
	}
	coords, err := c.config.Warmup.Coordinates()
	if err != nil {
		return warmup
	}
	for _, coord := range coords {
		warmup.Locations = append(warmup.Locations, ports.WarmupLocation{Lat: coord[0], Lon: coord[1]})
	}
	return warmup
}

// GetLoggingConfig returns the raw logging settings
func (c *ConfigProviderAdapter) GetLoggingConfig() config.LoggingConfig {
	return c.config.Logging
}
