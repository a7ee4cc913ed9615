package app

import (
	"context"
	"io"
	"net/http"
	"os"

	"gorm.io/gorm"

	"todayweather.app/internal/adapters/database"
	"todayweather.app/internal/adapters/external"
	"todayweather.app/internal/adapters/infrastructure"
	"todayweather.app/internal/config"
	"todayweather.app/internal/ports"
	"todayweather.app/internal/scheduler"
	"todayweather.app/metrics"
	"todayweather.app/pkg/errors"
)

// Upstream client names, used as metric labels and breaker names.
const (
	upstreamKMA     = "kma"
	upstreamKECO    = "keco"
	upstreamKakao   = "kakao"
	upstreamScraper = "kma-web"
)

type DependencyContainer struct {
	config         *config.Config
	configProvider *infrastructure.ConfigProviderAdapter
	logger         ports.Logger
	logCloser      io.Closer
	db             *gorm.DB
	cacheBackend   ports.CacheProvider
	cacheMetrics   *metrics.CacheMetrics
	fetchMetrics   *metrics.FetchMetrics
	upstreams      []*external.ResilientHTTPClient
	ports          *ports.ApplicationPorts
}

// NewDependencyContainer builds every adapter from the loaded configuration
func NewDependencyContainer(ctx context.Context, cfg *config.Config) (*DependencyContainer, error) {
	container := &DependencyContainer{
		config:         cfg,
		configProvider: infrastructure.NewConfigProviderAdapter(cfg),
	}

	if err := container.initializeLogger(); err != nil {
		return nil, err
	}

	if err := container.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := container.initializeCache(ctx); err != nil {
		_ = container.Cleanup()
		return nil, err
	}

	if err := container.initializePorts(); err != nil {
		_ = container.Cleanup()
		return nil, err
	}

	return container, nil
}

func (c *DependencyContainer) initializeLogger() error {
	logging := c.config.Logging
	if logging.FilePath == "" {
		c.logger = infrastructure.NewSlogLoggerAdapter(os.Stdout, logging.Level, logging.Format)
		return nil
	}

	fileLogger, err := infrastructure.NewFileLoggerAdapter(logging.FilePath, logging.Level, os.Stdout)
	if err != nil {
		return err
	}
	c.logger = fileLogger
	c.logCloser = fileLogger
	c.logger.Info("File logging enabled", ports.F("path", logging.FilePath))
	return nil
}

// initializeDatabase connects only when the database backs the object cache.
func (c *DependencyContainer) initializeDatabase() error {
	if c.config.Cache.Type != config.CacheTypeDatabase {
		return nil
	}

	c.logger.Info("Initializing database connection...")
	db, err := database.Open(c.configProvider.GetDatabaseConfig())
	if err != nil {
		return err
	}

	c.logger.Info("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return err
	}

	c.db = db
	c.logger.Info("Database connection established successfully")
	return nil
}

func (c *DependencyContainer) initializeCache(ctx context.Context) error {
	cacheConfig := c.configProvider.GetCacheConfig()

	backend, err := external.NewCacheProviderFactory(c.db).CreateCacheProvider(ctx, &cacheConfig)
	if err != nil {
		return err
	}

	c.cacheBackend = backend
	c.cacheMetrics = metrics.NewCacheMetrics(cacheConfig.Type)
	c.fetchMetrics = metrics.NewFetchMetrics()

	c.logger.Info("Cache provider initialized",
		ports.F("type", cacheConfig.Type),
		ports.F("ttl", cacheConfig.TTL.String()))
	return nil
}

func (c *DependencyContainer) newUpstreamClient(name string, upstream ports.UpstreamConfig) *external.ResilientHTTPClient {
	client := external.NewResilientHTTPClient(external.ResilientHTTPClientParams{
		Name:               name,
		Client:             external.NewHTTPClientLoggingDecorator(&http.Client{Timeout: upstream.Timeout}, name, c.logger),
		RatePerSecond:      upstream.RatePerSecond,
		RateBurst:          upstream.RateBurst,
		BreakerMaxRequests: upstream.BreakerMaxRequests,
		BreakerInterval:    upstream.BreakerInterval,
		BreakerTimeout:     upstream.BreakerTimeout,
		Metrics:            c.fetchMetrics,
	})
	c.upstreams = append(c.upstreams, client)
	return client
}

func (c *DependencyContainer) initializePorts() error {
	c.logger.Info("Initializing ports...")
	upstream := c.configProvider.GetUpstreamConfig()

	kmaClient := c.newUpstreamClient(upstreamKMA, upstream)
	kecoClient := c.newUpstreamClient(upstreamKECO, upstream)
	kakaoClient := c.newUpstreamClient(upstreamKakao, upstream)
	scraperClient := c.newUpstreamClient(upstreamScraper, upstream)

	dataGoKr, err := external.NewDataGoKrProvider(external.DataGoKrProviderParams{
		ServiceKey:         upstream.ServiceKey,
		BaseURL:            upstream.DataGoKrBaseURL,
		LivingIndexBaseURL: upstream.LivingIndexBaseURL,
		AsosBaseURL:        upstream.AsosBaseURL,
		Client:             kmaClient,
		Logger:             c.logger,
	})
	if err != nil {
		return err
	}

	airKorea, err := external.NewAirKoreaProvider(external.AirKoreaProviderParams{
		ServiceKey: upstream.ServiceKey,
		BaseURL:    upstream.AirKoreaBaseURL,
		Client:     kecoClient,
	})
	if err != nil {
		return err
	}

	geocoder, err := external.NewKakaoGeocoder(external.KakaoGeocoderParams{
		RESTKey: upstream.KakaoRESTKey,
		BaseURL: upstream.KakaoBaseURL,
		Client:  kakaoClient,
	})
	if err != nil {
		return err
	}

	scraper, err := external.NewKmaScraperAdapter(external.KmaScraperParams{
		BaseURL:    upstream.ScraperBaseURL,
		AWSBaseURL: upstream.AWSScraperBaseURL,
		Client:     scraperClient,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}

	c.ports = &ports.ApplicationPorts{
		Geocoder:   geocoder,
		Grid:       dataGoKr,
		Region:     dataGoKr,
		Stations:   scraper,
		AirQuality: airKorea,
		UV:         dataGoKr,
		History:    dataGoKr,

		ObjectCache:  external.NewInstrumentedCacheProvider(c.cacheBackend, c.cacheMetrics, c.logger),
		CacheMetrics: c.cacheMetrics,

		ConfigProvider:  c.configProvider,
		Logger:          c.logger,
		FetchMetrics:    c.fetchMetrics,
		ProviderMetrics: c.fetchMetrics,
	}

	c.logger.Info("Ports initialized successfully")
	return nil
}

func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

// HealthChecker builds the system health checker over the cache backend and upstream breakers
func (c *DependencyContainer) HealthChecker() *infrastructure.SystemHealthChecker {
	return infrastructure.NewSystemHealthChecker(infrastructure.SystemHealthCheckerConfig{
		CacheChecker:    infrastructure.NewCacheHealthChecker(c.cacheMetrics.CacheType(), c.cacheBackend, c.cacheMetrics),
		UpstreamChecker: infrastructure.NewUpstreamHealthChecker(c.breakers()...),
		ConfigProvider:  c.configProvider,
	})
}

// MetricsCollector builds the JSON metrics view served on /api/metrics
func (c *DependencyContainer) MetricsCollector() *infrastructure.MetricsCollectorAdapter {
	return infrastructure.NewMetricsCollectorAdapter(infrastructure.MetricsCollectorConfig{
		CacheType:    c.cacheMetrics.CacheType(),
		CacheMetrics: c.cacheMetrics,
		FetchStats:   c.fetchMetrics,
		Upstreams:    c.breakers(),
	})
}

// ExpiredObjectStore returns the cache backend when its expired entries need purging
func (c *DependencyContainer) ExpiredObjectStore() scheduler.ExpiredObjectStore {
	if store, ok := c.cacheBackend.(scheduler.ExpiredObjectStore); ok {
		return store
	}
	return nil
}

func (c *DependencyContainer) breakers() []infrastructure.BreakerState {
	out := make([]infrastructure.BreakerState, 0, len(c.upstreams))
	for _, upstream := range c.upstreams {
		out = append(out, upstream)
	}
	return out
}

// Cleanup releases the cache backend, database and log file
func (c *DependencyContainer) Cleanup() error {
	var firstErr error
	if closer, ok := c.cacheBackend.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = errors.NewInternalError("close cache backend", err)
		}
	}
	if c.db != nil {
		if err := database.Close(c.db); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.logCloser != nil {
		if err := c.logCloser.Close(); err != nil && firstErr == nil {
			firstErr = errors.NewInternalError("close log file", err)
		}
	}
	return firstErr
}
